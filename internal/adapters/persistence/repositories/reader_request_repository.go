package repositories

import (
	"context"

	"libraria/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// readerRequestRepository implements ReaderRequestRepository interface
type readerRequestRepository struct {
	db *gorm.DB
}

// NewReaderRequestRepository creates a new reader request repository
func NewReaderRequestRepository(db *gorm.DB) ReaderRequestRepository {
	return &readerRequestRepository{db: db}
}

// Create creates a new reader request
func (r *readerRequestRepository) Create(ctx context.Context, req *models.ReaderRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// GetByID gets a reader request by ID
func (r *readerRequestRepository) GetByID(ctx context.Context, id uint) (*models.ReaderRequest, error) {
	var req models.ReaderRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Update updates a reader request
func (r *readerRequestRepository) Update(ctx context.Context, req *models.ReaderRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

// ListByStatus lists reader requests, optionally filtered by status
func (r *readerRequestRepository) ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.ReaderRequest, int64, error) {
	var requests []*models.ReaderRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ReaderRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// LatestByUser returns the most recent request made by a user
func (r *readerRequestRepository) LatestByUser(ctx context.Context, userID uint) (*models.ReaderRequest, error) {
	var req models.ReaderRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// HasPendingByUser checks whether the user already has a pending request
func (r *readerRequestRepository) HasPendingByUser(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReaderRequest{}).
		Where("user_id = ?", userID).
		Where("status = ?", models.RequestStatusPending).
		Count(&count).Error
	return count > 0, err
}
