package repositories

import (
	"context"

	"libraria/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// readerRepository implements ReaderRepository interface
type readerRepository struct {
	db *gorm.DB
}

// NewReaderRepository creates a new reader repository
func NewReaderRepository(db *gorm.DB) ReaderRepository {
	return &readerRepository{db: db}
}

// Create creates a new reader
func (r *readerRepository) Create(ctx context.Context, reader *models.Reader) error {
	return r.db.WithContext(ctx).Create(reader).Error
}

// GetByID gets a reader by ID
func (r *readerRepository) GetByID(ctx context.Context, id uint) (*models.Reader, error) {
	var reader models.Reader
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reader).Error
	if err != nil {
		return nil, err
	}
	return &reader, nil
}

// GetByUserID gets the reader linked to a user account
func (r *readerRepository) GetByUserID(ctx context.Context, userID uint) (*models.Reader, error) {
	var reader models.Reader
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&reader).Error
	if err != nil {
		return nil, err
	}
	return &reader, nil
}

// List lists readers with pagination
func (r *readerRepository) List(ctx context.Context, offset, limit int) ([]*models.Reader, int64, error) {
	var readers []*models.Reader
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Reader{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("last_name, first_name").
		Offset(offset).Limit(limit).
		Find(&readers).Error
	if err != nil {
		return nil, 0, err
	}

	return readers, total, nil
}
