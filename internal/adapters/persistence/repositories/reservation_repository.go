package repositories

import (
	"context"
	"time"

	"libraria/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// reservationRepository implements ReservationRepository interface
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

// Create creates a new reservation
func (r *reservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

// GetByID gets a reservation with book and reader loaded
func (r *reservationRepository) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Book").Preload("Book.Author").Preload("Reader").
		Where("id = ?", id).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Update updates a reservation
func (r *reservationRepository) Update(ctx context.Context, res *models.Reservation) error {
	return r.db.WithContext(ctx).Save(res).Error
}

// List lists reservations, optionally filtered by status
func (r *reservationRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.Reservation, int64, error) {
	var reservations []*models.Reservation
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Reservation{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Book").Preload("Reader").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reservations).Error
	if err != nil {
		return nil, 0, err
	}

	return reservations, total, nil
}

// ListByReader lists all reservations made by a reader
func (r *reservationRepository) ListByReader(ctx context.Context, readerID uint, offset, limit int) ([]*models.Reservation, int64, error) {
	var reservations []*models.Reservation
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Reservation{}).Where("reader_id = ?", readerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Book").
		Order("start_date DESC").
		Offset(offset).Limit(limit).
		Find(&reservations).Error
	if err != nil {
		return nil, 0, err
	}

	return reservations, total, nil
}

// FindOverlappingForBook finds active reservations on the book whose window
// shares at least one day with [start, end]. Bounds are inclusive on both
// sides, so a reservation ending on start still overlaps.
func (r *reservationRepository) FindOverlappingForBook(ctx context.Context, bookID uint, start, end time.Time, excludeID uint) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Where("status IN ?", []string{models.ReservationStatusPending, models.ReservationStatusApproved}).
		Where("id <> ?", excludeID).
		Order("start_date").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindOverlappingForReader finds active reservations by the reader, across
// all books, whose window shares at least one day with [start, end].
func (r *reservationRepository) FindOverlappingForReader(ctx context.Context, readerID uint, start, end time.Time, excludeID uint) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	err := r.db.WithContext(ctx).
		Where("reader_id = ?", readerID).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Where("status IN ?", []string{models.ReservationStatusPending, models.ReservationStatusApproved}).
		Where("id <> ?", excludeID).
		Order("start_date").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// CancelExpiredPending cancels pending reservations whose window fully
// passed, stamping the audit reason. Returns how many rows changed.
func (r *reservationRepository) CancelExpiredPending(ctx context.Context, before time.Time, reason string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("status = ?", models.ReservationStatusPending).
		Where("end_date < ?", before).
		Updates(map[string]interface{}{
			"status":           models.ReservationStatusCancelled,
			"rejection_reason": reason,
		})
	return result.RowsAffected, result.Error
}
