package repositories

import (
	"context"
	"time"

	"libraria/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// CreateBorrowed inserts the loan and flips the book to borrowed in one
// transaction.
func (r *loanRepository) CreateBorrowed(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(loan).Error; err != nil {
			return err
		}
		return tx.Model(&models.Book{}).
			Where("id = ?", loan.BookID).
			Update("status", models.BookStatusBorrowed).Error
	})
}

// MarkReturned closes the loan and frees the book in one transaction.
func (r *loanRepository) MarkReturned(ctx context.Context, loan *models.Loan, returnedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Loan{}).
			Where("id = ?", loan.ID).
			Updates(map[string]interface{}{
				"status":      models.LoanStatusReturned,
				"return_date": &returnedAt,
			}).Error
		if err != nil {
			return err
		}
		loan.Status = models.LoanStatusReturned
		loan.ReturnDate = &returnedAt
		return tx.Model(&models.Book{}).
			Where("id = ?", loan.BookID).
			Update("status", models.BookStatusAvailable).Error
	})
}

// GetByID gets a loan with book and reader loaded
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").Preload("Reader").
		Where("id = ?", id).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetActiveByBook returns the open loan on a book, if any
func (r *loanRepository) GetActiveByBook(ctx context.Context, bookID uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Where("status = ?", models.LoanStatusBorrowed).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ExistsForReservation checks whether a reservation was already consumed
func (r *loanRepository) ExistsForReservation(ctx context.Context, reservationID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("reservation_id = ?", reservationID).
		Count(&count).Error
	return count > 0, err
}

// List lists loans, optionally filtered by status
func (r *loanRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Loan{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Book").Preload("Reader").
		Order("due_date").
		Offset(offset).Limit(limit).
		Find(&loans).Error
	if err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

// ListByReader lists all loans made by a reader
func (r *loanRepository) ListByReader(ctx context.Context, readerID uint, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Loan{}).Where("reader_id = ?", readerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Book").
		Order("loan_date DESC").
		Offset(offset).Limit(limit).
		Find(&loans).Error
	if err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

// CountOverdue counts open loans past their due date
func (r *loanRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status = ?", models.LoanStatusBorrowed).
		Where("due_date < ?", now).
		Count(&count).Error
	return count, err
}
