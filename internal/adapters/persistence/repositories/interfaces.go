package repositories

import (
	"context"
	"time"

	"libraria/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	Count(ctx context.Context) (int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	GetByUserID(ctx context.Context, userID uint) ([]*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// BookFilter narrows catalog listings.
type BookFilter struct {
	Title         string
	Author        string
	Genre         string
	OnlyAvailable bool
}

// BookRepository defines catalog repository interface
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	List(ctx context.Context, filter BookFilter, offset, limit int) ([]*models.Book, int64, error)
	Genres(ctx context.Context) ([]string, error)
	GetOrCreateAuthor(ctx context.Context, firstName, lastName string) (*models.Author, error)
	ExistsByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error)
}

// ReaderRepository defines reader repository interface
type ReaderRepository interface {
	Create(ctx context.Context, reader *models.Reader) error
	GetByID(ctx context.Context, id uint) (*models.Reader, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Reader, error)
	List(ctx context.Context, offset, limit int) ([]*models.Reader, int64, error)
}

// ReaderRequestRepository defines reader request repository interface
type ReaderRequestRepository interface {
	Create(ctx context.Context, req *models.ReaderRequest) error
	GetByID(ctx context.Context, id uint) (*models.ReaderRequest, error)
	Update(ctx context.Context, req *models.ReaderRequest) error
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.ReaderRequest, int64, error)
	LatestByUser(ctx context.Context, userID uint) (*models.ReaderRequest, error)
	HasPendingByUser(ctx context.Context, userID uint) (bool, error)
}

// ReservationRepository defines reservation repository interface.
// FindOverlappingForBook and FindOverlappingForReader push the inclusive
// interval overlap predicate into SQL; only pending and approved reservations
// occupy a window. excludeID skips one reservation (0 to skip none).
type ReservationRepository interface {
	Create(ctx context.Context, res *models.Reservation) error
	GetByID(ctx context.Context, id uint) (*models.Reservation, error)
	Update(ctx context.Context, res *models.Reservation) error
	List(ctx context.Context, status string, offset, limit int) ([]*models.Reservation, int64, error)
	ListByReader(ctx context.Context, readerID uint, offset, limit int) ([]*models.Reservation, int64, error)
	FindOverlappingForBook(ctx context.Context, bookID uint, start, end time.Time, excludeID uint) ([]*models.Reservation, error)
	FindOverlappingForReader(ctx context.Context, readerID uint, start, end time.Time, excludeID uint) ([]*models.Reservation, error)
	CancelExpiredPending(ctx context.Context, before time.Time, reason string) (int64, error)
}

// LoanRepository defines loan repository interface. CreateBorrowed and
// MarkReturned run the loan write and the book status flip in one
// transaction.
type LoanRepository interface {
	CreateBorrowed(ctx context.Context, loan *models.Loan) error
	MarkReturned(ctx context.Context, loan *models.Loan, returnedAt time.Time) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	GetActiveByBook(ctx context.Context, bookID uint) (*models.Loan, error)
	ExistsForReservation(ctx context.Context, reservationID uint) (bool, error)
	List(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error)
	ListByReader(ctx context.Context, readerID uint, offset, limit int) ([]*models.Loan, int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
}
