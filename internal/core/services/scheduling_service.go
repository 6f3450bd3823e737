package services

import (
	"context"
	"errors"
	"log"
	"time"

	"libraria/internal/adapters/persistence/models"
	"libraria/internal/adapters/persistence/repositories"
	"libraria/internal/core/domain"
	"libraria/internal/pkg/keylock"

	"gorm.io/gorm"
)

// SchedulingService is the single entry point for reservation and loan
// mutations. Each operation takes the book lock, then the reader lock, and
// holds both across the check-then-act window so two requests for the same
// book or reader cannot interleave. Operations on unrelated books run in
// parallel.
type SchedulingService struct {
	reservationRepo repositories.ReservationRepository
	loanRepo        repositories.LoanRepository
	bookRepo        repositories.BookRepository
	readerRepo      repositories.ReaderRepository
	checker         *ConflictChecker
	locks           *keylock.Map
	loanPeriodDays  int

	now func() time.Time
}

// NewSchedulingService creates a new scheduling service
func NewSchedulingService(
	reservationRepo repositories.ReservationRepository,
	loanRepo repositories.LoanRepository,
	bookRepo repositories.BookRepository,
	readerRepo repositories.ReaderRepository,
	loanPeriodDays int,
) *SchedulingService {
	return &SchedulingService{
		reservationRepo: reservationRepo,
		loanRepo:        loanRepo,
		bookRepo:        bookRepo,
		readerRepo:      readerRepo,
		checker:         NewConflictChecker(reservationRepo),
		locks:           keylock.New(),
		loanPeriodDays:  loanPeriodDays,
		now:             time.Now,
	}
}

// lockWindow takes the book lock then the reader lock, returning the release
// in reverse order. Lock order is fixed everywhere to rule out deadlock.
func (s *SchedulingService) lockWindow(bookID, readerID uint) func() {
	bookKey := keylock.BookKey(bookID)
	readerKey := keylock.ReaderKey(readerID)
	s.locks.Lock(bookKey)
	s.locks.Lock(readerKey)
	return func() {
		s.locks.Unlock(readerKey)
		s.locks.Unlock(bookKey)
	}
}

// CreateReservationInput represents reservation creation input
type CreateReservationInput struct {
	BookID    uint   `json:"book_id" validate:"required"`
	ReaderID  uint   `json:"reader_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// CreateReservation validates the window, runs the conflict check under the
// book and reader locks, and inserts a pending reservation. Readers may only
// reserve for themselves; staff may reserve on behalf of any reader.
func (s *SchedulingService) CreateReservation(ctx context.Context, actor domain.Actor, input *CreateReservationInput) (*models.Reservation, error) {
	iv, err := domain.NewInterval(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	if err := iv.Validate(s.now()); err != nil {
		return nil, err
	}

	reader, err := s.readerRepo.GetByID(ctx, input.ReaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReaderNotFound
		}
		return nil, err
	}
	if !actor.IsStaff() && reader.UserID != actor.UserID {
		return nil, domain.ErrForbidden
	}

	if _, err := s.bookRepo.GetByID(ctx, input.BookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}

	unlock := s.lockWindow(input.BookID, input.ReaderID)
	defer unlock()

	if err := s.checker.Check(ctx, input.BookID, input.ReaderID, iv, 0); err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		BookID:    input.BookID,
		ReaderID:  input.ReaderID,
		StartDate: iv.Start,
		EndDate:   iv.End,
		Status:    models.ReservationStatusPending,
	}
	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		return nil, err
	}

	log.Printf("✅ Reservation created: #%d book=%d reader=%d %s", reservation.ID, reservation.BookID, reservation.ReaderID, iv)

	return s.reservationRepo.GetByID(ctx, reservation.ID)
}

// ApproveReservation moves a pending reservation to approved. The conflict
// check runs again under the locks: a window that was free at creation can
// have been taken by a reservation approved in between.
func (s *SchedulingService) ApproveReservation(ctx context.Context, actor domain.Actor, id uint) (*models.Reservation, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}

	reservation, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.lockWindow(reservation.BookID, reservation.ReaderID)
	defer unlock()

	// Reload under the lock; status may have moved
	reservation, err = s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.Status != models.ReservationStatusPending {
		return nil, domain.ErrInvalidState
	}

	iv := domain.Interval{Start: reservation.StartDate, End: reservation.EndDate}
	if err := s.checker.Check(ctx, reservation.BookID, reservation.ReaderID, iv, reservation.ID); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			conflict.Stale = true
		}
		return nil, err
	}

	now := s.now()
	reservation.Status = models.ReservationStatusApproved
	reservation.ProcessedBy = &actor.UserID
	reservation.ProcessedAt = &now
	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, err
	}

	log.Printf("✅ Reservation approved: #%d by %s", reservation.ID, actor.Username)

	return s.reservationRepo.GetByID(ctx, reservation.ID)
}

// RejectReservation moves a pending reservation to rejected. A non-empty
// reason is mandatory and stored on the record.
func (s *SchedulingService) RejectReservation(ctx context.Context, actor domain.Actor, id uint, reason string) (*models.Reservation, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}

	reservation, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.lockWindow(reservation.BookID, reservation.ReaderID)
	defer unlock()

	reservation, err = s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.Status != models.ReservationStatusPending {
		return nil, domain.ErrInvalidState
	}

	now := s.now()
	reservation.Status = models.ReservationStatusRejected
	reservation.RejectionReason = reason
	reservation.ProcessedBy = &actor.UserID
	reservation.ProcessedAt = &now
	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, err
	}

	log.Printf("✅ Reservation rejected: #%d by %s", reservation.ID, actor.Username)

	return s.reservationRepo.GetByID(ctx, reservation.ID)
}

// CancelReservation cancels a pending or approved reservation, freeing its
// window. The owning reader or staff may cancel.
func (s *SchedulingService) CancelReservation(ctx context.Context, actor domain.Actor, id uint) (*models.Reservation, error) {
	reservation, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsStaff() {
		reader, err := s.readerRepo.GetByID(ctx, reservation.ReaderID)
		if err != nil {
			return nil, err
		}
		if reader.UserID != actor.UserID {
			return nil, domain.ErrForbidden
		}
	}

	unlock := s.lockWindow(reservation.BookID, reservation.ReaderID)
	defer unlock()

	reservation, err = s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reservation.IsActive() {
		return nil, domain.ErrInvalidState
	}

	reservation.Status = models.ReservationStatusCancelled
	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, err
	}

	log.Printf("✅ Reservation cancelled: #%d by %s", reservation.ID, actor.Username)

	return s.reservationRepo.GetByID(ctx, reservation.ID)
}

// CreateLoan hands the book out against an approved reservation. The loan is
// due on the reservation's end date. The reservation stays approved and is
// consumed by the loan's reference to it.
func (s *SchedulingService) CreateLoan(ctx context.Context, actor domain.Actor, reservationID uint) (*models.Loan, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}

	reservation, err := s.getReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockWindow(reservation.BookID, reservation.ReaderID)
	defer unlock()

	reservation, err = s.getReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != models.ReservationStatusApproved {
		return nil, domain.ErrInvalidState
	}

	today := domain.NormalizeDay(s.now())
	iv := domain.Interval{Start: reservation.StartDate, End: reservation.EndDate}
	if today.Before(iv.Start) {
		return nil, domain.ErrReservationNotStarted
	}
	if today.After(iv.End) {
		return nil, domain.ErrReservationExpired
	}

	consumed, err := s.loanRepo.ExistsForReservation(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}
	if consumed {
		return nil, domain.ErrReservationConsumed
	}

	if err := s.ensureBookFree(ctx, reservation.BookID); err != nil {
		return nil, err
	}

	resID := reservation.ID
	loan := &models.Loan{
		BookID:        reservation.BookID,
		ReaderID:      reservation.ReaderID,
		ReservationID: &resID,
		LoanDate:      today,
		DueDate:       reservation.EndDate,
		Status:        models.LoanStatusBorrowed,
	}
	if err := s.loanRepo.CreateBorrowed(ctx, loan); err != nil {
		return nil, err
	}

	log.Printf("✅ Loan created: #%d from reservation #%d, due %s", loan.ID, reservation.ID, loan.DueDate.Format(domain.DateLayout))

	return s.loanRepo.GetByID(ctx, loan.ID)
}

// CreateWalkInLoan hands a book out without a reservation. Staff only; the
// loan runs for the configured loan period.
func (s *SchedulingService) CreateWalkInLoan(ctx context.Context, actor domain.Actor, bookID, readerID uint) (*models.Loan, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}

	if _, err := s.readerRepo.GetByID(ctx, readerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReaderNotFound
		}
		return nil, err
	}
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}

	unlock := s.lockWindow(bookID, readerID)
	defer unlock()

	if err := s.ensureBookFree(ctx, bookID); err != nil {
		return nil, err
	}

	today := domain.NormalizeDay(s.now())
	loan := &models.Loan{
		BookID:   bookID,
		ReaderID: readerID,
		LoanDate: today,
		DueDate:  today.AddDate(0, 0, s.loanPeriodDays),
		Status:   models.LoanStatusBorrowed,
	}
	if err := s.loanRepo.CreateBorrowed(ctx, loan); err != nil {
		return nil, err
	}

	log.Printf("✅ Walk-in loan created: #%d book=%d reader=%d, due %s", loan.ID, bookID, readerID, loan.DueDate.Format(domain.DateLayout))

	return s.loanRepo.GetByID(ctx, loan.ID)
}

// ReturnLoan closes an open loan and makes the book available again.
func (s *SchedulingService) ReturnLoan(ctx context.Context, actor domain.Actor, loanID uint) (*models.Loan, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockWindow(loan.BookID, loan.ReaderID)
	defer unlock()

	loan, err = s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusBorrowed {
		return nil, domain.ErrInvalidState
	}

	if err := s.loanRepo.MarkReturned(ctx, loan, s.now()); err != nil {
		return nil, err
	}

	log.Printf("✅ Loan returned: #%d book=%d", loan.ID, loan.BookID)

	return s.loanRepo.GetByID(ctx, loan.ID)
}

// GetReservation returns a reservation readable by the actor.
func (s *SchedulingService) GetReservation(ctx context.Context, actor domain.Actor, id uint) (*models.Reservation, error) {
	reservation, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() {
		reader, err := s.readerRepo.GetByID(ctx, reservation.ReaderID)
		if err != nil {
			return nil, err
		}
		if reader.UserID != actor.UserID {
			return nil, domain.ErrForbidden
		}
	}
	return reservation, nil
}

// ListReservations lists reservations for staff, optionally by status.
func (s *SchedulingService) ListReservations(ctx context.Context, status string, offset, limit int) ([]*models.Reservation, int64, error) {
	return s.reservationRepo.List(ctx, status, offset, limit)
}

// ListReservationsForReader lists one reader's reservations.
func (s *SchedulingService) ListReservationsForReader(ctx context.Context, readerID uint, offset, limit int) ([]*models.Reservation, int64, error) {
	return s.reservationRepo.ListByReader(ctx, readerID, offset, limit)
}

// GetLoan returns a loan readable by the actor.
func (s *SchedulingService) GetLoan(ctx context.Context, actor domain.Actor, id uint) (*models.Loan, error) {
	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() {
		reader, err := s.readerRepo.GetByID(ctx, loan.ReaderID)
		if err != nil {
			return nil, err
		}
		if reader.UserID != actor.UserID {
			return nil, domain.ErrForbidden
		}
	}
	return loan, nil
}

// ListLoans lists loans for staff, optionally by status.
func (s *SchedulingService) ListLoans(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error) {
	return s.loanRepo.List(ctx, status, offset, limit)
}

// ListLoansForReader lists one reader's loans.
func (s *SchedulingService) ListLoansForReader(ctx context.Context, readerID uint, offset, limit int) ([]*models.Loan, int64, error) {
	return s.loanRepo.ListByReader(ctx, readerID, offset, limit)
}

func (s *SchedulingService) ensureBookFree(ctx context.Context, bookID uint) error {
	_, err := s.loanRepo.GetActiveByBook(ctx, bookID)
	if err == nil {
		return domain.ErrAlreadyBorrowed
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (s *SchedulingService) getReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}
	return reservation, nil
}

func (s *SchedulingService) getLoan(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}
