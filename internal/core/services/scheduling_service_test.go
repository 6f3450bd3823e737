package services

import (
	"context"
	"testing"
	"time"

	"libraria/internal/adapters/persistence/models"
	"libraria/internal/adapters/persistence/stubs"
	"libraria/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedulerEnv struct {
	svc          *SchedulingService
	books        *stubs.BookStore
	readers      *stubs.ReaderStore
	reservations *stubs.ReservationStore
	loans        *stubs.LoanStore
}

// testToday is the fixed clock for scheduling tests: 2024-06-01, mid-morning.
var testToday = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newSchedulerEnv(t *testing.T) *schedulerEnv {
	t.Helper()

	books := stubs.NewBookStore()
	readers := stubs.NewReaderStore()
	reservations := stubs.NewReservationStore()
	loans := stubs.NewLoanStore(books)

	svc := NewSchedulingService(reservations, loans, books, readers, 14)
	svc.now = func() time.Time { return testToday }

	return &schedulerEnv{
		svc:          svc,
		books:        books,
		readers:      readers,
		reservations: reservations,
		loans:        loans,
	}
}

func (e *schedulerEnv) addBook(t *testing.T, title string) *models.Book {
	t.Helper()
	book := &models.Book{Title: title, ISBN: title, Status: models.BookStatusAvailable}
	require.NoError(t, e.books.Create(context.Background(), book))
	return book
}

func (e *schedulerEnv) addReader(t *testing.T, userID uint) *models.Reader {
	t.Helper()
	reader := &models.Reader{UserID: userID, FirstName: "Test", LastName: "Reader"}
	require.NoError(t, e.readers.Create(context.Background(), reader))
	return reader
}

var staff = domain.Actor{UserID: 100, Username: "librarian", Role: domain.RoleWorker}

func memberActor(userID uint) domain.Actor {
	return domain.Actor{UserID: userID, Username: "member", Role: domain.RoleUser}
}

func (e *schedulerEnv) reserve(t *testing.T, actor domain.Actor, bookID, readerID uint, start, end string) (*models.Reservation, error) {
	t.Helper()
	return e.svc.CreateReservation(context.Background(), actor, &CreateReservationInput{
		BookID:    bookID,
		ReaderID:  readerID,
		StartDate: start,
		EndDate:   end,
	})
}

func TestCreateReservationHappyPath(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	reader := env.addReader(t, 5)

	res, err := env.reserve(t, memberActor(5), book.ID, reader.ID, "2024-06-10", "2024-06-15")
	require.NoError(t, err)

	assert.Equal(t, models.ReservationStatusPending, res.Status)
	assert.Equal(t, book.ID, res.BookID)
	assert.Equal(t, reader.ID, res.ReaderID)
}

func TestCreateReservationStartingToday(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	reader := env.addReader(t, 5)

	_, err := env.reserve(t, memberActor(5), book.ID, reader.ID, "2024-06-01", "2024-06-03")
	assert.NoError(t, err)
}

func TestCreateReservationValidation(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	reader := env.addReader(t, 5)
	actor := memberActor(5)

	t.Run("bad date format", func(t *testing.T) {
		_, err := env.reserve(t, actor, book.ID, reader.ID, "10/06/2024", "2024-06-15")
		assert.ErrorIs(t, err, domain.ErrInvalidDateFormat)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := env.reserve(t, actor, book.ID, reader.ID, "2024-06-15", "2024-06-10")
		assert.ErrorIs(t, err, domain.ErrInvalidInterval)
	})

	t.Run("start in the past", func(t *testing.T) {
		_, err := env.reserve(t, actor, book.ID, reader.ID, "2024-05-31", "2024-06-03")
		assert.ErrorIs(t, err, domain.ErrIntervalInPast)
	})

	t.Run("unknown book", func(t *testing.T) {
		_, err := env.reserve(t, actor, 999, reader.ID, "2024-06-10", "2024-06-15")
		assert.ErrorIs(t, err, domain.ErrBookNotFound)
	})

	t.Run("unknown reader", func(t *testing.T) {
		_, err := env.reserve(t, actor, book.ID, 999, "2024-06-10", "2024-06-15")
		assert.ErrorIs(t, err, domain.ErrReaderNotFound)
	})
}

func TestCreateReservationOwnership(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	reader := env.addReader(t, 5)

	// A regular user cannot reserve for someone else's reader record
	_, err := env.reserve(t, memberActor(6), book.ID, reader.ID, "2024-06-10", "2024-06-15")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Staff can reserve on behalf of any reader
	_, err = env.reserve(t, staff, book.ID, reader.ID, "2024-06-10", "2024-06-15")
	assert.NoError(t, err)
}

func TestCreateReservationBookConflictSharedBoundary(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	first := env.addReader(t, 5)
	second := env.addReader(t, 6)

	_, err := env.reserve(t, memberActor(5), book.ID, first.ID, "2024-06-01", "2024-06-05")
	require.NoError(t, err)

	// Ends and starts on the same day: inclusive bounds make this a conflict
	_, err = env.reserve(t, memberActor(6), book.ID, second.ID, "2024-06-05", "2024-06-07")

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.ConflictScopeBook, conflict.Scope)
	require.Len(t, conflict.Blocking, 1)
}

func TestCreateReservationReaderConflictAcrossBooks(t *testing.T) {
	env := newSchedulerEnv(t)
	dune := env.addBook(t, "Dune")
	hobbit := env.addBook(t, "The Hobbit")
	reader := env.addReader(t, 5)
	actor := memberActor(5)

	_, err := env.reserve(t, actor, dune.ID, reader.ID, "2024-06-01", "2024-06-05")
	require.NoError(t, err)

	_, err = env.reserve(t, actor, hobbit.ID, reader.ID, "2024-06-04", "2024-06-08")

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.ConflictScopeReader, conflict.Scope)
}

func TestCancelledReservationFreesWindow(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	first := env.addReader(t, 5)
	second := env.addReader(t, 6)

	res, err := env.reserve(t, memberActor(5), book.ID, first.ID, "2024-06-01", "2024-06-05")
	require.NoError(t, err)

	_, err = env.svc.CancelReservation(context.Background(), memberActor(5), res.ID)
	require.NoError(t, err)

	// The window is free again for another reader
	_, err = env.reserve(t, memberActor(6), book.ID, second.ID, "2024-06-01", "2024-06-05")
	assert.NoError(t, err)
}

func TestCancelReservationAuthorization(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	reader := env.addReader(t, 5)

	res, err := env.reserve(t, memberActor(5), book.ID, reader.ID, "2024-06-10", "2024-06-15")
	require.NoError(t, err)

	// A different user cannot cancel someone else's reservation
	_, err = env.svc.CancelReservation(context.Background(), memberActor(6), res.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Staff can
	cancelled, err := env.svc.CancelReservation(context.Background(), staff, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusCancelled, cancelled.Status)

	// Cancelling twice fails
	_, err = env.svc.CancelReservation(context.Background(), staff, res.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestApproveReservation(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	reader := env.addReader(t, 5)

	res, err := env.reserve(t, memberActor(5), book.ID, reader.ID, "2024-06-10", "2024-06-15")
	require.NoError(t, err)

	// Only staff may approve
	_, err = env.svc.ApproveReservation(context.Background(), memberActor(5), res.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	approved, err := env.svc.ApproveReservation(context.Background(), staff, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusApproved, approved.Status)
	require.NotNil(t, approved.ProcessedBy)
	assert.Equal(t, staff.UserID, *approved.ProcessedBy)

	// Approving again is a state error
	_, err = env.svc.ApproveReservation(context.Background(), staff, res.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestApproveReservationStaleConflict(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	first := env.addReader(t, 5)
	second := env.addReader(t, 6)

	// Seed the second reservation directly to model a race where two pending
	// reservations for the same window both got admitted.
	resA, err := env.reserve(t, memberActor(5), book.ID, first.ID, "2024-06-10", "2024-06-15")
	require.NoError(t, err)

	resB := &models.Reservation{
		BookID:    book.ID,
		ReaderID:  second.ID,
		StartDate: resA.StartDate,
		EndDate:   resA.EndDate,
		Status:    models.ReservationStatusPending,
	}
	require.NoError(t, env.reservations.Create(context.Background(), resB))

	_, err = env.svc.ApproveReservation(context.Background(), staff, resA.ID)
	require.NoError(t, err)

	// The second approval now collides, and the conflict is marked stale
	_, err = env.svc.ApproveReservation(context.Background(), staff, resB.ID)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.True(t, conflict.Stale)
	assert.Equal(t, domain.ConflictScopeBook, conflict.Scope)
}

func TestRejectReservation(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	reader := env.addReader(t, 5)

	res, err := env.reserve(t, memberActor(5), book.ID, reader.ID, "2024-06-10", "2024-06-15")
	require.NoError(t, err)

	_, err = env.svc.RejectReservation(context.Background(), staff, res.ID, "")
	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	rejected, err := env.svc.RejectReservation(context.Background(), staff, res.ID, "book damaged")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusRejected, rejected.Status)
	assert.Equal(t, "book damaged", rejected.RejectionReason)
}

func TestLoanLifecycle(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	reader := env.addReader(t, 5)
	ctx := context.Background()

	res, err := env.reserve(t, memberActor(5), book.ID, reader.ID, "2024-06-01", "2024-06-05")
	require.NoError(t, err)

	_, err = env.svc.ApproveReservation(ctx, staff, res.ID)
	require.NoError(t, err)

	loan, err := env.svc.CreateLoan(ctx, staff, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusBorrowed, loan.Status)
	assert.Equal(t, res.EndDate, loan.DueDate, "loan is due on the reservation end date")

	// The book is flipped to borrowed
	stored, err := env.books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookStatusBorrowed, stored.Status)

	// A second loan against the same reservation fails
	_, err = env.svc.CreateLoan(ctx, staff, res.ID)
	assert.ErrorIs(t, err, domain.ErrReservationConsumed)

	returned, err := env.svc.ReturnLoan(ctx, staff, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)

	// Availability is restored
	stored, err = env.books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookStatusAvailable, stored.Status)

	// Returning twice is a state error
	_, err = env.svc.ReturnLoan(ctx, staff, loan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCreateLoanWindowChecks(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	reader := env.addReader(t, 5)
	ctx := context.Background()

	t.Run("not started yet", func(t *testing.T) {
		res, err := env.reserve(t, staff, book.ID, reader.ID, "2024-06-10", "2024-06-15")
		require.NoError(t, err)
		_, err = env.svc.ApproveReservation(ctx, staff, res.ID)
		require.NoError(t, err)

		_, err = env.svc.CreateLoan(ctx, staff, res.ID)
		assert.ErrorIs(t, err, domain.ErrReservationNotStarted)
	})

	t.Run("already ended", func(t *testing.T) {
		res, err := env.reserve(t, staff, book.ID, reader.ID, "2024-06-01", "2024-06-03")
		require.NoError(t, err)
		_, err = env.svc.ApproveReservation(ctx, staff, res.ID)
		require.NoError(t, err)

		// Move the clock past the window
		env.svc.now = func() time.Time { return time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC) }
		defer func() { env.svc.now = func() time.Time { return testToday } }()

		_, err = env.svc.CreateLoan(ctx, staff, res.ID)
		assert.ErrorIs(t, err, domain.ErrReservationExpired)
	})

	t.Run("pending reservation cannot be loaned", func(t *testing.T) {
		res, err := env.reserve(t, staff, book.ID, reader.ID, "2024-06-20", "2024-06-25")
		require.NoError(t, err)

		_, err = env.svc.CreateLoan(ctx, staff, res.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("staff only", func(t *testing.T) {
		_, err := env.svc.CreateLoan(ctx, memberActor(5), 1)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestWalkInLoan(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	reader := env.addReader(t, 5)
	ctx := context.Background()

	loan, err := env.svc.CreateWalkInLoan(ctx, staff, book.ID, reader.ID)
	require.NoError(t, err)

	assert.Nil(t, loan.ReservationID)
	wantDue := domain.NormalizeDay(testToday).AddDate(0, 0, 14)
	assert.Equal(t, wantDue, loan.DueDate)

	// The book is now out; a second walk-in fails
	_, err = env.svc.CreateWalkInLoan(ctx, staff, book.ID, reader.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyBorrowed)
}

func TestCreateLoanBookAlreadyOut(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	first := env.addReader(t, 5)
	second := env.addReader(t, 6)
	ctx := context.Background()

	// An approved reservation for the second reader, window open now
	res, err := env.reserve(t, staff, book.ID, second.ID, "2024-06-01", "2024-06-10")
	require.NoError(t, err)
	_, err = env.svc.ApproveReservation(ctx, staff, res.ID)
	require.NoError(t, err)

	// Meanwhile the book walks out the door with the first reader
	_, err = env.svc.CreateWalkInLoan(ctx, staff, book.ID, first.ID)
	require.NoError(t, err)

	_, err = env.svc.CreateLoan(ctx, staff, res.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyBorrowed)
}

func TestGetLoanOwnership(t *testing.T) {
	env := newSchedulerEnv(t)
	book := env.addBook(t, "Dune")
	reader := env.addReader(t, 5)
	ctx := context.Background()

	loan, err := env.svc.CreateWalkInLoan(ctx, staff, book.ID, reader.ID)
	require.NoError(t, err)

	_, err = env.svc.GetLoan(ctx, memberActor(5), loan.ID)
	assert.NoError(t, err)

	_, err = env.svc.GetLoan(ctx, memberActor(6), loan.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.svc.GetLoan(ctx, staff, 999)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}
