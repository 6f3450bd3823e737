package services

import (
	"context"
	"testing"

	"libraria/internal/adapters/persistence/models"
	"libraria/internal/adapters/persistence/stubs"
	"libraria/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReservation(t *testing.T, store *stubs.ReservationStore, bookID, readerID uint, start, end, status string) *models.Reservation {
	t.Helper()

	iv, err := domain.NewInterval(start, end)
	require.NoError(t, err)

	res := &models.Reservation{
		BookID:    bookID,
		ReaderID:  readerID,
		StartDate: iv.Start,
		EndDate:   iv.End,
		Status:    status,
	}
	require.NoError(t, store.Create(context.Background(), res))
	return res
}

func mustInterval(t *testing.T, start, end string) domain.Interval {
	t.Helper()
	iv, err := domain.NewInterval(start, end)
	require.NoError(t, err)
	return iv
}

func TestCheckFreeWindow(t *testing.T) {
	store := stubs.NewReservationStore()
	checker := NewConflictChecker(store)

	seedReservation(t, store, 1, 1, "2024-06-01", "2024-06-03", models.ReservationStatusApproved)

	err := checker.Check(context.Background(), 1, 1, mustInterval(t, "2024-06-04", "2024-06-06"), 0)
	assert.NoError(t, err)
}

func TestCheckBookConflictOnBoundaryDay(t *testing.T) {
	store := stubs.NewReservationStore()
	checker := NewConflictChecker(store)

	existing := seedReservation(t, store, 1, 1, "2024-06-01", "2024-06-05", models.ReservationStatusPending)

	// Another reader wants the same book starting the day the first ends
	err := checker.Check(context.Background(), 1, 2, mustInterval(t, "2024-06-05", "2024-06-07"), 0)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.ConflictScopeBook, conflict.Scope)
	assert.False(t, conflict.Stale)
	require.Len(t, conflict.Blocking, 1)
	assert.Equal(t, existing.ID, conflict.Blocking[0].ReservationID)
}

func TestCheckReaderConflictAcrossBooks(t *testing.T) {
	store := stubs.NewReservationStore()
	checker := NewConflictChecker(store)

	seedReservation(t, store, 1, 1, "2024-06-01", "2024-06-05", models.ReservationStatusApproved)

	// Same reader, different book, overlapping days
	err := checker.Check(context.Background(), 2, 1, mustInterval(t, "2024-06-03", "2024-06-08"), 0)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.ConflictScopeReader, conflict.Scope)
}

func TestCheckBookScopeWinsOverReaderScope(t *testing.T) {
	store := stubs.NewReservationStore()
	checker := NewConflictChecker(store)

	// The same window violates both rules; book scope is reported
	seedReservation(t, store, 1, 1, "2024-06-01", "2024-06-05", models.ReservationStatusApproved)

	err := checker.Check(context.Background(), 1, 1, mustInterval(t, "2024-06-02", "2024-06-04"), 0)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.ConflictScopeBook, conflict.Scope)
}

func TestCheckIgnoresInactiveReservations(t *testing.T) {
	store := stubs.NewReservationStore()
	checker := NewConflictChecker(store)

	seedReservation(t, store, 1, 1, "2024-06-01", "2024-06-05", models.ReservationStatusCancelled)
	seedReservation(t, store, 1, 2, "2024-06-01", "2024-06-05", models.ReservationStatusRejected)

	err := checker.Check(context.Background(), 1, 3, mustInterval(t, "2024-06-02", "2024-06-04"), 0)
	assert.NoError(t, err)
}

func TestCheckExcludesGivenReservation(t *testing.T) {
	store := stubs.NewReservationStore()
	checker := NewConflictChecker(store)

	existing := seedReservation(t, store, 1, 1, "2024-06-01", "2024-06-05", models.ReservationStatusPending)

	// Re-check at approval time must not collide with itself
	err := checker.Check(context.Background(), 1, 1, mustInterval(t, "2024-06-01", "2024-06-05"), existing.ID)
	assert.NoError(t, err)
}

func TestCheckReportsAllBlockingWindows(t *testing.T) {
	store := stubs.NewReservationStore()
	checker := NewConflictChecker(store)

	seedReservation(t, store, 1, 1, "2024-06-01", "2024-06-03", models.ReservationStatusApproved)
	seedReservation(t, store, 1, 2, "2024-06-05", "2024-06-07", models.ReservationStatusPending)

	err := checker.Check(context.Background(), 1, 3, mustInterval(t, "2024-06-02", "2024-06-06"), 0)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Len(t, conflict.Blocking, 2)
}
