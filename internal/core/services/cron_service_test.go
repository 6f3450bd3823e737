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

func TestNightlySweepCancelsExpiredPending(t *testing.T) {
	reservations := stubs.NewReservationStore()
	loans := stubs.NewLoanStore(stubs.NewBookStore())
	ctx := context.Background()

	today := domain.NormalizeDay(time.Now())
	lastWeek := today.AddDate(0, 0, -7)
	yesterday := today.AddDate(0, 0, -1)
	nextWeek := today.AddDate(0, 0, 7)

	stale := &models.Reservation{
		BookID: 1, ReaderID: 1,
		StartDate: lastWeek, EndDate: yesterday,
		Status: models.ReservationStatusPending,
	}
	upcoming := &models.Reservation{
		BookID: 2, ReaderID: 1,
		StartDate: today, EndDate: nextWeek,
		Status: models.ReservationStatusPending,
	}
	finished := &models.Reservation{
		BookID: 3, ReaderID: 2,
		StartDate: lastWeek, EndDate: yesterday,
		Status: models.ReservationStatusApproved,
	}
	require.NoError(t, reservations.Create(ctx, stale))
	require.NoError(t, reservations.Create(ctx, upcoming))
	require.NoError(t, reservations.Create(ctx, finished))

	NewCronService(reservations, loans).RunSweepNow()

	got, err := reservations.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusCancelled, got.Status)
	assert.NotEmpty(t, got.RejectionReason)

	got, err = reservations.GetByID(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusPending, got.Status)

	// Approved reservations are history, not the sweep's business
	got, err = reservations.GetByID(ctx, finished.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusApproved, got.Status)
}
