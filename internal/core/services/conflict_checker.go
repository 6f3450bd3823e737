package services

import (
	"context"

	"libraria/internal/adapters/persistence/models"
	"libraria/internal/adapters/persistence/repositories"
	"libraria/internal/core/domain"
)

// ConflictChecker decides whether a reservation window is admissible. It is
// read-only; callers serialize the surrounding check-then-act window.
type ConflictChecker struct {
	reservationRepo repositories.ReservationRepository
}

// NewConflictChecker creates a new conflict checker
func NewConflictChecker(reservationRepo repositories.ReservationRepository) *ConflictChecker {
	return &ConflictChecker{reservationRepo: reservationRepo}
}

// Check verifies the interval against both uniqueness rules, book-scope
// first. excludeID skips one reservation so re-checks at approval time do not
// collide with the reservation being approved. Returns *domain.ConflictError
// on collision, nil when the window is free.
func (c *ConflictChecker) Check(ctx context.Context, bookID, readerID uint, iv domain.Interval, excludeID uint) error {
	blocking, err := c.reservationRepo.FindOverlappingForBook(ctx, bookID, iv.Start, iv.End, excludeID)
	if err != nil {
		return err
	}
	if len(blocking) > 0 {
		return &domain.ConflictError{
			Scope:    domain.ConflictScopeBook,
			Blocking: blockedWindows(blocking),
		}
	}

	blocking, err = c.reservationRepo.FindOverlappingForReader(ctx, readerID, iv.Start, iv.End, excludeID)
	if err != nil {
		return err
	}
	if len(blocking) > 0 {
		return &domain.ConflictError{
			Scope:    domain.ConflictScopeReader,
			Blocking: blockedWindows(blocking),
		}
	}

	return nil
}

func blockedWindows(reservations []*models.Reservation) []domain.BlockedWindow {
	windows := make([]domain.BlockedWindow, 0, len(reservations))
	for _, res := range reservations {
		windows = append(windows, domain.BlockedWindow{
			ReservationID: res.ID,
			Start:         res.StartDate,
			End:           res.EndDate,
		})
	}
	return windows
}
