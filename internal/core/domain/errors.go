package domain

import (
	"errors"
	"fmt"
	"time"
)

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidPassword   = errors.New("invalid password")
)

// Interval errors
var (
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidInterval   = errors.New("end date cannot be before start date")
	ErrIntervalInPast    = errors.New("start date cannot be in the past")
)

// Reservation and loan errors
var (
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrInvalidState          = errors.New("operation not allowed in current status")
	ErrReasonRequired        = errors.New("rejection reason is required")
	ErrReservationNotStarted = errors.New("reservation period has not started yet")
	ErrReservationExpired    = errors.New("reservation period has already ended")
	ErrReservationConsumed   = errors.New("reservation already has a loan")
	ErrLoanNotFound          = errors.New("loan not found")
	ErrAlreadyBorrowed       = errors.New("book is already borrowed")
	ErrBookNotFound          = errors.New("book not found")
	ErrReaderNotFound        = errors.New("reader not found")
	ErrRequestPending        = errors.New("a reader request is already pending for this user")
	ErrAlreadyReader         = errors.New("user is already a registered reader")
)

// ConflictScope tells which uniqueness rule a reservation collided with.
type ConflictScope string

const (
	ConflictScopeBook   ConflictScope = "book"
	ConflictScopeReader ConflictScope = "reader"
)

// BlockedWindow is one reservation window that blocks the requested interval.
type BlockedWindow struct {
	ReservationID uint      `json:"reservation_id"`
	Start         time.Time `json:"start_date"`
	End           time.Time `json:"end_date"`
}

// ConflictError reports that a requested interval overlaps existing
// reservations. Stale marks conflicts discovered at approval time, after the
// reservation was admitted.
type ConflictError struct {
	Scope    ConflictScope
	Stale    bool
	Blocking []BlockedWindow
}

func (e *ConflictError) Error() string {
	if e.Scope == ConflictScopeReader {
		return fmt.Sprintf("reader already has %d overlapping reservation(s) in this period", len(e.Blocking))
	}
	return fmt.Sprintf("book is reserved for %d overlapping period(s)", len(e.Blocking))
}
