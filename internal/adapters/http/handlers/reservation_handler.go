package handlers

import (
	"errors"
	"strconv"

	"libraria/internal/adapters/http/middleware"
	"libraria/internal/adapters/persistence/models"
	"libraria/internal/core/domain"
	"libraria/internal/core/services"
	"libraria/internal/pkg/pagination"
	"libraria/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReservationHandler handles reservation endpoints
type ReservationHandler struct {
	schedulingService *services.SchedulingService
	readerService     *services.ReaderService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(schedulingService *services.SchedulingService, readerService *services.ReaderService) *ReservationHandler {
	return &ReservationHandler{
		schedulingService: schedulingService,
		readerService:     readerService,
	}
}

// CreateReservationRequest represents reservation creation body
type CreateReservationRequest struct {
	BookID    uint   `json:"book_id"`
	ReaderID  uint   `json:"reader_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// CreateReservation handles reserving a book for a date window
// @Summary Create reservation
// @Description Reserve a book for an inclusive date window; rejected with 409 when the window conflicts
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateReservationRequest true "Reservation data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reservations [post]
func (h *ReservationHandler) CreateReservation(c *fiber.Ctx) error {
	var req CreateReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	actor := middleware.Actor(c)

	// Readers omit reader_id and reserve for themselves
	readerID := req.ReaderID
	if readerID == 0 {
		reader, err := h.readerService.GetReaderForUser(c.Context(), actor.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrReaderNotFound) {
				return response.Forbidden(c, "A library card is required to reserve books")
			}
			return response.InternalServerError(c, "Failed to create reservation")
		}
		readerID = reader.ID
	}

	input := &services.CreateReservationInput{
		BookID:    req.BookID,
		ReaderID:  readerID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}

	reservation, err := h.schedulingService.CreateReservation(c.Context(), actor, input)
	if err != nil {
		return reservationError(c, err, "Failed to create reservation")
	}

	return response.Created(c, "Reservation created successfully", fiber.Map{
		"reservation": reservation.ToResponse(),
	})
}

// ListReservations handles listing reservations (staff)
// @Summary List reservations
// @Description Get reservations, optionally filtered by status (staff only)
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending | approved | rejected | cancelled"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} response.Response
// @Router /reservations [get]
func (h *ReservationHandler) ListReservations(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	reservations, total, err := h.schedulingService.ListReservations(c.Context(), c.Query("status"), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list reservations")
	}

	return response.Success(c, "Reservations retrieved successfully", pagination.NewResponse(toReservationResponses(reservations), params, total))
}

// MyReservations handles listing the caller's reservations
// @Summary My reservations
// @Description Get the caller's own reservations
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Success 200 {object} response.Response
// @Router /reservations/my [get]
func (h *ReservationHandler) MyReservations(c *fiber.Ctx) error {
	actor := middleware.Actor(c)

	reader, err := h.readerService.GetReaderForUser(c.Context(), actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrReaderNotFound) {
			return response.Forbidden(c, "A library card is required")
		}
		return response.InternalServerError(c, "Failed to list reservations")
	}

	params := pagination.GetParams(c)
	reservations, total, err := h.schedulingService.ListReservationsForReader(c.Context(), reader.ID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list reservations")
	}

	return response.Success(c, "Reservations retrieved successfully", pagination.NewResponse(toReservationResponses(reservations), params, total))
}

// GetReservation handles getting one reservation
// @Summary Get reservation
// @Description Get a reservation; readers see only their own
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	reservation, err := h.schedulingService.GetReservation(c.Context(), middleware.Actor(c), uint(id))
	if err != nil {
		return reservationError(c, err, "Failed to get reservation")
	}

	return response.Success(c, "Reservation retrieved successfully", fiber.Map{
		"reservation": reservation.ToResponse(),
	})
}

// ApproveReservation handles approving a pending reservation (staff)
// @Summary Approve reservation
// @Description Approve a pending reservation; re-checks conflicts and returns 409 if the window was taken meanwhile
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reservations/{id}/approve [post]
func (h *ReservationHandler) ApproveReservation(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	reservation, err := h.schedulingService.ApproveReservation(c.Context(), middleware.Actor(c), uint(id))
	if err != nil {
		return reservationError(c, err, "Failed to approve reservation")
	}

	return response.Success(c, "Reservation approved", fiber.Map{
		"reservation": reservation.ToResponse(),
	})
}

// RejectReservation handles rejecting a pending reservation (staff)
// @Summary Reject reservation
// @Description Reject a pending reservation with a mandatory reason (staff only)
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Param body body RejectRequestBody true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reservations/{id}/reject [post]
func (h *ReservationHandler) RejectReservation(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	var body RejectRequestBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	reservation, err := h.schedulingService.RejectReservation(c.Context(), middleware.Actor(c), uint(id), body.Reason)
	if err != nil {
		return reservationError(c, err, "Failed to reject reservation")
	}

	return response.Success(c, "Reservation rejected", fiber.Map{
		"reservation": reservation.ToResponse(),
	})
}

// CancelReservation handles cancelling a reservation
// @Summary Cancel reservation
// @Description Cancel a pending or approved reservation; the owning reader or staff may cancel
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	reservation, err := h.schedulingService.CancelReservation(c.Context(), middleware.Actor(c), uint(id))
	if err != nil {
		return reservationError(c, err, "Failed to cancel reservation")
	}

	return response.Success(c, "Reservation cancelled", fiber.Map{
		"reservation": reservation.ToResponse(),
	})
}

func toReservationResponses(reservations []*models.Reservation) []*models.ReservationResponse {
	items := make([]*models.ReservationResponse, 0, len(reservations))
	for _, res := range reservations {
		items = append(items, res.ToResponse())
	}
	return items
}

// reservationError maps scheduling errors to HTTP responses. Conflicts carry
// the blocking windows so clients can show alternatives.
func reservationError(c *fiber.Ctx, err error, fallback string) error {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return response.ConflictWithDetails(c, conflict.Error(), conflictDetails(conflict))
	}

	switch {
	case errors.Is(err, domain.ErrInvalidDateFormat),
		errors.Is(err, domain.ErrInvalidInterval),
		errors.Is(err, domain.ErrIntervalInPast),
		errors.Is(err, domain.ErrReasonRequired):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrReservationNotFound):
		return response.NotFound(c, "Reservation not found")
	case errors.Is(err, domain.ErrBookNotFound):
		return response.NotFound(c, "Book not found")
	case errors.Is(err, domain.ErrReaderNotFound):
		return response.NotFound(c, "Reader not found")
	case errors.Is(err, domain.ErrLoanNotFound):
		return response.NotFound(c, "Loan not found")
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrReservationConsumed),
		errors.Is(err, domain.ErrReservationNotStarted),
		errors.Is(err, domain.ErrReservationExpired),
		errors.Is(err, domain.ErrAlreadyBorrowed):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have permission to perform this action")
	default:
		return response.InternalServerError(c, fallback)
	}
}

func conflictDetails(conflict *domain.ConflictError) fiber.Map {
	blocking := make([]fiber.Map, 0, len(conflict.Blocking))
	for _, window := range conflict.Blocking {
		blocking = append(blocking, fiber.Map{
			"reservation_id": window.ReservationID,
			"start_date":     window.Start.Format(domain.DateLayout),
			"end_date":       window.End.Format(domain.DateLayout),
		})
	}
	return fiber.Map{
		"scope":    conflict.Scope,
		"stale":    conflict.Stale,
		"blocking": blocking,
	}
}
