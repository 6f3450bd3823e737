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

// LoanHandler handles loan endpoints
type LoanHandler struct {
	schedulingService *services.SchedulingService
	readerService     *services.ReaderService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(schedulingService *services.SchedulingService, readerService *services.ReaderService) *LoanHandler {
	return &LoanHandler{
		schedulingService: schedulingService,
		readerService:     readerService,
	}
}

// CreateLoanRequest represents loan creation body
type CreateLoanRequest struct {
	ReservationID uint `json:"reservation_id"`
}

// WalkInLoanRequest represents a walk-in loan body
type WalkInLoanRequest struct {
	BookID   uint `json:"book_id"`
	ReaderID uint `json:"reader_id"`
}

// CreateLoan handles handing out a book against an approved reservation (staff)
// @Summary Create loan from reservation
// @Description Hand out a book against an approved reservation whose window covers today (staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateLoanRequest true "Loan data"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) CreateLoan(c *fiber.Ctx) error {
	var req CreateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.schedulingService.CreateLoan(c.Context(), middleware.Actor(c), req.ReservationID)
	if err != nil {
		return reservationError(c, err, "Failed to create loan")
	}

	return response.Created(c, "Loan created successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// CreateWalkInLoan handles lending without a reservation (staff)
// @Summary Create walk-in loan
// @Description Lend an available book on the spot without a reservation (staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body WalkInLoanRequest true "Loan data"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/walkin [post]
func (h *LoanHandler) CreateWalkInLoan(c *fiber.Ctx) error {
	var req WalkInLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.schedulingService.CreateWalkInLoan(c.Context(), middleware.Actor(c), req.BookID, req.ReaderID)
	if err != nil {
		return reservationError(c, err, "Failed to create loan")
	}

	return response.Created(c, "Loan created successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// ReturnLoan handles registering a book return (staff)
// @Summary Return loan
// @Description Register a returned book and make it available again (staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/return [post]
func (h *LoanHandler) ReturnLoan(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.schedulingService.ReturnLoan(c.Context(), middleware.Actor(c), uint(id))
	if err != nil {
		return reservationError(c, err, "Failed to return loan")
	}

	return response.Success(c, "Loan returned successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// ListLoans handles listing loans (staff)
// @Summary List loans
// @Description Get loans, optionally filtered by status (staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "borrowed | returned"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) ListLoans(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	loans, total, err := h.schedulingService.ListLoans(c.Context(), c.Query("status"), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", pagination.NewResponse(toLoanResponses(loans), params, total))
}

// MyLoans handles listing the caller's loans
// @Summary My loans
// @Description Get the caller's own loans
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Success 200 {object} response.Response
// @Router /loans/my [get]
func (h *LoanHandler) MyLoans(c *fiber.Ctx) error {
	actor := middleware.Actor(c)

	reader, err := h.readerService.GetReaderForUser(c.Context(), actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrReaderNotFound) {
			return response.Forbidden(c, "A library card is required")
		}
		return response.InternalServerError(c, "Failed to list loans")
	}

	params := pagination.GetParams(c)
	loans, total, err := h.schedulingService.ListLoansForReader(c.Context(), reader.ID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", pagination.NewResponse(toLoanResponses(loans), params, total))
}

// GetLoan handles getting one loan
// @Summary Get loan
// @Description Get a loan; readers see only their own
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) GetLoan(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.schedulingService.GetLoan(c.Context(), middleware.Actor(c), uint(id))
	if err != nil {
		return reservationError(c, err, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

func toLoanResponses(loans []*models.Loan) []*models.LoanResponse {
	items := make([]*models.LoanResponse, 0, len(loans))
	for _, loan := range loans {
		items = append(items, loan.ToResponse())
	}
	return items
}
