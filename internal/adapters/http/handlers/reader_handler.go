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

// ReaderHandler handles reader registration and reader listing endpoints
type ReaderHandler struct {
	readerService *services.ReaderService
}

// NewReaderHandler creates a new reader handler
func NewReaderHandler(readerService *services.ReaderService) *ReaderHandler {
	return &ReaderHandler{readerService: readerService}
}

// SubmitRequest handles filing a reader registration request
// @Summary Apply for a library card
// @Description Submit a reader registration request; one pending request per user
// @Tags Readers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ReaderRequestInput true "Applicant data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reader-requests [post]
func (h *ReaderHandler) SubmitRequest(c *fiber.Ctx) error {
	var input services.ReaderRequestInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	request, err := h.readerService.SubmitRequest(c.Context(), middleware.Actor(c), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "First name and last name are required")
		case errors.Is(err, domain.ErrAlreadyReader):
			return response.Conflict(c, "You are already a registered reader")
		case errors.Is(err, domain.ErrRequestPending):
			return response.Conflict(c, "You already have a pending request")
		default:
			return response.InternalServerError(c, "Failed to submit reader request")
		}
	}

	return response.Created(c, "Reader request submitted", fiber.Map{
		"request": request,
	})
}

// MyRequestStatus handles checking the caller's latest request
// @Summary My reader request status
// @Description Get the caller's most recent reader registration request
// @Tags Readers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reader-requests/my [get]
func (h *ReaderHandler) MyRequestStatus(c *fiber.Ctx) error {
	request, err := h.readerService.MyRequestStatus(c.Context(), middleware.Actor(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "No reader request found")
		}
		return response.InternalServerError(c, "Failed to get request status")
	}

	return response.Success(c, "Request retrieved successfully", fiber.Map{
		"request": request,
	})
}

// ListRequests handles listing reader requests (staff)
// @Summary List reader requests
// @Description Get reader requests, optionally filtered by status (staff only)
// @Tags Readers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending | approved | rejected"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} response.Response
// @Router /reader-requests [get]
func (h *ReaderHandler) ListRequests(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	requests, total, err := h.readerService.ListRequests(c.Context(), c.Query("status"), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list reader requests")
	}

	return response.Success(c, "Requests retrieved successfully", pagination.NewResponse(requests, params, total))
}

// ApproveRequest handles approving a reader request (staff)
// @Summary Approve reader request
// @Description Promote the applicant to reader with a new library card (staff only)
// @Tags Readers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reader-requests/{id}/approve [post]
func (h *ReaderHandler) ApproveRequest(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	reader, err := h.readerService.ApproveRequest(c.Context(), middleware.Actor(c), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Reader request not found")
		case errors.Is(err, domain.ErrInvalidState):
			return response.Conflict(c, "Request has already been processed")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Staff access required")
		default:
			return response.InternalServerError(c, "Failed to approve reader request")
		}
	}

	return response.Success(c, "Reader request approved", fiber.Map{
		"reader": reader.ToResponse(),
	})
}

// RejectRequestBody represents rejection input
type RejectRequestBody struct {
	Reason string `json:"reason"`
}

// RejectRequest handles rejecting a reader request (staff)
// @Summary Reject reader request
// @Description Decline an application with a mandatory reason (staff only)
// @Tags Readers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body RejectRequestBody true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reader-requests/{id}/reject [post]
func (h *ReaderHandler) RejectRequest(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	var body RejectRequestBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	request, err := h.readerService.RejectRequest(c.Context(), middleware.Actor(c), uint(id), body.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReasonRequired):
			return response.BadRequest(c, "Rejection reason is required")
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Reader request not found")
		case errors.Is(err, domain.ErrInvalidState):
			return response.Conflict(c, "Request has already been processed")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Staff access required")
		default:
			return response.InternalServerError(c, "Failed to reject reader request")
		}
	}

	return response.Success(c, "Reader request rejected", fiber.Map{
		"request": request,
	})
}

// ListReaders handles listing readers (staff)
// @Summary List readers
// @Description Get registered readers (staff only)
// @Tags Readers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Success 200 {object} response.Response
// @Router /readers [get]
func (h *ReaderHandler) ListReaders(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	readers, total, err := h.readerService.ListReaders(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list readers")
	}

	items := make([]*models.ReaderResponse, 0, len(readers))
	for _, reader := range readers {
		items = append(items, reader.ToResponse())
	}

	return response.Success(c, "Readers retrieved successfully", pagination.NewResponse(items, params, total))
}

// GetReader handles getting one reader (staff)
// @Summary Get reader
// @Description Get a reader by ID (staff only)
// @Tags Readers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reader ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /readers/{id} [get]
func (h *ReaderHandler) GetReader(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid reader ID")
	}

	reader, err := h.readerService.GetReader(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrReaderNotFound) {
			return response.NotFound(c, "Reader not found")
		}
		return response.InternalServerError(c, "Failed to get reader")
	}

	return response.Success(c, "Reader retrieved successfully", fiber.Map{
		"reader": reader.ToResponse(),
	})
}
