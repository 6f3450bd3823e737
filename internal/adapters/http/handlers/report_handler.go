package handlers

import (
	"libraria/internal/core/services"
	"libraria/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles staff reporting endpoints
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ActiveLoans handles the active-loans report (staff)
// @Summary Active loans report
// @Description List open loans ordered by due date (staff only)
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reports/loans/active [get]
func (h *ReportHandler) ActiveLoans(c *fiber.Ctx) error {
	rows, err := h.reportService.ActiveLoans(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build report")
	}

	return response.Success(c, "Report generated successfully", fiber.Map{
		"loans": rows,
	})
}

// OverdueLoans handles the overdue-loans report (staff)
// @Summary Overdue loans report
// @Description List open loans past their due date (staff only)
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reports/loans/overdue [get]
func (h *ReportHandler) OverdueLoans(c *fiber.Ctx) error {
	rows, err := h.reportService.OverdueLoans(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build report")
	}

	return response.Success(c, "Report generated successfully", fiber.Map{
		"loans": rows,
	})
}

// PopularBooks handles the popular-books ranking (staff)
// @Summary Popular books report
// @Description Rank books by reservation count (staff only)
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows" default(10)
// @Success 200 {object} response.Response
// @Router /reports/books/popular [get]
func (h *ReportHandler) PopularBooks(c *fiber.Ctx) error {
	rows, err := h.reportService.PopularBooks(c.Context(), c.QueryInt("limit", 10))
	if err != nil {
		return response.InternalServerError(c, "Failed to build report")
	}

	return response.Success(c, "Report generated successfully", fiber.Map{
		"books": rows,
	})
}

// ReaderActivityCSV handles the reader-activity CSV export (staff)
// @Summary Reader activity export
// @Description Download per-reader reservation and loan counts as CSV (staff only)
// @Tags Reports
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV body"
// @Router /reports/readers/activity [get]
func (h *ReportHandler) ReaderActivityCSV(c *fiber.Ctx) error {
	body, err := h.reportService.ReaderActivityCSV(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build report")
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", `attachment; filename="reader_activity.csv"`)
	return c.Send(body)
}

// UserStatisticsCSV handles the user roster CSV export (admin)
// @Summary User statistics export
// @Description Download the user roster as CSV (admin only)
// @Tags Reports
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV body"
// @Router /reports/users/statistics [get]
func (h *ReportHandler) UserStatisticsCSV(c *fiber.Ctx) error {
	body, err := h.reportService.UserStatisticsCSV(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build report")
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", `attachment; filename="user_statistics.csv"`)
	return c.Send(body)
}
