package handlers

import (
	"time"

	"creditdesk/internal/core/domain"
	"creditdesk/internal/core/services"
	"creditdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReportingHandler handles reporting and dashboard endpoints
type ReportingHandler struct {
	reportingService *services.ReportingService
}

// NewReportingHandler creates a new reporting handler
func NewReportingHandler(reportingService *services.ReportingService) *ReportingHandler {
	return &ReportingHandler{
		reportingService: reportingService,
	}
}

// Dashboard returns the portfolio dashboard summary
// @Summary Dashboard summary
// @Description Get portfolio-wide counts and amounts
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reports/dashboard [get]
func (h *ReportingHandler) Dashboard(c *fiber.Ctx) error {
	summary, err := h.reportingService.Dashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", summary)
}

// Delinquent lists credits behind on their installment schedule
// @Summary Delinquent credits
// @Description List accepted credits with fewer installments than expected
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param as_of query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Response
// @Router /reports/delinquent [get]
func (h *ReportingHandler) Delinquent(c *fiber.Ctx) error {
	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return response.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
		}
		asOf = parsed
	}

	credits, err := h.reportingService.DelinquentCredits(c.Context(), asOf)
	if err != nil {
		return response.InternalServerError(c, "Failed to scan for delinquent credits")
	}

	return response.Success(c, "Delinquent credits retrieved successfully", fiber.Map{
		"as_of":   asOf.Format("2006-01-02"),
		"count":   len(credits),
		"credits": credits,
	})
}

// SummaryByStatus aggregates credits per status
// @Summary Credit summary by status
// @Description Count and total amount of credits grouped by status
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reports/credits/by-status [get]
func (h *ReportingHandler) SummaryByStatus(c *fiber.Ctx) error {
	summaries, err := h.reportingService.CreditSummaryByStatus(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build status summary")
	}

	return response.Success(c, "Status summary retrieved successfully", summaries)
}

// SummaryByType aggregates credits per credit type
// @Summary Credit summary by type
// @Description Count of credits grouped by credit type
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reports/credits/by-type [get]
func (h *ReportingHandler) SummaryByType(c *fiber.Ctx) error {
	summaries, err := h.reportingService.CreditSummaryByType(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build type summary")
	}

	return response.Success(c, "Type summary retrieved successfully", summaries)
}

// RepaymentStats aggregates repayments over a period
// @Summary Repayment statistics
// @Description Totals and per-type counts for repayments inside a date range
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /reports/repayments [get]
func (h *ReportingHandler) RepaymentStats(c *fiber.Ctx) error {
	from, err := parseDateQuery(c, "from")
	if err != nil {
		return response.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return response.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
	}

	stats, err := h.reportingService.RepaymentStats(c.Context(), from, to)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		return response.InternalServerError(c, "Failed to build repayment statistics")
	}

	return response.Success(c, "Repayment statistics retrieved successfully", stats)
}
