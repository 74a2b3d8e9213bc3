package handlers

import (
	"errors"
	"strconv"

	"creditdesk/internal/adapters/persistence/models"
	"creditdesk/internal/core/domain"
	"creditdesk/internal/core/services"
	"creditdesk/internal/pkg/pagination"
	"creditdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RepaymentHandler handles repayment endpoints
type RepaymentHandler struct {
	repaymentService *services.RepaymentService
}

// NewRepaymentHandler creates a new repayment handler
func NewRepaymentHandler(repaymentService *services.RepaymentService) *RepaymentHandler {
	return &RepaymentHandler{
		repaymentService: repaymentService,
	}
}

// repaymentResponses converts repayments to their response DTOs
func repaymentResponses(repayments []*models.Repayment) []interface{} {
	result := make([]interface{}, 0, len(repayments))
	for _, repayment := range repayments {
		result = append(result, repayment.ToResponse())
	}
	return result
}

// creditError maps shared credit lookup errors to HTTP responses
func creditError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrCreditNotFound):
		return response.NotFound(c, "Credit not found")
	default:
		return response.InternalServerError(c, "Operation failed")
	}
}

// Create records a repayment
// @Summary Create repayment
// @Description Record a repayment against an existing credit
// @Tags Repayments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRepaymentInput true "Repayment data"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /repayments [post]
func (h *RepaymentHandler) Create(c *fiber.Ctx) error {
	var input services.CreateRepaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	repayment, err := h.repaymentService.Create(c.Context(), &input)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		return creditError(c, err)
	}

	return response.Created(c, "Repayment recorded successfully", fiber.Map{
		"repayment": repayment.ToResponse(),
	})
}

// List lists repayments
// @Summary List repayments
// @Description List all repayments with pagination
// @Tags Repayments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /repayments [get]
func (h *RepaymentHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.repaymentService.List(c.Context(), params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list repayments")
	}

	return response.Success(c, "Repayments retrieved successfully", result)
}

// GetByID gets a repayment by ID
// @Summary Get repayment by ID
// @Description Get a specific repayment record
// @Tags Repayments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Repayment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /repayments/{id} [get]
func (h *RepaymentHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid repayment ID")
	}

	repayment, err := h.repaymentService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRepaymentNotFound) {
			return response.NotFound(c, "Repayment not found")
		}
		return response.InternalServerError(c, "Failed to get repayment")
	}

	return response.Success(c, "Repayment retrieved successfully", fiber.Map{
		"repayment": repayment.ToResponse(),
	})
}

// Update updates a repayment
// @Summary Update repayment
// @Description Apply a partial update to a repayment record
// @Tags Repayments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Repayment ID"
// @Param body body services.UpdateRepaymentInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /repayments/{id} [put]
func (h *RepaymentHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid repayment ID")
	}

	var input services.UpdateRepaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	repayment, err := h.repaymentService.Update(c.Context(), id, &input)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		if errors.Is(err, services.ErrRepaymentNotFound) {
			return response.NotFound(c, "Repayment not found")
		}
		return response.InternalServerError(c, "Failed to update repayment")
	}

	return response.Success(c, "Repayment updated successfully", fiber.Map{
		"repayment": repayment.ToResponse(),
	})
}

// Delete deletes a repayment
// @Summary Delete repayment
// @Description Remove a repayment record
// @Tags Repayments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Repayment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /repayments/{id} [delete]
func (h *RepaymentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid repayment ID")
	}

	if err := h.repaymentService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrRepaymentNotFound) {
			return response.NotFound(c, "Repayment not found")
		}
		return response.InternalServerError(c, "Failed to delete repayment")
	}

	return response.Success(c, "Repayment deleted successfully", nil)
}

// GetByCredit lists repayments of a credit
// @Summary List repayments of a credit
// @Description List all repayments for one credit, optionally filtered by type
// @Tags Repayments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit ID"
// @Param type query string false "Filter by type (MENSUALITE, REMBOURSEMENT_ANTICIPE)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /credits/{id}/repayments [get]
func (h *RepaymentHandler) GetByCredit(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid credit ID")
	}

	var repayments []*models.Repayment
	if repaymentType := c.Query("type"); repaymentType != "" {
		repayments, err = h.repaymentService.GetByCreditIDAndType(c.Context(), id, domain.RepaymentType(repaymentType))
		if errors.Is(err, services.ErrUnknownRepaymentTy) {
			return response.BadRequest(c, "Invalid repayment type filter")
		}
	} else {
		repayments, err = h.repaymentService.GetByCreditID(c.Context(), id)
	}
	if err != nil {
		return creditError(c, err)
	}

	return response.Success(c, "Repayments retrieved successfully", repaymentResponses(repayments))
}

// RecordInstallment records a scheduled monthly installment
// @Summary Record installment
// @Description Record one monthly installment of the computed payment amount
// @Tags Repayments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit ID"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /credits/{id}/repayments/installment [post]
func (h *RepaymentHandler) RecordInstallment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid credit ID")
	}

	repayment, err := h.repaymentService.RecordInstallment(c.Context(), id, nil)
	if err != nil {
		return creditError(c, err)
	}

	return response.Created(c, "Installment recorded successfully", fiber.Map{
		"repayment": repayment.ToResponse(),
	})
}

// RecordEarlyRepayment records an early repayment
// @Summary Record early repayment
// @Description Record an early repayment and return the fresh balance snapshot
// @Tags Repayments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit ID"
// @Param body body services.EarlyRepaymentInput true "Early repayment data"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /credits/{id}/repayments/early [post]
func (h *RepaymentHandler) RecordEarlyRepayment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid credit ID")
	}

	var input services.EarlyRepaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	snapshot, err := h.repaymentService.RecordEarlyRepayment(c.Context(), id, &input)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		return creditError(c, err)
	}

	return response.Created(c, "Early repayment recorded successfully", snapshot)
}

// Balance returns the balance snapshot of a credit
// @Summary Credit balance
// @Description Derived financial position of a credit
// @Tags Repayments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /credits/{id}/balance [get]
func (h *RepaymentHandler) Balance(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid credit ID")
	}

	snapshot, err := h.repaymentService.Balance(c.Context(), id)
	if err != nil {
		return creditError(c, err)
	}

	return response.Success(c, "Balance computed successfully", snapshot)
}

// SearchByDate searches repayments by date range
// @Summary Search repayments by date
// @Description List repayments recorded within [from, to] (YYYY-MM-DD)
// @Tags Repayments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /repayments/search/date [get]
func (h *RepaymentHandler) SearchByDate(c *fiber.Ctx) error {
	from, err := parseDateQuery(c, "from")
	if err != nil {
		return response.BadRequest(c, "Invalid from date, use YYYY-MM-DD")
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return response.BadRequest(c, "Invalid to date, use YYYY-MM-DD")
	}

	repayments, err := h.repaymentService.SearchByDateRange(c.Context(), from, to)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		return response.InternalServerError(c, "Failed to search repayments")
	}

	return response.Success(c, "Repayments retrieved successfully", repaymentResponses(repayments))
}

// SearchByAmount searches repayments by amount range
// @Summary Search repayments by amount
// @Description List repayments with an amount within [min, max]
// @Tags Repayments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param min query number true "Minimum amount"
// @Param max query number true "Maximum amount"
// @Success 200 {object} response.Response
// @Router /repayments/search/amount [get]
func (h *RepaymentHandler) SearchByAmount(c *fiber.Ctx) error {
	min, err := strconv.ParseFloat(c.Query("min", "0"), 64)
	if err != nil {
		return response.BadRequest(c, "Invalid min amount")
	}
	max, err := strconv.ParseFloat(c.Query("max", "0"), 64)
	if err != nil {
		return response.BadRequest(c, "Invalid max amount")
	}

	repayments, err := h.repaymentService.SearchByAmountRange(c.Context(), min, max)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		return response.InternalServerError(c, "Failed to search repayments")
	}

	return response.Success(c, "Repayments retrieved successfully", repaymentResponses(repayments))
}
