package handlers

import (
	"errors"
	"strconv"
	"time"

	"creditdesk/internal/adapters/persistence/models"
	"creditdesk/internal/core/domain"
	"creditdesk/internal/core/services"
	"creditdesk/internal/pkg/pagination"
	"creditdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CreditHandler handles credit endpoints
type CreditHandler struct {
	creditService *services.CreditService
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(creditService *services.CreditService) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
	}
}

// parseID parses the :id path param
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// parseDateQuery parses a YYYY-MM-DD query param
func parseDateQuery(c *fiber.Ctx, name string) (time.Time, error) {
	return time.Parse("2006-01-02", c.Query(name))
}

// Create creates a new credit application
// @Summary Create credit
// @Description Register a new credit application in EN_COURS state
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateCreditInput true "Credit data"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /credits [post]
func (h *CreditHandler) Create(c *fiber.Ctx) error {
	var input services.CreateCreditInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	credit, err := h.creditService.Create(c.Context(), &input)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		if errors.Is(err, services.ErrClientNotFound) {
			return response.NotFound(c, "Client not found")
		}
		return response.InternalServerError(c, "Failed to create credit")
	}

	return response.Created(c, "Credit created successfully", fiber.Map{
		"credit": credit.ToResponse(),
	})
}

// List lists credits
// @Summary List credits
// @Description List all credits, optionally filtered by status or type
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param status query string false "Filter by status (EN_COURS, ACCEPTE, REJETE)"
// @Param type query string false "Filter by type (PERSONNEL, IMMOBILIER, PROFESSIONNEL)"
// @Success 200 {object} response.Response
// @Router /credits [get]
func (h *CreditHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	input := &services.ListCreditsInput{
		Page:  params.Page,
		Limit: params.Limit,
	}

	if status := c.Query("status"); status != "" {
		s := domain.CreditStatus(status)
		if !s.IsValid() {
			return response.BadRequest(c, "Invalid status filter")
		}
		input.Status = &s
	}

	if creditType := c.Query("type"); creditType != "" {
		t := domain.CreditType(creditType)
		if !t.IsValid() {
			return response.BadRequest(c, "Invalid type filter")
		}
		input.Type = &t
	}

	result, err := h.creditService.List(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to list credits")
	}

	return response.Success(c, "Credits retrieved successfully", result)
}

// GetByID gets a credit by ID
// @Summary Get credit by ID
// @Description Get a specific credit with its client and repayments
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /credits/{id} [get]
func (h *CreditHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid credit ID")
	}

	credit, err := h.creditService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCreditNotFound) {
			return response.NotFound(c, "Credit not found")
		}
		return response.InternalServerError(c, "Failed to get credit")
	}

	return response.Success(c, "Credit retrieved successfully", fiber.Map{
		"credit": credit.ToResponse(),
	})
}

// Update updates a pending credit
// @Summary Update credit
// @Description Apply a partial update to a pending (EN_COURS) credit
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit ID"
// @Param body body services.UpdateCreditInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /credits/{id} [put]
func (h *CreditHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid credit ID")
	}

	var input services.UpdateCreditInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	credit, err := h.creditService.Update(c.Context(), id, &input)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		switch {
		case errors.Is(err, services.ErrCreditNotFound):
			return response.NotFound(c, "Credit not found")
		case errors.Is(err, services.ErrCreditNotPending):
			return response.Conflict(c, "Only pending credits can be updated")
		default:
			return response.InternalServerError(c, "Failed to update credit")
		}
	}

	return response.Success(c, "Credit updated successfully", fiber.Map{
		"credit": credit.ToResponse(),
	})
}

// Delete deletes a credit
// @Summary Delete credit
// @Description Delete a credit that is not accepted and has no repayments
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /credits/{id} [delete]
func (h *CreditHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid credit ID")
	}

	if err := h.creditService.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrCreditNotFound):
			return response.NotFound(c, "Credit not found")
		case errors.Is(err, services.ErrCreditAccepted):
			return response.Conflict(c, "Accepted credits cannot be deleted")
		case errors.Is(err, services.ErrCreditHasRepayments):
			return response.Conflict(c, "Credits with repayments cannot be deleted")
		default:
			return response.InternalServerError(c, "Failed to delete credit")
		}
	}

	return response.Success(c, "Credit deleted successfully", nil)
}

// Approve approves a pending credit
// @Summary Approve credit
// @Description Move a pending credit to ACCEPTE and stamp the acceptance date
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit ID"
// @Param body body services.ApproveCreditInput false "Approval data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /credits/{id}/approve [put]
func (h *CreditHandler) Approve(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid credit ID")
	}

	var input services.ApproveCreditInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	credit, err := h.creditService.Approve(c.Context(), id, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCreditNotFound):
			return response.NotFound(c, "Credit not found")
		case errors.Is(err, services.ErrCreditNotPending):
			return response.Conflict(c, "Credit has already been decided")
		case errors.Is(err, services.ErrApprovalBeforeRequest):
			return response.BadRequest(c, "Approval date cannot precede request date")
		default:
			return response.InternalServerError(c, "Failed to approve credit")
		}
	}

	return response.Success(c, "Credit approved successfully", fiber.Map{
		"credit": credit.ToResponse(),
	})
}

// Reject rejects a pending credit
// @Summary Reject credit
// @Description Move a pending credit to REJETE and persist the reason
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit ID"
// @Param body body services.RejectCreditInput true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /credits/{id}/reject [put]
func (h *CreditHandler) Reject(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid credit ID")
	}

	var input services.RejectCreditInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	credit, err := h.creditService.Reject(c.Context(), id, &input)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		switch {
		case errors.Is(err, services.ErrCreditNotFound):
			return response.NotFound(c, "Credit not found")
		case errors.Is(err, services.ErrCreditNotPending):
			return response.Conflict(c, "Credit has already been decided")
		default:
			return response.InternalServerError(c, "Failed to reject credit")
		}
	}

	return response.Success(c, "Credit rejected successfully", fiber.Map{
		"credit": credit.ToResponse(),
	})
}

// Quote computes the monthly payment for a credit
// @Summary Credit payment quote
// @Description Monthly payment, total payment and total interest at current terms
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /credits/{id}/quote [get]
func (h *CreditHandler) Quote(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid credit ID")
	}

	quote, err := h.creditService.Quote(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCreditNotFound) {
			return response.NotFound(c, "Credit not found")
		}
		return response.InternalServerError(c, "Failed to compute quote")
	}

	return response.Success(c, "Quote computed successfully", quote)
}

// Schedule builds the amortization schedule for a credit
// @Summary Credit payment schedule
// @Description Full amortization schedule at the credit's current terms
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /credits/{id}/schedule [get]
func (h *CreditHandler) Schedule(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid credit ID")
	}

	schedule, err := h.creditService.PaymentSchedule(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCreditNotFound) {
			return response.NotFound(c, "Credit not found")
		}
		return response.InternalServerError(c, "Failed to build schedule")
	}

	return response.Success(c, "Schedule built successfully", fiber.Map{
		"schedule": schedule,
	})
}

// Simulate computes a quote for arbitrary terms
// @Summary Simulate credit
// @Description Compute a payment quote without creating a credit
// @Tags Credits
// @Accept json
// @Produce json
// @Param body body services.SimulateInput true "Simulation terms"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /credits/simulate [post]
func (h *CreditHandler) Simulate(c *fiber.Ctx) error {
	var input services.SimulateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	quote, err := h.creditService.Simulate(&input)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		return response.InternalServerError(c, "Failed to simulate credit")
	}

	return response.Success(c, "Simulation computed successfully", quote)
}

// Validate runs the soft application check
// @Summary Validate credit application
// @Description Run the full rule set (common, caps, eligibility) without rejecting
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateCreditInput true "Application data"
// @Success 200 {object} response.Response
// @Router /credits/validate [post]
func (h *CreditHandler) Validate(c *fiber.Ctx) error {
	var input services.CreateCreditInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	check, err := h.creditService.ValidateApplication(c.Context(), &input)
	if err != nil {
		return response.InternalServerError(c, "Failed to validate application")
	}

	return response.Success(c, "Application validated", check)
}

// SearchByAmount searches credits by amount range
// @Summary Search credits by amount
// @Description List credits with an amount within [min, max]
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param min query number true "Minimum amount"
// @Param max query number true "Maximum amount"
// @Success 200 {object} response.Response
// @Router /credits/search/amount [get]
func (h *CreditHandler) SearchByAmount(c *fiber.Ctx) error {
	min, err := strconv.ParseFloat(c.Query("min", "0"), 64)
	if err != nil {
		return response.BadRequest(c, "Invalid min amount")
	}
	max, err := strconv.ParseFloat(c.Query("max", "0"), 64)
	if err != nil {
		return response.BadRequest(c, "Invalid max amount")
	}

	credits, err := h.creditService.SearchByAmountRange(c.Context(), min, max)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		return response.InternalServerError(c, "Failed to search credits")
	}

	return response.Success(c, "Credits retrieved successfully", creditResponses(credits))
}

// SearchByDate searches credits by request date range
// @Summary Search credits by date
// @Description List credits requested within [from, to] (YYYY-MM-DD)
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /credits/search/date [get]
func (h *CreditHandler) SearchByDate(c *fiber.Ctx) error {
	from, err := parseDateQuery(c, "from")
	if err != nil {
		return response.BadRequest(c, "Invalid from date, use YYYY-MM-DD")
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return response.BadRequest(c, "Invalid to date, use YYYY-MM-DD")
	}

	credits, err := h.creditService.SearchByDateRange(c.Context(), from, to)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		return response.InternalServerError(c, "Failed to search credits")
	}

	return response.Success(c, "Credits retrieved successfully", creditResponses(credits))
}

// creditResponses converts credits to their response DTOs
func creditResponses(credits []*models.Credit) []interface{} {
	result := make([]interface{}, 0, len(credits))
	for _, credit := range credits {
		result = append(result, credit.ToResponse())
	}
	return result
}
