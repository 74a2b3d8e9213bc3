package handlers

import (
	"errors"
	"strconv"

	"creditdesk/internal/core/domain"
	"creditdesk/internal/core/services"
	"creditdesk/internal/pkg/pagination"
	"creditdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ClientHandler handles client endpoints
type ClientHandler struct {
	clientService *services.ClientService
	creditService *services.CreditService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *services.ClientService, creditService *services.CreditService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		creditService: creditService,
	}
}

// Create creates a new client
// @Summary Create client
// @Description Register a new bank client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateClientInput true "Client data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /clients [post]
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var input services.CreateClientInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	client, err := h.clientService.Create(c.Context(), &input)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		if errors.Is(err, services.ErrClientEmailTaken) {
			return response.Conflict(c, "Email already in use")
		}
		return response.InternalServerError(c, "Failed to create client")
	}

	return response.Created(c, "Client created successfully", fiber.Map{
		"client": client.ToResponse(),
	})
}

// List lists clients
// @Summary List clients
// @Description List all clients with pagination
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /clients [get]
func (h *ClientHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.clientService.List(c.Context(), params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list clients")
	}

	return response.Success(c, "Clients retrieved successfully", result)
}

// Search searches clients by name or email
// @Summary Search clients
// @Description Find clients by name or email fragment
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search query"
// @Param limit query int false "Max results" default(20)
// @Success 200 {object} response.Response
// @Router /clients/search [get]
func (h *ClientHandler) Search(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	clients, err := h.clientService.Search(c.Context(), c.Query("q"), limit)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		return response.InternalServerError(c, "Failed to search clients")
	}

	result := make([]interface{}, 0, len(clients))
	for _, client := range clients {
		result = append(result, client.ToResponse())
	}

	return response.Success(c, "Clients retrieved successfully", result)
}

// GetByID gets a client by ID
// @Summary Get client by ID
// @Description Get a specific client with their credits
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid client ID")
	}

	client, err := h.clientService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			return response.NotFound(c, "Client not found")
		}
		return response.InternalServerError(c, "Failed to get client")
	}

	return response.Success(c, "Client retrieved successfully", fiber.Map{
		"client": client,
	})
}

// GetCredits lists a client's credits
// @Summary Get client credits
// @Description List all credits belonging to a client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /clients/{id}/credits [get]
func (h *ClientHandler) GetCredits(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid client ID")
	}

	credits, err := h.creditService.GetByClientID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			return response.NotFound(c, "Client not found")
		}
		return response.InternalServerError(c, "Failed to get credits")
	}

	return response.Success(c, "Credits retrieved successfully", creditResponses(credits))
}

// Eligibility checks a client's eligibility for a new credit
// @Summary Check client eligibility
// @Description Check the active-credit cap for a client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /clients/{id}/eligibility [get]
func (h *ClientHandler) Eligibility(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid client ID")
	}

	result, err := h.creditService.Eligibility(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			return response.NotFound(c, "Client not found")
		}
		return response.InternalServerError(c, "Failed to check eligibility")
	}

	return response.Success(c, "Eligibility checked successfully", result)
}

// Update updates a client
// @Summary Update client
// @Description Apply a partial update to a client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Param body body services.UpdateClientInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid client ID")
	}

	var input services.UpdateClientInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	client, err := h.clientService.Update(c.Context(), id, &input)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Violations)
		}
		switch {
		case errors.Is(err, services.ErrClientNotFound):
			return response.NotFound(c, "Client not found")
		case errors.Is(err, services.ErrClientEmailTaken):
			return response.Conflict(c, "Email already in use")
		default:
			return response.InternalServerError(c, "Failed to update client")
		}
	}

	return response.Success(c, "Client updated successfully", fiber.Map{
		"client": client.ToResponse(),
	})
}

// Delete deletes a client
// @Summary Delete client
// @Description Remove a client without pending or accepted credits
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid client ID")
	}

	if err := h.clientService.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrClientNotFound):
			return response.NotFound(c, "Client not found")
		case errors.Is(err, services.ErrClientHasCredits):
			return response.Conflict(c, "Client has active credits")
		default:
			return response.InternalServerError(c, "Failed to delete client")
		}
	}

	return response.Success(c, "Client deleted successfully", nil)
}
