package services

import (
	"context"
	"errors"

	"creditdesk/internal/adapters/persistence/models"
	"creditdesk/internal/adapters/persistence/repositories"
	"creditdesk/internal/core/domain"
	"creditdesk/internal/pkg/pagination"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Client service errors
var (
	ErrClientEmailTaken = errors.New("client email already in use")
	ErrClientHasCredits = errors.New("client has active credits")
)

// ClientService handles client management
type ClientService struct {
	clientRepo repositories.ClientRepository
	creditRepo repositories.CreditRepository
	validate   *validator.Validate
}

// NewClientService creates a new client service
func NewClientService(
	clientRepo repositories.ClientRepository,
	creditRepo repositories.CreditRepository,
) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		creditRepo: creditRepo,
		validate:   validator.New(),
	}
}

// CreateClientInput represents create client input
type CreateClientInput struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, input *CreateClientInput) (*models.Client, error) {
	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			var violations []string
			for _, fe := range fieldErrs {
				violations = append(violations, clientFieldMessage(fe))
			}
			return nil, domain.NewValidationError(violations...)
		}
		return nil, err
	}

	taken, err := s.clientRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrClientEmailTaken
	}

	client := &models.Client{
		Name:  input.Name,
		Email: input.Email,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// clientFieldMessage converts a validator field error to a readable message
func clientFieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " is too short"
	case "max":
		return fe.Field() + " is too long"
	default:
		return fe.Field() + " is invalid"
	}
}

// GetByID gets a client by ID with credits
func (s *ClientService) GetByID(ctx context.Context, id uint) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

// ListClientsOutput represents list output
type ListClientsOutput struct {
	Clients    []*models.Client `json:"clients"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// List lists clients with pagination
func (s *ClientService) List(ctx context.Context, page, limit int) (*ListClientsOutput, error) {
	p := pagination.Normalize(page, limit)

	clients, total, err := s.clientRepo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	return &ListClientsOutput{
		Clients:    clients,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: pagination.PageCount(total, p.Limit),
	}, nil
}

// Search finds clients by name or email fragment
func (s *ClientService) Search(ctx context.Context, query string, limit int) ([]*models.Client, error) {
	if query == "" {
		return nil, domain.NewValidationError("search query is required")
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return s.clientRepo.Search(ctx, query, limit)
}

// UpdateClientInput represents a partial client update
type UpdateClientInput struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

// Update applies a partial update to a client
func (s *ClientService) Update(ctx context.Context, id uint, input *UpdateClientInput) (*models.Client, error) {
	client, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			var violations []string
			for _, fe := range fieldErrs {
				violations = append(violations, clientFieldMessage(fe))
			}
			return nil, domain.NewValidationError(violations...)
		}
		return nil, err
	}

	if input.Email != nil && *input.Email != client.Email {
		taken, err := s.clientRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrClientEmailTaken
		}
		client.Email = *input.Email
	}
	if input.Name != nil {
		client.Name = *input.Name
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// Delete removes a client. Clients holding pending or accepted credits
// cannot be deleted.
func (s *ClientService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	active, err := s.creditRepo.CountActiveByClientID(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrClientHasCredits
	}

	return s.clientRepo.Delete(ctx, id)
}
