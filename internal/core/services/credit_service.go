package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"creditdesk/internal/adapters/persistence/models"
	"creditdesk/internal/adapters/persistence/repositories"
	"creditdesk/internal/core/domain"
	"creditdesk/internal/pkg/money"
	"creditdesk/internal/pkg/pagination"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Credit service errors
var (
	ErrCreditNotFound        = errors.New("credit not found")
	ErrClientNotFound        = errors.New("client not found")
	ErrCreditNotPending      = errors.New("credit is not pending decision")
	ErrCreditAccepted        = errors.New("accepted credits cannot be deleted")
	ErrCreditHasRepayments   = errors.New("credit has recorded repayments")
	ErrApprovalBeforeRequest = errors.New("approval date cannot precede request date")
)

// CreditService handles credit lifecycle business logic
type CreditService struct {
	creditRepo    repositories.CreditRepository
	clientRepo    repositories.ClientRepository
	repaymentRepo repositories.RepaymentRepository
	validate      *validator.Validate
}

// NewCreditService creates a new credit service
func NewCreditService(
	creditRepo repositories.CreditRepository,
	clientRepo repositories.ClientRepository,
	repaymentRepo repositories.RepaymentRepository,
) *CreditService {
	return &CreditService{
		creditRepo:    creditRepo,
		clientRepo:    clientRepo,
		repaymentRepo: repaymentRepo,
		validate:      validator.New(),
	}
}

// CreateCreditInput represents create credit input. Pointer fields
// distinguish a missing value from a zero one.
type CreateCreditInput struct {
	ClientID     *uint                `json:"client_id" validate:"required"`
	Type         domain.CreditType    `json:"type" validate:"required"`
	Amount       *float64             `json:"amount" validate:"required,gt=0"`
	TermMonths   *int                 `json:"term_months" validate:"required,gt=0"`
	InterestRate *float64             `json:"interest_rate" validate:"required,gte=0"`
	RequestDate  *time.Time           `json:"request_date,omitempty"`
	Motif        string               `json:"motif,omitempty"`
	PropertyType *domain.PropertyType `json:"property_type,omitempty"`
	CompanyName  string               `json:"company_name,omitempty"`
}

// commonViolations collects every violation of the base rules shared by all
// credit variants. It never stops at the first failure.
func (s *CreditService) commonViolations(input *CreateCreditInput) []string {
	var violations []string

	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				violations = append(violations, creditFieldMessage(fe))
			}
		}
	}

	if input.Type != "" && !input.Type.IsValid() {
		violations = append(violations, fmt.Sprintf("unknown credit type: %s", input.Type))
	}
	if input.PropertyType != nil && !input.PropertyType.IsValid() {
		violations = append(violations, fmt.Sprintf("unknown property type: %s", *input.PropertyType))
	}

	return violations
}

// creditFieldMessage converts a validator field error to a readable message
func creditFieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// variantViolations checks the per-type rules: each variant's mandatory
// fields plus its amount and term caps. These are advisory: they feed the
// soft application check, never the create path.
func variantViolations(input *CreateCreditInput) []string {
	var violations []string

	switch input.Type {
	case domain.CreditTypePersonal:
		if strings.TrimSpace(input.Motif) == "" {
			violations = append(violations, "personal credit must have a reason")
		}
	case domain.CreditTypeRealEstate:
		if input.PropertyType == nil {
			violations = append(violations, "real estate credit must specify property type")
		}
	case domain.CreditTypeBusiness:
		if strings.TrimSpace(input.Motif) == "" {
			violations = append(violations, "business credit must have a reason")
		}
		if strings.TrimSpace(input.CompanyName) == "" {
			violations = append(violations, "business credit must specify company name")
		}
	}

	if input.Amount == nil || input.TermMonths == nil {
		return violations
	}
	amount := *input.Amount
	term := *input.TermMonths

	switch input.Type {
	case domain.CreditTypePersonal:
		if amount > domain.PersonalAmountCap {
			violations = append(violations, fmt.Sprintf("personal credit amount cannot exceed %d", domain.PersonalAmountCap))
		}
		if term > domain.PersonalTermCapM {
			violations = append(violations, fmt.Sprintf("personal credit term cannot exceed %d months", domain.PersonalTermCapM))
		}
	case domain.CreditTypeRealEstate:
		if amount > domain.RealEstateAmountCap {
			violations = append(violations, fmt.Sprintf("real estate credit amount cannot exceed %d", domain.RealEstateAmountCap))
		}
		if term > domain.RealEstateTermCapM {
			violations = append(violations, fmt.Sprintf("real estate credit term cannot exceed %d months", domain.RealEstateTermCapM))
		}
	case domain.CreditTypeBusiness:
		if amount > domain.BusinessAmountCap {
			violations = append(violations, fmt.Sprintf("business credit amount cannot exceed %d", domain.BusinessAmountCap))
		}
		if term > domain.BusinessTermCapM {
			violations = append(violations, fmt.Sprintf("business credit term cannot exceed %d months", domain.BusinessTermCapM))
		}
	}

	return violations
}

// Create registers a new credit application in EN_COURS state.
// Only the common rules are enforced here; the per-type caps stay advisory
// and are reported through ValidateApplication instead.
func (s *CreditService) Create(ctx context.Context, input *CreateCreditInput) (*models.Credit, error) {
	if violations := s.commonViolations(input); len(violations) > 0 {
		return nil, domain.NewValidationError(violations...)
	}

	exists, err := s.clientRepo.Exists(ctx, *input.ClientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrClientNotFound
	}

	requestDate := time.Now()
	if input.RequestDate != nil {
		requestDate = *input.RequestDate
	}

	credit := &models.Credit{
		Type:         input.Type,
		Status:       domain.StatusInProgress,
		RequestDate:  requestDate,
		Amount:       *input.Amount,
		TermMonths:   *input.TermMonths,
		InterestRate: *input.InterestRate,
		Motif:        input.Motif,
		PropertyType: input.PropertyType,
		CompanyName:  input.CompanyName,
		ClientID:     *input.ClientID,
	}

	if err := s.creditRepo.Create(ctx, credit); err != nil {
		return nil, err
	}

	return credit, nil
}

// GetByID gets a credit by ID
func (s *CreditService) GetByID(ctx context.Context, id uint) (*models.Credit, error) {
	credit, err := s.creditRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreditNotFound
		}
		return nil, err
	}
	return credit, nil
}

// ListCreditsInput represents list input
type ListCreditsInput struct {
	Page   int
	Limit  int
	Status *domain.CreditStatus
	Type   *domain.CreditType
}

// ListCreditsOutput represents list output
type ListCreditsOutput struct {
	Credits    []*models.Credit `json:"credits"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// List lists credits, optionally filtered by status or type
func (s *CreditService) List(ctx context.Context, input *ListCreditsInput) (*ListCreditsOutput, error) {
	p := pagination.Normalize(input.Page, input.Limit)

	var credits []*models.Credit
	var total int64
	var err error

	if input.Status != nil {
		credits, total, err = s.creditRepo.ListByStatus(ctx, *input.Status, p.Offset, p.Limit)
	} else if input.Type != nil {
		credits, total, err = s.creditRepo.ListByType(ctx, *input.Type, p.Offset, p.Limit)
	} else {
		credits, total, err = s.creditRepo.List(ctx, p.Offset, p.Limit)
	}

	if err != nil {
		return nil, err
	}

	return &ListCreditsOutput{
		Credits:    credits,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: pagination.PageCount(total, p.Limit),
	}, nil
}

// GetByClientID lists all credits of one client
func (s *CreditService) GetByClientID(ctx context.Context, clientID uint) ([]*models.Credit, error) {
	exists, err := s.clientRepo.Exists(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrClientNotFound
	}
	return s.creditRepo.ListByClientID(ctx, clientID)
}

// SearchByAmountRange lists credits within an amount range
func (s *CreditService) SearchByAmountRange(ctx context.Context, min, max float64) ([]*models.Credit, error) {
	if min > max {
		return nil, domain.NewValidationError("min amount cannot exceed max amount")
	}
	return s.creditRepo.SearchByAmountRange(ctx, min, max)
}

// SearchByDateRange lists credits requested within a date range
func (s *CreditService) SearchByDateRange(ctx context.Context, from, to time.Time) ([]*models.Credit, error) {
	if from.After(to) {
		return nil, domain.NewValidationError("from date cannot be after to date")
	}
	return s.creditRepo.SearchByDateRange(ctx, from, to)
}

// UpdateCreditInput represents a partial update. Only supplied fields change.
type UpdateCreditInput struct {
	Amount       *float64             `json:"amount,omitempty"`
	TermMonths   *int                 `json:"term_months,omitempty"`
	InterestRate *float64             `json:"interest_rate,omitempty"`
	Motif        *string              `json:"motif,omitempty"`
	PropertyType *domain.PropertyType `json:"property_type,omitempty"`
	CompanyName  *string              `json:"company_name,omitempty"`
}

// Update applies a partial update to a pending credit
func (s *CreditService) Update(ctx context.Context, id uint, input *UpdateCreditInput) (*models.Credit, error) {
	credit, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if credit.Status != domain.StatusInProgress {
		return nil, ErrCreditNotPending
	}

	var violations []string
	if input.Amount != nil && *input.Amount <= 0 {
		violations = append(violations, "amount must be greater than 0")
	}
	if input.TermMonths != nil && *input.TermMonths <= 0 {
		violations = append(violations, "term_months must be greater than 0")
	}
	if input.InterestRate != nil && *input.InterestRate < 0 {
		violations = append(violations, "interest_rate must be at least 0")
	}
	if input.PropertyType != nil && !input.PropertyType.IsValid() {
		violations = append(violations, fmt.Sprintf("unknown property type: %s", *input.PropertyType))
	}
	if len(violations) > 0 {
		return nil, domain.NewValidationError(violations...)
	}

	if input.Amount != nil {
		credit.Amount = *input.Amount
	}
	if input.TermMonths != nil {
		credit.TermMonths = *input.TermMonths
	}
	if input.InterestRate != nil {
		credit.InterestRate = *input.InterestRate
	}
	if input.Motif != nil {
		credit.Motif = *input.Motif
	}
	if input.PropertyType != nil {
		credit.PropertyType = input.PropertyType
	}
	if input.CompanyName != nil {
		credit.CompanyName = *input.CompanyName
	}

	if err := s.creditRepo.Update(ctx, credit); err != nil {
		return nil, err
	}

	return credit, nil
}

// Delete removes a credit. Accepted credits and credits with recorded
// repayments cannot be deleted.
func (s *CreditService) Delete(ctx context.Context, id uint) error {
	credit, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if credit.Status == domain.StatusAccepted {
		return ErrCreditAccepted
	}

	count, err := s.repaymentRepo.CountByCreditID(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCreditHasRepayments
	}

	return s.creditRepo.Delete(ctx, id)
}

// ApproveCreditInput represents approve input
type ApproveCreditInput struct {
	ApprovalDate *time.Time `json:"approval_date,omitempty"`
}

// Approve moves a pending credit to ACCEPTE and stamps the acceptance date
func (s *CreditService) Approve(ctx context.Context, id uint, input *ApproveCreditInput) (*models.Credit, error) {
	credit, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if credit.Status != domain.StatusInProgress {
		return nil, ErrCreditNotPending
	}

	approvalDate := time.Now()
	if input != nil && input.ApprovalDate != nil {
		approvalDate = *input.ApprovalDate
	}
	if approvalDate.Before(credit.RequestDate) {
		return nil, ErrApprovalBeforeRequest
	}

	credit.Status = domain.StatusAccepted
	credit.AcceptanceDate = &approvalDate

	if err := s.creditRepo.Update(ctx, credit); err != nil {
		return nil, err
	}

	return credit, nil
}

// RejectCreditInput represents reject input
type RejectCreditInput struct {
	Reason string `json:"reason" validate:"required"`
}

// Reject moves a pending credit to REJETE and persists the reason
func (s *CreditService) Reject(ctx context.Context, id uint, input *RejectCreditInput) (*models.Credit, error) {
	if input == nil || input.Reason == "" {
		return nil, domain.NewValidationError("reason is required")
	}

	credit, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if credit.Status != domain.StatusInProgress {
		return nil, ErrCreditNotPending
	}

	credit.Status = domain.StatusRejected
	credit.RejectionReason = input.Reason
	credit.AcceptanceDate = nil

	if err := s.creditRepo.Update(ctx, credit); err != nil {
		return nil, err
	}

	return credit, nil
}

// PaymentQuote summarizes the cost of a credit at its current terms
type PaymentQuote struct {
	CreditID       uint    `json:"credit_id,omitempty"`
	Amount         float64 `json:"amount"`
	TermMonths     int     `json:"term_months"`
	InterestRate   float64 `json:"interest_rate"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
}

func buildQuote(amount float64, termMonths int, rate float64) *PaymentQuote {
	m := domain.MonthlyPayment(amount, rate, termMonths)
	total := domain.TotalObligation(amount, rate, termMonths)
	return &PaymentQuote{
		Amount:         amount,
		TermMonths:     termMonths,
		InterestRate:   rate,
		MonthlyPayment: m,
		TotalPayment:   total,
		TotalInterest:  money.Round2(total - amount),
	}
}

// Quote computes the monthly payment, total payment and total interest for
// an existing credit at its current terms
func (s *CreditService) Quote(ctx context.Context, id uint) (*PaymentQuote, error) {
	credit, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	quote := buildQuote(credit.Amount, credit.TermMonths, credit.InterestRate)
	quote.CreditID = credit.ID
	return quote, nil
}

// SimulateInput represents a standalone quote request
type SimulateInput struct {
	Amount       *float64 `json:"amount" validate:"required,gt=0"`
	TermMonths   *int     `json:"term_months" validate:"required,gt=0"`
	InterestRate *float64 `json:"interest_rate" validate:"required,gte=0"`
}

// Simulate computes a quote for arbitrary terms without touching storage
func (s *CreditService) Simulate(input *SimulateInput) (*PaymentQuote, error) {
	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			var violations []string
			for _, fe := range fieldErrs {
				violations = append(violations, creditFieldMessage(fe))
			}
			return nil, domain.NewValidationError(violations...)
		}
		return nil, err
	}

	return buildQuote(*input.Amount, *input.TermMonths, *input.InterestRate), nil
}

// PaymentSchedule builds the full amortization schedule for a credit.
// The schedule starts at the acceptance date when set, otherwise now.
func (s *CreditService) PaymentSchedule(ctx context.Context, id uint) ([]domain.ScheduleEntry, error) {
	credit, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if credit.AcceptanceDate != nil {
		start = *credit.AcceptanceDate
	}

	return domain.BuildSchedule(credit.Amount, credit.InterestRate, credit.TermMonths, start), nil
}

// ApplicationCheck is the soft validation result: the full rule set is
// evaluated and reported without rejecting anything
type ApplicationCheck struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// ValidateApplication runs the common rules, the per-type caps and the
// client eligibility rule, collecting every violation. It never fails the
// application; callers decide what to do with the result.
func (s *CreditService) ValidateApplication(ctx context.Context, input *CreateCreditInput) (*ApplicationCheck, error) {
	violations := s.commonViolations(input)
	violations = append(violations, variantViolations(input)...)

	if input.ClientID != nil {
		exists, err := s.clientRepo.Exists(ctx, *input.ClientID)
		if err != nil {
			return nil, err
		}
		if !exists {
			violations = append(violations, fmt.Sprintf("client %d does not exist", *input.ClientID))
		} else {
			active, err := s.creditRepo.CountActiveByClientID(ctx, *input.ClientID)
			if err != nil {
				return nil, err
			}
			if active >= domain.MaxActiveCredits {
				violations = append(violations, fmt.Sprintf("client already has %d active credits (limit %d)", active, domain.MaxActiveCredits))
			}
		}
	}

	check := &ApplicationCheck{
		IsValid: len(violations) == 0,
		Errors:  violations,
	}
	if check.Errors == nil {
		check.Errors = []string{}
	}
	return check, nil
}

// EligibilityResult reports whether a client may apply for another credit
type EligibilityResult struct {
	ClientID      uint   `json:"client_id"`
	Eligible      bool   `json:"eligible"`
	ActiveCredits int64  `json:"active_credits"`
	Reason        string `json:"reason,omitempty"`
}

// Eligibility checks the active-credit cap for a client
func (s *CreditService) Eligibility(ctx context.Context, clientID uint) (*EligibilityResult, error) {
	exists, err := s.clientRepo.Exists(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrClientNotFound
	}

	active, err := s.creditRepo.CountActiveByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	result := &EligibilityResult{
		ClientID:      clientID,
		Eligible:      active < domain.MaxActiveCredits,
		ActiveCredits: active,
	}
	if !result.Eligible {
		result.Reason = fmt.Sprintf("client already has %d active credits (limit %d)", active, domain.MaxActiveCredits)
	}
	return result, nil
}
