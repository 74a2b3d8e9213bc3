package services

import (
	"context"
	"errors"
	"time"

	"creditdesk/internal/adapters/persistence/models"
	"creditdesk/internal/adapters/persistence/repositories"
	"creditdesk/internal/core/domain"
	"creditdesk/internal/pkg/money"
	"creditdesk/internal/pkg/pagination"

	"gorm.io/gorm"
)

// Repayment service errors
var (
	ErrRepaymentNotFound  = errors.New("repayment not found")
	ErrInvalidRepayment   = errors.New("invalid repayment")
	ErrUnknownRepaymentTy = errors.New("unknown repayment type")
)

// RepaymentService handles the repayment ledger and balance engine
type RepaymentService struct {
	repaymentRepo repositories.RepaymentRepository
	creditRepo    repositories.CreditRepository
}

// NewRepaymentService creates a new repayment service
func NewRepaymentService(
	repaymentRepo repositories.RepaymentRepository,
	creditRepo repositories.CreditRepository,
) *RepaymentService {
	return &RepaymentService{
		repaymentRepo: repaymentRepo,
		creditRepo:    creditRepo,
	}
}

// getCredit loads a credit, mapping record-not-found to the service error
func (s *RepaymentService) getCredit(ctx context.Context, creditID uint) (*models.Credit, error) {
	credit, err := s.creditRepo.GetByID(ctx, creditID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreditNotFound
		}
		return nil, err
	}
	return credit, nil
}

// CreateRepaymentInput represents a generic repayment record
type CreateRepaymentInput struct {
	CreditID *uint                `json:"credit_id" validate:"required"`
	Amount   *float64             `json:"amount" validate:"required,gt=0"`
	Type     domain.RepaymentType `json:"type" validate:"required"`
	Date     *time.Time           `json:"date,omitempty"`
}

// Create records a repayment against an existing credit
func (s *RepaymentService) Create(ctx context.Context, input *CreateRepaymentInput) (*models.Repayment, error) {
	var violations []string
	if input.CreditID == nil {
		violations = append(violations, "credit_id is required")
	}
	if input.Amount == nil {
		violations = append(violations, "amount is required")
	} else if *input.Amount <= 0 {
		violations = append(violations, "amount must be greater than 0")
	}
	if input.Type == "" {
		violations = append(violations, "type is required")
	} else if !input.Type.IsValid() {
		violations = append(violations, "unknown repayment type: "+string(input.Type))
	}
	if len(violations) > 0 {
		return nil, domain.NewValidationError(violations...)
	}

	if _, err := s.getCredit(ctx, *input.CreditID); err != nil {
		return nil, err
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	repayment := &models.Repayment{
		CreditID: *input.CreditID,
		Date:     date,
		Amount:   money.Round2(*input.Amount),
		Type:     input.Type,
	}

	if err := s.repaymentRepo.Create(ctx, repayment); err != nil {
		return nil, err
	}

	return repayment, nil
}

// GetByID gets a repayment by ID
func (s *RepaymentService) GetByID(ctx context.Context, id uint) (*models.Repayment, error) {
	repayment, err := s.repaymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRepaymentNotFound
		}
		return nil, err
	}
	return repayment, nil
}

// ListRepaymentsOutput represents list output
type ListRepaymentsOutput struct {
	Repayments []*models.Repayment `json:"repayments"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

// List lists repayments with pagination
func (s *RepaymentService) List(ctx context.Context, page, limit int) (*ListRepaymentsOutput, error) {
	p := pagination.Normalize(page, limit)

	repayments, total, err := s.repaymentRepo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	return &ListRepaymentsOutput{
		Repayments: repayments,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: pagination.PageCount(total, p.Limit),
	}, nil
}

// GetByCreditID lists all repayments of a credit, oldest first
func (s *RepaymentService) GetByCreditID(ctx context.Context, creditID uint) ([]*models.Repayment, error) {
	if _, err := s.getCredit(ctx, creditID); err != nil {
		return nil, err
	}
	return s.repaymentRepo.ListByCreditID(ctx, creditID)
}

// GetByCreditIDAndType lists repayments of one type for a credit
func (s *RepaymentService) GetByCreditIDAndType(ctx context.Context, creditID uint, repaymentType domain.RepaymentType) ([]*models.Repayment, error) {
	if !repaymentType.IsValid() {
		return nil, ErrUnknownRepaymentTy
	}
	if _, err := s.getCredit(ctx, creditID); err != nil {
		return nil, err
	}
	return s.repaymentRepo.ListByCreditIDAndType(ctx, creditID, repaymentType)
}

// SearchByDateRange lists repayments across all credits within a date range
func (s *RepaymentService) SearchByDateRange(ctx context.Context, from, to time.Time) ([]*models.Repayment, error) {
	if from.After(to) {
		return nil, domain.NewValidationError("from date cannot be after to date")
	}
	return s.repaymentRepo.SearchByDateRange(ctx, from, to)
}

// SearchByAmountRange lists repayments within an amount range
func (s *RepaymentService) SearchByAmountRange(ctx context.Context, min, max float64) ([]*models.Repayment, error) {
	if min > max {
		return nil, domain.NewValidationError("min amount cannot exceed max amount")
	}
	return s.repaymentRepo.SearchByAmountRange(ctx, min, max)
}

// UpdateRepaymentInput represents a partial repayment update
type UpdateRepaymentInput struct {
	Amount *float64              `json:"amount,omitempty"`
	Date   *time.Time            `json:"date,omitempty"`
	Type   *domain.RepaymentType `json:"type,omitempty"`
}

// Update applies a partial update to a repayment record
func (s *RepaymentService) Update(ctx context.Context, id uint, input *UpdateRepaymentInput) (*models.Repayment, error) {
	repayment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var violations []string
	if input.Amount != nil && *input.Amount <= 0 {
		violations = append(violations, "amount must be greater than 0")
	}
	if input.Type != nil && !input.Type.IsValid() {
		violations = append(violations, "unknown repayment type: "+string(*input.Type))
	}
	if len(violations) > 0 {
		return nil, domain.NewValidationError(violations...)
	}

	if input.Amount != nil {
		repayment.Amount = money.Round2(*input.Amount)
	}
	if input.Date != nil {
		repayment.Date = *input.Date
	}
	if input.Type != nil {
		repayment.Type = *input.Type
	}

	if err := s.repaymentRepo.Update(ctx, repayment); err != nil {
		return nil, err
	}

	return repayment, nil
}

// Delete removes a repayment record
func (s *RepaymentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repaymentRepo.Delete(ctx, id)
}

// RecordInstallment records one scheduled monthly installment. The amount
// is always the credit's computed monthly payment.
func (s *RepaymentService) RecordInstallment(ctx context.Context, creditID uint, date *time.Time) (*models.Repayment, error) {
	credit, err := s.getCredit(ctx, creditID)
	if err != nil {
		return nil, err
	}

	paymentDate := time.Now()
	if date != nil {
		paymentDate = *date
	}

	repayment := &models.Repayment{
		CreditID: creditID,
		Date:     paymentDate,
		Amount:   domain.MonthlyPayment(credit.Amount, credit.InterestRate, credit.TermMonths),
		Type:     domain.RepaymentInstallment,
	}

	if err := s.repaymentRepo.Create(ctx, repayment); err != nil {
		return nil, err
	}

	return repayment, nil
}

// EarlyRepaymentInput represents an early repayment request
type EarlyRepaymentInput struct {
	Amount *float64   `json:"amount" validate:"required,gt=0"`
	Date   *time.Time `json:"date,omitempty"`
}

// RecordEarlyRepayment records an early repayment of any positive amount,
// even beyond the remaining balance, and returns the fresh balance snapshot.
func (s *RepaymentService) RecordEarlyRepayment(ctx context.Context, creditID uint, input *EarlyRepaymentInput) (*BalanceSnapshot, error) {
	if _, err := s.getCredit(ctx, creditID); err != nil {
		return nil, err
	}
	if input == nil || input.Amount == nil || *input.Amount <= 0 {
		return nil, domain.NewValidationError("amount must be greater than 0")
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	repayment := &models.Repayment{
		CreditID: creditID,
		Date:     date,
		Amount:   money.Round2(*input.Amount),
		Type:     domain.RepaymentEarly,
	}

	if err := s.repaymentRepo.Create(ctx, repayment); err != nil {
		return nil, err
	}

	return s.Balance(ctx, creditID)
}

// BalanceSnapshot is the derived financial position of a credit.
// The total obligation is always computed from the credit's current terms;
// the remaining balance is floored at zero when overpaid.
type BalanceSnapshot struct {
	CreditID            uint    `json:"credit_id"`
	Principal           float64 `json:"principal"`
	MonthlyPayment      float64 `json:"monthly_payment"`
	TotalObligation     float64 `json:"total_obligation"`
	TotalInterest       float64 `json:"total_interest"`
	TotalRepaid         float64 `json:"total_repaid"`
	RemainingBalance    float64 `json:"remaining_balance"`
	InstallmentCount    int64   `json:"installment_count"`
	EarlyRepaymentCount int64   `json:"early_repayment_count"`
}

// Balance computes the balance snapshot for a credit. The credit only has
// to exist; the ledger does not care about its lifecycle state.
func (s *RepaymentService) Balance(ctx context.Context, creditID uint) (*BalanceSnapshot, error) {
	credit, err := s.getCredit(ctx, creditID)
	if err != nil {
		return nil, err
	}

	repaid, err := s.repaymentRepo.SumByCreditID(ctx, creditID)
	if err != nil {
		return nil, err
	}

	installments, err := s.repaymentRepo.CountByCreditIDAndType(ctx, creditID, domain.RepaymentInstallment)
	if err != nil {
		return nil, err
	}

	early, err := s.repaymentRepo.CountByCreditIDAndType(ctx, creditID, domain.RepaymentEarly)
	if err != nil {
		return nil, err
	}

	m := domain.MonthlyPayment(credit.Amount, credit.InterestRate, credit.TermMonths)
	obligation := domain.TotalObligation(credit.Amount, credit.InterestRate, credit.TermMonths)
	repaid = money.Round2(repaid)

	return &BalanceSnapshot{
		CreditID:            credit.ID,
		Principal:           credit.Amount,
		MonthlyPayment:      m,
		TotalObligation:     obligation,
		TotalInterest:       money.Round2(obligation - credit.Amount),
		TotalRepaid:         repaid,
		RemainingBalance:    money.FloorZero(money.Round2(obligation - repaid)),
		InstallmentCount:    installments,
		EarlyRepaymentCount: early,
	}, nil
}
