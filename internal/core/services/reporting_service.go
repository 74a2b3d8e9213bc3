package services

import (
	"context"
	"time"

	"creditdesk/internal/adapters/persistence/repositories"
	"creditdesk/internal/core/domain"
	"creditdesk/internal/pkg/money"
)

// ReportingService builds portfolio-level reports and statistics
type ReportingService struct {
	creditRepo    repositories.CreditRepository
	clientRepo    repositories.ClientRepository
	repaymentRepo repositories.RepaymentRepository
}

// NewReportingService creates a new reporting service
func NewReportingService(
	creditRepo repositories.CreditRepository,
	clientRepo repositories.ClientRepository,
	repaymentRepo repositories.RepaymentRepository,
) *ReportingService {
	return &ReportingService{
		creditRepo:    creditRepo,
		clientRepo:    clientRepo,
		repaymentRepo: repaymentRepo,
	}
}

// DelinquentCredit is one flagged credit in the delinquency report
type DelinquentCredit struct {
	CreditID         uint              `json:"credit_id"`
	CreditType       domain.CreditType `json:"credit_type"`
	Amount           float64           `json:"amount"`
	RequestDate      time.Time         `json:"request_date"`
	AcceptanceDate   *time.Time        `json:"acceptance_date"`
	ClientID         uint              `json:"client_id"`
	ClientName       string            `json:"client_name,omitempty"`
	ClientEmail      string            `json:"client_email,omitempty"`
	ExpectedPayments int               `json:"expected_payments"`
	ActualPayments   int               `json:"actual_payments"`
	MissedPayments   int               `json:"missed_payments"`
	LastPaymentDate  *time.Time        `json:"last_payment_date"`
}

// DelinquentCredits scans accepted credits and flags those whose recorded
// installment count lags the number of whole months elapsed since
// acceptance. Only counts matter; installment amounts are not inspected.
func (s *ReportingService) DelinquentCredits(ctx context.Context, asOf time.Time) ([]*DelinquentCredit, error) {
	credits, err := s.creditRepo.ListAccepted(ctx)
	if err != nil {
		return nil, err
	}

	report := make([]*DelinquentCredit, 0)

	for _, credit := range credits {
		if credit.AcceptanceDate == nil {
			continue
		}

		expected := domain.WholeMonthsBetween(*credit.AcceptanceDate, asOf)
		if expected > credit.TermMonths {
			expected = credit.TermMonths
		}
		if expected == 0 {
			continue
		}

		actual := 0
		var lastPayment *time.Time
		for i := range credit.Repayments {
			rp := &credit.Repayments[i]
			if rp.Type == domain.RepaymentInstallment {
				actual++
			}
			if lastPayment == nil || rp.Date.After(*lastPayment) {
				d := rp.Date
				lastPayment = &d
			}
		}

		if actual >= expected {
			continue
		}

		entry := &DelinquentCredit{
			CreditID:         credit.ID,
			CreditType:       credit.Type,
			Amount:           credit.Amount,
			RequestDate:      credit.RequestDate,
			AcceptanceDate:   credit.AcceptanceDate,
			ClientID:         credit.ClientID,
			ExpectedPayments: expected,
			ActualPayments:   actual,
			MissedPayments:   expected - actual,
			LastPaymentDate:  lastPayment,
		}
		if credit.Client != nil {
			entry.ClientName = credit.Client.Name
			entry.ClientEmail = credit.Client.Email
		}

		report = append(report, entry)
	}

	return report, nil
}

// DashboardSummary is the portfolio overview
type DashboardSummary struct {
	TotalClients      int64   `json:"total_clients"`
	PendingCredits    int64   `json:"pending_credits"`
	AcceptedCredits   int64   `json:"accepted_credits"`
	RejectedCredits   int64   `json:"rejected_credits"`
	TotalCredits      int64   `json:"total_credits"`
	AcceptedAmount    float64 `json:"accepted_amount"`
	DelinquentCredits int     `json:"delinquent_credits"`
	PersonalCredits   int64   `json:"personal_credits"`
	RealEstateCredits int64   `json:"real_estate_credits"`
	BusinessCredits   int64   `json:"business_credits"`
}

// Dashboard builds the portfolio overview
func (s *ReportingService) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	summary := &DashboardSummary{}

	var err error
	if summary.TotalClients, err = s.clientRepo.Count(ctx); err != nil {
		return nil, err
	}
	if summary.PendingCredits, err = s.creditRepo.CountByStatus(ctx, domain.StatusInProgress); err != nil {
		return nil, err
	}
	if summary.AcceptedCredits, err = s.creditRepo.CountByStatus(ctx, domain.StatusAccepted); err != nil {
		return nil, err
	}
	if summary.RejectedCredits, err = s.creditRepo.CountByStatus(ctx, domain.StatusRejected); err != nil {
		return nil, err
	}
	summary.TotalCredits = summary.PendingCredits + summary.AcceptedCredits + summary.RejectedCredits

	if summary.AcceptedAmount, err = s.creditRepo.SumAmountByStatus(ctx, domain.StatusAccepted); err != nil {
		return nil, err
	}
	summary.AcceptedAmount = money.Round2(summary.AcceptedAmount)

	if summary.PersonalCredits, err = s.creditRepo.CountByType(ctx, domain.CreditTypePersonal); err != nil {
		return nil, err
	}
	if summary.RealEstateCredits, err = s.creditRepo.CountByType(ctx, domain.CreditTypeRealEstate); err != nil {
		return nil, err
	}
	if summary.BusinessCredits, err = s.creditRepo.CountByType(ctx, domain.CreditTypeBusiness); err != nil {
		return nil, err
	}

	delinquent, err := s.DelinquentCredits(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	summary.DelinquentCredits = len(delinquent)

	return summary, nil
}

// StatusSummary is one row of the per-status breakdown
type StatusSummary struct {
	Status domain.CreditStatus `json:"status"`
	Count  int64               `json:"count"`
	Amount float64             `json:"amount"`
}

// CreditSummaryByStatus breaks the portfolio down per lifecycle state
func (s *ReportingService) CreditSummaryByStatus(ctx context.Context) ([]*StatusSummary, error) {
	statuses := []domain.CreditStatus{
		domain.StatusInProgress,
		domain.StatusAccepted,
		domain.StatusRejected,
	}

	summaries := make([]*StatusSummary, 0, len(statuses))
	for _, status := range statuses {
		count, err := s.creditRepo.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		amount, err := s.creditRepo.SumAmountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &StatusSummary{
			Status: status,
			Count:  count,
			Amount: money.Round2(amount),
		})
	}

	return summaries, nil
}

// TypeSummary is one row of the per-type breakdown
type TypeSummary struct {
	Type  domain.CreditType `json:"type"`
	Count int64             `json:"count"`
}

// CreditSummaryByType breaks the portfolio down per credit variant
func (s *ReportingService) CreditSummaryByType(ctx context.Context) ([]*TypeSummary, error) {
	types := []domain.CreditType{
		domain.CreditTypePersonal,
		domain.CreditTypeRealEstate,
		domain.CreditTypeBusiness,
	}

	summaries := make([]*TypeSummary, 0, len(types))
	for _, creditType := range types {
		count, err := s.creditRepo.CountByType(ctx, creditType)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &TypeSummary{Type: creditType, Count: count})
	}

	return summaries, nil
}

// RepaymentStatistics summarizes repayments over a period
type RepaymentStatistics struct {
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	TotalCount       int       `json:"total_count"`
	TotalAmount      float64   `json:"total_amount"`
	InstallmentCount int       `json:"installment_count"`
	EarlyCount       int       `json:"early_count"`
}

// RepaymentStats aggregates all repayments recorded within [from, to]
func (s *ReportingService) RepaymentStats(ctx context.Context, from, to time.Time) (*RepaymentStatistics, error) {
	if from.After(to) {
		return nil, domain.NewValidationError("from date cannot be after to date")
	}

	repayments, err := s.repaymentRepo.SearchByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	stats := &RepaymentStatistics{From: from, To: to}
	total := 0.0
	for _, rp := range repayments {
		stats.TotalCount++
		total += rp.Amount
		switch rp.Type {
		case domain.RepaymentInstallment:
			stats.InstallmentCount++
		case domain.RepaymentEarly:
			stats.EarlyCount++
		}
	}
	stats.TotalAmount = money.Round2(total)

	return stats, nil
}
