package services

import (
	"context"
	"testing"
	"time"

	"creditdesk/internal/adapters/persistence/models"
	"creditdesk/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportingServiceForTest(t *testing.T) (*ReportingService, *fakeClientRepo, *fakeCreditRepo, *fakeRepaymentRepo) {
	t.Helper()
	clientRepo := newFakeClientRepo()
	creditRepo := newFakeCreditRepo()
	repaymentRepo := newFakeRepaymentRepo()
	svc := NewReportingService(creditRepo, clientRepo, repaymentRepo)
	return svc, clientRepo, creditRepo, repaymentRepo
}

func acceptedCreditWithPayments(t *testing.T, repo *fakeCreditRepo, acceptance time.Time, termMonths, installments int) *models.Credit {
	t.Helper()
	credit := &models.Credit{
		Type:           domain.CreditTypePersonal,
		Status:         domain.StatusAccepted,
		RequestDate:    acceptance.AddDate(0, 0, -7),
		AcceptanceDate: &acceptance,
		Amount:         50000,
		TermMonths:     termMonths,
		InterestRate:   3.5,
		ClientID:       1,
		Client:         &models.Client{ID: 1, Name: "Hassan El Amrani", Email: "hassan@example.com"},
	}
	for i := 1; i <= installments; i++ {
		credit.Repayments = append(credit.Repayments, models.Repayment{
			CreditID: credit.ID,
			Date:     acceptance.AddDate(0, i, 0),
			Amount:   1465.10,
			Type:     domain.RepaymentInstallment,
		})
	}
	require.NoError(t, repo.Create(context.Background(), credit))
	return credit
}

func TestDelinquentCredits(t *testing.T) {
	svc, _, creditRepo, _ := newReportingServiceForTest(t)

	acceptance := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC) // 5 whole months later

	// 3 installments recorded where 5 are expected.
	late := acceptedCreditWithPayments(t, creditRepo, acceptance, 36, 3)
	// Fully current.
	acceptedCreditWithPayments(t, creditRepo, acceptance, 36, 5)

	report, err := svc.DelinquentCredits(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, report, 1)

	entry := report[0]
	assert.Equal(t, late.ID, entry.CreditID)
	assert.Equal(t, 5, entry.ExpectedPayments)
	assert.Equal(t, 3, entry.ActualPayments)
	assert.Equal(t, 2, entry.MissedPayments)
	assert.Equal(t, "Hassan El Amrani", entry.ClientName)
	require.NotNil(t, entry.LastPaymentDate)
	assert.Equal(t, acceptance.AddDate(0, 3, 0), *entry.LastPaymentDate)
}

func TestDelinquentCreditsCountOnly(t *testing.T) {
	svc, _, creditRepo, _ := newReportingServiceForTest(t)

	acceptance := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC) // 3 expected

	// Three installments of a trivial amount: the check counts payments,
	// it does not inspect amounts.
	credit := &models.Credit{
		Type:           domain.CreditTypePersonal,
		Status:         domain.StatusAccepted,
		RequestDate:    acceptance,
		AcceptanceDate: &acceptance,
		Amount:         50000,
		TermMonths:     36,
		InterestRate:   3.5,
		ClientID:       1,
	}
	for i := 1; i <= 3; i++ {
		credit.Repayments = append(credit.Repayments, models.Repayment{
			Date:   acceptance.AddDate(0, i, 0),
			Amount: 0.01,
			Type:   domain.RepaymentInstallment,
		})
	}
	require.NoError(t, creditRepo.Create(context.Background(), credit))

	report, err := svc.DelinquentCredits(context.Background(), asOf)
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestDelinquentCreditsEarlyRepaymentsDoNotCount(t *testing.T) {
	svc, _, creditRepo, _ := newReportingServiceForTest(t)

	acceptance := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC) // 2 expected

	credit := &models.Credit{
		Type:           domain.CreditTypePersonal,
		Status:         domain.StatusAccepted,
		RequestDate:    acceptance,
		AcceptanceDate: &acceptance,
		Amount:         50000,
		TermMonths:     36,
		InterestRate:   3.5,
		ClientID:       1,
		Repayments: []models.Repayment{
			// A large early repayment does not substitute for installments.
			{Date: acceptance.AddDate(0, 1, 0), Amount: 40000, Type: domain.RepaymentEarly},
		},
	}
	require.NoError(t, creditRepo.Create(context.Background(), credit))

	report, err := svc.DelinquentCredits(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, 0, report[0].ActualPayments)
	assert.Equal(t, 2, report[0].MissedPayments)
}

func TestDelinquentCreditsExpectedCappedAtTerm(t *testing.T) {
	svc, _, creditRepo, _ := newReportingServiceForTest(t)

	acceptance := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC) // far past a 12-month term

	acceptedCreditWithPayments(t, creditRepo, acceptance, 12, 10)

	report, err := svc.DelinquentCredits(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, 12, report[0].ExpectedPayments)
	assert.Equal(t, 2, report[0].MissedPayments)
}

func TestDelinquentCreditsFreshAcceptanceSkipped(t *testing.T) {
	svc, _, creditRepo, _ := newReportingServiceForTest(t)

	acceptance := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC) // under one month

	acceptedCreditWithPayments(t, creditRepo, acceptance, 36, 0)

	report, err := svc.DelinquentCredits(context.Background(), asOf)
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestDashboard(t *testing.T) {
	svc, clientRepo, creditRepo, _ := newReportingServiceForTest(t)

	require.NoError(t, clientRepo.Create(context.Background(), &models.Client{Name: "A", Email: "a@example.com"}))
	require.NoError(t, clientRepo.Create(context.Background(), &models.Client{Name: "B", Email: "b@example.com"}))

	acceptance := time.Now().AddDate(0, -2, 0)
	statuses := []domain.CreditStatus{domain.StatusInProgress, domain.StatusAccepted, domain.StatusRejected}
	for i, status := range statuses {
		credit := &models.Credit{
			Type:         domain.CreditTypePersonal,
			Status:       status,
			RequestDate:  time.Now(),
			Amount:       float64(10000 * (i + 1)),
			TermMonths:   12,
			InterestRate: 4,
			ClientID:     1,
		}
		if status == domain.StatusAccepted {
			credit.AcceptanceDate = &acceptance
		}
		require.NoError(t, creditRepo.Create(context.Background(), credit))
	}

	summary, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.TotalClients)
	assert.Equal(t, int64(1), summary.PendingCredits)
	assert.Equal(t, int64(1), summary.AcceptedCredits)
	assert.Equal(t, int64(1), summary.RejectedCredits)
	assert.Equal(t, int64(3), summary.TotalCredits)
	assert.Equal(t, 20000.0, summary.AcceptedAmount)
	assert.Equal(t, int64(3), summary.PersonalCredits)
	// Two months in with no installments recorded.
	assert.Equal(t, 1, summary.DelinquentCredits)
}

func TestCreditSummaries(t *testing.T) {
	svc, _, creditRepo, _ := newReportingServiceForTest(t)

	types := []domain.CreditType{
		domain.CreditTypePersonal,
		domain.CreditTypePersonal,
		domain.CreditTypeRealEstate,
	}
	for _, creditType := range types {
		require.NoError(t, creditRepo.Create(context.Background(), &models.Credit{
			Type:         creditType,
			Status:       domain.StatusInProgress,
			RequestDate:  time.Now(),
			Amount:       10000,
			TermMonths:   12,
			InterestRate: 4,
			ClientID:     1,
		}))
	}

	byType, err := svc.CreditSummaryByType(context.Background())
	require.NoError(t, err)
	require.Len(t, byType, 3)
	assert.Equal(t, int64(2), byType[0].Count)
	assert.Equal(t, int64(1), byType[1].Count)
	assert.Equal(t, int64(0), byType[2].Count)

	byStatus, err := svc.CreditSummaryByStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, byStatus, 3)
	assert.Equal(t, domain.StatusInProgress, byStatus[0].Status)
	assert.Equal(t, int64(3), byStatus[0].Count)
	assert.Equal(t, 30000.0, byStatus[0].Amount)
}

func TestRepaymentStats(t *testing.T) {
	svc, _, _, repaymentRepo := newReportingServiceForTest(t)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []struct {
		amount float64
		rtype  domain.RepaymentType
		offset int
	}{
		{1465.10, domain.RepaymentInstallment, 0},
		{1465.10, domain.RepaymentInstallment, 10},
		{5000.00, domain.RepaymentEarly, 20},
		{1465.10, domain.RepaymentInstallment, 45}, // outside the window
	}
	for _, e := range entries {
		require.NoError(t, repaymentRepo.Create(context.Background(), &models.Repayment{
			CreditID: 1,
			Date:     base.AddDate(0, 0, e.offset),
			Amount:   e.amount,
			Type:     e.rtype,
		}))
	}

	stats, err := svc.RepaymentStats(context.Background(), base, base.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalCount)
	assert.Equal(t, 2, stats.InstallmentCount)
	assert.Equal(t, 1, stats.EarlyCount)
	assert.Equal(t, 7930.20, stats.TotalAmount)
}
