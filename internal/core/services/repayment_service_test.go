package services

import (
	"context"
	"testing"
	"time"

	"creditdesk/internal/adapters/persistence/models"
	"creditdesk/internal/core/domain"
	"creditdesk/internal/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepaymentServiceForTest(t *testing.T) (*RepaymentService, *fakeCreditRepo, *fakeRepaymentRepo) {
	t.Helper()
	creditRepo := newFakeCreditRepo()
	repaymentRepo := newFakeRepaymentRepo()
	svc := NewRepaymentService(repaymentRepo, creditRepo)
	return svc, creditRepo, repaymentRepo
}

func seedAcceptedCredit(t *testing.T, repo *fakeCreditRepo) *models.Credit {
	t.Helper()
	acceptance := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	credit := &models.Credit{
		Type:           domain.CreditTypePersonal,
		Status:         domain.StatusAccepted,
		RequestDate:    acceptance.AddDate(0, 0, -10),
		AcceptanceDate: &acceptance,
		Amount:         50000,
		TermMonths:     36,
		InterestRate:   3.5,
		ClientID:       1,
	}
	require.NoError(t, repo.Create(context.Background(), credit))
	return credit
}

func TestRecordInstallment(t *testing.T) {
	svc, creditRepo, _ := newRepaymentServiceForTest(t)
	credit := seedAcceptedCredit(t, creditRepo)

	repayment, err := svc.RecordInstallment(context.Background(), credit.ID, nil)
	require.NoError(t, err)

	// The installment amount is always the computed monthly payment.
	expected := domain.MonthlyPayment(credit.Amount, credit.InterestRate, credit.TermMonths)
	assert.Equal(t, expected, repayment.Amount)
	assert.Equal(t, domain.RepaymentInstallment, repayment.Type)
}

func TestRecordInstallmentOnPendingCredit(t *testing.T) {
	svc, creditRepo, _ := newRepaymentServiceForTest(t)

	// The ledger only needs the credit to exist; a pending credit can
	// receive payments just like an accepted one.
	pending := &models.Credit{
		Type:         domain.CreditTypePersonal,
		Status:       domain.StatusInProgress,
		RequestDate:  time.Now(),
		Amount:       10000,
		TermMonths:   12,
		InterestRate: 4,
		ClientID:     1,
	}
	require.NoError(t, creditRepo.Create(context.Background(), pending))

	repayment, err := svc.RecordInstallment(context.Background(), pending.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.MonthlyPayment(10000, 4, 12), repayment.Amount)

	_, err = svc.RecordInstallment(context.Background(), 999, nil)
	assert.ErrorIs(t, err, ErrCreditNotFound)
}

func TestRecordEarlyRepayment(t *testing.T) {
	svc, creditRepo, _ := newRepaymentServiceForTest(t)
	credit := seedAcceptedCredit(t, creditRepo)

	snapshot, err := svc.RecordEarlyRepayment(context.Background(), credit.ID, &EarlyRepaymentInput{
		Amount: floatPtr(10000),
	})
	require.NoError(t, err)

	assert.Equal(t, 10000.0, snapshot.TotalRepaid)
	assert.Equal(t, int64(1), snapshot.EarlyRepaymentCount)
	assert.Equal(t, int64(0), snapshot.InstallmentCount)
	assert.InDelta(t, snapshot.TotalObligation-10000, snapshot.RemainingBalance, 0.01)
}

func TestRecordEarlyRepaymentOverpayFloorsAtZero(t *testing.T) {
	svc, creditRepo, _ := newRepaymentServiceForTest(t)
	credit := seedAcceptedCredit(t, creditRepo)

	// Paying far beyond the obligation is allowed; the balance floors at 0.
	snapshot, err := svc.RecordEarlyRepayment(context.Background(), credit.ID, &EarlyRepaymentInput{
		Amount: floatPtr(100000),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, snapshot.RemainingBalance)
	assert.Equal(t, 100000.0, snapshot.TotalRepaid)
}

func TestBalanceSnapshot(t *testing.T) {
	svc, creditRepo, _ := newRepaymentServiceForTest(t)
	credit := seedAcceptedCredit(t, creditRepo)

	// Three installments then one early repayment.
	for i := 0; i < 3; i++ {
		_, err := svc.RecordInstallment(context.Background(), credit.ID, nil)
		require.NoError(t, err)
	}
	_, err := svc.RecordEarlyRepayment(context.Background(), credit.ID, &EarlyRepaymentInput{
		Amount: floatPtr(5000),
	})
	require.NoError(t, err)

	snapshot, err := svc.Balance(context.Background(), credit.ID)
	require.NoError(t, err)

	m := domain.MonthlyPayment(50000, 3.5, 36)
	obligation := domain.TotalObligation(50000, 3.5, 36)
	repaid := money.Round2(3*m + 5000)

	assert.Equal(t, 50000.0, snapshot.Principal)
	assert.Equal(t, m, snapshot.MonthlyPayment)
	assert.Equal(t, obligation, snapshot.TotalObligation)
	assert.Equal(t, repaid, snapshot.TotalRepaid)
	assert.Equal(t, money.Round2(obligation-repaid), snapshot.RemainingBalance)
	assert.Equal(t, int64(3), snapshot.InstallmentCount)
	assert.Equal(t, int64(1), snapshot.EarlyRepaymentCount)
}

func TestBalanceUsesCurrentTerms(t *testing.T) {
	svc, creditRepo, _ := newRepaymentServiceForTest(t)
	credit := seedAcceptedCredit(t, creditRepo)

	_, err := svc.RecordInstallment(context.Background(), credit.ID, nil)
	require.NoError(t, err)

	// When terms change after payments were made, the obligation is
	// recomputed from the terms on record, not from payment history.
	credit.InterestRate = 6
	require.NoError(t, creditRepo.Update(context.Background(), credit))

	snapshot, err := svc.Balance(context.Background(), credit.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TotalObligation(50000, 6, 36), snapshot.TotalObligation)
}

func TestBalanceOnPendingCredit(t *testing.T) {
	svc, creditRepo, _ := newRepaymentServiceForTest(t)

	pending := &models.Credit{
		Type:         domain.CreditTypePersonal,
		Status:       domain.StatusInProgress,
		RequestDate:  time.Now(),
		Amount:       10000,
		TermMonths:   12,
		InterestRate: 4,
		ClientID:     1,
	}
	require.NoError(t, creditRepo.Create(context.Background(), pending))

	_, err := svc.RecordEarlyRepayment(context.Background(), pending.ID, &EarlyRepaymentInput{
		Amount: floatPtr(2500),
	})
	require.NoError(t, err)

	snapshot, err := svc.Balance(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, snapshot.TotalRepaid)
	assert.Equal(t, domain.TotalObligation(10000, 4, 12), snapshot.TotalObligation)
}

func TestCreateRepaymentValidation(t *testing.T) {
	svc, creditRepo, _ := newRepaymentServiceForTest(t)
	credit := seedAcceptedCredit(t, creditRepo)

	_, err := svc.Create(context.Background(), &CreateRepaymentInput{
		CreditID: uintPtr(credit.ID),
		Amount:   floatPtr(-5),
		Type:     domain.RepaymentType("AUTRE"),
	})
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Violations, 2)

	repayment, err := svc.Create(context.Background(), &CreateRepaymentInput{
		CreditID: uintPtr(credit.ID),
		Amount:   floatPtr(1234.567),
		Type:     domain.RepaymentEarly,
	})
	require.NoError(t, err)
	assert.Equal(t, 1234.57, repayment.Amount, "amounts are stored rounded")
}

func TestUpdateAndDeleteRepayment(t *testing.T) {
	svc, creditRepo, _ := newRepaymentServiceForTest(t)
	credit := seedAcceptedCredit(t, creditRepo)

	repayment, err := svc.RecordInstallment(context.Background(), credit.ID, nil)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), repayment.ID, &UpdateRepaymentInput{
		Amount: floatPtr(2000),
	})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, updated.Amount)

	require.NoError(t, svc.Delete(context.Background(), repayment.ID))
	_, err = svc.GetByID(context.Background(), repayment.ID)
	assert.ErrorIs(t, err, ErrRepaymentNotFound)
}

func TestSearchRepayments(t *testing.T) {
	svc, creditRepo, repaymentRepo := newRepaymentServiceForTest(t)
	credit := seedAcceptedCredit(t, creditRepo)

	dates := []time.Time{
		time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		require.NoError(t, repaymentRepo.Create(context.Background(), &models.Repayment{
			CreditID: credit.ID,
			Date:     d,
			Amount:   1465.10,
			Type:     domain.RepaymentInstallment,
		}))
	}

	found, err := svc.SearchByDateRange(context.Background(),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = svc.SearchByDateRange(context.Background(), dates[2], dates[0])
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)

	found, err = svc.SearchByAmountRange(context.Background(), 1000, 2000)
	require.NoError(t, err)
	assert.Len(t, found, 3)
}
