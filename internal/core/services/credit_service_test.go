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

func uintPtr(v uint) *uint           { return &v }
func floatPtr(v float64) *float64    { return &v }
func intPtr(v int) *int              { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func newCreditServiceForTest(t *testing.T) (*CreditService, *fakeClientRepo, *fakeCreditRepo, *fakeRepaymentRepo) {
	t.Helper()
	clientRepo := newFakeClientRepo()
	creditRepo := newFakeCreditRepo()
	repaymentRepo := newFakeRepaymentRepo()
	svc := NewCreditService(creditRepo, clientRepo, repaymentRepo)
	return svc, clientRepo, creditRepo, repaymentRepo
}

func seedClient(t *testing.T, repo *fakeClientRepo) *models.Client {
	t.Helper()
	client := &models.Client{Name: "Hassan El Amrani", Email: "hassan@example.com"}
	require.NoError(t, repo.Create(context.Background(), client))
	return client
}

func validCreateInput(clientID uint) *CreateCreditInput {
	return &CreateCreditInput{
		ClientID:     uintPtr(clientID),
		Type:         domain.CreditTypePersonal,
		Amount:       floatPtr(50000),
		TermMonths:   intPtr(36),
		InterestRate: floatPtr(3.5),
		Motif:        "home renovation",
	}
}

func TestCreateCredit(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	credit, err := svc.Create(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusInProgress, credit.Status)
	assert.Equal(t, domain.CreditTypePersonal, credit.Type)
	assert.Equal(t, 50000.0, credit.Amount)
	assert.Nil(t, credit.AcceptanceDate)
	assert.False(t, credit.RequestDate.IsZero())
}

func TestCreateCreditCollectsAllViolations(t *testing.T) {
	svc, _, _, _ := newCreditServiceForTest(t)

	input := &CreateCreditInput{
		Type:         domain.CreditTypePersonal,
		Amount:       floatPtr(-10),
		TermMonths:   intPtr(0),
		InterestRate: floatPtr(-1),
	}

	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)

	ve, ok := domain.AsValidationError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	// client_id missing, amount, term and rate all invalid: one message each
	assert.Len(t, ve.Violations, 4)
}

func TestCreateCreditIgnoresVariantCaps(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	// Over the personal cap, but create only enforces the common rules.
	input := validCreateInput(client.ID)
	input.Amount = floatPtr(250000)
	input.TermMonths = intPtr(72)

	credit, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 250000.0, credit.Amount)
}

func TestCreateCreditClientNotFound(t *testing.T) {
	svc, _, _, _ := newCreditServiceForTest(t)

	_, err := svc.Create(context.Background(), validCreateInput(42))
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestApproveCredit(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	credit, err := svc.Create(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), credit.ID, &ApproveCreditInput{})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAccepted, approved.Status)
	require.NotNil(t, approved.AcceptanceDate)
	assert.False(t, approved.AcceptanceDate.Before(approved.RequestDate))
}

func TestApproveCreditTerminalState(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	credit, err := svc.Create(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), credit.ID, &ApproveCreditInput{})
	require.NoError(t, err)

	// A decided credit cannot be decided again.
	_, err = svc.Approve(context.Background(), credit.ID, &ApproveCreditInput{})
	assert.ErrorIs(t, err, ErrCreditNotPending)

	_, err = svc.Reject(context.Background(), credit.ID, &RejectCreditInput{Reason: "late"})
	assert.ErrorIs(t, err, ErrCreditNotPending)
}

func TestApproveCreditDateBeforeRequest(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	input := validCreateInput(client.ID)
	input.RequestDate = timePtr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	credit, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), credit.ID, &ApproveCreditInput{
		ApprovalDate: timePtr(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)),
	})
	assert.ErrorIs(t, err, ErrApprovalBeforeRequest)
}

func TestRejectCredit(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	credit, err := svc.Create(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), credit.ID, &RejectCreditInput{Reason: "insufficient income"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "insufficient income", rejected.RejectionReason)
	assert.Nil(t, rejected.AcceptanceDate)
}

func TestRejectCreditRequiresReason(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	credit, err := svc.Create(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), credit.ID, &RejectCreditInput{})
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)
}

func TestUpdateCreditOnlyWhilePending(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	credit, err := svc.Create(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), credit.ID, &UpdateCreditInput{
		Amount: floatPtr(60000),
	})
	require.NoError(t, err)
	assert.Equal(t, 60000.0, updated.Amount)
	assert.Equal(t, 36, updated.TermMonths, "untouched fields keep their value")

	_, err = svc.Approve(context.Background(), credit.ID, &ApproveCreditInput{})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), credit.ID, &UpdateCreditInput{Amount: floatPtr(70000)})
	assert.ErrorIs(t, err, ErrCreditNotPending)
}

func TestDeleteCreditGuards(t *testing.T) {
	svc, clientRepo, _, repaymentRepo := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	accepted, err := svc.Create(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), accepted.ID, &ApproveCreditInput{})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), accepted.ID)
	assert.ErrorIs(t, err, ErrCreditAccepted)

	pending, err := svc.Create(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)
	require.NoError(t, repaymentRepo.Create(context.Background(), &models.Repayment{
		CreditID: pending.ID,
		Date:     time.Now(),
		Amount:   500,
		Type:     domain.RepaymentInstallment,
	}))

	err = svc.Delete(context.Background(), pending.ID)
	assert.ErrorIs(t, err, ErrCreditHasRepayments)

	clean, err := svc.Create(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(context.Background(), clean.ID))
}

func TestValidateApplicationCaps(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	tests := []struct {
		name       string
		creditType domain.CreditType
		amount     float64
		term       int
		wantValid  bool
	}{
		{"personal within caps", domain.CreditTypePersonal, 100000, 60, true},
		{"personal over amount cap", domain.CreditTypePersonal, 100001, 60, false},
		{"personal over term cap", domain.CreditTypePersonal, 50000, 61, false},
		{"real estate within caps", domain.CreditTypeRealEstate, 1000000, 300, true},
		{"real estate over amount cap", domain.CreditTypeRealEstate, 1000001, 300, false},
		{"business within caps", domain.CreditTypeBusiness, 500000, 120, true},
		{"business over term cap", domain.CreditTypeBusiness, 500000, 121, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := &CreateCreditInput{
				ClientID:     uintPtr(client.ID),
				Type:         tt.creditType,
				Amount:       floatPtr(tt.amount),
				TermMonths:   intPtr(tt.term),
				InterestRate: floatPtr(4),
			}
			switch tt.creditType {
			case domain.CreditTypePersonal:
				input.Motif = "car purchase"
			case domain.CreditTypeRealEstate:
				apartment := domain.PropertyApartment
				input.PropertyType = &apartment
			case domain.CreditTypeBusiness:
				input.Motif = "fleet renewal"
				input.CompanyName = "Atlas Trading"
			}
			check, err := svc.ValidateApplication(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, check.IsValid, "errors: %v", check.Errors)
		})
	}
}

func TestValidateApplicationVariantRequiredFields(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	base := func(creditType domain.CreditType) *CreateCreditInput {
		return &CreateCreditInput{
			ClientID:     uintPtr(client.ID),
			Type:         creditType,
			Amount:       floatPtr(20000),
			TermMonths:   intPtr(24),
			InterestRate: floatPtr(4),
		}
	}

	t.Run("personal without reason", func(t *testing.T) {
		input := base(domain.CreditTypePersonal)
		input.Motif = "   "
		check, err := svc.ValidateApplication(context.Background(), input)
		require.NoError(t, err)
		assert.False(t, check.IsValid)
		require.Len(t, check.Errors, 1)
		assert.Contains(t, check.Errors[0], "must have a reason")
	})

	t.Run("real estate without property type", func(t *testing.T) {
		check, err := svc.ValidateApplication(context.Background(), base(domain.CreditTypeRealEstate))
		require.NoError(t, err)
		assert.False(t, check.IsValid)
		require.Len(t, check.Errors, 1)
		assert.Contains(t, check.Errors[0], "must specify property type")
	})

	t.Run("business without reason or company", func(t *testing.T) {
		check, err := svc.ValidateApplication(context.Background(), base(domain.CreditTypeBusiness))
		require.NoError(t, err)
		assert.False(t, check.IsValid)
		require.Len(t, check.Errors, 2)
		assert.Contains(t, check.Errors[0], "must have a reason")
		assert.Contains(t, check.Errors[1], "must specify company name")
	})
}

func TestValidateApplicationEligibility(t *testing.T) {
	svc, clientRepo, creditRepo, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	// Client already carries the maximum number of active credits.
	for i := 0; i < domain.MaxActiveCredits; i++ {
		require.NoError(t, creditRepo.Create(context.Background(), &models.Credit{
			Type:         domain.CreditTypePersonal,
			Status:       domain.StatusInProgress,
			RequestDate:  time.Now(),
			Amount:       10000,
			TermMonths:   12,
			InterestRate: 4,
			ClientID:     client.ID,
		}))
	}

	check, err := svc.ValidateApplication(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)
	assert.False(t, check.IsValid)
	require.Len(t, check.Errors, 1)
	assert.Contains(t, check.Errors[0], "active credits")
}

func TestValidateApplicationNeverFails(t *testing.T) {
	svc, _, _, _ := newCreditServiceForTest(t)

	// Unknown client, missing fields: everything lands in the result.
	check, err := svc.ValidateApplication(context.Background(), &CreateCreditInput{
		ClientID: uintPtr(99),
		Type:     domain.CreditTypePersonal,
	})
	require.NoError(t, err)
	assert.False(t, check.IsValid)
	assert.NotEmpty(t, check.Errors)
}

func TestEligibility(t *testing.T) {
	svc, clientRepo, creditRepo, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	result, err := svc.Eligibility(context.Background(), client.ID)
	require.NoError(t, err)
	assert.True(t, result.Eligible)

	for i := 0; i < domain.MaxActiveCredits; i++ {
		status := domain.StatusAccepted
		if i == 0 {
			status = domain.StatusInProgress
		}
		require.NoError(t, creditRepo.Create(context.Background(), &models.Credit{
			Type:         domain.CreditTypeBusiness,
			Status:       status,
			RequestDate:  time.Now(),
			Amount:       20000,
			TermMonths:   24,
			InterestRate: 5,
			ClientID:     client.ID,
			CompanyName:  "Atlas Trading",
		}))
	}

	result, err = svc.Eligibility(context.Background(), client.ID)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, int64(domain.MaxActiveCredits), result.ActiveCredits)
}

func TestEligibilityIgnoresRejected(t *testing.T) {
	svc, clientRepo, creditRepo, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	for i := 0; i < 5; i++ {
		require.NoError(t, creditRepo.Create(context.Background(), &models.Credit{
			Type:         domain.CreditTypePersonal,
			Status:       domain.StatusRejected,
			RequestDate:  time.Now(),
			Amount:       10000,
			TermMonths:   12,
			InterestRate: 4,
			ClientID:     client.ID,
		}))
	}

	result, err := svc.Eligibility(context.Background(), client.ID)
	require.NoError(t, err)
	assert.True(t, result.Eligible)
}

func TestQuote(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	credit, err := svc.Create(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)

	quote, err := svc.Quote(context.Background(), credit.ID)
	require.NoError(t, err)

	assert.InDelta(t, 1465.10, quote.MonthlyPayment, 0.02)
	assert.InDelta(t, quote.MonthlyPayment*36, quote.TotalPayment, 0.01)
	assert.InDelta(t, quote.TotalPayment-50000, quote.TotalInterest, 0.01)
}

func TestSimulate(t *testing.T) {
	svc, _, _, _ := newCreditServiceForTest(t)

	quote, err := svc.Simulate(&SimulateInput{
		Amount:       floatPtr(100000),
		TermMonths:   intPtr(360),
		InterestRate: floatPtr(5),
	})
	require.NoError(t, err)
	assert.InDelta(t, 536.82, quote.MonthlyPayment, 0.02)

	_, err = svc.Simulate(&SimulateInput{Amount: floatPtr(-1)})
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)
}

func TestPaymentScheduleStartsAtAcceptance(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	input := validCreateInput(client.ID)
	input.RequestDate = timePtr(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	credit, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	acceptance := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Approve(context.Background(), credit.ID, &ApproveCreditInput{ApprovalDate: &acceptance})
	require.NoError(t, err)

	schedule, err := svc.PaymentSchedule(context.Background(), credit.ID)
	require.NoError(t, err)
	require.Len(t, schedule, 36)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, 0.0, schedule[35].RemainingBalance)
}

func TestGetCreditNotFound(t *testing.T) {
	svc, _, _, _ := newCreditServiceForTest(t)

	_, err := svc.GetByID(context.Background(), 123)
	assert.ErrorIs(t, err, ErrCreditNotFound)
}

func TestListCreditsFilters(t *testing.T) {
	svc, clientRepo, _, _ := newCreditServiceForTest(t)
	client := seedClient(t, clientRepo)

	first, err := svc.Create(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validCreateInput(client.ID))
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), first.ID, &ApproveCreditInput{})
	require.NoError(t, err)

	accepted := domain.StatusAccepted
	out, err := svc.List(context.Background(), &ListCreditsInput{Status: &accepted})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)

	out, err = svc.List(context.Background(), &ListCreditsInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)
	assert.Equal(t, 1, out.TotalPages)
}
