package services

import (
	"context"
	"testing"

	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanService_Grant_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owing := env.createClient(t, "Carla", "1000", "10").Client
	_, err := env.svc.Loan.Grant(ctx, actor, owing.ID, LoanInput{Amount: "500"})
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "saldo pendiente")

	fresh := env.createClient(t, "Nuevo", "", "").Client
	tests := []struct {
		name string
		in   LoanInput
	}{
		{"zero amount", LoanInput{Amount: "0"}},
		{"rate above 100", LoanInput{Amount: "100", InterestRate: "101"}},
		{"unknown frequency", LoanInput{Amount: "100", Frequency: "anual"}},
		{"amount above column limit", LoanInput{Amount: "1000000000000"}},
		{"total due above column limit", LoanInput{Amount: "999999999999", InterestRate: "10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Loan.Grant(ctx, actor, fresh.ID, tt.in)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
	assert.Equal(t, int64(1), env.count(t, &models.Loan{}))
}

func TestLoanService_Update_WithoutPayments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	disbursedOn := env.cal.Today()
	created := env.createClient(t, "Ana", "1000", "10")
	assertAmount(t, "-1000", env.settlement(t, disbursedOn).Balance)

	env.clock.advanceDays(2)
	updated, err := env.svc.Loan.Update(ctx, actor, created.Client.ID, LoanInput{Amount: "2000"})
	require.NoError(t, err)
	assert.Equal(t, disbursedOn, updated.Day)
	assertAmount(t, "2000", updated.Loan.Amount)
	assertAmount(t, "10", updated.Loan.InterestRate)
	assert.Equal(t, created.Loan.TermDays, updated.Loan.TermDays)
	assert.Equal(t, created.Loan.Frequency, updated.Loan.Frequency)
	assertAmount(t, "2200", updated.Loan.Balance)
	assertAmount(t, "2200", updated.Client.Balance)

	movement, err := env.repos.CashMovement.FindByID(ctx, *created.Loan.CashMovementID)
	require.NoError(t, err)
	assertAmount(t, "2000", movement.Amount)

	// the disbursement day and every later day follow the new amount
	original := env.settlement(t, disbursedOn)
	assertAmount(t, "2000", original.Loans)
	assertAmount(t, "-2000", original.Balance)
	for i := 1; i <= 2; i++ {
		st := env.settlement(t, localday.AddDays(disbursedOn, i))
		assertAmount(t, "-2000", st.PreviousBalance)
		assertAmount(t, "-2000", st.Balance)
	}

	logs, _, err := env.svc.Audit.List(ctx, repository.NewListQuery())
	require.NoError(t, err)
	var actions []string
	for _, entry := range logs {
		actions = append(actions, entry.Action)
	}
	assert.Contains(t, actions, models.AuditUpdate)
}

func TestLoanService_Update_KeepsBalanceAfterPayments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.createClient(t, "Beto", "1000", "10")
	_, err := env.svc.Payment.Record(ctx, actor, created.Client.ID, "100")
	require.NoError(t, err)

	updated, err := env.svc.Loan.Update(ctx, actor, created.Client.ID, LoanInput{
		Amount:    "1500",
		TermDays:  60,
		Frequency: models.FrequencyWeekly,
	})
	require.NoError(t, err)
	assertAmount(t, "1500", updated.Loan.Amount)
	assertAmount(t, "10", updated.Loan.InterestRate)
	assert.Equal(t, 60, updated.Loan.TermDays)
	assert.Equal(t, models.FrequencyWeekly, updated.Loan.Frequency)
	assertAmount(t, "1000", updated.Loan.Balance)
	assertAmount(t, "1000", updated.Client.Balance)

	today := env.settlement(t, env.cal.Today())
	assertAmount(t, "1500", today.Loans)
	assertAmount(t, "100", today.Payments)
	assertAmount(t, "-1400", today.Balance)

	edit, err := env.svc.Loan.Current(ctx, created.Client.ID)
	require.NoError(t, err)
	assert.True(t, edit.HasPayments)
	assertAmount(t, "1500", edit.Loan.Amount)
}

func TestLoanService_Update_Rejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	withLoan := env.createClient(t, "Dora", "1000", "0").Client
	noLoan := env.createClient(t, "Eva", "", "").Client
	paidOff := env.createClient(t, "Fede", "500", "0").Client
	_, err := env.svc.Payment.Record(ctx, actor, paidOff.ID, "500")
	require.NoError(t, err)

	tests := []struct {
		name     string
		clientID uint
		in       LoanInput
	}{
		{"unknown frequency", withLoan.ID, LoanInput{Frequency: "anual"}},
		{"negative amount", withLoan.ID, LoanInput{Amount: "-10"}},
		{"amount above column limit", withLoan.ID, LoanInput{Amount: "1000000000000"}},
		{"client without loan", noLoan.ID, LoanInput{Amount: "100"}},
		{"cancelled client", paidOff.ID, LoanInput{Amount: "100"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Loan.Update(ctx, actor, tt.clientID, tt.in)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}

	_, err = env.svc.Loan.Update(ctx, actor, 999, LoanInput{Amount: "100"})
	assert.True(t, IsNotFound(err))

	_, err = env.svc.Loan.Current(ctx, noLoan.ID)
	assert.True(t, IsValidation(err))

	loan, err := env.repos.Loan.FindLatestByClient(ctx, withLoan.ID)
	require.NoError(t, err)
	assertAmount(t, "1000", loan.Amount)
	assertAmount(t, "1000", loan.Balance)
}
