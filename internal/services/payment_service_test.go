package services

import (
	"context"
	"testing"

	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentService_AnaPaysOff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.createClient(t, "Ana", "100000", "10")
	require.NotNil(t, created.Loan)
	assertAmount(t, "110000", created.Loan.Balance)
	assertAmount(t, "110000", created.Client.Balance)
	assertAmount(t, "100000", created.Settlement.Loans)
	assertAmount(t, "-100000", created.Settlement.Balance)

	first, err := env.svc.Payment.Record(ctx, actor, created.Client.ID, "50000")
	require.NoError(t, err)
	assertAmount(t, "60000", first.Loan.Balance)
	assertAmount(t, "60000", first.Client.Balance)
	assert.False(t, first.Client.Cancelled)
	assertAmount(t, "50000", first.Settlement.Payments)
	assertAmount(t, "-50000", first.Settlement.Balance)

	second, err := env.svc.Payment.Record(ctx, actor, created.Client.ID, "60000")
	require.NoError(t, err)
	assert.True(t, second.Loan.IsPaidOff())
	assert.True(t, second.Client.Cancelled)
	assert.True(t, second.Client.Balance.IsZero())
	assertAmount(t, "110000", second.Settlement.Payments)
	assertAmount(t, "10000", second.Settlement.Balance)

	stored, err := env.repos.Client.FindByID(ctx, created.Client.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cancelled)
	require.NotNil(t, stored.LastPaymentAt)

	// one abono journal line per payment, never summed into the settlement
	assert.Equal(t, int64(2), env.count(t, &models.Payment{}))
	start, end := env.cal.Bounds(env.cal.Today())
	movements, err := env.repos.CashMovement.ListBetween(ctx, models.MovementPayment, start, end)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestPaymentService_RecordByCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Client.Create(ctx, actor, ClientInput{Code: "4321", Name: "Luis", Amount: "1000"})
	require.NoError(t, err)

	paid, err := env.svc.Payment.RecordByCode(ctx, actor, " 4321 ", "$ 250")
	require.NoError(t, err)
	assert.Equal(t, res.Client.ID, paid.Client.ID)
	assertAmount(t, "750", paid.Loan.Balance)

	_, err = env.svc.Payment.RecordByCode(ctx, actor, "9999", "10")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "9999")

	_, err = env.svc.Payment.RecordByCode(ctx, actor, "", "10")
	assert.True(t, IsValidation(err))
}

func TestPaymentService_Record_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	noLoan := env.createClient(t, "Sin préstamo", "", "")
	withLoan := env.createClient(t, "Marta", "1000", "0")

	tests := []struct {
		name     string
		clientID uint
		amount   string
	}{
		{"zero amount", withLoan.Client.ID, "0"},
		{"negative amount", withLoan.Client.ID, "-5"},
		{"not a number", withLoan.Client.ID, "abc"},
		{"more than owed", withLoan.Client.ID, "1000.01"},
		{"client without loan", noLoan.Client.ID, "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Payment.Record(ctx, actor, tt.clientID, tt.amount)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}

	_, err := env.svc.Payment.Record(ctx, actor, 999, "10")
	assert.True(t, IsNotFound(err))

	assert.Equal(t, int64(0), env.count(t, &models.Payment{}))
	loan, err := env.repos.Loan.FindLatestByClient(ctx, withLoan.Client.ID)
	require.NoError(t, err)
	assertAmount(t, "1000", loan.Balance)
}

func TestPaymentService_Record_PaidOffLoan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := env.createClient(t, "Pedro", "500", "0")
	_, err := env.svc.Payment.Record(ctx, actor, res.Client.ID, "500")
	require.NoError(t, err)

	_, err = env.svc.Payment.Record(ctx, actor, res.Client.ID, "1")
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "no tiene saldo pendiente")
}

func TestPaymentService_Delete_RecomputesOriginalDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	payDay := env.cal.Today()
	res := env.createClient(t, "Ana", "100000", "10")
	paid, err := env.svc.Payment.Record(ctx, actor, res.Client.ID, "50000")
	require.NoError(t, err)
	assertAmount(t, "-50000", env.settlement(t, payDay).Balance)

	env.clock.advanceDays(2)
	deleted, err := env.svc.Payment.Delete(ctx, actor, paid.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payDay, deleted.Day)
	assertAmount(t, "110000", deleted.Loan.Balance)
	assertAmount(t, "110000", deleted.Client.Balance)
	assert.Nil(t, deleted.Client.LastPaymentAt)

	original := env.settlement(t, payDay)
	assert.True(t, original.Payments.IsZero())
	assertAmount(t, "-100000", original.Balance)

	// the corrected balance is carried through today
	for i := 1; i <= 2; i++ {
		st := env.settlement(t, localday.AddDays(payDay, i))
		assertAmount(t, "-100000", st.PreviousBalance)
		assertAmount(t, "-100000", st.Balance)
	}

	assert.Equal(t, int64(0), env.count(t, &models.Payment{}))
	_, err = env.repos.CashMovement.FindByID(ctx, *paid.Payment.CashMovementID)
	assert.Error(t, err)
}

func TestPaymentService_Delete_ReopensCancelledClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := env.createClient(t, "Rosa", "1000", "0")
	paid, err := env.svc.Payment.Record(ctx, actor, res.Client.ID, "1000")
	require.NoError(t, err)
	require.True(t, paid.Client.Cancelled)

	deleted, err := env.svc.Payment.Delete(ctx, actor, paid.Payment.ID)
	require.NoError(t, err)
	assert.False(t, deleted.Client.Cancelled)
	assertAmount(t, "1000", deleted.Client.Balance)
}

func TestPaymentService_Delete_OnlyCurrentLoan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := env.createClient(t, "Jorge", "1000", "0")
	paid, err := env.svc.Payment.Record(ctx, actor, res.Client.ID, "1000")
	require.NoError(t, err)

	_, err = env.svc.Loan.Grant(ctx, actor, res.Client.ID, LoanInput{Amount: "2000"})
	require.NoError(t, err)

	_, err = env.svc.Payment.Delete(ctx, actor, paid.Payment.ID)
	assert.True(t, IsValidation(err))

	_, err = env.svc.Payment.Delete(ctx, actor, 12345)
	assert.True(t, IsNotFound(err))
}

func TestPaymentService_MonthlyInterest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Client.Create(ctx, actor, ClientInput{
		Name: "Mensual", Amount: "1000", InterestRate: "10", Frequency: models.FrequencyMonthly,
	})
	require.NoError(t, err)
	assertAmount(t, "1100", res.Loan.Balance)

	env.clock.advanceDays(30)
	paid, err := env.svc.Payment.Record(ctx, actor, res.Client.ID, "100")
	require.NoError(t, err)
	assert.True(t, paid.InterestApplied)
	assertAmount(t, "1100", paid.Loan.Balance)

	env.clock.advanceDays(10)
	paid, err = env.svc.Payment.Record(ctx, actor, res.Client.ID, "100")
	require.NoError(t, err)
	assert.False(t, paid.InterestApplied)
	assertAmount(t, "1000", paid.Loan.Balance)

	env.clock.advanceDays(20)
	paid, err = env.svc.Payment.Record(ctx, actor, res.Client.ID, "100")
	require.NoError(t, err)
	assert.True(t, paid.InterestApplied)
	assertAmount(t, "1000", paid.Loan.Balance)
}

func TestPaymentService_History(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := env.createClient(t, "Ana", "1000", "10")
	_, err := env.svc.Payment.Record(ctx, actor, res.Client.ID, "300")
	require.NoError(t, err)
	env.clock.advanceDays(1)
	_, err = env.svc.Payment.Record(ctx, actor, res.Client.ID, "200")
	require.NoError(t, err)

	history, err := env.svc.Payment.History(ctx, res.Client.ID)
	require.NoError(t, err)
	require.Len(t, history.Entries, 2)
	assertAmount(t, "300", history.Entries[0].Amount)
	assertAmount(t, "800", history.Entries[0].BalanceAfter)
	assertAmount(t, "200", history.Entries[1].Amount)
	assertAmount(t, "600", history.Entries[1].BalanceAfter)
	assertAmount(t, "500", history.Total)
}
