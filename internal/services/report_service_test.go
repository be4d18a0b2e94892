package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock LoanRepository
type mockLoanRepository struct {
	repository.LoanRepository
	mockDisbursedBetween func(ctx context.Context, start, end time.Time) ([]models.Loan, error)
}

func (m *mockLoanRepository) DisbursedBetween(ctx context.Context, start, end time.Time) ([]models.Loan, error) {
	return m.mockDisbursedBetween(ctx, start, end)
}

func TestReportService_MonthlyProfit(t *testing.T) {
	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	cal := localday.New(time.UTC).WithClock(func() time.Time { return fixed })

	var gotStart, gotEnd time.Time
	loanRepo := &mockLoanRepository{
		mockDisbursedBetween: func(ctx context.Context, start, end time.Time) ([]models.Loan, error) {
			gotStart, gotEnd = start, end
			return []models.Loan{
				{Amount: decimal.NewFromInt(100000), InterestRate: decimal.NewFromInt(10)},
				{Amount: decimal.NewFromInt(5000), InterestRate: decimal.NewFromInt(20)},
			}, nil
		},
	}
	service := NewReportService(&repository.Repositories{Loan: loanRepo}, cal)

	report, err := service.MonthlyProfit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), gotStart)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), gotEnd)
	assert.Equal(t, 2, report.Loans)
	assertAmount(t, "105000", report.Principal)
	assertAmount(t, "11000", report.Profit)
}

func TestReportService_DayDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	today := env.cal.Today()

	ana := env.createClient(t, "Ana", "1000", "10")
	luis := env.createClient(t, "Luis", "400", "0")
	_, err := env.svc.Payment.Record(ctx, actor, ana.Client.ID, "100")
	require.NoError(t, err)
	_, err = env.svc.Payment.Record(ctx, actor, luis.Client.ID, "50")
	require.NoError(t, err)
	_, err = env.svc.Cash.Register(ctx, actor, "gasto", "30", "Luz")
	require.NoError(t, err)

	payments, err := env.svc.Report.DayPayments(ctx, today)
	require.NoError(t, err)
	require.Len(t, payments.Payments, 2)
	assert.Equal(t, "Ana", payments.Payments[0].ClientName)
	assert.Equal(t, luis.Client.Code, payments.Payments[1].ClientCode)
	assertAmount(t, "150", payments.Total)

	loans, err := env.svc.Report.DayLoans(ctx, today)
	require.NoError(t, err)
	require.Len(t, loans.Loans, 2)
	require.NotNil(t, loans.Loans[0].Client)
	assert.Equal(t, "Ana", loans.Loans[0].Client.Name)
	assertAmount(t, "1400", loans.Total)

	expenses, err := env.svc.Report.DayMovements(ctx, models.MovementExpense, today)
	require.NoError(t, err)
	assert.Equal(t, "Gasto", expenses.Label)
	require.Len(t, expenses.Movements, 1)
	assertAmount(t, "30", expenses.Total)

	_, err = env.svc.Report.DayMovements(ctx, "otro", today)
	assert.True(t, IsValidation(err))

	// another day is empty
	empty, err := env.svc.Report.DayPayments(ctx, localday.AddDays(today, -1))
	require.NoError(t, err)
	assert.Empty(t, empty.Payments)
	assert.True(t, empty.Total.IsZero())
}
