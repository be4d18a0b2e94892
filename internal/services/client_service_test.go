package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientService_Create_GeneratesCode(t *testing.T) {
	env := newTestEnv(t)

	res := env.createClient(t, "  Ana  ", "", "")
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), res.Client.Code)
	assert.Equal(t, "Ana", res.Client.Name)
	assert.Nil(t, res.Loan)
	assert.Nil(t, res.Settlement)
	assert.Equal(t, 1, res.Client.DisplayOrder)
	assert.Equal(t, env.cal.Today(), res.Client.CreatedOn)

	second := env.createClient(t, "Luis", "", "")
	assert.Equal(t, 2, second.Client.DisplayOrder)
}

func TestClientService_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   ClientInput
	}{
		{"missing name", ClientInput{Name: "  "}},
		{"bad amount", ClientInput{Name: "Ana", Amount: "mucho"}},
		{"negative amount", ClientInput{Name: "Ana", Amount: "-10"}},
		{"rate above 100", ClientInput{Name: "Ana", Amount: "10", InterestRate: "101"}},
		{"unknown frequency", ClientInput{Name: "Ana", Amount: "10", Frequency: "anual"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Client.Create(ctx, actor, tt.in)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
	assert.Equal(t, int64(0), env.count(t, &models.Client{}))
}

func TestClientService_Create_RenewsCancelledCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	original, err := env.svc.Client.Create(ctx, actor, ClientInput{Code: "123456", Name: "Ana", Amount: "1000"})
	require.NoError(t, err)

	_, err = env.svc.Client.Create(ctx, actor, ClientInput{Code: "123456", Name: "Otra"})
	assert.True(t, IsValidation(err))

	_, err = env.svc.Client.Cancel(ctx, actor, original.Client.ID)
	require.NoError(t, err)

	renewed, err := env.svc.Client.Create(ctx, actor, ClientInput{Code: "123456", Name: "Ana", Amount: "500"})
	require.NoError(t, err)
	assert.True(t, renewed.Renewed)
	assert.NotEqual(t, original.Client.ID, renewed.Client.ID)

	holder, err := env.repos.Client.FindByCode(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, renewed.Client.ID, holder.ID)

	// the old row cannot come back while the code is taken
	_, err = env.svc.Client.Reactivate(ctx, actor, original.Client.ID)
	assert.True(t, IsValidation(err))
}

func TestClientService_CancelAndReactivate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := env.createClient(t, "Ana", "1000", "10")

	cancelled, err := env.svc.Client.Cancel(ctx, actor, res.Client.ID)
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled)
	assert.True(t, cancelled.Balance.IsZero())

	loan, err := env.repos.Loan.FindLatestByClient(ctx, res.Client.ID)
	require.NoError(t, err)
	assert.True(t, loan.IsPaidOff())

	_, err = env.svc.Client.Cancel(ctx, actor, res.Client.ID)
	assert.True(t, IsValidation(err))

	reactivated, err := env.svc.Client.Reactivate(ctx, actor, res.Client.ID)
	require.NoError(t, err)
	assert.False(t, reactivated.Cancelled)
	assert.True(t, reactivated.Balance.IsZero())

	_, err = env.svc.Client.Reactivate(ctx, actor, res.Client.ID)
	assert.True(t, IsValidation(err))

	_, err = env.svc.Client.Cancel(ctx, actor, 999)
	assert.True(t, IsNotFound(err))

	// cancellation writes nothing to the register
	st, err := env.svc.Settlement.Today(ctx)
	require.NoError(t, err)
	assertAmount(t, "-1000", st.Balance)

	logs, total, err := env.svc.Audit.List(ctx, repository.NewListQuery())
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	actions := make([]string, len(logs))
	for i, l := range logs {
		actions[i] = l.Action
	}
	assert.ElementsMatch(t, []string{models.AuditCreate, models.AuditCreate, models.AuditCancel, models.AuditReactivate}, actions)
}

func TestClientService_UpdateOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.createClient(t, "A", "", "").Client
	b := env.createClient(t, "B", "", "").Client
	c := env.createClient(t, "C", "", "").Client

	orderOf := func(id uint) int {
		client, err := env.repos.Client.FindByID(ctx, id)
		require.NoError(t, err)
		return client.DisplayOrder
	}

	_, err := env.svc.Client.UpdateOrder(ctx, actor, c.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, []int{orderOf(a.ID), orderOf(b.ID), orderOf(c.ID)})

	_, err = env.svc.Client.UpdateOrder(ctx, actor, c.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{orderOf(a.ID), orderOf(b.ID), orderOf(c.ID)})

	_, err = env.svc.Client.UpdateOrder(ctx, actor, a.ID, 0)
	assert.True(t, IsValidation(err))

	rows, total, err := env.svc.Client.List(ctx, repository.NewListQuery())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"A", "B", "C"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})
}

func TestClientService_ReopenTakesFreeSlot(t *testing.T) {
	reopens := map[string]func(env *testEnv, clientID, paymentID uint) error{
		"new loan": func(env *testEnv, clientID, _ uint) error {
			_, err := env.svc.Loan.Grant(context.Background(), actor, clientID, LoanInput{Amount: "50"})
			return err
		},
		"payment deleted": func(env *testEnv, _, paymentID uint) error {
			_, err := env.svc.Payment.Delete(context.Background(), actor, paymentID)
			return err
		},
	}

	for name, reopenClient := range reopens {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			a := env.createClient(t, "A", "1000", "0").Client
			b := env.createClient(t, "B", "1000", "0").Client
			require.Equal(t, 1, a.DisplayOrder)

			paid, err := env.svc.Payment.Record(ctx, actor, a.ID, "1000")
			require.NoError(t, err)
			require.True(t, paid.Client.Cancelled)

			_, err = env.svc.Client.UpdateOrder(ctx, actor, b.ID, 1)
			require.NoError(t, err)

			require.NoError(t, reopenClient(env, a.ID, paid.Payment.ID))

			storedA, err := env.repos.Client.FindByID(ctx, a.ID)
			require.NoError(t, err)
			storedB, err := env.repos.Client.FindByID(ctx, b.ID)
			require.NoError(t, err)
			assert.False(t, storedA.Cancelled)
			assert.Equal(t, 1, storedB.DisplayOrder)
			assert.Equal(t, 2, storedA.DisplayOrder)

			rows, _, err := env.svc.Client.List(ctx, repository.NewListQuery())
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, []string{"B", "A"}, []string{rows[0].Name, rows[1].Name})
		})
	}
}

func TestClientService_ListWithLoanStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Client.Create(ctx, actor, ClientInput{
		Name: "Ana", Amount: "1000", InterestRate: "20", TermDays: 24, Frequency: models.FrequencyDaily,
	})
	require.NoError(t, err)
	paidOff := env.createClient(t, "Pedro", "100", "0")
	_, err = env.svc.Payment.Record(ctx, actor, paidOff.Client.ID, "100")
	require.NoError(t, err)

	rows, total, err := env.svc.Client.List(ctx, repository.NewListQuery())
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	row := rows[0]
	assert.Equal(t, res.Client.ID, row.ID)
	assertAmount(t, "1200", row.Balance)
	assert.Equal(t, models.TermStatusNormal, row.TermStatus)
	assert.Equal(t, 24, row.Installments)
	assertAmount(t, "50", row.Installment)

	env.clock.advanceDays(25)
	rows, _, err = env.svc.Client.List(ctx, repository.NewListQuery())
	require.NoError(t, err)
	assert.Equal(t, models.TermStatusOverdue, rows[0].TermStatus)

	query := repository.NewListQuery()
	query.Search = "ped"
	cancelled, total, err := env.svc.Client.ListCancelled(ctx, query)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, "Pedro", cancelled[0].Name)
	assert.Equal(t, models.TermStatusPaid, cancelled[0].TermStatus)
}

func TestClientService_Summary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createClient(t, "Ana", "1000", "10")
	env.createClient(t, "Luis", "500", "0")
	env.createClient(t, "Sin deuda", "", "")

	summary, err := env.svc.Client.Summary(ctx)
	require.NoError(t, err)
	assertAmount(t, "1600", summary.Portfolio)
	assert.Equal(t, int64(3), summary.ActiveClients)
	require.NotNil(t, summary.Today)
	assertAmount(t, "1500", summary.Today.Loans)
}

func TestClientService_SuggestCode(t *testing.T) {
	env := newTestEnv(t)

	code, err := env.svc.Client.SuggestCode(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, 6)
}
