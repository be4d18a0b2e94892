package services

import (
	"context"
	"testing"

	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Cash.Register(ctx, actor, "entrada_manual", "1.500,50", "")
	require.NoError(t, err)
	assert.Equal(t, models.MovementInflow, res.Movement.Type)
	assert.Equal(t, "Entrada manual", res.Movement.Description)
	assertAmount(t, "1500.50", res.Movement.Amount)
	assertAmount(t, "1500.50", res.Settlement.Balance)

	res, err = env.svc.Cash.Register(ctx, actor, "SALIDA", "500", "Depósito banco")
	require.NoError(t, err)
	assert.Equal(t, models.MovementOutflow, res.Movement.Type)
	assertAmount(t, "1000.50", res.Settlement.Balance)
}

func TestCashService_Register_RejectsLoanAsOutflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, description := range []string{"Préstamo a Juan", "prestamo vecino", "PRÉSTAMO"} {
		_, err := env.svc.Cash.Register(ctx, actor, "salida", "1000", description)
		assert.True(t, IsValidation(err), description)
	}

	assert.Equal(t, int64(0), env.count(t, &models.CashMovement{}))
	assert.Equal(t, int64(0), env.count(t, &models.DailySettlement{}))
	assert.Equal(t, int64(0), env.count(t, &models.AuditLog{}))

	// the word is fine on other kinds
	_, err := env.svc.Cash.Register(ctx, actor, "gasto", "10", "Fotocopias préstamo")
	assert.NoError(t, err)
}

func TestCashService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		kind   string
		amount string
	}{
		{"unknown kind", "transferencia", "10"},
		{"loan kind", "prestamo", "10"},
		{"payment kind", "abono", "10"},
		{"zero", "gasto", "0"},
		{"blank", "gasto", ""},
		{"not numeric", "gasto", "diez"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Cash.Register(ctx, actor, tt.kind, tt.amount, "")
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
	assert.Equal(t, int64(0), env.count(t, &models.CashMovement{}))
}
