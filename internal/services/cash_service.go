package services

import (
	"context"
	"strings"

	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/repository"
	"github.com/sjperalta/creditos-api/pkg/logger"
	"gorm.io/gorm"
)

// CashService registers manual cash-register entries
type CashService struct {
	db         *gorm.DB
	cal        *localday.Calendar
	settlement *SettlementService
	audit      *AuditService
}

// NewCashService creates a new cash service
func NewCashService(db *gorm.DB, cal *localday.Calendar, settlement *SettlementService, audit *AuditService) *CashService {
	return &CashService{db: db, cal: cal, settlement: settlement, audit: audit}
}

// MovementKind maps a route kind to its movement type. Loans and payments are
// recorded by their own operations and cannot be entered by hand.
func MovementKind(kind string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "entrada_manual", models.MovementInflow:
		return models.MovementInflow, true
	case models.MovementOutflow:
		return models.MovementOutflow, true
	case models.MovementExpense:
		return models.MovementExpense, true
	}
	return "", false
}

// CashResult is the outcome of a manual entry
type CashResult struct {
	Movement   *models.CashMovement    `json:"movement"`
	Settlement *models.DailySettlement `json:"settlement"`
}

// Register writes a manual movement and recomputes today's settlement.
func (s *CashService) Register(ctx context.Context, actor models.Actor, kind, rawAmount, description string) (*CashResult, error) {
	movementType, ok := MovementKind(kind)
	if !ok {
		return nil, invalid("Tipo de movimiento inválido: %s", kind)
	}
	amount, err := parsePositive("monto", rawAmount)
	if err != nil {
		return nil, err
	}

	description = strings.TrimSpace(description)
	if movementType == models.MovementOutflow {
		lower := strings.ToLower(description)
		if strings.Contains(lower, "préstamo") || strings.Contains(lower, "prestamo") {
			return nil, invalid("Los préstamos se registran desde el cliente, no como salida de caja")
		}
	}
	if description == "" {
		description = models.MovementLabel(movementType) + " manual"
	}

	result := &CashResult{}
	err = inTx(ctx, s.db, func(repos *repository.Repositories) error {
		movement := &models.CashMovement{
			Type:        movementType,
			Category:    models.CategoryGeneral,
			Amount:      amount,
			Description: description,
			OccurredAt:  s.cal.Now(),
		}
		if err := repos.CashMovement.Create(ctx, movement); err != nil {
			return err
		}
		if err := s.audit.within(ctx, repos, actor, models.AuditCreate, "CashMovement", movement.ID,
			"%s de %s: %s", models.MovementLabel(movementType), amount.String(), description); err != nil {
			return err
		}

		settlement, err := s.settlement.recompute(ctx, repos, s.cal.DayOf(movement.OccurredAt))
		if err != nil {
			return err
		}
		result.Movement, result.Settlement = movement, settlement
		return nil
	})
	if err != nil {
		return nil, persist("registrar movimiento", "Movimiento", err)
	}

	logger.Info("Cash movement registered", "movement_id", result.Movement.ID, "type", movementType, "amount", amount.String())
	return result, nil
}
