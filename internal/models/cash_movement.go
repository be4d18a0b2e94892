package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashMovement is a typed entry in the cash-register journal
type CashMovement struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Type        string          `gorm:"column:movement_type;size:20;not null;index" json:"type"`
	Category    string          `gorm:"size:30;not null;default:general" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Description string          `gorm:"size:200" json:"description"`
	OccurredAt  time.Time       `gorm:"not null;index" json:"occurred_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for CashMovement
func (CashMovement) TableName() string {
	return "cash_movements"
}

// Movement types. Abono lines journal payment receipts; settlements take
// payments from the payments table, so abono lines are never summed.
const (
	MovementInflow  = "entrada"
	MovementOutflow = "salida"
	MovementExpense = "gasto"
	MovementLoan    = "prestamo"
	MovementPayment = "abono"
)

// Movement categories
const (
	CategoryGeneral = "general"
	CategoryLoan    = "prestamo"
	CategoryPayment = "abono"
)

// ValidMovementType reports whether t is a known movement type
func ValidMovementType(t string) bool {
	switch t {
	case MovementInflow, MovementOutflow, MovementExpense, MovementLoan, MovementPayment:
		return true
	}
	return false
}

// MovementLabel returns the display name of a movement type
func MovementLabel(t string) string {
	switch t {
	case MovementInflow:
		return "Entrada"
	case MovementOutflow:
		return "Salida"
	case MovementExpense:
		return "Gasto"
	case MovementLoan:
		return "Préstamo"
	case MovementPayment:
		return "Abono"
	}
	return t
}
