package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents a repayment (abono) against a loan
type Payment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	LoanID         uint            `gorm:"not null;index" json:"loan_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	PaidAt         time.Time       `gorm:"not null;index" json:"paid_at"`
	CashMovementID *uint           `json:"cash_movement_id"`
	CreatedAt      time.Time       `json:"created_at"`

	// Associations
	Loan *Loan `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// PaymentDetail is a payment joined with the paying client, used by day reports
type PaymentDetail struct {
	ID         uint            `json:"id"`
	LoanID     uint            `json:"loan_id"`
	ClientID   uint            `json:"client_id"`
	ClientCode string          `json:"client_code"`
	ClientName string          `json:"client_name"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     time.Time       `json:"paid_at"`
}

// PaymentHistoryEntry is a payment with the loan balance left after it
type PaymentHistoryEntry struct {
	ID           uint            `json:"id"`
	LoanID       uint            `json:"loan_id"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAt       time.Time       `json:"paid_at"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}
