package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySettlement is the per-day cash snapshot (liquidación).
//
// Balance = PreviousBalance + Payments + Inflows - Loans - Outflows - Expenses
type DailySettlement struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Date            time.Time       `gorm:"column:settlement_date;type:date;not null;uniqueIndex" json:"date"`
	PreviousBalance decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"previous_balance"`
	Payments        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"payments"`
	Inflows         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"inflows"`
	Loans           decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"loans"`
	Outflows        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"outflows"`
	Expenses        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"expenses"`
	Balance         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balance"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name for DailySettlement
func (DailySettlement) TableName() string {
	return "daily_settlements"
}

// ComputeBalance applies the settlement formula to the stored totals
func (s *DailySettlement) ComputeBalance() decimal.Decimal {
	return s.PreviousBalance.
		Add(s.Payments).
		Add(s.Inflows).
		Sub(s.Loans).
		Sub(s.Outflows).
		Sub(s.Expenses).
		Round(2)
}

// TotalIn returns everything that entered the register during the day
func (s *DailySettlement) TotalIn() decimal.Decimal {
	return s.Payments.Add(s.Inflows)
}

// TotalOut returns everything that left the register during the day
func (s *DailySettlement) TotalOut() decimal.Decimal {
	return s.Loans.Add(s.Outflows).Add(s.Expenses)
}

// SettlementTotals sums a range of settlements
type SettlementTotals struct {
	Payments decimal.Decimal `json:"payments"`
	Inflows  decimal.Decimal `json:"inflows"`
	Loans    decimal.Decimal `json:"loans"`
	Outflows decimal.Decimal `json:"outflows"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Add accumulates one settlement
func (t *SettlementTotals) Add(s DailySettlement) {
	t.Payments = t.Payments.Add(s.Payments)
	t.Inflows = t.Inflows.Add(s.Inflows)
	t.Loans = t.Loans.Add(s.Loans)
	t.Outflows = t.Outflows.Add(s.Outflows)
	t.Expenses = t.Expenses.Add(s.Expenses)
}
