package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan represents credit extended to a client
type Loan struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ClientID          uint            `gorm:"not null;index" json:"client_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	InterestRate      decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"interest_rate"`
	TermDays          int             `gorm:"not null;default:30" json:"term_days"`
	Frequency         string          `gorm:"size:20;not null;default:diario" json:"frequency"`
	DisbursedAt       time.Time       `gorm:"not null;index" json:"disbursed_at"`
	Balance           decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balance"`
	InterestAppliedOn *time.Time      `gorm:"type:date" json:"interest_applied_on"`
	CashMovementID    *uint           `json:"cash_movement_id"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Associations
	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

// TableName specifies the table name for Loan
func (Loan) TableName() string {
	return "loans"
}

// Payment frequencies
const (
	FrequencyDaily    = "diario"
	FrequencyWeekly   = "semanal"
	FrequencyBiweekly = "quincenal"
	FrequencyMonthly  = "mensual"
)

// Term states
const (
	TermStatusNormal  = "normal"
	TermStatusOverdue = "vencido"
	TermStatusDefault = "moroso"
	TermStatusPaid    = "pagado"
)

// MonthlyInterestPeriodDays is how often a monthly loan accrues another interest charge
const MonthlyInterestPeriodDays = 30

var frequencyPeriodDays = map[string]int{
	FrequencyDaily:    1,
	FrequencyWeekly:   7,
	FrequencyBiweekly: 15,
	FrequencyMonthly:  30,
}

// Frequencies lists the payment frequencies from shortest to longest period
func Frequencies() []string {
	return []string{FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly}
}

// ValidFrequency reports whether f is a known payment frequency
func ValidFrequency(f string) bool {
	_, ok := frequencyPeriodDays[f]
	return ok
}

// TotalDue returns principal plus the one-time interest charge
func TotalDue(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Add(InterestOn(amount, rate)).Round(2)
}

// InterestOn returns amount * rate / 100
func InterestOn(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}

// Interest returns the interest charged on the principal
func (l *Loan) Interest() decimal.Decimal {
	return InterestOn(l.Amount, l.InterestRate)
}

// Installments returns how many installments the term is split into and the value of each
func (l *Loan) Installments() (int, decimal.Decimal) {
	period, ok := frequencyPeriodDays[l.Frequency]
	if !ok {
		return 0, decimal.Zero
	}
	count := l.TermDays / period
	if count <= 0 {
		return 0, decimal.Zero
	}
	total := TotalDue(l.Amount, l.InterestRate)
	return count, total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// DueAt returns the instant the term ends
func (l *Loan) DueAt() time.Time {
	return l.DisbursedAt.AddDate(0, 0, l.TermDays)
}

// TermStatus classifies the loan against its due date alone: normal before it,
// vencido during the first 30 days after it and moroso afterwards. Payments
// only matter once they clear the balance.
func (l *Loan) TermStatus(now time.Time) string {
	if !l.Balance.Round(2).IsPositive() {
		return TermStatusPaid
	}
	if l.TermDays <= 0 {
		return TermStatusNormal
	}
	daysPast := int(now.Sub(l.DueAt()).Hours() / 24)
	switch {
	case now.Before(l.DueAt()):
		return TermStatusNormal
	case daysPast < 30:
		return TermStatusOverdue
	default:
		return TermStatusDefault
	}
}

// IsPaidOff reports whether nothing remains to be paid at cent precision
func (l *Loan) IsPaidOff() bool {
	return !l.Balance.Round(2).IsPositive()
}
