package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client represents a borrower
type Client struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"size:20;not null;index" json:"code"`
	Name          string          `gorm:"size:120;not null" json:"name"`
	Address       string          `gorm:"size:200" json:"address"`
	Phone         string          `gorm:"size:40" json:"phone"`
	DisplayOrder  int             `gorm:"not null;default:1;index" json:"display_order"`
	CreatedOn     time.Time       `gorm:"type:date;not null" json:"created_on"`
	Cancelled     bool            `gorm:"not null;default:false;index" json:"cancelled"`
	Balance       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balance"`
	LastPaymentAt *time.Time      `json:"last_payment_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}

// Client lifecycle states
const (
	ClientStateActive    = "active"
	ClientStateCancelled = "cancelled"
)

// State returns the lifecycle state derived from the cancelled flag
func (c *Client) State() string {
	if c.Cancelled {
		return ClientStateCancelled
	}
	return ClientStateActive
}

// MayCancel returns true if the client can be cancelled
func (c *Client) MayCancel() bool {
	return !c.Cancelled
}

// MayReactivate returns true if the client can be reactivated
func (c *Client) MayReactivate() bool {
	return c.Cancelled
}

// IsSettled reports whether the balance is zero at cent precision
func (c *Client) IsSettled() bool {
	return !c.Balance.Round(2).IsPositive()
}

// ClientRow is a client with the status of its latest loan, used by listings
type ClientRow struct {
	Client
	TermStatus   string          `json:"term_status"`
	Installments int             `json:"installments"`
	Installment  decimal.Decimal `json:"installment"`
}
