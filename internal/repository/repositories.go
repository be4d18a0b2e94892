package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Client       ClientRepository
	Loan         LoanRepository
	Payment      PaymentRepository
	CashMovement CashMovementRepository
	Settlement   SettlementRepository
	Audit        AuditRepository
}

// NewRepositories creates all repository instances. Passing a transaction
// handle yields repositories bound to that transaction.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Client:       NewClientRepository(db),
		Loan:         NewLoanRepository(db),
		Payment:      NewPaymentRepository(db),
		CashMovement: NewCashMovementRepository(db),
		Settlement:   NewSettlementRepository(db),
		Audit:        NewAuditRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 50,
		Filters: make(map[string]string),
	}
}

// Offset returns the row offset for the current page
func (q *ListQuery) Offset() int {
	if q.Page < 1 {
		q.Page = 1
	}
	return (q.Page - 1) * q.PerPage
}
