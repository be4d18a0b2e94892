package services

import (
	"context"

	"github.com/sjperalta/creditos-api/internal/config"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth       *AuthService
	Client     *ClientService
	Loan       *LoanService
	Payment    *PaymentService
	Cash       *CashService
	Settlement *SettlementService
	Report     *ReportService
	Export     *ExportService
	Audit      *AuditService
}

// NewServices creates all service instances
func NewServices(db *gorm.DB, repos *repository.Repositories, cfg *config.Config, cal *localday.Calendar) *Services {
	auditSvc := NewAuditService(repos.Audit)
	settlementSvc := NewSettlementService(db, repos.Settlement, cal)
	loanSvc := NewLoanService(db, repos, cal, settlementSvc, auditSvc)

	return &Services{
		Auth:       NewAuthService(repos.User, cfg),
		Client:     NewClientService(db, repos, cal, loanSvc, settlementSvc, auditSvc),
		Loan:       loanSvc,
		Payment:    NewPaymentService(db, repos, cal, settlementSvc, auditSvc),
		Cash:       NewCashService(db, cal, settlementSvc, auditSvc),
		Settlement: settlementSvc,
		Report:     NewReportService(repos, cal),
		Export:     NewExportService(settlementSvc),
		Audit:      auditSvc,
	}
}

// inTx runs fn against repositories bound to one transaction. Any error rolls
// the whole unit back.
func inTx(ctx context.Context, db *gorm.DB, fn func(repos *repository.Repositories) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repository.NewRepositories(tx))
	})
}
