package handlers

import (
	"github.com/sjperalta/creditos-api/internal/config"
	"github.com/sjperalta/creditos-api/internal/jobs"
	"github.com/sjperalta/creditos-api/internal/services"
	"gorm.io/gorm"
)

// Handlers holds all handler instances
type Handlers struct {
	Health     *HealthHandler
	Auth       *AuthHandler
	Client     *ClientHandler
	Payment    *PaymentHandler
	Cash       *CashHandler
	Settlement *SettlementHandler
	Report     *ReportHandler
	Audit      *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(db *gorm.DB, svcs *services.Services, worker *jobs.Worker, cfg *config.Config) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(db, worker),
		Auth:       NewAuthHandler(svcs.Auth, svcs.Audit, cfg.SessionHours, cfg.IsProduction()),
		Client:     NewClientHandler(svcs.Client, svcs.Loan),
		Payment:    NewPaymentHandler(svcs.Payment),
		Cash:       NewCashHandler(svcs.Cash),
		Settlement: NewSettlementHandler(svcs.Settlement, svcs.Export),
		Report:     NewReportHandler(svcs.Report),
		Audit:      NewAuditHandler(svcs.Audit),
	}
}
