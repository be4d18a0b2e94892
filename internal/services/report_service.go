package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/repository"
)

// ReportService answers the read-only detail views behind the settlement screen
type ReportService struct {
	paymentRepo  repository.PaymentRepository
	loanRepo     repository.LoanRepository
	movementRepo repository.CashMovementRepository
	cal          *localday.Calendar
}

func NewReportService(repos *repository.Repositories, cal *localday.Calendar) *ReportService {
	return &ReportService{
		paymentRepo:  repos.Payment,
		loanRepo:     repos.Loan,
		movementRepo: repos.CashMovement,
		cal:          cal,
	}
}

// DayPayments is the detalle_abonos view
type DayPayments struct {
	Day      time.Time              `json:"day"`
	Payments []models.PaymentDetail `json:"payments"`
	Total    decimal.Decimal        `json:"total"`
}

// DayLoans is the detalle_prestamos view
type DayLoans struct {
	Day   time.Time       `json:"day"`
	Loans []models.Loan   `json:"loans"`
	Total decimal.Decimal `json:"total"`
}

// DayMovements lists the journal lines of one type for a day
type DayMovements struct {
	Day       time.Time             `json:"day"`
	Type      string                `json:"type"`
	Label     string                `json:"label"`
	Movements []models.CashMovement `json:"movements"`
	Total     decimal.Decimal       `json:"total"`
}

// MonthlyProfit is the interest earned on loans disbursed in a month
type MonthlyProfit struct {
	Month     time.Time       `json:"month"`
	Loans     int             `json:"loans"`
	Principal decimal.Decimal `json:"principal"`
	Profit    decimal.Decimal `json:"profit"`
}

// DayPayments lists payments received on a local day with the paying client.
func (s *ReportService) DayPayments(ctx context.Context, day time.Time) (*DayPayments, error) {
	start, end := s.cal.Bounds(day)
	details, err := s.paymentRepo.DetailsBetween(ctx, start, end)
	if err != nil {
		return nil, persist("detalle de abonos", "Abono", err)
	}

	report := &DayPayments{Day: day, Payments: details}
	for _, d := range details {
		report.Total = report.Total.Add(d.Amount)
	}
	return report, nil
}

// DayLoans lists loans disbursed on a local day.
func (s *ReportService) DayLoans(ctx context.Context, day time.Time) (*DayLoans, error) {
	start, end := s.cal.Bounds(day)
	loans, err := s.loanRepo.DisbursedBetween(ctx, start, end)
	if err != nil {
		return nil, persist("detalle de préstamos", "Préstamo", err)
	}

	report := &DayLoans{Day: day, Loans: loans}
	for _, l := range loans {
		report.Total = report.Total.Add(l.Amount)
	}
	return report, nil
}

// DayMovements lists the cash movements of one type on a local day.
func (s *ReportService) DayMovements(ctx context.Context, movementType string, day time.Time) (*DayMovements, error) {
	if !models.ValidMovementType(movementType) {
		return nil, invalid("Tipo de movimiento inválido: %s", movementType)
	}
	start, end := s.cal.Bounds(day)
	movements, err := s.movementRepo.ListBetween(ctx, movementType, start, end)
	if err != nil {
		return nil, persist("detalle de movimientos", "Movimiento", err)
	}

	report := &DayMovements{
		Day:       day,
		Type:      movementType,
		Label:     models.MovementLabel(movementType),
		Movements: movements,
	}
	for _, m := range movements {
		report.Total = report.Total.Add(m.Amount)
	}
	return report, nil
}

// MonthlyProfit sums the interest of the loans disbursed in the current local month.
func (s *ReportService) MonthlyProfit(ctx context.Context) (*MonthlyProfit, error) {
	today := s.cal.Today()
	start, end := s.cal.MonthBounds(today)
	loans, err := s.loanRepo.DisbursedBetween(ctx, start, end)
	if err != nil {
		return nil, persist("ganancias del mes", "Préstamo", err)
	}

	report := &MonthlyProfit{
		Month: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC),
		Loans: len(loans),
	}
	for i := range loans {
		report.Principal = report.Principal.Add(loans[i].Amount)
		report.Profit = report.Profit.Add(loans[i].Interest())
	}
	return report, nil
}
