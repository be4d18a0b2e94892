package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/repository"
	"github.com/sjperalta/creditos-api/pkg/logger"
	"gorm.io/gorm"
)

const defaultTermDays = 30

// LoanService grants and edits loans
type LoanService struct {
	db         *gorm.DB
	repos      *repository.Repositories
	cal        *localday.Calendar
	settlement *SettlementService
	audit      *AuditService
}

// NewLoanService creates a new loan service
func NewLoanService(db *gorm.DB, repos *repository.Repositories, cal *localday.Calendar, settlement *SettlementService, audit *AuditService) *LoanService {
	return &LoanService{db: db, repos: repos, cal: cal, settlement: settlement, audit: audit}
}

// LoanInput holds loan terms as typed in the form
type LoanInput struct {
	Amount       string
	InterestRate string
	TermDays     int
	Frequency    string
}

type loanTerms struct {
	amount    decimal.Decimal
	rate      decimal.Decimal
	termDays  int
	frequency string
}

// parseTerms validates loan terms. A zero amount is allowed when optional is set.
func parseTerms(in LoanInput, optional bool) (loanTerms, error) {
	amount, err := ParseAmount("monto", in.Amount)
	if err != nil {
		return loanTerms{}, err
	}
	if amount.IsNegative() || (!optional && amount.IsZero()) {
		return loanTerms{}, invalid("El monto debe ser mayor a cero")
	}

	rate, err := ParseAmount("interés", in.InterestRate)
	if err != nil {
		return loanTerms{}, err
	}
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return loanTerms{}, invalid("El interés debe estar entre 0 y 100")
	}

	term := in.TermDays
	if term == 0 {
		term = defaultTermDays
	}
	if term < 0 {
		return loanTerms{}, invalid("El plazo debe ser mayor a cero")
	}

	frequency := strings.ToLower(strings.TrimSpace(in.Frequency))
	if frequency == "" {
		frequency = models.FrequencyDaily
	}
	if !models.ValidFrequency(frequency) {
		return loanTerms{}, invalid("Frecuencia inválida: %s", in.Frequency)
	}

	if models.TotalDue(amount, rate).GreaterThan(maxAmount) {
		return loanTerms{}, invalid("El monto con intereses supera el máximo permitido")
	}

	return loanTerms{amount: amount, rate: rate, termDays: term, frequency: frequency}, nil
}

// GrantResult is the outcome of a loan grant
type GrantResult struct {
	Loan       *models.Loan            `json:"loan"`
	Client     *models.Client          `json:"client"`
	Settlement *models.DailySettlement `json:"settlement"`
}

// Grant disburses a new loan to a client. The client's current loan must be
// paid off first.
func (s *LoanService) Grant(ctx context.Context, actor models.Actor, clientID uint, in LoanInput) (*GrantResult, error) {
	terms, err := parseTerms(in, false)
	if err != nil {
		return nil, err
	}

	result := &GrantResult{}
	err = inTx(ctx, s.db, func(repos *repository.Repositories) error {
		client, err := repos.Client.FindByID(ctx, clientID)
		if err != nil {
			return persist("buscar cliente", "Cliente", err)
		}

		current, err := repos.Loan.FindLatestByClient(ctx, client.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if current != nil && !current.IsPaidOff() {
			return invalid("%s tiene un préstamo con saldo pendiente de %s", client.Name, current.Balance.StringFixed(0))
		}

		loan, err := s.grant(ctx, repos, client, terms)
		if err != nil {
			return err
		}
		if err := s.audit.within(ctx, repos, actor, models.AuditCreate, "Loan", loan.ID,
			"Préstamo de %s a %s", loan.Amount.String(), client.Code); err != nil {
			return err
		}

		settlement, err := s.settlement.recompute(ctx, repos, s.cal.DayOf(loan.DisbursedAt))
		if err != nil {
			return err
		}

		result.Loan, result.Client, result.Settlement = loan, client, settlement
		return nil
	})
	if err != nil {
		return nil, persist("otorgar préstamo", "Cliente", err)
	}

	logger.Info("Loan granted", "loan_id", result.Loan.ID, "client_id", clientID, "amount", result.Loan.Amount.String())
	return result, nil
}

// grant writes the disbursement movement and the loan, and points the client
// balance at the new loan. The caller recomputes the settlement.
func (s *LoanService) grant(ctx context.Context, repos *repository.Repositories, client *models.Client, terms loanTerms) (*models.Loan, error) {
	now := s.cal.Now()

	movement := &models.CashMovement{
		Type:        models.MovementLoan,
		Category:    models.CategoryLoan,
		Amount:      terms.amount,
		Description: fmt.Sprintf("Préstamo a %s (%s)", client.Name, client.Code),
		OccurredAt:  now,
	}
	if err := repos.CashMovement.Create(ctx, movement); err != nil {
		return nil, err
	}

	loan := &models.Loan{
		ClientID:       client.ID,
		Amount:         terms.amount,
		InterestRate:   terms.rate,
		TermDays:       terms.termDays,
		Frequency:      terms.frequency,
		DisbursedAt:    now,
		Balance:        models.TotalDue(terms.amount, terms.rate),
		CashMovementID: &movement.ID,
	}
	if err := repos.Loan.Create(ctx, loan); err != nil {
		return nil, err
	}

	client.Balance = loan.Balance
	if client.Cancelled {
		if err := reopen(ctx, repos, client); err != nil {
			return nil, err
		}
	}
	if err := repos.Client.Update(ctx, client); err != nil {
		return nil, err
	}
	return loan, nil
}

// LoanEdit is a client's current loan as shown in the edit form
type LoanEdit struct {
	Client      *models.Client `json:"client"`
	Loan        *models.Loan   `json:"loan"`
	HasPayments bool           `json:"has_payments"`
}

// Current returns the client's latest loan for editing.
func (s *LoanService) Current(ctx context.Context, clientID uint) (*LoanEdit, error) {
	client, err := s.repos.Client.FindByID(ctx, clientID)
	if err != nil {
		return nil, persist("buscar cliente", "Cliente", err)
	}
	loan, err := s.repos.Loan.FindLatestByClient(ctx, client.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid("%s no tiene préstamo", client.Name)
	}
	if err != nil {
		return nil, persist("buscar préstamo", "Préstamo", err)
	}
	payments, err := s.repos.Payment.FindByLoan(ctx, loan.ID)
	if err != nil {
		return nil, persist("buscar abonos", "Abono", err)
	}
	return &LoanEdit{Client: client, Loan: loan, HasPayments: len(payments) > 0}, nil
}

// UpdateLoanResult is the outcome of a loan edit
type UpdateLoanResult struct {
	Loan   *models.Loan   `json:"loan"`
	Client *models.Client `json:"client"`
	// Day is the disbursement day; settlements from it through today were recomputed.
	Day time.Time `json:"day"`
}

// Update changes the terms of a client's current loan. Blank fields keep
// their value. The balance follows the new terms only while the loan has no
// payments; the disbursement movement always follows the new amount.
func (s *LoanService) Update(ctx context.Context, actor models.Actor, clientID uint, in LoanInput) (*UpdateLoanResult, error) {
	result := &UpdateLoanResult{}
	err := inTx(ctx, s.db, func(repos *repository.Repositories) error {
		client, err := repos.Client.FindByID(ctx, clientID)
		if err != nil {
			return persist("buscar cliente", "Cliente", err)
		}
		if client.Cancelled {
			return invalid("No se puede editar el préstamo de un cliente cancelado")
		}
		loan, err := repos.Loan.FindLatestByClient(ctx, client.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("%s no tiene préstamo", client.Name)
		}
		if err != nil {
			return err
		}

		terms, err := parseTerms(withCurrentTerms(in, loan), false)
		if err != nil {
			return err
		}
		payments, err := repos.Payment.FindByLoan(ctx, loan.ID)
		if err != nil {
			return err
		}

		loan.Amount = terms.amount
		loan.InterestRate = terms.rate
		loan.TermDays = terms.termDays
		loan.Frequency = terms.frequency
		if len(payments) == 0 {
			loan.Balance = models.TotalDue(terms.amount, terms.rate)
		}
		if err := repos.Loan.Update(ctx, loan); err != nil {
			return err
		}

		if loan.CashMovementID != nil {
			movement, err := repos.CashMovement.FindByID(ctx, *loan.CashMovementID)
			if err != nil {
				return err
			}
			if !movement.Amount.Equal(loan.Amount) {
				movement.Amount = loan.Amount
				if err := repos.CashMovement.Update(ctx, movement); err != nil {
					return err
				}
			}
		}

		client.Balance = loan.Balance
		if err := repos.Client.Update(ctx, client); err != nil {
			return err
		}
		if err := s.audit.within(ctx, repos, actor, models.AuditUpdate, "Loan", loan.ID,
			"Préstamo %d de %s editado: monto %s, interés %s%%, plazo %d días, %s",
			loan.ID, client.Code, loan.Amount.String(), loan.InterestRate.String(), loan.TermDays, loan.Frequency); err != nil {
			return err
		}

		day := s.cal.DayOf(loan.DisbursedAt)
		if err := s.settlement.recomputeFrom(ctx, repos, day); err != nil {
			return err
		}

		result.Loan, result.Client, result.Day = loan, client, day
		return nil
	})
	if err != nil {
		return nil, persist("editar préstamo", "Cliente", err)
	}

	logger.Info("Loan updated",
		"loan_id", result.Loan.ID,
		"client_id", clientID,
		"amount", result.Loan.Amount.String(),
		"day", localday.Format(result.Day),
	)
	return result, nil
}

// withCurrentTerms fills blank fields of in with the loan's current terms.
func withCurrentTerms(in LoanInput, loan *models.Loan) LoanInput {
	if strings.TrimSpace(in.Amount) == "" {
		in.Amount = loan.Amount.String()
	}
	if strings.TrimSpace(in.InterestRate) == "" {
		in.InterestRate = loan.InterestRate.String()
	}
	if in.TermDays == 0 {
		in.TermDays = loan.TermDays
	}
	if strings.TrimSpace(in.Frequency) == "" {
		in.Frequency = loan.Frequency
	}
	return in
}

// accrueMonthlyInterest charges another period of interest on monthly loans
// when 30 days have passed since disbursement or the last charge. It reports
// whether a charge was applied; the caller persists the loan.
func accrueMonthlyInterest(cal *localday.Calendar, loan *models.Loan) bool {
	if loan.Frequency != models.FrequencyMonthly || loan.IsPaidOff() {
		return false
	}
	elapsed := cal.DaysBetween(loan.DisbursedAt, cal.Now())
	if loan.InterestAppliedOn != nil {
		elapsed = cal.DaysSince(*loan.InterestAppliedOn)
	}
	if elapsed < models.MonthlyInterestPeriodDays {
		return false
	}

	loan.Balance = loan.Balance.Add(loan.Interest())
	today := cal.Today()
	loan.InterestAppliedOn = &today
	return true
}
