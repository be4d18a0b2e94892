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
	"github.com/sjperalta/creditos-api/internal/statemachine"
	"github.com/sjperalta/creditos-api/pkg/logger"
	"gorm.io/gorm"
)

// PaymentService records and reverses payments (abonos)
type PaymentService struct {
	db         *gorm.DB
	repos      *repository.Repositories
	cal        *localday.Calendar
	settlement *SettlementService
	audit      *AuditService
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *gorm.DB, repos *repository.Repositories, cal *localday.Calendar, settlement *SettlementService, audit *AuditService) *PaymentService {
	return &PaymentService{db: db, repos: repos, cal: cal, settlement: settlement, audit: audit}
}

// PaymentResult is the state left by recording a payment
type PaymentResult struct {
	Payment         *models.Payment         `json:"payment"`
	Loan            *models.Loan            `json:"loan"`
	Client          *models.Client          `json:"client"`
	Settlement      *models.DailySettlement `json:"settlement"`
	InterestApplied bool                    `json:"interest_applied"`
}

// Record applies a payment to the latest loan of a client.
func (s *PaymentService) Record(ctx context.Context, actor models.Actor, clientID uint, rawAmount string) (*PaymentResult, error) {
	return s.record(ctx, actor, rawAmount, func(repos *repository.Repositories) (*models.Client, error) {
		client, err := repos.Client.FindByID(ctx, clientID)
		return client, persist("buscar cliente", "Cliente", err)
	})
}

// RecordByCode applies a payment to the client holding a code.
func (s *PaymentService) RecordByCode(ctx context.Context, actor models.Actor, code, rawAmount string) (*PaymentResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalid("Ingrese el código del cliente")
	}
	return s.record(ctx, actor, rawAmount, func(repos *repository.Repositories) (*models.Client, error) {
		client, err := repos.Client.FindByCode(ctx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(fmt.Sprintf("Cliente con código %s", code))
		}
		return client, persist("buscar cliente", "Cliente", err)
	})
}

func (s *PaymentService) record(ctx context.Context, actor models.Actor, rawAmount string, findClient func(*repository.Repositories) (*models.Client, error)) (*PaymentResult, error) {
	amount, err := parsePositive("monto del abono", rawAmount)
	if err != nil {
		return nil, err
	}

	result := &PaymentResult{}
	err = inTx(ctx, s.db, func(repos *repository.Repositories) error {
		client, err := findClient(repos)
		if err != nil {
			return err
		}

		loan, err := repos.Loan.FindLatestByClient(ctx, client.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("%s no tiene préstamos", client.Name)
		}
		if err != nil {
			return err
		}

		result.InterestApplied = accrueMonthlyInterest(s.cal, loan)
		if loan.IsPaidOff() {
			return invalid("%s no tiene saldo pendiente", client.Name)
		}
		if amount.GreaterThan(loan.Balance) {
			return invalid("El abono de %s supera el saldo pendiente de %s", amount.StringFixed(0), loan.Balance.StringFixed(0))
		}

		now := s.cal.Now()
		movement := &models.CashMovement{
			Type:        models.MovementPayment,
			Category:    models.CategoryPayment,
			Amount:      amount,
			Description: fmt.Sprintf("Abono de %s (%s)", client.Name, client.Code),
			OccurredAt:  now,
		}
		if err := repos.CashMovement.Create(ctx, movement); err != nil {
			return err
		}

		payment := &models.Payment{
			LoanID:         loan.ID,
			Amount:         amount,
			PaidAt:         now,
			CashMovementID: &movement.ID,
		}
		if err := repos.Payment.Create(ctx, payment); err != nil {
			return err
		}

		loan.Balance = loan.Balance.Sub(amount)
		if loan.Balance.IsNegative() {
			loan.Balance = decimal.Zero
		}
		if err := repos.Loan.Update(ctx, loan); err != nil {
			return err
		}

		client.Balance = loan.Balance
		client.LastPaymentAt = &now
		machine := statemachine.NewClientFSM(client)
		switch {
		case client.IsSettled() && machine.Can("cancel"):
			if err := machine.Cancel(ctx); err != nil {
				return err
			}
		case !client.IsSettled() && machine.Can("reactivate"):
			if err := machine.Reopen(ctx); err != nil {
				return err
			}
		}
		if err := repos.Client.Update(ctx, client); err != nil {
			return err
		}

		if err := s.audit.within(ctx, repos, actor, models.AuditCreate, "Payment", payment.ID,
			"Abono de %s al préstamo %d de %s", amount.String(), loan.ID, client.Code); err != nil {
			return err
		}

		settlement, err := s.settlement.recompute(ctx, repos, s.cal.DayOf(now))
		if err != nil {
			return err
		}

		result.Payment, result.Loan, result.Client, result.Settlement = payment, loan, client, settlement
		return nil
	})
	if err != nil {
		return nil, persist("registrar abono", "Cliente", err)
	}

	logger.Info("Payment recorded",
		"payment_id", result.Payment.ID,
		"client_id", result.Client.ID,
		"amount", amount.String(),
		"balance", result.Loan.Balance.String(),
	)
	return result, nil
}

// DeleteResult is the state left by reversing a payment
type DeleteResult struct {
	Payment *models.Payment `json:"payment"`
	Loan    *models.Loan    `json:"loan"`
	Client  *models.Client  `json:"client"`
	// Day is the local day the payment was originally received; every
	// settlement from that day through today was recomputed.
	Day time.Time `json:"day"`
}

// Delete reverses a payment: the loan gets the amount back, its receipt line
// is removed and settlements are rebuilt from the day it was received.
func (s *PaymentService) Delete(ctx context.Context, actor models.Actor, paymentID uint) (*DeleteResult, error) {
	result := &DeleteResult{}
	err := inTx(ctx, s.db, func(repos *repository.Repositories) error {
		payment, err := repos.Payment.FindByID(ctx, paymentID)
		if err != nil {
			return persist("buscar abono", "Abono", err)
		}

		loan := payment.Loan
		if loan == nil {
			if loan, err = repos.Loan.FindByID(ctx, payment.LoanID); err != nil {
				return persist("buscar préstamo", "Préstamo", err)
			}
		}
		latest, err := repos.Loan.FindLatestByClient(ctx, loan.ClientID)
		if err != nil {
			return err
		}
		if latest.ID != loan.ID {
			return invalid("Solo se pueden eliminar abonos del préstamo vigente")
		}

		loan.Balance = loan.Balance.Add(payment.Amount)
		if err := repos.Loan.Update(ctx, loan); err != nil {
			return err
		}
		if payment.CashMovementID != nil {
			if err := repos.CashMovement.Delete(ctx, *payment.CashMovementID); err != nil {
				return err
			}
		}
		if err := repos.Payment.Delete(ctx, payment.ID); err != nil {
			return err
		}

		client, err := repos.Client.FindByID(ctx, loan.ClientID)
		if err != nil {
			return persist("buscar cliente", "Cliente", err)
		}
		client.Balance = loan.Balance
		client.LastPaymentAt = nil
		remaining, err := repos.Payment.FindByClient(ctx, client.ID)
		if err != nil {
			return err
		}
		if n := len(remaining); n > 0 {
			last := remaining[n-1].PaidAt
			client.LastPaymentAt = &last
		}
		if !client.IsSettled() && client.Cancelled {
			if err := reopen(ctx, repos, client); err != nil {
				return err
			}
		}
		if err := repos.Client.Update(ctx, client); err != nil {
			return err
		}

		if err := s.audit.within(ctx, repos, actor, models.AuditDelete, "Payment", payment.ID,
			"Abono de %s eliminado del préstamo %d de %s", payment.Amount.String(), loan.ID, client.Code); err != nil {
			return err
		}

		day := s.cal.DayOf(payment.PaidAt)
		if err := s.settlement.recomputeFrom(ctx, repos, day); err != nil {
			return err
		}

		payment.Loan = nil
		result.Payment, result.Loan, result.Client, result.Day = payment, loan, client, day
		return nil
	})
	if err != nil {
		return nil, persist("eliminar abono", "Abono", err)
	}

	logger.Info("Payment deleted",
		"payment_id", paymentID,
		"client_id", result.Client.ID,
		"day", localday.Format(result.Day),
	)
	return result, nil
}

// PaymentHistory lists a client's payments with the balance each one left
type PaymentHistory struct {
	Client  *models.Client               `json:"client"`
	Entries []models.PaymentHistoryEntry `json:"entries"`
	Total   decimal.Decimal              `json:"total"`
}

// History lists every payment of a client, oldest first. Balances are walked
// back from each loan's current balance, so interest charged after
// disbursement is reflected.
func (s *PaymentService) History(ctx context.Context, clientID uint) (*PaymentHistory, error) {
	client, err := s.repos.Client.FindByID(ctx, clientID)
	if err != nil {
		return nil, persist("buscar cliente", "Cliente", err)
	}
	loans, err := s.repos.Loan.FindByClient(ctx, clientID)
	if err != nil {
		return nil, persist("historial de abonos", "Cliente", err)
	}

	history := &PaymentHistory{Client: client, Entries: []models.PaymentHistoryEntry{}}
	for _, loan := range loans {
		payments, err := s.repos.Payment.FindByLoan(ctx, loan.ID)
		if err != nil {
			return nil, persist("historial de abonos", "Cliente", err)
		}

		entries := make([]models.PaymentHistoryEntry, len(payments))
		balance := loan.Balance
		for i := len(payments) - 1; i >= 0; i-- {
			p := payments[i]
			entries[i] = models.PaymentHistoryEntry{
				ID:           p.ID,
				LoanID:       loan.ID,
				Amount:       p.Amount,
				PaidAt:       p.PaidAt,
				BalanceAfter: balance,
			}
			balance = balance.Add(p.Amount)
			history.Total = history.Total.Add(p.Amount)
		}
		history.Entries = append(history.Entries, entries...)
	}
	return history, nil
}
