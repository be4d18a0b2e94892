package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/repository"
	"github.com/sjperalta/creditos-api/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultRangeDays = 10
	maxRangeDays     = 366
)

// SettlementService owns the daily cash settlement. It is the only place the
// settlement formula is applied:
//
//	balance = previous + payments + inflows - loans - outflows - expenses
//
// where previous is the balance of the most recent settlement before the day.
type SettlementService struct {
	db   *gorm.DB
	repo repository.SettlementRepository
	cal  *localday.Calendar
}

// NewSettlementService creates a new settlement service
func NewSettlementService(db *gorm.DB, repo repository.SettlementRepository, cal *localday.Calendar) *SettlementService {
	return &SettlementService{db: db, repo: repo, cal: cal}
}

// SettlementRange is a contiguous run of days with their totals
type SettlementRange struct {
	From        time.Time                `json:"from"`
	To          time.Time                `json:"to"`
	Settlements []models.DailySettlement `json:"settlements"`
	Totals      models.SettlementTotals  `json:"totals"`
	Closing     decimal.Decimal          `json:"closing_balance"`
}

// Recompute rebuilds the settlement of one day from the ledger and stores it.
// Calling it again without ledger changes stores the same totals.
func (s *SettlementService) Recompute(ctx context.Context, day time.Time) (*models.DailySettlement, error) {
	var settlement *models.DailySettlement
	err := inTx(ctx, s.db, func(repos *repository.Repositories) error {
		var err error
		settlement, err = s.recompute(ctx, repos, day)
		return err
	})
	if err != nil {
		return nil, persist("recalcular liquidación", "liquidación", err)
	}
	return settlement, nil
}

// RecomputeFrom rebuilds every day from `from` through today so that carried
// balances propagate forward.
func (s *SettlementService) RecomputeFrom(ctx context.Context, from time.Time) error {
	err := inTx(ctx, s.db, func(repos *repository.Repositories) error {
		return s.recomputeFrom(ctx, repos, from)
	})
	return persist("recalcular liquidaciones", "liquidación", err)
}

// Today returns today's settlement, creating it on first access.
func (s *SettlementService) Today(ctx context.Context) (*models.DailySettlement, error) {
	return s.Recompute(ctx, s.cal.Today())
}

// EnsureContiguous creates the settlements missing between the first stored
// day and today. It returns how many days were created.
func (s *SettlementService) EnsureContiguous(ctx context.Context) (int, error) {
	created := 0
	err := inTx(ctx, s.db, func(repos *repository.Repositories) error {
		earliest, err := repos.Settlement.FindEarliest(ctx)
		if err != nil {
			return err
		}
		today := s.cal.Today()
		if earliest == nil {
			_, err := s.recompute(ctx, repos, today)
			created = 1
			return err
		}

		stored, err := repos.Settlement.ListBetween(ctx, earliest.Date, today)
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(stored))
		for _, st := range stored {
			have[localday.Format(st.Date)] = true
		}

		var firstMissing time.Time
		for day := earliest.Date; !day.After(today); day = localday.AddDays(day, 1) {
			if !have[localday.Format(day)] {
				if firstMissing.IsZero() {
					firstMissing = day
				}
				created++
			}
		}
		if created == 0 {
			return nil
		}
		return s.recomputeFrom(ctx, repos, firstMissing)
	})
	if err != nil {
		return 0, persist("completar liquidaciones", "liquidación", err)
	}
	if created > 0 {
		logger.Info("Filled settlement gaps", "days", created)
	}
	return created, nil
}

// Range lists the settlements between from and to inclusive. Days without a
// stored row are filled with zero totals that carry the previous balance.
// Zero from/to default to the last ten days.
func (s *SettlementService) Range(ctx context.Context, from, to time.Time) (*SettlementRange, error) {
	today := s.cal.Today()
	if to.IsZero() {
		to = today
	}
	if from.IsZero() {
		from = localday.AddDays(to, -(defaultRangeDays - 1))
	}
	if from.After(to) {
		return nil, invalid("La fecha desde no puede ser posterior a la fecha hasta")
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return nil, invalid("El rango no puede superar %d días", maxRangeDays)
	}

	stored, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, persist("listar liquidaciones", "liquidación", err)
	}
	prior, err := s.repo.FindPriorTo(ctx, from)
	if err != nil {
		return nil, persist("listar liquidaciones", "liquidación", err)
	}

	byDay := make(map[string]models.DailySettlement, len(stored))
	for _, st := range stored {
		byDay[localday.Format(st.Date)] = st
	}

	carried := decimal.Zero
	if prior != nil {
		carried = prior.Balance
	}

	result := &SettlementRange{From: from, To: to}
	for day := from; !day.After(to); day = localday.AddDays(day, 1) {
		st, ok := byDay[localday.Format(day)]
		if !ok {
			st = models.DailySettlement{
				Date:            day,
				PreviousBalance: carried,
				Balance:         carried,
			}
		}
		result.Settlements = append(result.Settlements, st)
		result.Totals.Add(st)
		carried = st.Balance
	}
	result.Closing = carried
	return result, nil
}

// recompute aggregates one local day from the ledger tables and upserts its row.
func (s *SettlementService) recompute(ctx context.Context, repos *repository.Repositories, day time.Time) (*models.DailySettlement, error) {
	start, end := s.cal.Bounds(day)

	payments, err := repos.Payment.SumBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	sums, err := repos.CashMovement.SumByTypeBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	prior, err := repos.Settlement.FindPriorTo(ctx, day)
	if err != nil {
		return nil, err
	}

	previous := decimal.Zero
	if prior != nil {
		previous = prior.Balance
	}

	settlement := &models.DailySettlement{
		Date:            day,
		PreviousBalance: previous,
		Payments:        payments.Round(2),
		Inflows:         sums[models.MovementInflow].Round(2),
		Loans:           sums[models.MovementLoan].Round(2),
		Outflows:        sums[models.MovementOutflow].Round(2),
		Expenses:        sums[models.MovementExpense].Round(2),
	}
	settlement.Balance = settlement.ComputeBalance()

	if err := repos.Settlement.Upsert(ctx, settlement); err != nil {
		return nil, err
	}
	return repos.Settlement.FindByDate(ctx, day)
}

// recomputeFrom rebuilds from..today in order, or just `from` when it lies in the future.
func (s *SettlementService) recomputeFrom(ctx context.Context, repos *repository.Repositories, from time.Time) error {
	today := s.cal.Today()
	day := from
	for {
		if _, err := s.recompute(ctx, repos, day); err != nil {
			return err
		}
		day = localday.AddDays(day, 1)
		if day.After(today) {
			return nil
		}
	}
}
