package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/repository"
	"github.com/sjperalta/creditos-api/internal/statemachine"
	"github.com/sjperalta/creditos-api/pkg/logger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const codeAttempts = 50

// ClientService handles client registration and lifecycle
type ClientService struct {
	db         *gorm.DB
	repos      *repository.Repositories
	cal        *localday.Calendar
	loans      *LoanService
	settlement *SettlementService
	audit      *AuditService
}

// NewClientService creates a new client service
func NewClientService(db *gorm.DB, repos *repository.Repositories, cal *localday.Calendar, loans *LoanService, settlement *SettlementService, audit *AuditService) *ClientService {
	return &ClientService{db: db, repos: repos, cal: cal, loans: loans, settlement: settlement, audit: audit}
}

// ClientInput is the new-client form. Amount may be blank to register without a loan.
type ClientInput struct {
	Code         string `form:"codigo" json:"code"`
	Name         string `form:"nombre" json:"name"`
	Address      string `form:"direccion" json:"address"`
	Phone        string `form:"telefono" json:"phone"`
	Amount       string `form:"monto" json:"amount"`
	InterestRate string `form:"interes" json:"interest_rate"`
	TermDays     int    `form:"plazo" json:"term_days"`
	Frequency    string `form:"frecuencia" json:"frequency"`
}

// CreateClientResult is the outcome of registering a client
type CreateClientResult struct {
	Client     *models.Client          `json:"client"`
	Loan       *models.Loan            `json:"loan,omitempty"`
	Settlement *models.DailySettlement `json:"settlement,omitempty"`
	Renewed    bool                    `json:"renewed"`
}

// Create registers a client and, when an amount is given, grants the first
// loan in the same transaction. A code held by a cancelled client is renewed
// under a new row; a code held by an active client is rejected.
func (s *ClientService) Create(ctx context.Context, actor models.Actor, in ClientInput) (*CreateClientResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("El nombre es obligatorio")
	}
	terms, err := parseTerms(LoanInput{
		Amount:       in.Amount,
		InterestRate: in.InterestRate,
		TermDays:     in.TermDays,
		Frequency:    in.Frequency,
	}, true)
	if err != nil {
		return nil, err
	}

	result := &CreateClientResult{}
	err = inTx(ctx, s.db, func(repos *repository.Repositories) error {
		code := strings.TrimSpace(in.Code)
		if code == "" {
			generated, err := generateCode(ctx, repos.Client)
			if err != nil {
				return err
			}
			code = generated
		} else {
			holder, err := repos.Client.FindByCode(ctx, code)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
			case err != nil:
				return err
			case !holder.Cancelled:
				return invalid("El código %s ya pertenece a %s", code, holder.Name)
			default:
				result.Renewed = true
			}
		}

		order, err := repos.Client.NextDisplayOrder(ctx)
		if err != nil {
			return err
		}
		client := &models.Client{
			Code:         code,
			Name:         name,
			Address:      strings.TrimSpace(in.Address),
			Phone:        strings.TrimSpace(in.Phone),
			DisplayOrder: order,
			CreatedOn:    s.cal.Today(),
			Balance:      decimal.Zero,
		}
		if err := repos.Client.Create(ctx, client); err != nil {
			return err
		}

		details := fmt.Sprintf("Cliente %s (%s) registrado", client.Name, client.Code)
		if result.Renewed {
			details = fmt.Sprintf("Cliente %s (%s) renovado", client.Name, client.Code)
		}
		if err := s.audit.within(ctx, repos, actor, models.AuditCreate, "Client", client.ID, "%s", details); err != nil {
			return err
		}
		result.Client = client

		if terms.amount.IsZero() {
			return nil
		}
		loan, err := s.loans.grant(ctx, repos, client, terms)
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
		result.Loan, result.Settlement = loan, settlement
		return nil
	})
	if err != nil {
		return nil, persist("registrar cliente", "Cliente", err)
	}

	logger.Info("Client created", "client_id", result.Client.ID, "code", result.Client.Code, "renewed", result.Renewed)
	return result, nil
}

// SuggestCode returns an unused random code for the new-client form.
func (s *ClientService) SuggestCode(ctx context.Context) (string, error) {
	code, err := generateCode(ctx, s.repos.Client)
	if err != nil {
		return "", persist("sugerir código", "Cliente", err)
	}
	return code, nil
}

func generateCode(ctx context.Context, repo repository.ClientRepository) (string, error) {
	for range codeAttempts {
		code := fmt.Sprintf("%06d", rand.IntN(1_000_000))
		used, err := repo.CodeInUse(ctx, code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}
	return "", errors.New("no free client code found")
}

// Cancel removes a client from the active list (eliminar_cliente). Balances
// still owed on its loans are written off; cash history is untouched.
func (s *ClientService) Cancel(ctx context.Context, actor models.Actor, clientID uint) (*models.Client, error) {
	var client *models.Client
	err := inTx(ctx, s.db, func(repos *repository.Repositories) error {
		var err error
		client, err = repos.Client.FindByID(ctx, clientID)
		if err != nil {
			return persist("buscar cliente", "Cliente", err)
		}
		if !client.MayCancel() {
			return invalid("%s ya está cancelado", client.Name)
		}

		owed := client.Balance
		if err := statemachine.NewClientFSM(client).Cancel(ctx); err != nil {
			return err
		}
		if err := repos.Loan.WriteOffByClient(ctx, client.ID); err != nil {
			return err
		}
		if err := repos.Client.Update(ctx, client); err != nil {
			return err
		}
		return s.audit.within(ctx, repos, actor, models.AuditCancel, "Client", client.ID,
			"Cliente %s cancelado con saldo %s", client.Code, owed.String())
	})
	if err != nil {
		return nil, persist("cancelar cliente", "Cliente", err)
	}

	logger.Info("Client cancelled", "client_id", client.ID)
	return client, nil
}

// Reactivate returns a cancelled client to the end of the active list with a zero balance.
func (s *ClientService) Reactivate(ctx context.Context, actor models.Actor, clientID uint) (*models.Client, error) {
	var client *models.Client
	err := inTx(ctx, s.db, func(repos *repository.Repositories) error {
		var err error
		client, err = repos.Client.FindByID(ctx, clientID)
		if err != nil {
			return persist("buscar cliente", "Cliente", err)
		}
		if !client.MayReactivate() {
			return invalid("%s ya está activo", client.Name)
		}
		holder, err := repos.Client.FindByCode(ctx, client.Code)
		if err != nil {
			return err
		}
		if holder.ID != client.ID && !holder.Cancelled {
			return invalid("El código %s ya pertenece a %s", client.Code, holder.Name)
		}

		if err := statemachine.NewClientFSM(client).Reactivate(ctx); err != nil {
			return err
		}
		if client.DisplayOrder, err = repos.Client.NextDisplayOrder(ctx); err != nil {
			return err
		}
		if err := repos.Client.Update(ctx, client); err != nil {
			return err
		}
		return s.audit.within(ctx, repos, actor, models.AuditReactivate, "Client", client.ID,
			"Cliente %s reactivado", client.Code)
	})
	if err != nil {
		return nil, persist("reactivar cliente", "Cliente", err)
	}

	logger.Info("Client reactivated", "client_id", client.ID)
	return client, nil
}

// reopen returns a cancelled client to the active book at the end of the
// display order. Its old slot may already belong to another client.
func reopen(ctx context.Context, repos *repository.Repositories, client *models.Client) error {
	order, err := repos.Client.NextDisplayOrder(ctx)
	if err != nil {
		return err
	}
	if err := statemachine.NewClientFSM(client).Reopen(ctx); err != nil {
		return err
	}
	client.DisplayOrder = order
	return nil
}

// UpdateOrder moves an active client to position `order`, shifting the
// clients in between by one. Positions past the end are clamped.
func (s *ClientService) UpdateOrder(ctx context.Context, actor models.Actor, clientID uint, order int) (*models.Client, error) {
	if order < 1 {
		return nil, invalid("El orden debe ser mayor a cero")
	}

	var client *models.Client
	err := inTx(ctx, s.db, func(repos *repository.Repositories) error {
		var err error
		client, err = repos.Client.FindByID(ctx, clientID)
		if err != nil {
			return persist("buscar cliente", "Cliente", err)
		}
		if client.Cancelled {
			return invalid("No se puede ordenar un cliente cancelado")
		}

		next, err := repos.Client.NextDisplayOrder(ctx)
		if err != nil {
			return err
		}
		if last := next - 1; order > last {
			order = last
		}
		current := client.DisplayOrder
		switch {
		case order == current:
			return nil
		case order < current:
			err = repos.Client.ShiftOrder(ctx, order, current-1, 1, client.ID)
		default:
			err = repos.Client.ShiftOrder(ctx, current+1, order, -1, client.ID)
		}
		if err != nil {
			return err
		}

		client.DisplayOrder = order
		if err := repos.Client.Update(ctx, client); err != nil {
			return err
		}
		return s.audit.within(ctx, repos, actor, models.AuditReorder, "Client", client.ID,
			"Cliente %s movido de %d a %d", client.Code, current, order)
	})
	if err != nil {
		return nil, persist("ordenar clientes", "Cliente", err)
	}
	return client, nil
}

// List returns active clients in display order with their latest loan status.
func (s *ClientService) List(ctx context.Context, query *repository.ListQuery) ([]models.ClientRow, int64, error) {
	query.Filters["cancelled"] = "false"
	return s.list(ctx, query)
}

// ListCancelled returns cancelled clients, most recently changed first.
func (s *ClientService) ListCancelled(ctx context.Context, query *repository.ListQuery) ([]models.ClientRow, int64, error) {
	query.Filters["cancelled"] = "true"
	query.SortBy = "recent"
	return s.list(ctx, query)
}

func (s *ClientService) list(ctx context.Context, query *repository.ListQuery) ([]models.ClientRow, int64, error) {
	clients, total, err := s.repos.Client.List(ctx, query)
	if err != nil {
		return nil, 0, persist("listar clientes", "Cliente", err)
	}

	ids := make([]uint, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	latest, err := s.repos.Loan.FindLatestByClients(ctx, ids)
	if err != nil {
		return nil, 0, persist("listar clientes", "Cliente", err)
	}

	now := s.cal.Now()
	rows := make([]models.ClientRow, len(clients))
	for i, c := range clients {
		row := models.ClientRow{Client: c, TermStatus: models.TermStatusPaid}
		if loan, ok := latest[c.ID]; ok {
			if !c.Cancelled {
				row.Balance = loan.Balance
			}
			row.TermStatus = loan.TermStatus(now)
			row.Installments, row.Installment = loan.Installments()
		}
		rows[i] = row
	}
	return rows, total, nil
}

// Summary is the dashboard header
type Summary struct {
	Portfolio     decimal.Decimal         `json:"portfolio"`
	ActiveClients int64                   `json:"active_clients"`
	Today         *models.DailySettlement `json:"today"`
}

// Summary gathers the dashboard figures concurrently.
func (s *ClientService) Summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := s.repos.Client.PortfolioBalance(gctx)
		summary.Portfolio = total
		return err
	})
	g.Go(func() error {
		count, err := s.repos.Client.CountActive(gctx)
		summary.ActiveClients = count
		return err
	})
	g.Go(func() error {
		today, err := s.settlement.Today(gctx)
		summary.Today = today
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, persist("resumen", "Cliente", err)
	}
	return summary, nil
}
