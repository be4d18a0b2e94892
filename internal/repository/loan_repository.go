package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/models"
	"gorm.io/gorm"
)

// LoanRepository defines the interface for loan data access
type LoanRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Loan, error)
	FindLatestByClient(ctx context.Context, clientID uint) (*models.Loan, error)
	FindLatestByClients(ctx context.Context, clientIDs []uint) (map[uint]models.Loan, error)
	FindByClient(ctx context.Context, clientID uint) ([]models.Loan, error)
	DisbursedBetween(ctx context.Context, start, end time.Time) ([]models.Loan, error)
	Create(ctx context.Context, loan *models.Loan) error
	Update(ctx context.Context, loan *models.Loan) error
	WriteOffByClient(ctx context.Context, clientID uint) error
}

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

const latestLoanOrder = "disbursed_at DESC, id DESC"

func (r *loanRepository) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	if err := r.db.WithContext(ctx).First(&loan, id).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

// FindLatestByClient returns the most recent loan of a client: latest
// disbursement first, ties broken by id. A client's balance and every payment
// refer to this loan.
func (r *loanRepository) FindLatestByClient(ctx context.Context, clientID uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order(latestLoanOrder).
		Limit(1).
		Find(&loan).Error
	if err != nil {
		return nil, err
	}
	if loan.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &loan, nil
}

// FindLatestByClients resolves FindLatestByClient for many clients in one query.
func (r *loanRepository) FindLatestByClients(ctx context.Context, clientIDs []uint) (map[uint]models.Loan, error) {
	latest := make(map[uint]models.Loan, len(clientIDs))
	if len(clientIDs) == 0 {
		return latest, nil
	}

	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Where("client_id IN ?", clientIDs).
		Order("client_id ASC, " + latestLoanOrder).
		Find(&loans).Error
	if err != nil {
		return nil, err
	}

	for _, loan := range loans {
		if _, seen := latest[loan.ClientID]; !seen {
			latest[loan.ClientID] = loan
		}
	}
	return latest, nil
}

func (r *loanRepository) FindByClient(ctx context.Context, clientID uint) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("disbursed_at ASC, id ASC").
		Find(&loans).Error
	return loans, err
}

// DisbursedBetween lists loans disbursed in [start, end) with their client.
func (r *loanRepository) DisbursedBetween(ctx context.Context, start, end time.Time) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("disbursed_at >= ? AND disbursed_at < ?", start, end).
		Order("disbursed_at ASC, id ASC").
		Find(&loans).Error
	return loans, err
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Omit("Client").Create(loan).Error
}

func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Omit("Client").Save(loan).Error
}

// WriteOffByClient zeroes every outstanding loan balance of a client.
func (r *loanRepository) WriteOffByClient(ctx context.Context, clientID uint) error {
	return r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("client_id = ? AND balance > 0", clientID).
		Update("balance", decimal.Zero).Error
}
