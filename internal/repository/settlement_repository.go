package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sjperalta/creditos-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettlementRepository defines the interface for daily settlement data access
type SettlementRepository interface {
	FindByDate(ctx context.Context, day time.Time) (*models.DailySettlement, error)
	FindPriorTo(ctx context.Context, day time.Time) (*models.DailySettlement, error)
	FindEarliest(ctx context.Context) (*models.DailySettlement, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.DailySettlement, error)
	Upsert(ctx context.Context, settlement *models.DailySettlement) error
}

type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository creates a new settlement repository
func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) FindByDate(ctx context.Context, day time.Time) (*models.DailySettlement, error) {
	var settlement models.DailySettlement
	err := r.db.WithContext(ctx).
		Where("settlement_date = ?", day).
		First(&settlement).Error
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

// FindPriorTo returns the most recent settlement strictly before day.
// It returns nil, nil when there is none.
func (r *settlementRepository) FindPriorTo(ctx context.Context, day time.Time) (*models.DailySettlement, error) {
	var settlement models.DailySettlement
	err := r.db.WithContext(ctx).
		Where("settlement_date < ?", day).
		Order("settlement_date DESC").
		First(&settlement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

// FindEarliest returns the first settlement ever stored, or nil, nil.
func (r *settlementRepository) FindEarliest(ctx context.Context) (*models.DailySettlement, error) {
	var settlement models.DailySettlement
	err := r.db.WithContext(ctx).
		Order("settlement_date ASC").
		First(&settlement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

// ListBetween lists stored settlements with from <= date <= to, oldest first.
func (r *settlementRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.DailySettlement, error) {
	var settlements []models.DailySettlement
	err := r.db.WithContext(ctx).
		Where("settlement_date >= ? AND settlement_date <= ?", from, to).
		Order("settlement_date ASC").
		Find(&settlements).Error
	return settlements, err
}

// Upsert writes the row for settlement.Date, replacing the totals of an existing row.
func (r *settlementRepository) Upsert(ctx context.Context, settlement *models.DailySettlement) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "settlement_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"previous_balance", "payments", "inflows", "loans",
			"outflows", "expenses", "balance", "updated_at",
		}),
	}).Create(settlement).Error
}
