package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/models"
	"gorm.io/gorm"
)

// CashMovementRepository defines the interface for cash journal data access
type CashMovementRepository interface {
	FindByID(ctx context.Context, id uint) (*models.CashMovement, error)
	Create(ctx context.Context, movement *models.CashMovement) error
	Update(ctx context.Context, movement *models.CashMovement) error
	Delete(ctx context.Context, id uint) error
	SumByTypeBetween(ctx context.Context, start, end time.Time) (map[string]decimal.Decimal, error)
	ListBetween(ctx context.Context, movementType string, start, end time.Time) ([]models.CashMovement, error)
}

type cashMovementRepository struct {
	db *gorm.DB
}

// NewCashMovementRepository creates a new cash movement repository
func NewCashMovementRepository(db *gorm.DB) CashMovementRepository {
	return &cashMovementRepository{db: db}
}

func (r *cashMovementRepository) FindByID(ctx context.Context, id uint) (*models.CashMovement, error) {
	var movement models.CashMovement
	if err := r.db.WithContext(ctx).First(&movement, id).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *cashMovementRepository) Create(ctx context.Context, movement *models.CashMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *cashMovementRepository) Update(ctx context.Context, movement *models.CashMovement) error {
	return r.db.WithContext(ctx).Save(movement).Error
}

func (r *cashMovementRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CashMovement{}, id).Error
}

// SumByTypeBetween totals movements in [start, end) per movement type.
// Types without movements are absent from the map.
func (r *cashMovementRepository) SumByTypeBetween(ctx context.Context, start, end time.Time) (map[string]decimal.Decimal, error) {
	var rows []struct {
		MovementType string
		Total        decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.CashMovement{}).
		Select("movement_type, COALESCE(SUM(amount), 0) AS total").
		Where("occurred_at >= ? AND occurred_at < ?", start, end).
		Group("movement_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.MovementType] = row.Total
	}
	return sums, nil
}

// ListBetween lists movements of one type in [start, end). An empty type lists all.
func (r *cashMovementRepository) ListBetween(ctx context.Context, movementType string, start, end time.Time) ([]models.CashMovement, error) {
	var movements []models.CashMovement
	db := r.db.WithContext(ctx).Where("occurred_at >= ? AND occurred_at < ?", start, end)
	if movementType != "" {
		db = db.Where("movement_type = ?", movementType)
	}
	err := db.Order("occurred_at ASC, id ASC").Find(&movements).Error
	return movements, err
}
