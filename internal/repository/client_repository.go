package repository

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/models"
	"gorm.io/gorm"
)

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Client, error)
	FindByCode(ctx context.Context, code string) (*models.Client, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	List(ctx context.Context, query *ListQuery) ([]models.Client, int64, error)
	NextDisplayOrder(ctx context.Context) (int, error)
	ShiftOrder(ctx context.Context, from, to, delta int, excludeID uint) error
	PortfolioBalance(ctx context.Context) (decimal.Decimal, error)
	CountActive(ctx context.Context) (int64, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByCode returns the client holding a code. Codes are reused when a
// cancelled client is renewed, so the active holder wins, then the newest row.
func (r *clientRepository) FindByCode(ctx context.Context, code string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		Order("cancelled ASC, id DESC").
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) CodeInUse(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Client{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// List returns clients filtered by "cancelled" ("true"/"false") and a name/code search.
func (r *clientRepository) List(ctx context.Context, query *ListQuery) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Client{})

	if v := query.Filters["cancelled"]; v != "" {
		cancelled, err := strconv.ParseBool(v)
		if err == nil {
			db = db.Where("cancelled = ?", cancelled)
		}
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("LOWER(name) LIKE LOWER(?) OR code LIKE ?", search, search)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "display_order ASC, id ASC"
	if query.SortBy == "recent" {
		order = "updated_at DESC, id DESC"
	}

	err := db.Order(order).
		Offset(query.Offset()).
		Limit(query.PerPage).
		Find(&clients).Error

	return clients, total, err
}

func (r *clientRepository) NextDisplayOrder(ctx context.Context) (int, error) {
	var result struct {
		MaxOrder int
	}
	err := r.db.WithContext(ctx).Model(&models.Client{}).
		Select("COALESCE(MAX(display_order), 0) AS max_order").
		Where("cancelled = ?", false).
		Scan(&result).Error
	return result.MaxOrder + 1, err
}

// ShiftOrder adds delta to the display order of active clients in [from, to], skipping excludeID.
func (r *clientRepository) ShiftOrder(ctx context.Context, from, to, delta int, excludeID uint) error {
	return r.db.WithContext(ctx).Model(&models.Client{}).
		Where("cancelled = ? AND display_order >= ? AND display_order <= ? AND id <> ?", false, from, to, excludeID).
		Update("display_order", gorm.Expr("display_order + ?", delta)).Error
}

// PortfolioBalance sums what active clients still owe.
func (r *clientRepository) PortfolioBalance(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.Client{}).
		Select("COALESCE(SUM(balance), 0) AS total").
		Where("cancelled = ? AND balance > 0", false).
		Scan(&result).Error
	return result.Total, err
}

func (r *clientRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Client{}).Where("cancelled = ?", false).Count(&count).Error
	return count, err
}
