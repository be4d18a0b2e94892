package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/models"
	"gorm.io/gorm"
)

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error)
	FindByClient(ctx context.Context, clientID uint) ([]models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id uint) error
	SumBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
	DetailsBetween(ctx context.Context, start, end time.Time) ([]models.PaymentDetail, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Preload("Loan").First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("paid_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindByClient(ctx context.Context, clientID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN loans ON loans.id = payments.loan_id").
		Where("loans.client_id = ?", clientID).
		Order("payments.paid_at ASC, payments.id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Omit("Loan").Create(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Payment{}, id).Error
}

// SumBetween totals payments received in [start, end).
func (r *paymentRepository) SumBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("paid_at >= ? AND paid_at < ?", start, end).
		Scan(&result).Error
	return result.Total, err
}

// DetailsBetween lists payments received in [start, end) with the paying client.
func (r *paymentRepository) DetailsBetween(ctx context.Context, start, end time.Time) ([]models.PaymentDetail, error) {
	var details []models.PaymentDetail
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("payments.id, payments.loan_id, clients.id AS client_id, clients.code AS client_code, " +
			"clients.name AS client_name, payments.amount, payments.paid_at").
		Joins("JOIN loans ON loans.id = payments.loan_id").
		Joins("JOIN clients ON clients.id = loans.client_id").
		Where("payments.paid_at >= ? AND payments.paid_at < ?", start, end).
		Order("payments.paid_at ASC, payments.id ASC").
		Scan(&details).Error
	return details, err
}
