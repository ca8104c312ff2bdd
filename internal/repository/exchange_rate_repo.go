package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExchangeRateRepository interface {
	Create(ctx context.Context, rate *model.ExchangeRate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ExchangeRate, error)
	List(ctx context.Context, currency string) ([]model.ExchangeRate, error)
	FindActive(ctx context.Context, currency string, at time.Time) (*model.ExchangeRate, error)
	Update(ctx context.Context, rate *model.ExchangeRate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type exchangeRateRepository struct {
	db *gorm.DB
}

func NewExchangeRateRepository(db *gorm.DB) ExchangeRateRepository {
	return &exchangeRateRepository{db: db}
}

func (r *exchangeRateRepository) Create(ctx context.Context, rate *model.ExchangeRate) error {
	return GetDB(ctx, r.db).Create(rate).Error
}

func (r *exchangeRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ExchangeRate, error) {
	var rate model.ExchangeRate
	if err := GetDB(ctx, r.db).First(&rate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *exchangeRateRepository) List(ctx context.Context, currency string) ([]model.ExchangeRate, error) {
	var rates []model.ExchangeRate
	query := GetDB(ctx, r.db).Order("currency ASC, effective_from DESC")
	if currency != "" {
		query = query.Where("currency = ?", currency)
	}
	if err := query.Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// FindActive returns the rate valid at the given instant: effective_from
// has passed and effective_to is either open-ended or in the future.
func (r *exchangeRateRepository) FindActive(ctx context.Context, currency string, at time.Time) (*model.ExchangeRate, error) {
	var rate model.ExchangeRate
	if err := GetDB(ctx, r.db).
		Where("currency = ? AND effective_from <= ?", currency, at).
		Where("effective_to IS NULL OR effective_to >= ?", at).
		Order("effective_from DESC").
		First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *exchangeRateRepository) Update(ctx context.Context, rate *model.ExchangeRate) error {
	return GetDB(ctx, r.db).Save(rate).Error
}

func (r *exchangeRateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ExchangeRate{}).Error
}
