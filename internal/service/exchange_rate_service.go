package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateExchangeRateRequest struct {
	Currency      string `json:"currency" binding:"required,len=3"`
	Rate          string `json:"rate" binding:"required"` // Decimal string, PEN per unit
	EffectiveFrom string `json:"effective_from" binding:"required"`
	EffectiveTo   string `json:"effective_to"`
	Description   string `json:"description"`
}

type UpdateExchangeRateRequest struct {
	Rate        string `json:"rate"`
	EffectiveTo string `json:"effective_to"`
	Description string `json:"description"`
}

// --- Interface ---

type ExchangeRateService interface {
	Create(ctx context.Context, userID string, req CreateExchangeRateRequest) (*model.ExchangeRate, error)
	List(ctx context.Context, currency string) ([]model.ExchangeRate, error)
	Update(ctx context.Context, userID, id string, req UpdateExchangeRateRequest) (*model.ExchangeRate, error)
	Delete(ctx context.Context, userID, id string) error
}

type exchangeRateService struct {
	rateRepo  repository.ExchangeRateRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewExchangeRateService(
	rateRepo repository.ExchangeRateRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ExchangeRateService {
	return &exchangeRateService{rateRepo: rateRepo, auditRepo: auditRepo, txManager: txManager}
}

// --- Implementation ---

func (s *exchangeRateService) Create(ctx context.Context, userID string, req CreateExchangeRateRequest) (*model.ExchangeRate, error) {
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return nil, fmt.Errorf("%w: rate is not a valid number", ErrInvalidInput)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: rate must be greater than 0", ErrInvalidInput)
	}

	effectiveFrom, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: effective_from must be YYYY-MM-DD", ErrInvalidInput)
	}

	var effectiveTo *time.Time
	if req.EffectiveTo != "" {
		parsed, parseErr := time.Parse("2006-01-02", req.EffectiveTo)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: effective_to must be YYYY-MM-DD", ErrInvalidInput)
		}
		if parsed.Before(effectiveFrom) {
			return nil, fmt.Errorf("%w: effective_to must not precede effective_from", ErrInvalidInput)
		}
		effectiveTo = &parsed
	}

	entry := &model.ExchangeRate{
		Currency:      req.Currency,
		Rate:          rate,
		EffectiveFrom: effectiveFrom,
		EffectiveTo:   effectiveTo,
		Description:   req.Description,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.rateRepo.Create(txCtx, entry); createErr != nil {
			return fmt.Errorf("failed to create exchange rate: %w", createErr)
		}
		return s.audit(txCtx, userID, model.ActionCreateExchangeRate, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *exchangeRateService) List(ctx context.Context, currency string) ([]model.ExchangeRate, error) {
	rates, err := s.rateRepo.List(ctx, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	return rates, nil
}

func (s *exchangeRateService) Update(ctx context.Context, userID, id string, req UpdateExchangeRateRequest) (*model.ExchangeRate, error) {
	rateID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed exchange rate id", ErrInvalidInput)
	}

	entry, err := s.rateRepo.FindByID(ctx, rateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch exchange rate: %w", err)
	}

	if req.Rate != "" {
		rate, parseErr := decimal.NewFromString(req.Rate)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: rate is not a valid number", ErrInvalidInput)
		}
		if rate.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: rate must be greater than 0", ErrInvalidInput)
		}
		entry.Rate = rate
	}
	if req.EffectiveTo != "" {
		parsed, parseErr := time.Parse("2006-01-02", req.EffectiveTo)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: effective_to must be YYYY-MM-DD", ErrInvalidInput)
		}
		entry.EffectiveTo = &parsed
	}
	if req.Description != "" {
		entry.Description = req.Description
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.rateRepo.Update(txCtx, entry); saveErr != nil {
			return fmt.Errorf("failed to update exchange rate: %w", saveErr)
		}
		return s.audit(txCtx, userID, model.ActionUpdateExchangeRate, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *exchangeRateService) Delete(ctx context.Context, userID, id string) error {
	rateID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: malformed exchange rate id", ErrInvalidInput)
	}

	entry, err := s.rateRepo.FindByID(ctx, rateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch exchange rate: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.rateRepo.Delete(txCtx, rateID); deleteErr != nil {
			return fmt.Errorf("failed to delete exchange rate: %w", deleteErr)
		}
		return s.audit(txCtx, userID, model.ActionDeleteExchangeRate, entry)
	})
}

func (s *exchangeRateService) audit(ctx context.Context, userID, action string, entry *model.ExchangeRate) error {
	var actorID *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		actorID = &parsed
	}

	details, _ := json.Marshal(map[string]interface{}{
		"currency": entry.Currency,
		"rate":     entry.Rate.String(),
	})
	audit := model.AuditLog{
		UserID:     actorID,
		Action:     action,
		EntityID:   entry.ID.String(),
		EntityName: entry.Currency,
		Details:    string(details),
	}
	return s.auditRepo.Create(ctx, &audit)
}
