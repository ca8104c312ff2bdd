package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestExchangeRateService(db *gorm.DB) ExchangeRateService {
	return NewExchangeRateService(
		repository.NewExchangeRateRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
	)
}

func TestExchangeRateCRUD(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExchangeRateService(db)
	admin := createTestUser(t, db, "boss", model.RoleAdmin)
	ctx := context.Background()

	created, err := svc.Create(ctx, admin.ID.String(), CreateExchangeRateRequest{
		Currency:      "USD",
		Rate:          "3.75",
		EffectiveFrom: "2026-01-01",
		Description:   "reference rate",
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", created.Currency)
	assert.True(t, created.Rate.Equal(decimal.RequireFromString("3.75")))
	assert.Nil(t, created.EffectiveTo)

	rates, err := svc.List(ctx, "USD")
	require.NoError(t, err)
	require.Len(t, rates, 1)

	updated, err := svc.Update(ctx, admin.ID.String(), created.ID.String(), UpdateExchangeRateRequest{
		Rate:        "3.80",
		EffectiveTo: "2026-06-30",
	})
	require.NoError(t, err)
	assert.True(t, updated.Rate.Equal(decimal.RequireFromString("3.80")))
	require.NotNil(t, updated.EffectiveTo)

	require.NoError(t, svc.Delete(ctx, admin.ID.String(), created.ID.String()))

	rates, err = svc.List(ctx, "USD")
	require.NoError(t, err)
	assert.Empty(t, rates)

	// Every mutation is audited
	var auditCount int64
	require.NoError(t, db.Model(&model.AuditLog{}).
		Where("action IN ?", []string{model.ActionCreateExchangeRate, model.ActionUpdateExchangeRate, model.ActionDeleteExchangeRate}).
		Count(&auditCount).Error)
	assert.EqualValues(t, 3, auditCount)
}

func TestExchangeRateCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExchangeRateService(db)
	admin := createTestUser(t, db, "boss", model.RoleAdmin)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateExchangeRateRequest
	}{
		{
			name: "unparseable rate",
			req:  CreateExchangeRateRequest{Currency: "USD", Rate: "abc", EffectiveFrom: "2026-01-01"},
		},
		{
			name: "non-positive rate",
			req:  CreateExchangeRateRequest{Currency: "USD", Rate: "0", EffectiveFrom: "2026-01-01"},
		},
		{
			name: "bad effective_from",
			req:  CreateExchangeRateRequest{Currency: "USD", Rate: "3.8", EffectiveFrom: "January 1st"},
		},
		{
			name: "effective_to before effective_from",
			req:  CreateExchangeRateRequest{Currency: "USD", Rate: "3.8", EffectiveFrom: "2026-06-01", EffectiveTo: "2026-01-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, admin.ID.String(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExchangeRateUpdateNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExchangeRateService(db)
	admin := createTestUser(t, db, "boss", model.RoleAdmin)

	_, err := svc.Update(context.Background(), admin.ID.String(), "00000000-0000-0000-0000-000000000000", UpdateExchangeRateRequest{Rate: "4"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), admin.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}
