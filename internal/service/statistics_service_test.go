package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTransaction(t *testing.T, db *gorm.DB, orderID, status, salesman string, revenue, margin string) {
	t.Helper()

	require.NoError(t, db.Create(&model.Transaction{
		OrderID:        orderID,
		ClientName:     "client",
		Salesman:       salesman,
		ApprovalStatus: status,
		SubmissionDate: time.Now().AddDate(0, 0, -1),
		TotalRevenue:   decimal.RequireFromString(revenue),
		GrossMargin:    decimal.RequireFromString(margin),
		Commission:     decimal.RequireFromString(revenue).Mul(decimal.RequireFromString("0.1")),
	}).Error)
}

func TestStatistics(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatisticsService(repository.NewStatisticsRepository(db))

	seedTransaction(t, db, "ORD-1", model.StatusPending, "alice", "1000", "300")
	seedTransaction(t, db, "ORD-2", model.StatusApproved, "alice", "2000", "800")
	seedTransaction(t, db, "ORD-3", model.StatusApproved, "bob", "5000", "1500")
	seedTransaction(t, db, "ORD-4", model.StatusRejected, "bob", "4000", "-100")

	stats, err := svc.GetStatistics(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, 2, stats.ApprovedCount)
	assert.Equal(t, 1, stats.RejectedCount)

	// Only APPROVED rows contribute to the totals
	assert.InDelta(t, 7000, stats.ApprovedRevenue, 1e-6)
	assert.InDelta(t, 2300, stats.ApprovedMargin, 1e-6)
	assert.InDelta(t, 700, stats.ApprovedCommission, 1e-6)

	require.Len(t, stats.TopSalesmen, 2)
	assert.Equal(t, "bob", stats.TopSalesmen[0].Salesman)
	assert.InDelta(t, 1500, stats.TopSalesmen[0].TotalMargin, 1e-6)
	assert.Equal(t, "alice", stats.TopSalesmen[1].Salesman)
}

func TestStatisticsTimeRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatisticsService(repository.NewStatisticsRepository(db))

	// One recent, one far outside any reasonable window
	seedTransaction(t, db, "ORD-1", model.StatusApproved, "alice", "1000", "300")
	require.NoError(t, db.Create(&model.Transaction{
		OrderID:        "ORD-OLD",
		ClientName:     "client",
		Salesman:       "alice",
		ApprovalStatus: model.StatusApproved,
		SubmissionDate: time.Now().AddDate(-2, 0, 0),
		TotalRevenue:   decimal.RequireFromString("9999"),
	}).Error)

	stats, err := svc.GetStatistics(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ApprovedCount)
	assert.InDelta(t, 1000, stats.ApprovedRevenue, 1e-6)

	// Explicit range covering everything
	from := time.Now().AddDate(-3, 0, 0).Format("2006-01-02")
	to := time.Now().Format("2006-01-02")
	stats, err = svc.GetStatistics(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ApprovedCount)
}

func TestStatisticsInvalidRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatisticsService(repository.NewStatisticsRepository(db))

	_, err := svc.GetStatistics(context.Background(), "yesterday", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GetStatistics(context.Background(), "2026-06-01", "2026-01-01")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "precedes")
}

func TestStatisticsTopSalesmenLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatisticsService(repository.NewStatisticsRepository(db))

	for i := 0; i < topSalesmenLimit+2; i++ {
		seedTransaction(t, db, fmt.Sprintf("ORD-%d", i), model.StatusApproved, fmt.Sprintf("rep-%d", i), "1000", "100")
	}

	stats, err := svc.GetStatistics(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, stats.TopSalesmen, topSalesmenLimit)
}
