package repository

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"

	"gorm.io/gorm"
)

type StatisticsRepository interface {
	CountByStatus(ctx context.Context, status string, start, end time.Time) (int, error)
	ApprovedTotals(ctx context.Context, start, end time.Time) (revenue, margin, commission float64, err error)
	TopSalesmen(ctx context.Context, start, end time.Time, limit int) ([]model.SalesmanRanking, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) CountByStatus(ctx context.Context, status string, start, end time.Time) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("approval_status = ? AND submission_date >= ? AND submission_date <= ?", status, start, end).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s transactions: %w", status, err)
	}
	return int(count), nil
}

func (r *statisticsRepository) ApprovedTotals(ctx context.Context, start, end time.Time) (float64, float64, float64, error) {
	var totals struct {
		Revenue    float64
		Margin     float64
		Commission float64
	}
	if err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("COALESCE(SUM(total_revenue), 0) as revenue, COALESCE(SUM(gross_margin), 0) as margin, COALESCE(SUM(commission), 0) as commission").
		Where("approval_status = ? AND submission_date >= ? AND submission_date <= ?", model.StatusApproved, start, end).
		Scan(&totals).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to aggregate approved totals: %w", err)
	}
	return totals.Revenue, totals.Margin, totals.Commission, nil
}

func (r *statisticsRepository) TopSalesmen(ctx context.Context, start, end time.Time, limit int) ([]model.SalesmanRanking, error) {
	var rankings []model.SalesmanRanking
	if err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("salesman, COUNT(*) as deal_count, COALESCE(SUM(gross_margin), 0) as total_margin").
		Where("approval_status = ? AND submission_date >= ? AND submission_date <= ?", model.StatusApproved, start, end).
		Group("salesman").
		Order("total_margin DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top salesmen: %w", err)
	}
	return rankings, nil
}
