package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
)

const topSalesmenLimit = 5

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate string) (*model.StatisticsResponse, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo}
}

// GetStatistics aggregates workflow counts and approved financial
// totals over the given range. Dates are YYYY-MM-DD; the default
// window is the last 30 days.
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate string) (*model.StatisticsResponse, error) {
	start, end, err := resolveTimeRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	stats := &model.StatisticsResponse{
		TimeRangeStartDate: start,
		TimeRangeEndDate:   end,
	}

	if stats.PendingCount, err = s.repo.CountByStatus(ctx, model.StatusPending, start, end); err != nil {
		return nil, err
	}
	if stats.ApprovedCount, err = s.repo.CountByStatus(ctx, model.StatusApproved, start, end); err != nil {
		return nil, err
	}
	if stats.RejectedCount, err = s.repo.CountByStatus(ctx, model.StatusRejected, start, end); err != nil {
		return nil, err
	}

	stats.ApprovedRevenue, stats.ApprovedMargin, stats.ApprovedCommission, err = s.repo.ApprovedTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if stats.TopSalesmen, err = s.repo.TopSalesmen(ctx, start, end, topSalesmenLimit); err != nil {
		return nil, err
	}

	return stats, nil
}

func resolveTimeRange(startDate, endDate string) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidInput)
		}
		start = parsed
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidInput)
		}
		// Inclusive through the end of the day
		end = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date precedes start_date", ErrInvalidInput)
	}

	return start, end, nil
}
