package model

import (
	"time"
)

// StatisticsResponse aggregates workflow and financial totals over a time range
type StatisticsResponse struct {
	PendingCount       int               `json:"pending_count"`
	ApprovedCount      int               `json:"approved_count"`
	RejectedCount      int               `json:"rejected_count"`
	ApprovedRevenue    float64           `json:"approved_revenue"`
	ApprovedMargin     float64           `json:"approved_margin"`
	ApprovedCommission float64           `json:"approved_commission"`
	TopSalesmen        []SalesmanRanking `json:"top_salesmen"`
	TimeRangeStartDate time.Time         `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time         `json:"time_range_end_date"`
}

// SalesmanRanking represents a salesman ranked by approved gross margin
type SalesmanRanking struct {
	Salesman    string  `json:"salesman"`
	DealCount   int     `json:"deal_count"`
	TotalMargin float64 `json:"total_margin"`
}
