package service

import (
	"context"
	"math"

	"github.com/campuscare/complaint-service/internal/domain"
	"github.com/campuscare/complaint-service/internal/repository"
	apperrors "github.com/campuscare/complaint-service/pkg/util"
)

// trendWindow caps the monthly trend at the 12 most recent periods.
const trendWindow = 12

// Summary aggregates headline dashboard figures. Counts are exact
// cardinalities at call time; nothing is cached.
type Summary struct {
	Total             int64   `json:"total"`
	Pending           int64   `json:"pending"`
	InProgress        int64   `json:"inProgress"`
	Resolved          int64   `json:"resolved"`
	AvgResolutionDays float64 `json:"avgResolutionTime"`
}

// TrendPoint is one month of submissions.
type TrendPoint struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

// GroupedCount is one observed value of a dimension with its cardinality.
type GroupedCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Dashboard is the combined analytics payload.
type Dashboard struct {
	Summary Summary `json:"summary"`
	Charts  struct {
		Category      []GroupedCount `json:"category"`
		Priority      []GroupedCount `json:"priority"`
		Status        []GroupedCount `json:"status"`
		MonthlyTrends []TrendPoint   `json:"monthlyTrends"`
	} `json:"charts"`
}

// AnalyticsService computes operational aggregates over the complaint corpus.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(analytics repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analytics: analytics}
}

// Summary recomputes status counts and mean resolution latency.
func (s *AnalyticsService) Summary(ctx context.Context) (*Summary, error) {
	byStatus, err := s.analytics.GroupedCounts(ctx, "status")
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	summary := &Summary{}
	for _, gc := range byStatus {
		summary.Total += gc.Count
		switch domain.ComplaintStatus(gc.Key) {
		case domain.ComplaintStatusPending:
			summary.Pending = gc.Count
		case domain.ComplaintStatusInProgress:
			summary.InProgress = gc.Count
		case domain.ComplaintStatusResolved:
			summary.Resolved = gc.Count
		}
	}

	avg, err := s.analytics.AvgResolutionDays(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	summary.AvgResolutionDays = roundOneDecimal(avg)
	return summary, nil
}

// GroupedCounts returns one bucket per observed value of the dimension.
// Values with zero occurrences are not emitted.
func (s *AnalyticsService) GroupedCounts(ctx context.Context, dimension string) ([]GroupedCount, error) {
	if !repository.ValidDimension(dimension) {
		return nil, apperrors.NewValidationError("invalid dimension", map[string]any{"field": "dimension"})
	}
	rows, err := s.analytics.GroupedCounts(ctx, dimension)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	result := make([]GroupedCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, GroupedCount{Key: row.Key, Count: row.Count})
	}
	return result, nil
}

// MonthlyTrend returns the 12 most recent (year, month) submission counts in
// chronological ascending order.
func (s *AnalyticsService) MonthlyTrend(ctx context.Context) ([]TrendPoint, error) {
	rows, err := s.analytics.MonthlyCounts(ctx, trendWindow)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	// Repository returns most recent first; reverse into ascending order.
	points := make([]TrendPoint, len(rows))
	for i, row := range rows {
		points[len(rows)-1-i] = TrendPoint{Year: row.Year, Month: row.Month, Count: row.Count}
	}
	return points, nil
}

// Dashboard assembles the full payload the admin dashboard fetches.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{Summary: *summary}
	for _, dimension := range []string{"category", "priority", "status"} {
		counts, err := s.GroupedCounts(ctx, dimension)
		if err != nil {
			return nil, err
		}
		switch dimension {
		case "category":
			dashboard.Charts.Category = counts
		case "priority":
			dashboard.Charts.Priority = counts
		case "status":
			dashboard.Charts.Status = counts
		}
	}

	trend, err := s.MonthlyTrend(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.Charts.MonthlyTrends = trend
	return dashboard, nil
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
