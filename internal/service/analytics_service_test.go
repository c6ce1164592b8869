package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/complaint-service/internal/repository"
	"github.com/campuscare/complaint-service/internal/service"
)

func TestSummarySumsStatusBuckets(t *testing.T) {
	analytics := new(MockAnalyticsRepository)
	analytics.On("GroupedCounts", mock.Anything, "status").Return([]repository.GroupCount{
		{Key: "pending", Count: 4},
		{Key: "in-progress", Count: 3},
		{Key: "resolved", Count: 2},
		{Key: "closed", Count: 1},
	}, nil)
	analytics.On("AvgResolutionDays", mock.Anything).Return(2.3499, nil)

	svc := service.NewAnalyticsService(analytics)
	summary, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(10), summary.Total)
	assert.Equal(t, int64(4), summary.Pending)
	assert.Equal(t, int64(3), summary.InProgress)
	assert.Equal(t, int64(2), summary.Resolved)
	assert.InDelta(t, 2.3, summary.AvgResolutionDays, 1e-9)
}

func TestSummaryEmptyCorpus(t *testing.T) {
	analytics := new(MockAnalyticsRepository)
	analytics.On("GroupedCounts", mock.Anything, "status").Return([]repository.GroupCount{}, nil)
	analytics.On("AvgResolutionDays", mock.Anything).Return(0.0, nil)

	svc := service.NewAnalyticsService(analytics)
	summary, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Total)
	assert.Equal(t, 0.0, summary.AvgResolutionDays)
}

func TestGroupedCountsRejectsUnknownDimension(t *testing.T) {
	svc := service.NewAnalyticsService(new(MockAnalyticsRepository))

	_, err := svc.GroupedCounts(context.Background(), "submitted_by")
	expectDomainCode(t, err, "VALIDATION_FAILED")
}

func TestGroupedCountsOmitsZeroBuckets(t *testing.T) {
	analytics := new(MockAnalyticsRepository)
	analytics.On("GroupedCounts", mock.Anything, "category").Return([]repository.GroupCount{
		{Key: "hostel", Count: 7},
		{Key: "wifi", Count: 2},
	}, nil)

	svc := service.NewAnalyticsService(analytics)
	counts, err := svc.GroupedCounts(context.Background(), "category")

	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "hostel", counts[0].Key)
	assert.Equal(t, int64(7), counts[0].Count)
}

func TestMonthlyTrendAscendsAcrossYearBoundary(t *testing.T) {
	analytics := new(MockAnalyticsRepository)
	// The repository emits most recent first.
	analytics.On("MonthlyCounts", mock.Anything, 12).Return([]repository.MonthCount{
		{Year: 2026, Month: 2, Count: 5},
		{Year: 2026, Month: 1, Count: 3},
		{Year: 2025, Month: 12, Count: 8},
	}, nil)

	svc := service.NewAnalyticsService(analytics)
	trend, err := svc.MonthlyTrend(context.Background())

	require.NoError(t, err)
	require.Len(t, trend, 3)
	assert.Equal(t, service.TrendPoint{Year: 2025, Month: 12, Count: 8}, trend[0])
	assert.Equal(t, service.TrendPoint{Year: 2026, Month: 1, Count: 3}, trend[1])
	assert.Equal(t, service.TrendPoint{Year: 2026, Month: 2, Count: 5}, trend[2])
}

func TestDashboardAssemblesAllCharts(t *testing.T) {
	analytics := new(MockAnalyticsRepository)
	analytics.On("GroupedCounts", mock.Anything, "status").Return([]repository.GroupCount{
		{Key: "pending", Count: 2},
		{Key: "resolved", Count: 1},
	}, nil)
	analytics.On("GroupedCounts", mock.Anything, "category").Return([]repository.GroupCount{
		{Key: "food", Count: 3},
	}, nil)
	analytics.On("GroupedCounts", mock.Anything, "priority").Return([]repository.GroupCount{
		{Key: "high", Count: 1},
		{Key: "medium", Count: 2},
	}, nil)
	analytics.On("AvgResolutionDays", mock.Anything).Return(1.0, nil)
	analytics.On("MonthlyCounts", mock.Anything, 12).Return([]repository.MonthCount{
		{Year: 2026, Month: 8, Count: 3},
	}, nil)

	svc := service.NewAnalyticsService(analytics)
	dashboard, err := svc.Dashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), dashboard.Summary.Total)
	require.Len(t, dashboard.Charts.Category, 1)
	require.Len(t, dashboard.Charts.Priority, 2)
	require.Len(t, dashboard.Charts.Status, 2)
	require.Len(t, dashboard.Charts.MonthlyTrends, 1)

	var statusSum int64
	for _, bucket := range dashboard.Charts.Status {
		statusSum += bucket.Count
	}
	assert.Equal(t, dashboard.Summary.Total, statusSum)
}
