package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GroupCount is one bucket of a grouped aggregation.
type GroupCount struct {
	Key   string
	Count int64
}

// MonthCount is one point of the monthly submission trend.
type MonthCount struct {
	Year  int
	Month int
	Count int64
}

// Dimensions accepted by GroupedCounts. Column names are whitelisted here;
// the dimension never reaches SQL as caller input.
var groupDimensions = map[string]string{
	"category": "category",
	"priority": "priority",
	"status":   "status",
}

// ValidDimension reports whether GroupedCounts accepts the dimension.
func ValidDimension(dimension string) bool {
	_, ok := groupDimensions[dimension]
	return ok
}

// AnalyticsRepository runs aggregation queries over the complaint corpus.
// Results are computed at call time; nothing is cached.
type AnalyticsRepository interface {
	GroupedCounts(ctx context.Context, dimension string) ([]GroupCount, error)
	// AvgResolutionDays averages (resolved_at - created_at) in days over
	// complaints currently resolved with resolved_at set. Zero when none.
	AvgResolutionDays(ctx context.Context) (float64, error)
	// MonthlyCounts returns up to limit most recent (year, month) groups,
	// most recent first.
	MonthlyCounts(ctx context.Context, limit int) ([]MonthCount, error)
}

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository instantiates repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) GroupedCounts(ctx context.Context, dimension string) ([]GroupCount, error) {
	column, ok := groupDimensions[dimension]
	if !ok {
		return nil, fmt.Errorf("unsupported dimension %q", dimension)
	}

	query := fmt.Sprintf(`SELECT %s, COUNT(*) FROM complaints GROUP BY %s ORDER BY %s`, column, column, column)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []GroupCount
	for rows.Next() {
		var gc GroupCount
		if err := rows.Scan(&gc.Key, &gc.Count); err != nil {
			return nil, err
		}
		result = append(result, gc)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) AvgResolutionDays(ctx context.Context) (float64, error) {
	const query = `
        SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 86400.0), 0)
        FROM complaints
        WHERE status='resolved' AND resolved_at IS NOT NULL`

	var avg float64
	if err := r.pool.QueryRow(ctx, query).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *analyticsRepository) MonthlyCounts(ctx context.Context, limit int) ([]MonthCount, error) {
	if limit <= 0 {
		limit = 12
	}
	const query = `
        SELECT EXTRACT(YEAR FROM created_at)::int AS year,
               EXTRACT(MONTH FROM created_at)::int AS month,
               COUNT(*)
        FROM complaints
        GROUP BY year, month
        ORDER BY year DESC, month DESC
        LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MonthCount
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.Year, &mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		result = append(result, mc)
	}
	return result, rows.Err()
}
