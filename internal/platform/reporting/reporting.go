// Package reporting computes operational measures over stored predictions.
// Measures are plain aggregate queries; nothing here mutates data.
package reporting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Summary is the headline view of scoring activity.
type Summary struct {
	TotalPredictions int        `json:"total_predictions"`
	ByTier           TierCounts `json:"by_tier"`
	PositiveFindings int        `json:"positive_findings"`
	FallbackCount    int        `json:"fallback_count"`
	FallbackRate     float64    `json:"fallback_rate"`
	DistinctUsers    int        `json:"distinct_users"`
}

type TierCounts struct {
	Low      int `json:"low"`
	Moderate int `json:"moderate"`
	High     int `json:"high"`
}

// DailyCount is one day of prediction volume.
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

type Reporter struct {
	pool *pgxpool.Pool
}

func NewReporter(pool *pgxpool.Pool) *Reporter {
	return &Reporter{pool: pool}
}

func (r *Reporter) Summary(ctx context.Context) (*Summary, error) {
	s := &Summary{}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE tier = 'low'),
			COUNT(*) FILTER (WHERE tier = 'moderate'),
			COUNT(*) FILTER (WHERE tier = 'high'),
			COUNT(*) FILTER (WHERE has_condition),
			COUNT(*) FILTER (WHERE source = 'fallback'),
			COUNT(DISTINCT user_id)
		FROM prediction`).Scan(
		&s.TotalPredictions,
		&s.ByTier.Low, &s.ByTier.Moderate, &s.ByTier.High,
		&s.PositiveFindings, &s.FallbackCount, &s.DistinctUsers,
	)
	if err != nil {
		return nil, err
	}
	s.FallbackRate = fallbackRate(s.FallbackCount, s.TotalPredictions)
	return s, nil
}

// fallbackRate is the share of predictions served from the fallback model.
// Zero activity yields a zero rate rather than a division error.
func fallbackRate(fallback, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(fallback) / float64(total)
}

// clampWindow bounds the trailing-window length for daily reports, defaulting
// to 30 days when the requested value is missing or out of range.
func clampWindow(days int) int {
	if days <= 0 || days > 365 {
		return 30
	}
	return days
}

// Daily returns prediction volume per day for the trailing window. Days with
// no activity are omitted.
func (r *Reporter) Daily(ctx context.Context, days int) ([]DailyCount, error) {
	days = clampWindow(days)
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day, COUNT(*)
		FROM prediction
		WHERE created_at >= now() - ($1 * interval '1 day')
		GROUP BY day
		ORDER BY day`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]DailyCount, 0, days)
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}
