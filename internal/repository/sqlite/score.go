package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/ecodriven/internal/apperror"
	"github.com/sakif/ecodriven/internal/model"
	"github.com/sakif/ecodriven/internal/repository"
)

// ScoreRepo implements repository.ScoreRepository on the shared pool.
type ScoreRepo struct {
	conn *sql.DB
}

// Scores returns the score repository view of this database.
func (db *DB) Scores() *ScoreRepo {
	return &ScoreRepo{conn: db.conn}
}

// compile-time check that *ScoreRepo implements repository.ScoreRepository
var _ repository.ScoreRepository = (*ScoreRepo)(nil)

// metricColumns maps each metric type token to its storage column, in the
// same order as model.ScoreMetricTypes. The registry is deliberately the
// projection builder's ONLY knowledge of the enum: validation guarantees
// membership before a token reaches this package, so lookups here are total
// and any unknown token simply falls through to "project everything".
var metricColumns = map[string]string{
	"ecoDriving":         "eco_driving",
	"drivAccSmoothness":  "driv_acc_smoothness",
	"startAccSmoothness": "start_acc_smoothness",
	"decSmoothness":      "dec_smoothness",
	"gsiAdh":             "gsi_adh",
	"speedLimitAdh":      "speed_limit_adh",
	"motorwaySpeed":      "motorway_speed",
	"idleDuration":       "idle_duration",
	"journeyIdlePct":     "journey_idle_pct",
	"journeyDistance":    "journey_distance",
}

// projectMetrics decides which metric tokens a query retrieves: the single
// requested one, or all ten when no type filter was given.
func projectMetrics(metricType string) []string {
	if _, ok := metricColumns[metricType]; ok {
		return []string{metricType}
	}
	return model.ScoreMetricTypes
}

// Insert stores a score snapshot for the subject.
//
// Same optimistic-insert shape as user creation: no existence pre-check, the
// UNIQUE (user_id, calculated_at) constraint arbitrates, and exactly that
// violation is translated into the fixed client-visible conflict message.
func (r *ScoreRepo) Insert(ctx context.Context, subject string, scores *model.Scores) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO scores (
			user_id,
			calculated_at,
			eco_driving,
			driv_acc_smoothness,
			start_acc_smoothness,
			dec_smoothness,
			gsi_adh,
			speed_limit_adh,
			motorway_speed,
			idle_duration,
			journey_idle_pct,
			journey_distance
		) VALUES ((SELECT id FROM users WHERE subject = ?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		subject,
		utc(scores.CalculatedAt),
		nullInt(scores.EcoDriving),
		nullInt(scores.DrivAccSmoothness),
		nullInt(scores.StartAccSmoothness),
		nullInt(scores.DecSmoothness),
		nullInt(scores.GsiAdh),
		nullInt(scores.SpeedLimitAdh),
		nullInt(scores.MotorwaySpeed),
		nullInt(scores.IdleDuration),
		nullInt(scores.JourneyIdlePct),
		nullInt(scores.JourneyDistance),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Scores calculated at that time already exist")
		}
		return fmt.Errorf("sqlite: inserting scores: %w", err)
	}

	return nil
}

// List returns the subject's score snapshots, newest first, with the metric
// projection, day window, and paging from the query applied.
//
// The window bounds are computed here in Go rather than with SQL date
// functions: timestamps are stored normalised to UTC, so binding two UTC
// instants compares exactly. The upper bound is always tomorrow's midnight —
// a snapshot "calculated" slightly in the future due to device clock skew
// still shows up, anything further out doesn't. The lower bound (midnight,
// maxDaysAgo days back) makes a snapshot exactly N days old inclusive.
func (r *ScoreRepo) List(ctx context.Context, subject string, query repository.ScoreQuery) ([]model.Scores, error) {
	projected := projectMetrics(query.Type)

	cols := make([]string, 0, len(projected))
	for _, token := range projected {
		cols = append(cols, "s."+metricColumns[token])
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	upperBound := today.AddDate(0, 0, 1)

	sqlQuery := `SELECT s.calculated_at, ` + strings.Join(cols, ", ") + `
		 FROM scores s
		 INNER JOIN users u ON u.id = s.user_id
		 WHERE u.subject = ? AND s.calculated_at <= ?`
	args := []any{subject, upperBound}

	if query.MaxDaysAgo > 0 {
		// Snapshots calculated since 00:00 on each day within the window.
		lowerBound := today.AddDate(0, 0, -query.MaxDaysAgo)
		sqlQuery += ` AND s.calculated_at >= ?`
		args = append(args, lowerBound)
	}

	sqlQuery += ` ORDER BY s.calculated_at DESC LIMIT ?`
	args = append(args, noLimit(query.Limit))

	if query.Offset > 0 {
		sqlQuery += ` OFFSET ?`
		args = append(args, query.Offset)
	}

	rows, err := r.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing scores: %w", err)
	}
	defer rows.Close()

	results := []model.Scores{}
	for rows.Next() {
		var scores model.Scores

		// The projection is dynamic, so the scan targets are too: one
		// nullable cell per projected metric, in column order.
		cells := make([]sql.NullInt64, len(projected))
		dest := make([]any, 0, len(projected)+1)
		dest = append(dest, &scores.CalculatedAt)
		for i := range cells {
			dest = append(dest, &cells[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("sqlite: scanning scores row: %w", err)
		}

		for i, token := range projected {
			setMetric(&scores, token, intPtr(cells[i]))
		}

		results = append(results, scores)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating scores: %w", err)
	}

	return results, nil
}

// setMetric routes a scanned cell into the matching struct field. The switch
// is total over the registry above; the empty default can only be reached if
// the two ever drift, which is a bug in the registry, not a runtime
// condition to recover from.
func setMetric(scores *model.Scores, token string, value *int64) {
	switch token {
	case "ecoDriving":
		scores.EcoDriving = value
	case "drivAccSmoothness":
		scores.DrivAccSmoothness = value
	case "startAccSmoothness":
		scores.StartAccSmoothness = value
	case "decSmoothness":
		scores.DecSmoothness = value
	case "gsiAdh":
		scores.GsiAdh = value
	case "speedLimitAdh":
		scores.SpeedLimitAdh = value
	case "motorwaySpeed":
		scores.MotorwaySpeed = value
	case "idleDuration":
		scores.IdleDuration = value
	case "journeyIdlePct":
		scores.JourneyIdlePct = value
	case "journeyDistance":
		scores.JourneyDistance = value
	}
}
