package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/ecodriven/internal/apperror"
	"github.com/sakif/ecodriven/internal/model"
	"github.com/sakif/ecodriven/internal/repository"
)

// JourneyRepo implements repository.JourneyRepository on the shared pool.
type JourneyRepo struct {
	conn *sql.DB
}

// Journeys returns the journey repository view of this database.
func (db *DB) Journeys() *JourneyRepo {
	return &JourneyRepo{conn: db.conn}
}

// compile-time check that *JourneyRepo implements repository.JourneyRepository
var _ repository.JourneyRepository = (*JourneyRepo)(nil)

// journeyColumns is the SELECT list shared by every journey read path, in
// scan order.
const journeyColumns = `j.id, j.start_time, j.end_time, j.distance, j.idle_secs, j.gsi_adh`

// Insert stores a new journey for the subject and returns the generated ID.
//
// Telemetry precision is canonicalised at this boundary: distance to one
// decimal place, gear-shift adherence to two. The user row is resolved by a
// subquery so callers only ever speak in provider subjects.
func (r *JourneyRepo) Insert(ctx context.Context, subject string, journey *model.Journey) (int64, error) {
	var gsiAdh sql.NullFloat64
	if journey.GsiAdh != nil {
		rounded := round(*journey.GsiAdh, 2)
		gsiAdh = sql.NullFloat64{Float64: rounded, Valid: true}
	}

	result, err := r.conn.ExecContext(ctx,
		`INSERT INTO journeys (user_id, start_time, end_time, distance, idle_secs, gsi_adh)
		 VALUES ((SELECT id FROM users WHERE subject = ?), ?, ?, ?, ?, ?)`,
		subject,
		utc(journey.Start),
		utc(journey.End),
		round(journey.Distance, 1),
		journey.IdleSecs,
		gsiAdh,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: inserting journey: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading new journey id: %w", err)
	}

	return id, nil
}

// List returns the subject's journeys, most recently ended first.
//
// LIMIT -1 is SQLite's "no limit" — needed because OFFSET cannot appear
// without a LIMIT clause. The limit value arrives pre-adjusted from the
// pagination engine (it already includes the +1 look-ahead row when a page
// size was requested).
func (r *JourneyRepo) List(ctx context.Context, subject string, opts repository.ListOptions) ([]model.Journey, error) {
	query := `SELECT ` + journeyColumns + `
		 FROM journeys j
		 INNER JOIN users u ON u.id = j.user_id
		 WHERE u.subject = ?
		 ORDER BY j.end_time DESC
		 LIMIT ?`
	args := []any{subject, noLimit(opts.Limit)}

	if opts.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, opts.Offset)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing journeys: %w", err)
	}
	defer rows.Close()

	journeys := []model.Journey{}
	for rows.Next() {
		journey, err := scanJourney(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning journey row: %w", err)
		}
		journeys = append(journeys, *journey)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating journeys: %w", err)
	}

	return journeys, nil
}

// GetByID returns one journey, scoped to the subject. A journey owned by a
// different user is indistinguishable from one that doesn't exist.
func (r *JourneyRepo) GetByID(ctx context.Context, subject string, id int64) (*model.Journey, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+journeyColumns+`
		 FROM journeys j
		 INNER JOIN users u ON u.id = j.user_id
		 WHERE u.subject = ? AND j.id = ?`,
		subject, id,
	)

	journey, err := scanJourney(row)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound("Journey does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting journey %d: %w", id, err)
	}

	return journey, nil
}

// Exists reports whether the subject owns a journey with the given ID.
func (r *JourneyRepo) Exists(ctx context.Context, subject string, id int64) (bool, error) {
	var found int64
	err := r.conn.QueryRowContext(ctx,
		`SELECT j.id
		 FROM journeys j
		 INNER JOIN users u ON u.id = j.user_id
		 WHERE u.subject = ? AND j.id = ?`,
		subject, id,
	).Scan(&found)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking journey exists: %w", err)
	}

	return true, nil
}

// Update replaces every mutable field of the journey (full replacement — the
// API has no partial patch). Matching zero rows is not an error here: the
// service pre-checked existence, and if the row vanished in between, the
// no-op write is the accepted outcome of that race.
func (r *JourneyRepo) Update(ctx context.Context, subject string, id int64, journey *model.Journey) error {
	var gsiAdh sql.NullFloat64
	if journey.GsiAdh != nil {
		rounded := round(*journey.GsiAdh, 2)
		gsiAdh = sql.NullFloat64{Float64: rounded, Valid: true}
	}

	_, err := r.conn.ExecContext(ctx,
		`UPDATE journeys SET
			start_time = ?,
			end_time = ?,
			distance = ?,
			idle_secs = ?,
			gsi_adh = ?
		 WHERE user_id = (SELECT id FROM users WHERE subject = ?) AND id = ?`,
		utc(journey.Start),
		utc(journey.End),
		round(journey.Distance, 1),
		journey.IdleSecs,
		gsiAdh,
		subject,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating journey %d: %w", id, err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows, letting the single
// and multi-row read paths share one scan routine.
type scanner interface {
	Scan(dest ...any) error
}

func scanJourney(row scanner) (*model.Journey, error) {
	var journey model.Journey
	var gsiAdh sql.NullFloat64

	err := row.Scan(
		&journey.ID,
		&journey.Start,
		&journey.End,
		&journey.Distance,
		&journey.IdleSecs,
		&gsiAdh,
	)
	if err != nil {
		return nil, err
	}

	journey.GsiAdh = floatPtr(gsiAdh)
	return &journey, nil
}

// noLimit maps "no page size requested" onto SQLite's unlimited sentinel.
func noLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
