// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite?
// It's a pure-Go translation of the SQLite C sources — no CGo, no C
// compiler, trivially cross-compiled. The blank import below registers it
// with database/sql as the "sqlite" driver.
//
// sql.DB is itself the connection pool: checkout/return is concurrency-safe,
// and per-statement atomicity is the only consistency guarantee the rest of
// the application relies on. Multi-statement sequences (the journey-update
// existence pre-check) are deliberately not wrapped in transactions — see the
// service layer.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB owns the sql.DB pool. The per-entity repository implementations are
// views over the same pool, obtained via Users(), Journeys(), and Scores() —
// separate types because the three interfaces overlap in method names.
type DB struct {
	conn *sql.DB
}

// New opens the database, applies connection pragmas, and runs migrations.
//
// dbPath examples:
//   - "data/ecodriven.db" → file-based, persistent
//   - ":memory:"          → in-memory, lost on close (used by tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path or permissions problem
	// surfaces here rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight — without it
	// SQLite locks the whole file per write, which stalls a web server.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Referential integrity: deleting a user must cascade to their journeys
	// and scores. OFF by default in SQLite for legacy reasons.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	// Statement-execution ceiling: a statement blocked on a lock gives up
	// after 5s instead of queueing indefinitely.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always deferred next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent.
//
// Conceptual model:
//
//	users    1 ─ * journeys   (ON DELETE CASCADE)
//	users    1 ─ * scores     (ON DELETE CASCADE)
//
// The UNIQUE constraints carry the two uniqueness invariants the services
// rely on: one account per provider subject, and at most one score snapshot
// per (user, calculated_at). Violations surface as constraint errors that
// isUniqueViolation recognises.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS journeys (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			start_time DATETIME NOT NULL,
			end_time   DATETIME NOT NULL,
			distance   REAL NOT NULL,
			idle_secs  INTEGER NOT NULL,
			gsi_adh    REAL
		);
		CREATE INDEX IF NOT EXISTS idx_journeys_user_end
			ON journeys(user_id, end_time DESC);

		CREATE TABLE IF NOT EXISTS scores (
			user_id              INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			calculated_at        DATETIME NOT NULL,
			eco_driving          INTEGER NOT NULL,
			driv_acc_smoothness  INTEGER,
			start_acc_smoothness INTEGER,
			dec_smoothness       INTEGER,
			gsi_adh              INTEGER,
			speed_limit_adh      INTEGER,
			motorway_speed       INTEGER,
			idle_duration        INTEGER,
			journey_idle_pct     INTEGER,
			journey_distance     INTEGER,
			UNIQUE (user_id, calculated_at)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite uniqueness-constraint
// failure. This is the hook for the optimistic-insert pattern: attempt the
// write, and translate exactly this error class into a client-visible
// conflict while every other storage failure propagates untouched.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// round keeps num to ndigits decimal places. Telemetry arrives with float
// noise (12.300000000000001 km); we store the canonical rounding instead.
func round(num float64, ndigits int) float64 {
	multiplier := math.Pow(10, float64(ndigits))
	return math.Round(num*multiplier) / multiplier
}

// utc normalises a timestamp before it is bound as a parameter. SQLite
// stores time values as text, so a single zone keeps comparisons and
// ORDER BY consistent regardless of what offset the client sent.
func utc(t time.Time) time.Time {
	return t.UTC()
}

// nullFloat adapts an optional float for binding; nil becomes SQL NULL.
func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

// nullInt adapts an optional integer for binding; nil becomes SQL NULL.
func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// floatPtr converts a scanned nullable column back to an optional field.
// This conversion is where NULL placeholders die: a NULL column becomes a
// nil pointer, which json omits entirely, while a stored 0 comes back as a
// real 0. Applied on every read path, never to request payloads.
func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// intPtr is floatPtr for integer columns.
func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
