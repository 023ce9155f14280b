package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/ecodriven/internal/apperror"
	"github.com/sakif/ecodriven/internal/model"
	"github.com/sakif/ecodriven/internal/repository"
)

// UserRepo implements repository.UserRepository on the shared pool.
type UserRepo struct {
	conn *sql.DB
}

// Users returns the user repository view of this database.
func (db *DB) Users() *UserRepo {
	return &UserRepo{conn: db.conn}
}

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

// Exists reports whether an account exists for the given provider subject.
func (r *UserRepo) Exists(ctx context.Context, subject string) (bool, error) {
	var id int64
	err := r.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE subject = ?`,
		subject,
	).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking user exists: %w", err)
	}

	return true, nil
}

// Create inserts a new account row for the subject and returns the stored
// user with its generated ID.
//
// OPTIMISTIC INSERT:
// We do not pre-check for an existing subject — we just insert and let the
// UNIQUE constraint arbitrate. Two concurrent registrations for the same
// subject therefore resolve to exactly one success and one conflict with no
// race window, and the common case costs a single round trip.
func (r *UserRepo) Create(ctx context.Context, subject string) (*model.User, error) {
	result, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (subject) VALUES (?)`,
		subject,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("User already exists")
		}
		return nil, fmt.Errorf("sqlite: inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading new user id: %w", err)
	}

	return &model.User{ID: id, Subject: subject}, nil
}

// Delete removes the account for the subject. The journeys and scores
// cascades are handled by the schema's ON DELETE CASCADE clauses.
//
// No RowsAffected check: deleting a subject that was never registered (or
// was already deleted) is an acceptable no-op, which makes DELETE /myself
// idempotent by construction.
func (r *UserRepo) Delete(ctx context.Context, subject string) error {
	_, err := r.conn.ExecContext(ctx,
		`DELETE FROM users WHERE subject = ?`,
		subject,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user: %w", err)
	}

	return nil
}
