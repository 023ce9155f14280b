// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage implements them; tests substitute
// in-memory mocks. Services never import a concrete storage package.
package repository

import (
	"context"

	"github.com/sakif/ecodriven/internal/model"
)

// ListOptions carries paging parameters down to storage.
//
// Limit 0 means "no limit": the query returns every matching row. The
// over-fetch-by-one trick used to detect further pages lives in the service
// layer — by the time options reach storage, Limit is already the literal
// row count to request.
type ListOptions struct {
	Limit  int
	Offset int
}

// ScoreQuery carries the score-specific filters alongside paging.
type ScoreQuery struct {
	// Type is a metric token from model.ScoreMetricTypes, or "" to project
	// every metric column. Validation upstream guarantees membership —
	// storage treats the enum as total.
	Type string

	// MaxDaysAgo restricts results to snapshots calculated within the
	// trailing N days (counted from local midnight). 0 means no window.
	MaxDaysAgo int

	Limit  int
	Offset int
}

// UserRepository persists the subject↔account mapping.
type UserRepository interface {
	// Exists reports whether an account exists for the subject.
	Exists(ctx context.Context, subject string) (bool, error)
	// Create inserts a new account and returns it with its internal ID set.
	// A duplicate subject yields apperror.ErrConflict.
	Create(ctx context.Context, subject string) (*model.User, error)
	// Delete removes the account and, by cascade, all owned journeys and
	// scores. Deleting an absent subject is not an error.
	Delete(ctx context.Context, subject string) error
}

// JourneyRepository persists trip telemetry, always scoped to one subject.
type JourneyRepository interface {
	Insert(ctx context.Context, subject string, journey *model.Journey) (int64, error)
	List(ctx context.Context, subject string, opts ListOptions) ([]model.Journey, error)
	// GetByID returns apperror.ErrNotFound when no journey with that ID
	// belongs to the subject.
	GetByID(ctx context.Context, subject string, id int64) (*model.Journey, error)
	Exists(ctx context.Context, subject string, id int64) (bool, error)
	// Update replaces every mutable field. An UPDATE matching zero rows is
	// silently a no-op — the existence pre-check is the service's job.
	Update(ctx context.Context, subject string, id int64, journey *model.Journey) error
}

// ScoreRepository persists score snapshots. Append-only: no update, no delete
// short of the owning user's cascade.
type ScoreRepository interface {
	// Insert stores a snapshot. A duplicate (user, calculatedAt) pair yields
	// apperror.ErrConflict.
	Insert(ctx context.Context, subject string, scores *model.Scores) error
	List(ctx context.Context, subject string, query ScoreQuery) ([]model.Scores, error)
}
