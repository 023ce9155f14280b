package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/ecodriven/internal/apperror"
	"github.com/sakif/ecodriven/internal/model"
	"github.com/sakif/ecodriven/internal/repository"
)

// JourneyInput is the decoded POST/PUT journey body before validation.
//
// EVERY FIELD IS A POINTER, even the required ones: a pointer distinguishes
// "key absent from the JSON" (nil) from "key present with the zero value"
// (non-nil pointing at 0). Validation needs that distinction to report
// missing required fields, and GsiAdh needs it so an omitted optional metric
// stays absent all the way into storage rather than becoming 0.
type JourneyInput struct {
	Start    *time.Time `json:"start"`
	End      *time.Time `json:"end"`
	Distance *float64   `json:"distance"`
	IdleSecs *int64     `json:"idleSecs"`
	GsiAdh   *float64   `json:"gsiAdh"`
}

// validate collects EVERY violated constraint — the API contract returns
// the full list in one response, not just the first failure found.
func (in *JourneyInput) validate() []string {
	var errs []string

	if in.Start == nil {
		errs = append(errs, `"start" is required`)
	}
	if in.End == nil {
		errs = append(errs, `"end" is required`)
	} else if in.Start != nil && !in.End.After(*in.Start) {
		errs = append(errs, `"end" must be after "start"`)
	}

	if in.Distance == nil {
		errs = append(errs, `"distance" is required`)
	} else if *in.Distance < 0 {
		errs = append(errs, `"distance" must be greater than or equal to 0`)
	}

	if in.IdleSecs == nil {
		errs = append(errs, `"idleSecs" is required`)
	} else if *in.IdleSecs < 0 {
		errs = append(errs, `"idleSecs" must be greater than or equal to 0`)
	}

	if in.GsiAdh != nil && (*in.GsiAdh < 0 || *in.GsiAdh > 100) {
		errs = append(errs, `"gsiAdh" must be between 0 and 100`)
	}

	return errs
}

// journey converts validated input into the domain model. Only call after
// validate returned no errors — required pointers are dereferenced here.
func (in *JourneyInput) journey() *model.Journey {
	return &model.Journey{
		Start:    *in.Start,
		End:      *in.End,
		Distance: *in.Distance,
		IdleSecs: *in.IdleSecs,
		GsiAdh:   in.GsiAdh,
	}
}

// JourneyService orchestrates trip-telemetry operations for one subject at
// a time; the subject always comes from the verified token, never the body.
type JourneyService struct {
	repo   repository.JourneyRepository
	logger *slog.Logger
}

// NewJourneyService creates a JourneyService.
func NewJourneyService(repo repository.JourneyRepository, logger *slog.Logger) *JourneyService {
	return &JourneyService{
		repo:   repo,
		logger: logger,
	}
}

// List returns a page of the subject's journeys, most recently ended first,
// plus the tri-state more-entries signal (nil when no limit was given).
func (s *JourneyService) List(ctx context.Context, subject string, limit, offset int) ([]model.Journey, *bool, error) {
	journeys, err := s.repo.List(ctx, subject, repository.ListOptions{
		Limit:  fetchLimit(limit),
		Offset: offset,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("listing journeys: %w", err)
	}

	page, more := trimPage(journeys, limit)
	return page, more, nil
}

// Create validates and stores a new journey, returning its generated ID.
func (s *JourneyService) Create(ctx context.Context, subject string, in *JourneyInput) (int64, error) {
	if errs := in.validate(); len(errs) > 0 {
		return 0, apperror.ValidationFailed(errs...)
	}

	id, err := s.repo.Insert(ctx, subject, in.journey())
	if err != nil {
		return 0, fmt.Errorf("creating journey: %w", err)
	}

	s.logger.Info("journey created", slog.Int64("journeyID", id))
	return id, nil
}

// Get returns one journey. A journey that doesn't exist for THIS subject is
// a not-found, even if the ID belongs to someone else.
func (s *JourneyService) Get(ctx context.Context, subject string, id int64) (*model.Journey, error) {
	journey, err := s.repo.GetByID(ctx, subject, id)
	if err != nil {
		return nil, fmt.Errorf("getting journey: %w", err)
	}
	return journey, nil
}

// Update replaces a journey wholesale after verifying it exists for the
// subject; absence is a not-found, distinct from a validation failure.
//
// READ-THEN-WRITE RACE:
// Between the existence check and the UPDATE, a concurrent DELETE /myself
// could remove the row. The UPDATE then simply matches zero rows — an
// accepted no-op, relied on instead of a transaction because single-statement
// atomicity is the only guarantee the storage model promises.
func (s *JourneyService) Update(ctx context.Context, subject string, id int64, in *JourneyInput) error {
	if errs := in.validate(); len(errs) > 0 {
		return apperror.ValidationFailed(errs...)
	}

	exists, err := s.repo.Exists(ctx, subject, id)
	if err != nil {
		return fmt.Errorf("checking journey exists: %w", err)
	}
	if !exists {
		return apperror.NotFound("Journey does not exist")
	}

	if err := s.repo.Update(ctx, subject, id, in.journey()); err != nil {
		return fmt.Errorf("updating journey: %w", err)
	}

	s.logger.Info("journey updated", slog.Int64("journeyID", id))
	return nil
}
