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

// ScoresInput is the decoded POST /scores body before validation. Same
// pointer convention as JourneyInput: nil means the key was absent, and the
// nine optional metrics that stay nil are stored as NULL and therefore come
// back absent on every subsequent read.
type ScoresInput struct {
	CalculatedAt      *time.Time `json:"calculatedAt"`
	EcoDriving        *int64     `json:"ecoDriving"`
	DrivAccSmoothness *int64     `json:"drivAccSmoothness"`
	StartAccSmoothness *int64    `json:"startAccSmoothness"`
	DecSmoothness     *int64     `json:"decSmoothness"`
	GsiAdh            *int64     `json:"gsiAdh"`
	SpeedLimitAdh     *int64     `json:"speedLimitAdh"`
	MotorwaySpeed     *int64     `json:"motorwaySpeed"`
	IdleDuration      *int64     `json:"idleDuration"`
	JourneyIdlePct    *int64     `json:"journeyIdlePct"`
	JourneyDistance   *int64     `json:"journeyDistance"`
}

// validate collects every violated constraint. calculatedAt and ecoDriving
// are required; each metric, required or not, is an integer percentage.
func (in *ScoresInput) validate() []string {
	var errs []string

	if in.CalculatedAt == nil {
		errs = append(errs, `"calculatedAt" is required`)
	}
	if in.EcoDriving == nil {
		errs = append(errs, `"ecoDriving" is required`)
	}

	for _, metric := range []struct {
		name  string
		value *int64
	}{
		{"ecoDriving", in.EcoDriving},
		{"drivAccSmoothness", in.DrivAccSmoothness},
		{"startAccSmoothness", in.StartAccSmoothness},
		{"decSmoothness", in.DecSmoothness},
		{"gsiAdh", in.GsiAdh},
		{"speedLimitAdh", in.SpeedLimitAdh},
		{"motorwaySpeed", in.MotorwaySpeed},
		{"idleDuration", in.IdleDuration},
		{"journeyIdlePct", in.JourneyIdlePct},
		{"journeyDistance", in.JourneyDistance},
	} {
		if metric.value != nil && (*metric.value < 0 || *metric.value > 100) {
			errs = append(errs, fmt.Sprintf("%q must be between 0 and 100", metric.name))
		}
	}

	return errs
}

// scores converts validated input into the domain model.
func (in *ScoresInput) scores() *model.Scores {
	return &model.Scores{
		CalculatedAt:      *in.CalculatedAt,
		EcoDriving:        in.EcoDriving,
		DrivAccSmoothness: in.DrivAccSmoothness,
		StartAccSmoothness: in.StartAccSmoothness,
		DecSmoothness:     in.DecSmoothness,
		GsiAdh:            in.GsiAdh,
		SpeedLimitAdh:     in.SpeedLimitAdh,
		MotorwaySpeed:     in.MotorwaySpeed,
		IdleDuration:      in.IdleDuration,
		JourneyIdlePct:    in.JourneyIdlePct,
		JourneyDistance:   in.JourneyDistance,
	}
}

// ScoresListOptions are the already-parsed GET /scores query parameters.
type ScoresListOptions struct {
	Type       string // metric token, "" = all metrics
	MaxDaysAgo int    // 0 = no window
	Limit      int    // 0 = no limit
	Offset     int
}

// ScoreService orchestrates score-snapshot operations. Snapshots are
// append-only: there is deliberately no update or delete method.
type ScoreService struct {
	repo   repository.ScoreRepository
	logger *slog.Logger
}

// NewScoreService creates a ScoreService.
func NewScoreService(repo repository.ScoreRepository, logger *slog.Logger) *ScoreService {
	return &ScoreService{
		repo:   repo,
		logger: logger,
	}
}

// List returns a page of the subject's snapshots, newest first, with the
// requested metric projection and trailing-days window applied, plus the
// tri-state more-entries signal.
func (s *ScoreService) List(ctx context.Context, subject string, opts ScoresListOptions) ([]model.Scores, *bool, error) {
	results, err := s.repo.List(ctx, subject, repository.ScoreQuery{
		Type:       opts.Type,
		MaxDaysAgo: opts.MaxDaysAgo,
		Limit:      fetchLimit(opts.Limit),
		Offset:     opts.Offset,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("listing scores: %w", err)
	}

	page, more := trimPage(results, opts.Limit)
	return page, more, nil
}

// Add validates and stores a new snapshot.
//
// Duplicates are NOT pre-checked: the insert is attempted and the repository
// translates a (user, calculatedAt) uniqueness violation into the fixed
// conflict message. Under two concurrent posts of the same snapshot, exactly
// one succeeds and one conflicts — no race window, unlike a check-then-write.
func (s *ScoreService) Add(ctx context.Context, subject string, in *ScoresInput) error {
	if errs := in.validate(); len(errs) > 0 {
		return apperror.ValidationFailed(errs...)
	}

	if err := s.repo.Insert(ctx, subject, in.scores()); err != nil {
		return fmt.Errorf("adding scores: %w", err)
	}

	s.logger.Info("scores added", slog.Time("calculatedAt", *in.CalculatedAt))
	return nil
}
