package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/sakif/ecodriven/internal/apperror"
	"github.com/sakif/ecodriven/internal/model"
	"github.com/sakif/ecodriven/internal/repository"
)

// mockScoreRepo implements repository.ScoreRepository in memory, keyed by
// (subject, calculatedAt) to enforce the same uniqueness as the schema.
type mockScoreRepo struct {
	snapshots map[string]map[time.Time]*model.Scores
	lastQuery repository.ScoreQuery // records what the service asked for
	failWith  error
}

func newMockScoreRepo() *mockScoreRepo {
	return &mockScoreRepo{snapshots: make(map[string]map[time.Time]*model.Scores)}
}

func (m *mockScoreRepo) Insert(_ context.Context, subject string, scores *model.Scores) error {
	if m.failWith != nil {
		return m.failWith
	}
	if m.snapshots[subject] == nil {
		m.snapshots[subject] = make(map[time.Time]*model.Scores)
	}
	if _, exists := m.snapshots[subject][scores.CalculatedAt]; exists {
		return apperror.Conflict("Scores calculated at that time already exist")
	}
	stored := *scores
	m.snapshots[subject][scores.CalculatedAt] = &stored
	return nil
}

func (m *mockScoreRepo) List(_ context.Context, subject string, query repository.ScoreQuery) ([]model.Scores, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.lastQuery = query

	result := []model.Scores{}
	for _, s := range m.snapshots[subject] {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CalculatedAt.After(result[j].CalculatedAt)
	})

	if query.Offset >= len(result) {
		return []model.Scores{}, nil
	}
	result = result[query.Offset:]
	if query.Limit > 0 && query.Limit < len(result) {
		result = result[:query.Limit]
	}
	return result, nil
}

func newTestScoreService() (*ScoreService, *mockScoreRepo) {
	repo := newMockScoreRepo()
	return NewScoreService(repo, testLogger()), repo
}

func validScoresInput(calculatedAt time.Time) *ScoresInput {
	return &ScoresInput{
		CalculatedAt: timeP(calculatedAt),
		EcoDriving:   intP(82),
	}
}

// =========================================================================
// ADD TESTS
// =========================================================================

func TestScoresAdd(t *testing.T) {
	svc, repo := newTestScoreService()
	calculatedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := svc.Add(context.Background(), "auth0|alice", validScoresInput(calculatedAt)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(repo.snapshots["auth0|alice"]) != 1 {
		t.Error("snapshot was not stored")
	}
}

func TestScoresAdd_MissingRequiredFields(t *testing.T) {
	svc, _ := newTestScoreService()

	err := svc.Add(context.Background(), "auth0|alice", &ScoresInput{})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	var appErr *apperror.AppError
	errors.As(err, &appErr)
	for _, want := range []string{
		`"calculatedAt" is required`,
		`"ecoDriving" is required`,
	} {
		if !hasMessage(appErr.Errors, want) {
			t.Errorf("missing violation %q in %v", want, appErr.Errors)
		}
	}
}

func TestScoresAdd_MetricRangeChecks(t *testing.T) {
	svc, _ := newTestScoreService()

	in := validScoresInput(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	in.EcoDriving = intP(101)
	in.GsiAdh = intP(-1)
	in.MotorwaySpeed = intP(100) // boundary value: valid

	err := svc.Add(context.Background(), "auth0|alice", in)
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error = %v, want *AppError", err)
	}

	for _, want := range []string{
		`"ecoDriving" must be between 0 and 100`,
		`"gsiAdh" must be between 0 and 100`,
	} {
		if !hasMessage(appErr.Errors, want) {
			t.Errorf("missing violation %q in %v", want, appErr.Errors)
		}
	}
	if hasMessage(appErr.Errors, `"motorwaySpeed" must be between 0 and 100`) {
		t.Error("100 is inside the valid range")
	}
}

func TestScoresAdd_Duplicate(t *testing.T) {
	svc, _ := newTestScoreService()
	calculatedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := svc.Add(context.Background(), "auth0|alice", validScoresInput(calculatedAt)); err != nil {
		t.Fatalf("first Add() error = %v", err)
	}

	err := svc.Add(context.Background(), "auth0|alice", validScoresInput(calculatedAt))
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestScoresAdd_OptionalMetricsStayAbsent(t *testing.T) {
	svc, repo := newTestScoreService()
	calculatedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := svc.Add(context.Background(), "auth0|alice", validScoresInput(calculatedAt)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	stored := repo.snapshots["auth0|alice"][calculatedAt]
	if stored.GsiAdh != nil || stored.JourneyDistance != nil {
		t.Error("omitted metrics must reach storage as nil, not zero")
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestScoresList_PassesFiltersAndOverfetches(t *testing.T) {
	svc, repo := newTestScoreService()

	_, _, err := svc.List(context.Background(), "auth0|alice", ScoresListOptions{
		Type:       "gsiAdh",
		MaxDaysAgo: 7,
		Limit:      10,
		Offset:     5,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if repo.lastQuery.Type != "gsiAdh" {
		t.Errorf("Type = %q, want gsiAdh", repo.lastQuery.Type)
	}
	if repo.lastQuery.MaxDaysAgo != 7 {
		t.Errorf("MaxDaysAgo = %d, want 7", repo.lastQuery.MaxDaysAgo)
	}
	if repo.lastQuery.Limit != 11 {
		t.Errorf("Limit = %d, want 11 — the look-ahead row", repo.lastQuery.Limit)
	}
	if repo.lastQuery.Offset != 5 {
		t.Errorf("Offset = %d, want 5", repo.lastQuery.Offset)
	}
}

func TestScoresList_MoreEntriesSignal(t *testing.T) {
	svc, _ := newTestScoreService()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := svc.Add(context.Background(), "auth0|alice", validScoresInput(base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("seeding snapshot %d: %v", i, err)
		}
	}

	results, more, err := svc.List(context.Background(), "auth0|alice", ScoresListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
	if more == nil || !*more {
		t.Errorf("more = %v, want true", more)
	}

	results, more, err = svc.List(context.Background(), "auth0|alice", ScoresListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want all 3", len(results))
	}
	if more != nil {
		t.Errorf("more = %v, want nil without a limit", *more)
	}
}

func TestScoresList_RepoError(t *testing.T) {
	svc, repo := newTestScoreService()
	repo.failWith = errors.New("db down")

	if _, _, err := svc.List(context.Background(), "auth0|alice", ScoresListOptions{}); err == nil {
		t.Error("List() should propagate storage errors")
	}
}
