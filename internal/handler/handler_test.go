package handler

// Shared fixtures for the handler tests: in-memory repositories, services
// built over them, and a router that injects a verified subject the way the
// auth middleware would. Handlers are exercised through chi so URL params
// and route patterns behave exactly as in production.

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/ecodriven/internal/apperror"
	"github.com/sakif/ecodriven/internal/auth"
	"github.com/sakif/ecodriven/internal/model"
	"github.com/sakif/ecodriven/internal/repository"
	"github.com/sakif/ecodriven/internal/service"
)

const testSubject = "auth0|alice"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// asSubject simulates the RequireAuth middleware for tests.
func asSubject(subject string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithSubject(r.Context(), subject)))
		})
	}
}

func timeP(t time.Time) *time.Time { return &t }
func floatP(v float64) *float64    { return &v }
func intP(v int64) *int64          { return &v }

// ---- journey fixtures ----

type stubJourneyRepo struct {
	journeys map[int64]*model.Journey
	nextID   int64
}

func newStubJourneyRepo() *stubJourneyRepo {
	return &stubJourneyRepo{journeys: make(map[int64]*model.Journey)}
}

func (s *stubJourneyRepo) Insert(_ context.Context, _ string, journey *model.Journey) (int64, error) {
	s.nextID++
	stored := *journey
	stored.ID = s.nextID
	s.journeys[s.nextID] = &stored
	return s.nextID, nil
}

func (s *stubJourneyRepo) List(_ context.Context, _ string, opts repository.ListOptions) ([]model.Journey, error) {
	result := []model.Journey{}
	for id := int64(1); id <= s.nextID; id++ {
		if j, ok := s.journeys[id]; ok {
			result = append(result, *j)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].End.After(result[j].End) })
	if opts.Offset >= len(result) {
		return []model.Journey{}, nil
	}
	result = result[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (s *stubJourneyRepo) GetByID(_ context.Context, _ string, id int64) (*model.Journey, error) {
	j, ok := s.journeys[id]
	if !ok {
		return nil, apperror.NotFound("Journey does not exist")
	}
	result := *j
	return &result, nil
}

func (s *stubJourneyRepo) Exists(_ context.Context, _ string, id int64) (bool, error) {
	_, ok := s.journeys[id]
	return ok, nil
}

func (s *stubJourneyRepo) Update(_ context.Context, _ string, id int64, journey *model.Journey) error {
	if _, ok := s.journeys[id]; ok {
		stored := *journey
		stored.ID = id
		s.journeys[id] = &stored
	}
	return nil
}

func newJourneyRouter(repo repository.JourneyRepository) http.Handler {
	h := NewJourneyHandler(service.NewJourneyService(repo, testLogger()), testLogger())

	r := chi.NewRouter()
	r.Use(asSubject(testSubject))
	r.Route("/api/journeys", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{journeyID}", h.HandleGet)
		r.Put("/{journeyID}", h.HandleUpdate)
	})
	return r
}

// ---- score fixtures ----

type stubScoreRepo struct {
	snapshots []*model.Scores
	lastQuery repository.ScoreQuery
}

func (s *stubScoreRepo) Insert(_ context.Context, _ string, scores *model.Scores) error {
	for _, existing := range s.snapshots {
		if existing.CalculatedAt.Equal(scores.CalculatedAt) {
			return apperror.Conflict("Scores calculated at that time already exist")
		}
	}
	stored := *scores
	s.snapshots = append(s.snapshots, &stored)
	return nil
}

func (s *stubScoreRepo) List(_ context.Context, _ string, query repository.ScoreQuery) ([]model.Scores, error) {
	s.lastQuery = query

	result := []model.Scores{}
	for _, snap := range s.snapshots {
		result = append(result, *snap)
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

func newScoreRouter(repo repository.ScoreRepository) http.Handler {
	h := NewScoreHandler(service.NewScoreService(repo, testLogger()), testLogger())

	r := chi.NewRouter()
	r.Use(asSubject(testSubject))
	r.Route("/api/scores", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
	})
	return r
}

// ---- user fixtures ----

type stubUserRepo struct {
	users map[string]int64
	next  int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]int64)}
}

func (s *stubUserRepo) Exists(_ context.Context, subject string) (bool, error) {
	_, ok := s.users[subject]
	return ok, nil
}

func (s *stubUserRepo) Create(_ context.Context, subject string) (*model.User, error) {
	if _, ok := s.users[subject]; ok {
		return nil, apperror.Conflict("User already exists")
	}
	s.next++
	s.users[subject] = s.next
	return &model.User{ID: s.next, Subject: subject}, nil
}

func (s *stubUserRepo) Delete(_ context.Context, subject string) error {
	delete(s.users, subject)
	return nil
}

func newUserRouter(repo repository.UserRepository) http.Handler {
	h := NewUserHandler(service.NewUserService(repo, testLogger()), testLogger())

	r := chi.NewRouter()
	r.Use(asSubject(testSubject))
	r.Post("/api/users/", h.HandleCreate)
	r.Delete("/api/myself/", h.HandleDelete)
	r.Get("/api/myself/registered", h.HandleRegistered)
	return r
}
