package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sakif/ecodriven/internal/apperror"
	"github.com/sakif/ecodriven/internal/auth"
	"github.com/sakif/ecodriven/internal/model"
	"github.com/sakif/ecodriven/internal/service"
)

// ScoreHandler serves the /scores routes.
type ScoreHandler struct {
	scores *service.ScoreService
	logger *slog.Logger
}

// NewScoreHandler creates a ScoreHandler.
func NewScoreHandler(scores *service.ScoreService, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{
		scores: scores,
		logger: logger,
	}
}

// HandleList returns the caller's score snapshots, newest first.
//
// HTTP: GET /api/scores/?type=&limit=&offset=&maxDaysAgo=
//
// `type` narrows the projection to a single metric and must be a member of
// the metric enum — the same registry the storage projection reads, so a
// token that passes here always has a column mapping there.
func (h *ScoreHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	subject, _ := auth.SubjectFromContext(r.Context())

	query := r.URL.Query()
	var errs []string
	limit, errs := queryInt(query, "limit", errs)
	offset, errs := queryInt(query, "offset", errs)
	maxDaysAgo, errs := queryInt(query, "maxDaysAgo", errs)

	metricType := query.Get("type")
	if metricType != "" && !model.ValidScoreMetricType(metricType) {
		errs = append(errs, fmt.Sprintf(
			"%q must be one of [%s]", "type", strings.Join(model.ScoreMetricTypes, ", ")))
	}

	if len(errs) > 0 {
		writeError(w, apperror.ValidationFailed(errs...))
		return
	}

	results, more, err := h.scores.List(r.Context(), subject, service.ScoresListOptions{
		Type:       metricType,
		MaxDaysAgo: maxDaysAgo,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if more != nil {
		w.Header().Set(MoreEntriesHeader, strconv.FormatBool(*more))
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleCreate stores a new score snapshot.
//
// HTTP: POST /api/scores/
// RESPONSE: 201 on success; 400 text/plain "Scores calculated at that time
// already exist" when the (user, calculatedAt) pair is already taken.
func (h *ScoreHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	subject, _ := auth.SubjectFromContext(r.Context())

	var input service.ScoresInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	if err := h.scores.Add(r.Context(), subject, &input); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
