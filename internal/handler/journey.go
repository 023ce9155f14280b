// Package handler contains the HTTP edge: request parsing, parameter
// validation, and response shaping. Handlers hold no business rules — they
// translate between the wire and the service layer.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/ecodriven/internal/apperror"
	"github.com/sakif/ecodriven/internal/auth"
	"github.com/sakif/ecodriven/internal/service"
)

// MoreEntriesHeader carries the pagination look-ahead signal. Present (with
// "true"/"false") ONLY when the request supplied a limit; its absence means
// the question didn't apply, which clients must distinguish from "false".
const MoreEntriesHeader = "More-Entries"

// JourneyHandler serves the /journeys routes.
type JourneyHandler struct {
	journeys *service.JourneyService
	logger   *slog.Logger
}

// NewJourneyHandler creates a JourneyHandler.
func NewJourneyHandler(journeys *service.JourneyService, logger *slog.Logger) *JourneyHandler {
	return &JourneyHandler{
		journeys: journeys,
		logger:   logger,
	}
}

// HandleList returns the caller's journeys, newest end-time first.
//
// HTTP: GET /api/journeys/?limit=&offset=
func (h *JourneyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	subject, _ := auth.SubjectFromContext(r.Context())

	query := r.URL.Query()
	var errs []string
	limit, errs := queryInt(query, "limit", errs)
	offset, errs := queryInt(query, "offset", errs)
	if len(errs) > 0 {
		writeError(w, apperror.ValidationFailed(errs...))
		return
	}

	journeys, more, err := h.journeys.List(r.Context(), subject, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	if more != nil {
		w.Header().Set(MoreEntriesHeader, strconv.FormatBool(*more))
	}
	writeJSON(w, http.StatusOK, journeys)
}

// HandleCreate stores a new journey and returns its generated ID.
//
// HTTP: POST /api/journeys/
// RESPONSE: 201 {"id": 42}
func (h *JourneyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	subject, _ := auth.SubjectFromContext(r.Context())

	var input service.JourneyInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.journeys.Create(r.Context(), subject, &input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// HandleGet returns a single journey by ID.
//
// HTTP: GET /api/journeys/{journeyID}
func (h *JourneyHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	subject, _ := auth.SubjectFromContext(r.Context())

	id, ok := journeyID(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	journey, err := h.journeys.Get(r.Context(), subject, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, journey)
}

// HandleUpdate replaces a journey wholesale.
//
// HTTP: PUT /api/journeys/{journeyID}
// RESPONSE: 204 on success
func (h *JourneyHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	subject, _ := auth.SubjectFromContext(r.Context())

	id, ok := journeyID(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var input service.JourneyInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	if err := h.journeys.Update(r.Context(), subject, id, &input); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// journeyID validates and parses the path parameter. Anything that isn't a
// plain digit-string — negative, fractional, non-numeric — is a 404 before
// storage is ever consulted: an ID that can't exist is indistinguishable
// from one that doesn't.
func journeyID(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "journeyID")
	if !digitString.MatchString(raw) {
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}
