package handler

// RESPONSE CONVENTIONS:
// The wire contract distinguishes error classes by shape, not just status:
//
//	validation  → 400, JSON {"errors": ["...", ...]} with every violation
//	conflict    → 400, text/plain fixed message
//	not found   → 404, plain message if the service attached one, else bare
//	unauthorized→ 401, always bare (cause never disclosed)
//	anything else → 500, bare, logged server-side
//
// writeError is the single place that mapping lives. It is also the
// process's last-resort crash point: an error explicitly marked fatal by its
// originator terminates the process after the 500 goes out. Nothing in the
// normal request path produces fatal errors — only startup-critical
// machinery does.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/sakif/ecodriven/internal/apperror"
)

// validationResponse is the 400 body for schema violations.
type validationResponse struct {
	Errors []string `json:"errors"`
}

// writeJSON sends a JSON response with the given status code. Headers must
// be fully set before the first body byte — that ordering is why the
// More-Entries header is set by handlers before they call this.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are gone; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeText sends a plain-text response — conflicts and not-founds carry
// their fixed human-readable message this way.
func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if message != "" {
		if _, err := w.Write([]byte(message)); err != nil {
			slog.Error("failed to write response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the wire contract above.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			writeJSON(w, http.StatusBadRequest, validationResponse{Errors: appErr.Errors})
			return
		case errors.Is(err, apperror.ErrConflict):
			writeText(w, http.StatusBadRequest, appErr.Message)
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeText(w, http.StatusNotFound, appErr.Message)
			return
		case errors.Is(err, apperror.ErrUnauthorized):
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	// Unexpected error: never leak internals to the client, always log the
	// real cause, and honour the originator's fatal verdict.
	w.WriteHeader(http.StatusInternalServerError)
	slog.Error("unhandled error", slog.String("error", err.Error()))

	if apperror.IsFatal(err) {
		slog.Error("fatal error — terminating")
		os.Exit(1)
	}
}
