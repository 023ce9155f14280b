package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/ecodriven/internal/auth"
	"github.com/sakif/ecodriven/internal/service"
)

// UserHandler serves account registration and the /myself routes.
//
// Note the asymmetric guards (wired in the server): HandleCreate and
// HandleRegistered sit behind RequireAuth only — a valid token whose subject
// has no account yet must be able to reach them, otherwise nobody could ever
// register. HandleDelete requires an existing account like everything else.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// HandleCreate registers an account for the verified subject.
//
// HTTP: POST /api/users/
// RESPONSE: 201 on success; 400 text/plain "User already exists" on repeat.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	subject, _ := auth.SubjectFromContext(r.Context())

	if _, err := h.users.CreateUser(r.Context(), subject); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// HandleDelete removes the caller's account and everything it owns.
// Idempotent — repeating the call still returns 200.
//
// HTTP: DELETE /api/myself
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	subject, _ := auth.SubjectFromContext(r.Context())

	if err := h.users.DeleteUser(r.Context(), subject); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// HandleRegistered reports whether the verified subject has an account:
// 200 when registered, 204 when not. The front-end uses this right after
// login to decide whether to offer registration.
//
// HTTP: GET /api/myself/registered
func (h *UserHandler) HandleRegistered(w http.ResponseWriter, r *http.Request) {
	subject, _ := auth.SubjectFromContext(r.Context())

	registered, err := h.users.UserExists(r.Context(), subject)
	if err != nil {
		writeError(w, err)
		return
	}

	if registered {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusNoContent)
	}
}
