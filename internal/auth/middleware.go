package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of type contextKey, so no other package
// can read or shadow the subject value stored in the request context.
type contextKey string

const subjectKey contextKey = "subject"

// AccountChecker answers "does a registered account exist for this subject?".
// The user service implements it; the middleware depends on the interface so
// this package never imports storage.
type AccountChecker interface {
	UserExists(ctx context.Context, subject string) (bool, error)
}

// RequireAuth enforces a verifiable bearer token on a route.
//
// It reads the Authorization header, verifies the JWT, and stores the
// provider subject in the request context. Missing, malformed, expired, or
// otherwise invalid tokens all produce the same bare 401 — the cause is
// deliberately not disclosed.
//
// RequireAuth alone guards the two routes a not-yet-registered identity must
// be able to reach: account creation and the registration check.
func RequireAuth(verifier *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := extractSubject(r, verifier)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
		})
	}
}

// RequireAccount enforces RequireAuth plus an existing registered account.
//
// A token can be perfectly valid while its subject has never called
// POST /users/ — such callers get the same 401 as an invalid token, so the
// response shape never reveals whether a given identity is registered.
//
// The existence lookup is a storage call; if IT fails, that's a server-side
// error and surfaces as 500 via the error handler chain, not as a 401.
func RequireAccount(verifier *Verifier, accounts AccountChecker) func(http.Handler) http.Handler {
	requireAuth := RequireAuth(verifier)
	return func(next http.Handler) http.Handler {
		return requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, _ := SubjectFromContext(r.Context())

			exists, err := accounts.UserExists(r.Context(), subject)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			if !exists {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		}))
	}
}

// WithSubject stores a verified subject on the context. Outside this package
// it exists for handler tests, which have no real token to verify.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext retrieves the verified provider subject for the request.
// Returns ("", false) if the route was not guarded by RequireAuth.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok && subject != ""
}

// extractSubject pulls the bearer token from the Authorization header and
// verifies it. Shared by both middleware variants.
func extractSubject(r *http.Request, verifier *Verifier) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errInvalidAuthHeader
	}

	return verifier.Verify(strings.TrimSpace(token))
}

var errInvalidAuthHeader = errors.New("auth: missing or malformed Authorization header")
