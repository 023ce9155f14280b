// Package model defines the data structures used throughout the application.
package model

// User represents a registered account.
//
// Identity is delegated to the external provider: the stable subject string
// from the verified bearer token is the only external identifier we ever see.
// We keep our own numeric primary key so journeys and scores reference a
// compact integer rather than the provider's opaque subject, and so a
// provider migration would only touch this one table.
//
// Invariant: exactly one row per subject (UNIQUE constraint on the column).
type User struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject"` // identity-provider subject, stable, never reused
}
