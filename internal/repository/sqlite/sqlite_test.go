package sqlite

import (
	"context"
	"testing"
	"time"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" creates a fresh database that exists only for this test — fast,
// isolated, destroyed when the connection closes. The same New() used in
// production runs, so pragmas and migrations are exercised on every test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser registers an account row directly through the repository.
func createTestUser(t *testing.T, db *DB, subject string) {
	t.Helper()
	if _, err := db.Users().Create(context.Background(), subject); err != nil {
		t.Fatalf("failed to create test user %q: %v", subject, err)
	}
}

func floatP(v float64) *float64 { return &v }
func intP(v int64) *int64       { return &v }

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return ts
}

func TestRound(t *testing.T) {
	tests := []struct {
		num     float64
		ndigits int
		want    float64
	}{
		{12.36, 1, 12.4},
		{12.34, 1, 12.3},
		{12.300000000000001, 1, 12.3},
		{55.567, 2, 55.57},
		{0, 1, 0},
	}
	for _, tt := range tests {
		if got := round(tt.num, tt.ndigits); got != tt.want {
			t.Errorf("round(%v, %d) = %v, want %v", tt.num, tt.ndigits, got, tt.want)
		}
	}
}
