package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/ecodriven/internal/apperror"
	"github.com/sakif/ecodriven/internal/model"
	"github.com/sakif/ecodriven/internal/repository"
)

// insertTestJourney stores a journey ending at the given time and fails the
// test on error.
func insertTestJourney(t *testing.T, db *DB, subject string, end time.Time) int64 {
	t.Helper()
	id, err := db.Journeys().Insert(context.Background(), subject, &model.Journey{
		Start:    end.Add(-30 * time.Minute),
		End:      end,
		Distance: 12.3,
		IdleSecs: 45,
	})
	if err != nil {
		t.Fatalf("failed to insert test journey: %v", err)
	}
	return id
}

func TestJourneyInsert_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "auth0|alice")

	id, err := db.Journeys().Insert(ctx, "auth0|alice", &model.Journey{
		Start:    at(t, "2026-08-01T08:00:00Z"),
		End:      at(t, "2026-08-01T09:30:00Z"),
		Distance: 42.5,
		IdleSecs: 120,
		GsiAdh:   floatP(87.5),
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if id <= 0 {
		t.Fatalf("Insert() id = %d, want > 0", id)
	}

	found, err := db.Journeys().GetByID(ctx, "auth0|alice", id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if !found.Start.Equal(at(t, "2026-08-01T08:00:00Z")) {
		t.Errorf("Start = %v", found.Start)
	}
	if !found.End.Equal(at(t, "2026-08-01T09:30:00Z")) {
		t.Errorf("End = %v", found.End)
	}
	if found.Distance != 42.5 {
		t.Errorf("Distance = %v, want 42.5", found.Distance)
	}
	if found.IdleSecs != 120 {
		t.Errorf("IdleSecs = %v, want 120", found.IdleSecs)
	}
	if found.GsiAdh == nil || *found.GsiAdh != 87.5 {
		t.Errorf("GsiAdh = %v, want 87.5", found.GsiAdh)
	}
}

func TestJourneyInsert_OptionalGsiAdhStaysAbsent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "auth0|alice")

	id := insertTestJourney(t, db, "auth0|alice", at(t, "2026-08-01T09:00:00Z"))

	found, err := db.Journeys().GetByID(ctx, "auth0|alice", id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.GsiAdh != nil {
		t.Errorf("GsiAdh = %v, want nil — NULL must not become a value", *found.GsiAdh)
	}
}

func TestJourneyInsert_CanonicalisesPrecision(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "auth0|alice")

	id, err := db.Journeys().Insert(ctx, "auth0|alice", &model.Journey{
		Start:    at(t, "2026-08-01T08:00:00Z"),
		End:      at(t, "2026-08-01T09:00:00Z"),
		Distance: 12.360000000000001,
		IdleSecs: 0,
		GsiAdh:   floatP(55.567),
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	found, err := db.Journeys().GetByID(ctx, "auth0|alice", id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Distance != 12.4 {
		t.Errorf("Distance = %v, want 12.4 (one decimal place)", found.Distance)
	}
	if found.GsiAdh == nil || *found.GsiAdh != 55.57 {
		t.Errorf("GsiAdh = %v, want 55.57 (two decimal places)", found.GsiAdh)
	}
}

func TestJourneyInsert_NormalisesToUTC(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "auth0|alice")

	zone := time.FixedZone("CEST", 2*60*60)
	localEnd := time.Date(2026, 8, 1, 11, 0, 0, 0, zone) // 09:00 UTC

	id, err := db.Journeys().Insert(ctx, "auth0|alice", &model.Journey{
		Start:    localEnd.Add(-time.Hour),
		End:      localEnd,
		Distance: 5,
		IdleSecs: 10,
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	found, err := db.Journeys().GetByID(ctx, "auth0|alice", id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !found.End.Equal(at(t, "2026-08-01T09:00:00Z")) {
		t.Errorf("End = %v, want the same instant as 09:00Z", found.End)
	}
}

func TestJourneyList_NewestEndFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "auth0|alice")

	// Inserted out of order on purpose.
	middle := insertTestJourney(t, db, "auth0|alice", at(t, "2026-08-02T09:00:00Z"))
	newest := insertTestJourney(t, db, "auth0|alice", at(t, "2026-08-03T09:00:00Z"))
	oldest := insertTestJourney(t, db, "auth0|alice", at(t, "2026-08-01T09:00:00Z"))

	journeys, err := db.Journeys().List(ctx, "auth0|alice", repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(journeys) != 3 {
		t.Fatalf("List() returned %d journeys, want 3", len(journeys))
	}

	wantOrder := []int64{newest, middle, oldest}
	for i, want := range wantOrder {
		if journeys[i].ID != want {
			t.Errorf("journeys[%d].ID = %d, want %d", i, journeys[i].ID, want)
		}
	}
}

func TestJourneyList_LimitAndOffset(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "auth0|alice")

	var ids []int64
	for day := 1; day <= 5; day++ {
		end := time.Date(2026, 8, day, 9, 0, 0, 0, time.UTC)
		ids = append(ids, insertTestJourney(t, db, "auth0|alice", end))
	}

	// Storage applies limit/offset literally; the +1 look-ahead belongs to
	// the layer above.
	journeys, err := db.Journeys().List(ctx, "auth0|alice", repository.ListOptions{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(journeys) != 2 {
		t.Fatalf("List() returned %d journeys, want 2", len(journeys))
	}
	// Newest first is day 5; offset 1 skips it.
	if journeys[0].ID != ids[3] || journeys[1].ID != ids[2] {
		t.Errorf("page = [%d %d], want [%d %d]", journeys[0].ID, journeys[1].ID, ids[3], ids[2])
	}
}

func TestJourneyList_EmptyIsNotNil(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "auth0|alice")

	journeys, err := db.Journeys().List(context.Background(), "auth0|alice", repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if journeys == nil {
		t.Error("List() = nil, want empty slice — nil serialises as null, not []")
	}
}

func TestJourneyList_ScopedToSubject(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "auth0|alice")
	createTestUser(t, db, "auth0|bob")
	insertTestJourney(t, db, "auth0|alice", at(t, "2026-08-01T09:00:00Z"))

	journeys, err := db.Journeys().List(ctx, "auth0|bob", repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(journeys) != 0 {
		t.Errorf("bob can see alice's journeys: %d rows", len(journeys))
	}
}

func TestJourneyGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "auth0|alice")

	_, err := db.Journeys().GetByID(context.Background(), "auth0|alice", 9999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestJourneyGetByID_OtherUsersJourney(t *testing.T) {
	// Someone else's journey must be indistinguishable from a missing one.
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "auth0|alice")
	createTestUser(t, db, "auth0|bob")
	id := insertTestJourney(t, db, "auth0|alice", at(t, "2026-08-01T09:00:00Z"))

	_, err := db.Journeys().GetByID(ctx, "auth0|bob", id)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestJourneyExists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "auth0|alice")
	id := insertTestJourney(t, db, "auth0|alice", at(t, "2026-08-01T09:00:00Z"))

	exists, err := db.Journeys().Exists(ctx, "auth0|alice", id)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("Exists() = false for an owned journey")
	}

	exists, err = db.Journeys().Exists(ctx, "auth0|alice", id+1)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true for an absent journey")
	}
}

func TestJourneyUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "auth0|alice")
	id := insertTestJourney(t, db, "auth0|alice", at(t, "2026-08-01T09:00:00Z"))

	err := db.Journeys().Update(ctx, "auth0|alice", id, &model.Journey{
		Start:    at(t, "2026-08-01T10:00:00Z"),
		End:      at(t, "2026-08-01T11:00:00Z"),
		Distance: 99.9,
		IdleSecs: 7,
		GsiAdh:   floatP(50),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.Journeys().GetByID(ctx, "auth0|alice", id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Distance != 99.9 {
		t.Errorf("Distance = %v, want 99.9", found.Distance)
	}
	if found.IdleSecs != 7 {
		t.Errorf("IdleSecs = %v, want 7", found.IdleSecs)
	}
	if found.GsiAdh == nil || *found.GsiAdh != 50 {
		t.Errorf("GsiAdh = %v, want 50", found.GsiAdh)
	}
	if !found.End.Equal(at(t, "2026-08-01T11:00:00Z")) {
		t.Errorf("End = %v", found.End)
	}
}

func TestJourneyUpdate_FullReplacementClearsOptional(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "auth0|alice")

	id, err := db.Journeys().Insert(ctx, "auth0|alice", &model.Journey{
		Start:    at(t, "2026-08-01T08:00:00Z"),
		End:      at(t, "2026-08-01T09:00:00Z"),
		Distance: 10,
		IdleSecs: 5,
		GsiAdh:   floatP(80),
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	// Replacement without gsiAdh must erase the stored value.
	err = db.Journeys().Update(ctx, "auth0|alice", id, &model.Journey{
		Start:    at(t, "2026-08-01T08:00:00Z"),
		End:      at(t, "2026-08-01T09:00:00Z"),
		Distance: 10,
		IdleSecs: 5,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.Journeys().GetByID(ctx, "auth0|alice", id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.GsiAdh != nil {
		t.Errorf("GsiAdh = %v, want nil after full replacement", *found.GsiAdh)
	}
}

func TestJourneyUpdate_AbsentRowIsNoOp(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "auth0|alice")

	err := db.Journeys().Update(context.Background(), "auth0|alice", 9999, &model.Journey{
		Start:    at(t, "2026-08-01T08:00:00Z"),
		End:      at(t, "2026-08-01T09:00:00Z"),
		Distance: 1,
		IdleSecs: 1,
	})
	if err != nil {
		t.Errorf("Update() of an absent row should be a no-op, got %v", err)
	}
}
