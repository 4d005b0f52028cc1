package store

import (
	"testing"
	"time"

	"github.com/paperbark/kindwords/internal/database"
	"github.com/paperbark/kindwords/internal/model"
)

func setupThingTestDB(t *testing.T) (*ThingStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewThingStore(db), NewUserStore(db)
}

func createTestUser(t *testing.T, us *UserStore, email string) *model.User {
	t.Helper()
	u, err := us.Create(email, hashFor(t, "password1"))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func strPtr(s string) *string { return &s }

func TestThingCreate(t *testing.T) {
	ts, us := setupThingTestDB(t)
	u := createTestUser(t, us, "alice@example.com")

	thing, err := ts.Create(u.ID, "You inspire me", "Bo", strPtr("after the recital"))
	if err != nil {
		t.Fatalf("create thing: %v", err)
	}
	if thing.ID == "" {
		t.Error("expected non-empty ID")
	}
	if thing.UserID != u.ID {
		t.Errorf("user_id = %q, want %q", thing.UserID, u.ID)
	}
	if thing.Thing != "You inspire me" || thing.Who != "Bo" {
		t.Errorf("unexpected fields: %+v", thing)
	}
	if thing.Why == nil || *thing.Why != "after the recital" {
		t.Errorf("why = %v, want %q", thing.Why, "after the recital")
	}
}

func TestThingCreateWithoutWhy(t *testing.T) {
	ts, us := setupThingTestDB(t)
	u := createTestUser(t, us, "alice@example.com")

	thing, err := ts.Create(u.ID, "Nice haircut", "A stranger", nil)
	if err != nil {
		t.Fatalf("create thing: %v", err)
	}
	if thing.Why != nil {
		t.Errorf("why = %v, want nil", thing.Why)
	}
}

func TestThingListByOwnerNewestFirst(t *testing.T) {
	ts, us := setupThingTestDB(t)
	u := createTestUser(t, us, "alice@example.com")

	for _, text := range []string{"first", "second", "third"} {
		if _, err := ts.Create(u.ID, text, "Bo", nil); err != nil {
			t.Fatalf("create thing: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	things, err := ts.ListByOwner(u.ID)
	if err != nil {
		t.Fatalf("list things: %v", err)
	}
	if len(things) != 3 {
		t.Fatalf("len = %d, want 3", len(things))
	}
	if things[0].Thing != "third" || things[2].Thing != "first" {
		t.Errorf("wrong order: %q, %q, %q", things[0].Thing, things[1].Thing, things[2].Thing)
	}
}

func TestThingListByOwnerOldest(t *testing.T) {
	ts, us := setupThingTestDB(t)
	u := createTestUser(t, us, "alice@example.com")

	for _, text := range []string{"first", "second"} {
		if _, err := ts.Create(u.ID, text, "Bo", nil); err != nil {
			t.Fatalf("create thing: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	things, err := ts.ListByOwnerOldest(u.ID)
	if err != nil {
		t.Fatalf("list oldest: %v", err)
	}
	if len(things) != 2 {
		t.Fatalf("len = %d, want 2", len(things))
	}
	if things[0].Thing != "first" {
		t.Errorf("first entry = %q, want %q", things[0].Thing, "first")
	}
}

func TestThingOwnershipIsolation(t *testing.T) {
	ts, us := setupThingTestDB(t)
	alice := createTestUser(t, us, "alice@example.com")
	mallory := createTestUser(t, us, "mallory@example.com")

	thing, err := ts.Create(alice.ID, "secret praise", "Bo", nil)
	if err != nil {
		t.Fatalf("create thing: %v", err)
	}

	got, err := ts.GetByID(mallory.ID, thing.ID)
	if err != nil {
		t.Fatalf("cross-user get: %v", err)
	}
	if got != nil {
		t.Error("cross-user get must look like not-found")
	}

	updated, err := ts.Update(mallory.ID, thing.ID, "defaced", "Mallory", nil)
	if err != nil {
		t.Fatalf("cross-user update: %v", err)
	}
	if updated != nil {
		t.Error("cross-user update must look like not-found")
	}

	deleted, err := ts.Delete(mallory.ID, thing.ID)
	if err != nil {
		t.Fatalf("cross-user delete: %v", err)
	}
	if deleted {
		t.Error("cross-user delete must look like not-found")
	}

	// Owner still sees the untouched original.
	mine, err := ts.GetByID(alice.ID, thing.ID)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if mine == nil || mine.Thing != "secret praise" {
		t.Errorf("owner's thing changed: %+v", mine)
	}
}

func TestThingUpdate(t *testing.T) {
	ts, us := setupThingTestDB(t)
	u := createTestUser(t, us, "alice@example.com")

	created, err := ts.Create(u.ID, "original", "Bo", strPtr("context"))
	if err != nil {
		t.Fatalf("create thing: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	updated, err := ts.Update(u.ID, created.ID, "revised", "Jo", nil)
	if err != nil {
		t.Fatalf("update thing: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated thing, got nil")
	}
	if updated.Thing != "revised" || updated.Who != "Jo" {
		t.Errorf("unexpected fields: %+v", updated)
	}
	if updated.Why != nil {
		t.Error("why should have been cleared")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("expected updated_at to be refreshed")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("created_at must not change on update")
	}
}

func TestThingDelete(t *testing.T) {
	ts, us := setupThingTestDB(t)
	u := createTestUser(t, us, "alice@example.com")

	created, err := ts.Create(u.ID, "short lived", "Bo", nil)
	if err != nil {
		t.Fatalf("create thing: %v", err)
	}

	deleted, err := ts.Delete(u.ID, created.ID)
	if err != nil {
		t.Fatalf("delete thing: %v", err)
	}
	if !deleted {
		t.Error("expected delete to report a removed row")
	}

	got, err := ts.GetByID(u.ID, created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestThingDeleteAllIdempotent(t *testing.T) {
	ts, us := setupThingTestDB(t)
	u := createTestUser(t, us, "alice@example.com")

	for i := 0; i < 3; i++ {
		if _, err := ts.Create(u.ID, "entry", "Bo", nil); err != nil {
			t.Fatalf("create thing: %v", err)
		}
	}

	count, err := ts.DeleteAll(u.ID)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	count, err = ts.DeleteAll(u.ID)
	if err != nil {
		t.Fatalf("second delete all: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	things, err := ts.ListByOwner(u.ID)
	if err != nil {
		t.Fatalf("list after delete all: %v", err)
	}
	if len(things) != 0 {
		t.Errorf("len = %d, want 0", len(things))
	}
}

func TestThingCascadeOnUserDelete(t *testing.T) {
	ts, us := setupThingTestDB(t)
	u := createTestUser(t, us, "alice@example.com")

	if _, err := ts.Create(u.ID, "entry", "Bo", nil); err != nil {
		t.Fatalf("create thing: %v", err)
	}

	if _, err := us.Delete(u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	things, err := ts.ListByOwner(u.ID)
	if err != nil {
		t.Fatalf("list after user delete: %v", err)
	}
	if len(things) != 0 {
		t.Errorf("len = %d, want 0 after cascade", len(things))
	}
}
