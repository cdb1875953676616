package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"staffhub.org/internal/auth"
)

type stubIdentity struct {
	known map[string]bool
	err   error
}

func (s *stubIdentity) FindActiveByUsername(ctx context.Context, username string) (*auth.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.known[username] {
		return &auth.User{Username: username, Active: true}, nil
	}
	return nil, auth.ErrNotFound
}

type failingStore struct{}

func (failingStore) Append(ctx context.Context, entry *Entry) error {
	return errors.New("store unavailable")
}

type subjectWithID struct {
	ID string
}

func (s subjectWithID) AuditID() string { return s.ID }

type subjectWithoutID struct{}

func newTestRecorder(store Store, users identityLookup) *Recorder {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewRecorder(store, users, WithRecorderClock(func() time.Time { return fixed }))
	r.Monitor("employees.create", "employees.update", "employees.delete")
	return r
}

func principalCtx(username string) context.Context {
	return auth.ContextWithPrincipal(context.Background(), auth.Principal{
		Username: username,
		Roles:    []auth.Role{auth.RoleAdmin},
	})
}

func TestRecordClassifiesByOperationName(t *testing.T) {
	store := NewMemoryStore()
	users := &stubIdentity{known: map[string]bool{"jsmith": true}}
	rec := newTestRecorder(store, users)
	ctx := principalCtx("jsmith")

	rec.RecordIfMutation(ctx, "employees.create", subjectWithID{ID: "e1"})
	rec.RecordIfMutation(ctx, "employees.update", subjectWithID{ID: "e1"})
	rec.RecordIfMutation(ctx, "employees.delete", subjectWithID{ID: "e1"})

	entries := store.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []Action{ActionCreate, ActionUpdate, ActionDelete}
	for i, entry := range entries {
		if entry.Action != want[i] {
			t.Fatalf("entry %d: action=%s, want %s", i, entry.Action, want[i])
		}
		if entry.EntityName != "subjectWithID" {
			t.Fatalf("entry %d: entity name=%s", i, entry.EntityName)
		}
		if entry.EntityID != "e1" {
			t.Fatalf("entry %d: entity id=%s", i, entry.EntityID)
		}
		if entry.Username != "jsmith" {
			t.Fatalf("entry %d: username=%s", i, entry.Username)
		}
	}
}

func TestRecordDeleteAlwaysMapsToDelete(t *testing.T) {
	store := NewMemoryStore()
	rec := newTestRecorder(store, &stubIdentity{known: map[string]bool{"jsmith": true}})

	// Regardless of the subject's shape the action comes from the name.
	rec.RecordIfMutation(principalCtx("jsmith"), "employees.delete", subjectWithoutID{})

	entries := store.Entries()
	if len(entries) != 1 || entries[0].Action != ActionDelete {
		t.Fatalf("expected one DELETE entry, got %v", entries)
	}
	if entries[0].EntityID != "" {
		t.Fatalf("subject without identifier should yield empty entity id, got %q", entries[0].EntityID)
	}
}

func TestRecordIgnoresUnmonitoredOperations(t *testing.T) {
	store := NewMemoryStore()
	rec := newTestRecorder(store, &stubIdentity{known: map[string]bool{"jsmith": true}})

	rec.RecordIfMutation(principalCtx("jsmith"), "employees.list", subjectWithID{ID: "e1"})

	if len(store.Entries()) != 0 {
		t.Fatal("unmonitored operation must not be recorded")
	}
}

func TestRecordActorResolution(t *testing.T) {
	store := NewMemoryStore()
	users := &stubIdentity{known: map[string]bool{"jsmith": true}}
	rec := newTestRecorder(store, users)

	// No authenticated caller: attributed to "system".
	rec.RecordIfMutation(context.Background(), "employees.create", subjectWithID{ID: "e1"})

	// Authenticated caller with no matching active record: "unknown".
	rec.RecordIfMutation(principalCtx("revoked"), "employees.create", subjectWithID{ID: "e2"})

	// Identity store failure also downgrades rather than erroring.
	users.err = errors.New("store down")
	rec.RecordIfMutation(principalCtx("jsmith"), "employees.create", subjectWithID{ID: "e3"})

	entries := store.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Username != ActorSystem {
		t.Fatalf("expected system actor, got %s", entries[0].Username)
	}
	if entries[1].Username != ActorUnknown {
		t.Fatalf("expected unknown actor, got %s", entries[1].Username)
	}
	if entries[2].Username != ActorUnknown {
		t.Fatalf("expected unknown actor on lookup failure, got %s", entries[2].Username)
	}
}

func TestRecordSwallowsAppendFailure(t *testing.T) {
	rec := newTestRecorder(failingStore{}, &stubIdentity{known: map[string]bool{"jsmith": true}})

	// Must not panic or surface the error.
	rec.RecordIfMutation(principalCtx("jsmith"), "employees.create", subjectWithID{ID: "e1"})
}

func TestRecordNilSubject(t *testing.T) {
	store := NewMemoryStore()
	rec := newTestRecorder(store, &stubIdentity{known: map[string]bool{"jsmith": true}})

	rec.RecordIfMutation(principalCtx("jsmith"), "employees.update", nil)

	entries := store.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected entry for nil subject, got %d", len(entries))
	}
	if entries[0].EntityName != "" || entries[0].EntityID != "" {
		t.Fatalf("nil subject should yield empty entity fields, got %+v", entries[0])
	}
}
