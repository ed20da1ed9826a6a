package memstore

import (
	"context"
	"errors"
	"testing"
)

// StoreTestSuite is a conformance suite that can be run against any Store
// implementation.
type StoreTestSuite struct {
	NewStore func(t *testing.T) Store
}

// RunAllTests runs every conformance test against the implementation.
func (s *StoreTestSuite) RunAllTests(t *testing.T) {
	t.Run("AddAndGet", s.TestAddAndGet)
	t.Run("AddDuplicate", s.TestAddDuplicate)
	t.Run("Search", s.TestSearch)
	t.Run("GetAllScopedByUser", s.TestGetAllScopedByUser)
	t.Run("Delete", s.TestDelete)
	t.Run("GetNotFound", s.TestGetNotFound)
}

func (s *StoreTestSuite) add(t *testing.T, store Store, user, fact string) AddChange {
	t.Helper()
	res, err := store.Add(context.Background(), []Message{{Role: "user", Content: fact}}, AddOptions{UserID: user})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(res.Results) == 0 {
		t.Fatal("Add produced no changes")
	}
	return res.Results[0]
}

// TestAddAndGet verifies a promoted fact is retrievable by ID.
func (s *StoreTestSuite) TestAddAndGet(t *testing.T) {
	store := s.NewStore(t)
	ctx := context.Background()

	change := s.add(t, store, "telegram:12345", "deploy key lives in 1password")
	if change.Event != EventAdd {
		t.Fatalf("expected ADD event, got %s", change.Event)
	}
	if change.ID == "" {
		t.Fatal("expected non-empty memory ID")
	}

	item, err := store.Get(ctx, change.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if item.Memory != "deploy key lives in 1password" {
		t.Fatalf("unexpected memory text: %q", item.Memory)
	}
	if item.UserID != "telegram:12345" {
		t.Fatalf("unexpected user: %q", item.UserID)
	}
}

// TestAddDuplicate verifies re-adding the same fact does not create a
// second copy.
func (s *StoreTestSuite) TestAddDuplicate(t *testing.T) {
	store := s.NewStore(t)
	ctx := context.Background()

	s.add(t, store, "u", "the same fact")
	change := s.add(t, store, "u", "the same fact")
	if change.Event == EventAdd {
		t.Fatalf("duplicate add should not report ADD, got %s", change.Event)
	}

	items, err := store.GetAll(ctx, ListOptions{UserID: "u"})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 stored memory, got %d", len(items))
	}
}

// TestSearch verifies substring relevance retrieval.
func (s *StoreTestSuite) TestSearch(t *testing.T) {
	store := s.NewStore(t)
	ctx := context.Background()

	s.add(t, store, "u", "prefers short answers")
	s.add(t, store, "u", "timezone is Europe/Berlin")

	items, err := store.Search(ctx, "timezone", SearchOptions{UserID: "u", Limit: 5})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 result, got %d", len(items))
	}
	if items[0].Memory != "timezone is Europe/Berlin" {
		t.Fatalf("unexpected result: %q", items[0].Memory)
	}
}

// TestGetAllScopedByUser verifies user isolation.
func (s *StoreTestSuite) TestGetAllScopedByUser(t *testing.T) {
	store := s.NewStore(t)
	ctx := context.Background()

	s.add(t, store, "alice", "alice fact")
	s.add(t, store, "bob", "bob fact")

	items, err := store.GetAll(ctx, ListOptions{UserID: "alice"})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(items) != 1 || items[0].Memory != "alice fact" {
		t.Fatalf("expected only alice's fact, got %v", items)
	}
}

// TestDelete verifies deletion and subsequent not-found behavior.
func (s *StoreTestSuite) TestDelete(t *testing.T) {
	store := s.NewStore(t)
	ctx := context.Background()

	change := s.add(t, store, "u", "ephemeral fact")
	if err := store.Delete(ctx, change.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(ctx, change.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

// TestGetNotFound verifies the sentinel for unknown IDs.
func (s *StoreTestSuite) TestGetNotFound(t *testing.T) {
	store := s.NewStore(t)

	if _, err := store.Get(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
