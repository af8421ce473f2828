package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store[string, string] {
	t.Helper()
	s, err := OpenTemporary[string, string]()
	if err != nil {
		t.Fatalf("OpenTemporary() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustInsert(t *testing.T, s *Store[string, string], key, value string) {
	t.Helper()
	if _, _, err := s.Insert(context.Background(), key, value); err != nil {
		t.Fatalf("Insert(%q) failed: %v", key, err)
	}
}

func TestStore_AccessPromotes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, "a", "1")
	mustInsert(t, s, "b", "2")
	mustInsert(t, s, "c", "3")

	// Order is a, b, c from least to most recent.
	if k, ok, err := s.LRU(ctx); err != nil || !ok || k != "a" {
		t.Fatalf("LRU() = %q, %v, %v; want a", k, ok, err)
	}

	v, ok, err := s.Access(ctx, "a")
	if err != nil || !ok || v != "1" {
		t.Fatalf("Access(a) = %q, %v, %v; want 1", v, ok, err)
	}

	// a moved to the front; b is now the oldest.
	if k, _, _ := s.LRU(ctx); k != "b" {
		t.Errorf("LRU after access = %q; want b", k)
	}
	if k, _, _ := s.MRU(ctx); k != "a" {
		t.Errorf("MRU after access = %q; want a", k)
	}
}

func TestStore_PeekDoesNotPromote(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, "a", "1")
	mustInsert(t, s, "b", "2")

	v, ok, err := s.Peek(ctx, "a")
	if err != nil || !ok || v != "1" {
		t.Fatalf("Peek(a) = %q, %v, %v; want 1", v, ok, err)
	}

	if k, _, _ := s.LRU(ctx); k != "a" {
		t.Errorf("LRU after peek = %q; want a", k)
	}

	// Missing keys are not an error.
	if _, ok, err := s.Peek(ctx, "nope"); ok || err != nil {
		t.Errorf("Peek(nope) = _, %v, %v; want miss without error", ok, err)
	}
}

func TestStore_ExtremalPairsDoNotPromote(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, "a", "1")
	mustInsert(t, s, "b", "2")

	k, v, ok, err := s.LRUPair(ctx)
	if err != nil || !ok || k != "a" || v != "1" {
		t.Fatalf("LRUPair() = %q, %q, %v, %v; want a, 1", k, v, ok, err)
	}
	k, v, ok, err = s.MRUPair(ctx)
	if err != nil || !ok || k != "b" || v != "2" {
		t.Fatalf("MRUPair() = %q, %q, %v, %v; want b, 2", k, v, ok, err)
	}

	// Neither query changed the order.
	if k, _, _ := s.LRU(ctx); k != "a" {
		t.Errorf("LRU after pair queries = %q; want a", k)
	}
}

func TestStore_InsertReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, "a", "1")
	mustInsert(t, s, "b", "2")

	prev, had, err := s.Insert(ctx, "a", "updated")
	if err != nil {
		t.Fatalf("Insert(a) failed: %v", err)
	}
	if !had || prev != "1" {
		t.Errorf("Insert(a) previous = %q, %v; want 1, true", prev, had)
	}

	// Reinsertion counts as use: a is now the most recent.
	if k, _, _ := s.MRU(ctx); k != "a" {
		t.Errorf("MRU after reinsert = %q; want a", k)
	}
	if n, _ := s.Len(ctx); n != 2 {
		t.Errorf("Len() = %d; want 2", n)
	}
}

func TestStore_Pop(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, "a", "1")

	v, ok, err := s.Pop(ctx, "a")
	if err != nil || !ok || v != "1" {
		t.Fatalf("Pop(a) = %q, %v, %v; want 1", v, ok, err)
	}
	if n, _ := s.Len(ctx); n != 0 {
		t.Errorf("Len() after pop = %d; want 0", n)
	}

	// Popping an absent key is not an error.
	if _, ok, err := s.Pop(ctx, "a"); ok || err != nil {
		t.Errorf("Pop(absent) = _, %v, %v; want miss without error", ok, err)
	}
}

func TestStore_PopLRU(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, "a", "1")
	mustInsert(t, s, "b", "2")

	k, v, ok, err := s.PopLRU(ctx)
	if err != nil || !ok || k != "a" || v != "1" {
		t.Fatalf("PopLRU() = %q, %q, %v, %v; want a, 1", k, v, ok, err)
	}
	k, _, ok, err = s.PopLRU(ctx)
	if err != nil || !ok || k != "b" {
		t.Fatalf("PopLRU() = %q, _, %v, %v; want b", k, ok, err)
	}

	// Empty store reports no pair, not an error.
	if _, _, ok, err := s.PopLRU(ctx); ok || err != nil {
		t.Errorf("PopLRU(empty) = %v, %v; want miss without error", ok, err)
	}
	if _, ok, err := s.LRU(ctx); ok || err != nil {
		t.Errorf("LRU(empty) = %v, %v; want miss without error", ok, err)
	}
}

func TestStore_Walk(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, "a", "1")
	mustInsert(t, s, "b", "2")
	mustInsert(t, s, "c", "3")
	if _, _, err := s.Access(ctx, "a"); err != nil {
		t.Fatalf("Access(a) failed: %v", err)
	}

	var keys []string
	err := s.Walk(ctx, func(key, _ string) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() failed: %v", err)
	}

	want := []string{"b", "c", "a"}
	if len(keys) != len(want) {
		t.Fatalf("Walk visited %v; want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Walk order[%d] = %q; want %q", i, keys[i], want[i])
		}
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	s, err := Open[string, string](path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	mustInsert(t, s, "a", "1")
	mustInsert(t, s, "b", "2")
	if _, _, err := s.Access(ctx, "a"); err != nil {
		t.Fatalf("Access(a) failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	s, err = Open[string, string](path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	// Recency order survived the restart.
	if k, _, _ := s.LRU(ctx); k != "b" {
		t.Errorf("LRU after reopen = %q; want b", k)
	}
	if k, _, _ := s.MRU(ctx); k != "a" {
		t.Errorf("MRU after reopen = %q; want a", k)
	}

	// The sequence counter resumes where it left off.
	mustInsert(t, s, "c", "3")
	if k, _, _ := s.MRU(ctx); k != "c" {
		t.Errorf("MRU after insert = %q; want c", k)
	}
	if k, _, _ := s.LRU(ctx); k != "b" {
		t.Errorf("LRU after insert = %q; want b", k)
	}
}

func TestStore_IntKeys(t *testing.T) {
	s, err := OpenTemporary[int, string]()
	if err != nil {
		t.Fatalf("OpenTemporary() failed: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	if _, _, err := s.Insert(ctx, 42, "answer"); err != nil {
		t.Fatalf("Insert(42) failed: %v", err)
	}
	v, ok, err := s.Peek(ctx, 42)
	if err != nil || !ok || v != "answer" {
		t.Fatalf("Peek(42) = %q, %v, %v; want answer", v, ok, err)
	}
}
