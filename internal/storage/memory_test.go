package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	_, exists, err := store.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatal("expected missing key")
	}

	if err := store.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value, exists, err := store.Get(ctx, "k")
	if err != nil || !exists || value != "v1" {
		t.Fatalf("unexpected read: %q %v %v", value, exists, err)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, exists, _ = store.Get(ctx, "k")
	if exists {
		t.Fatal("expected key to be deleted")
	}
}

func TestMemoryStoreDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if err := store.Delete(context.Background(), "never-set"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMemoryStoreUpdateSeesCurrentState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Update(ctx, "k", func(current string, exists bool) (string, error) {
		if exists {
			t.Fatal("expected missing key on first update")
		}
		return "first", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = store.Update(ctx, "k", func(current string, exists bool) (string, error) {
		if !exists || current != "first" {
			t.Fatalf("unexpected state: %q %v", current, exists)
		}
		return "second", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value, _, _ := store.Get(ctx, "k")
	if value != "second" {
		t.Fatalf("unexpected value: %q", value)
	}
}

func TestMemoryStoreUpdateErrorAbortsWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Set(ctx, "k", "kept"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	abort := errors.New("abort")
	err := store.Update(ctx, "k", func(string, bool) (string, error) {
		return "discarded", abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("expected abort error, got %v", err)
	}

	value, _, _ := store.Get(ctx, "k")
	if value != "kept" {
		t.Fatalf("expected value untouched, got %q", value)
	}
}

func TestMemoryStoreUpdateIsAtomicUnderContention(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(ctx, "counter", func(current string, exists bool) (string, error) {
				n := 0
				if exists {
					fmt.Sscanf(current, "%d", &n)
				}
				return fmt.Sprintf("%d", n+1), nil
			})
		}()
	}
	wg.Wait()

	value, _, _ := store.Get(ctx, "counter")
	if value != fmt.Sprintf("%d", writers) {
		t.Fatalf("lost updates: got %q, want %d", value, writers)
	}
}
