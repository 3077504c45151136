package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brightgoods/storefront-backend/internal/storage"
)

type failingStore struct {
	getErr error
	setErr error
}

func (s *failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, s.getErr
}

func (s *failingStore) Set(context.Context, string, string) error {
	return s.setErr
}

func (s *failingStore) Delete(context.Context, string) error { return nil }

func (s *failingStore) Update(context.Context, string, storage.UpdateFunc) error { return nil }

func TestClientIDIsStableAcrossCalls(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	provider, err := NewProvider(store, nil, "storefront")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := provider.ClientID(context.Background())
	second := provider.ClientID(context.Background())
	if first == "" {
		t.Fatal("expected non-empty client id")
	}
	if first != second {
		t.Fatalf("expected stable id, got %q then %q", first, second)
	}
}

func TestClientIDSurvivesReload(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	provider, err := NewProvider(store, nil, "storefront")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := provider.ClientID(context.Background())
	provider.Reset()
	second := provider.ClientID(context.Background())
	if first != second {
		t.Fatalf("expected id to survive reload, got %q then %q", first, second)
	}

	// A fresh provider over the same store also sees the persisted id.
	other, err := NewProvider(store, nil, "storefront")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := other.ClientID(context.Background()); got != first {
		t.Fatalf("expected persisted id %q, got %q", first, got)
	}
}

func TestClientIDFallsBackWhenStoreFails(t *testing.T) {
	t.Parallel()

	store := &failingStore{
		getErr: errors.New("unreachable"),
		setErr: errors.New("unreachable"),
	}
	provider, err := NewProvider(store, nil, "storefront")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id := provider.ClientID(context.Background())
	if id == "" {
		t.Fatal("expected ephemeral id despite store failure")
	}
	if id != provider.ClientID(context.Background()) {
		t.Fatal("expected id to stay stable within the session")
	}
}

func TestNewProviderRequiresStore(t *testing.T) {
	t.Parallel()

	if _, err := NewProvider(nil, nil, "storefront"); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestNewClientIDFormat(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewClientID()
		if !strings.HasPrefix(id, "c_") {
			t.Fatalf("unexpected prefix: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}
