// Package identity issues the synthetic client identifier that scopes a cart
// to one browser without authentication.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/brightgoods/storefront-backend/internal/storage"
	"github.com/brightgoods/storefront-backend/pkg/logger"
)

// Provider hands out a stable per-client identifier. The id is minted lazily
// on first use and persisted; once present it is never regenerated. Lookup
// never fails the caller: if the store is unavailable the provider falls back
// to a process-local id and logs the degradation.
type Provider struct {
	store     storage.Store
	logg      *logger.Logger
	keyPrefix string

	mu     sync.Mutex
	cached string
}

// NewProvider builds a provider persisting through the given store.
func NewProvider(store storage.Store, logg *logger.Logger, namespace string) (*Provider, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if namespace == "" {
		namespace = "storefront"
	}
	return &Provider{store: store, logg: logg, keyPrefix: namespace}, nil
}

func (p *Provider) key() string {
	return p.keyPrefix + ":client_id"
}

// ClientID returns the persisted client identifier, minting and persisting a
// fresh one when absent.
func (p *Provider) ClientID(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" {
		return p.cached
	}

	value, exists, err := p.store.Get(ctx, p.key())
	if err != nil && p.logg != nil {
		p.logg.Warn(ctx, "client id read failed, minting ephemeral id")
	}
	if err == nil && exists && value != "" {
		p.cached = value
		return p.cached
	}

	p.cached = NewClientID()
	if err := p.store.Set(ctx, p.key(), p.cached); err != nil && p.logg != nil {
		// The id stays usable for this session but will not survive a restart.
		p.logg.Warn(ctx, "client id persist failed, id is session-scoped")
	}
	return p.cached
}

// Reset drops the cached id so the next ClientID call re-reads the store.
// Intended for tests simulating a reload.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = ""
}

// NewClientID mints a collision-resistant identifier with a leading time
// component for rough chronological ordering.
func NewClientID() string {
	return "c_" + strconv.FormatInt(time.Now().UnixMilli(), 36) + "_" + randomSuffix(4)
}

func randomSuffix(bytes int) string {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// timestamp-derived suffix if it somehow does.
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf)
}
