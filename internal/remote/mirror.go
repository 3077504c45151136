// Package remote mirrors order activity to the remote backend on a
// best-effort basis. Local state stays the source of truth; every failure
// here is logged and swallowed by callers, never surfaced to the customer.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brightgoods/storefront-backend/internal/orders"
	"github.com/brightgoods/storefront-backend/pkg/config"
	pkgerrors "github.com/brightgoods/storefront-backend/pkg/errors"
)

// Mirror posts order snapshots to the configured remote backend.
type Mirror struct {
	httpClient *http.Client
	baseURL    string
	enabled    bool
}

// Option configures optional mirror behavior.
type Option func(*Mirror)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Mirror) {
		if client != nil {
			m.httpClient = client
		}
	}
}

// New builds a mirror; when no base URL is configured the mirror is disabled
// and every call is a no-op.
func New(cfg config.RemoteSyncConfig, opts ...Option) *Mirror {
	mirror := &Mirror{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		enabled:    cfg.Enabled(),
	}
	for _, opt := range opts {
		opt(mirror)
	}
	return mirror
}

// Enabled reports whether mirroring is configured.
func (m *Mirror) Enabled() bool {
	return m != nil && m.enabled
}

// OrderCreated mirrors a freshly created order.
func (m *Mirror) OrderCreated(ctx context.Context, order *orders.Order) error {
	return m.post(ctx, "/orders", order)
}

// StatusChanged mirrors a status transition.
func (m *Mirror) StatusChanged(ctx context.Context, order *orders.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeRemoteSync, "order required")
	}
	return m.post(ctx, "/orders/"+order.ID+"/status", map[string]string{
		"status":     order.Status.String(),
		"updated_at": order.UpdatedAt.Format(time.RFC3339Nano),
	})
}

func (m *Mirror) post(ctx context.Context, path string, payload any) error {
	if !m.Enabled() {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeRemoteSync, err, "encoding mirror payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeRemoteSync, err, "building mirror request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeRemoteSync, err, "posting to remote backend")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pkgerrors.New(pkgerrors.CodeRemoteSync, fmt.Sprintf("remote backend returned %d", resp.StatusCode))
	}
	return nil
}
