package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightgoods/storefront-backend/internal/orders"
	"github.com/brightgoods/storefront-backend/pkg/config"
	"github.com/brightgoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/brightgoods/storefront-backend/pkg/errors"
)

func TestMirrorDisabledWithoutBaseURL(t *testing.T) {
	t.Parallel()

	mirror := New(config.RemoteSyncConfig{})
	assert.False(t, mirror.Enabled())
	require.NoError(t, mirror.OrderCreated(context.Background(), &orders.Order{ID: "ord_1"}))
	require.NoError(t, mirror.StatusChanged(context.Background(), &orders.Order{ID: "ord_1"}))

	var nilMirror *Mirror
	assert.False(t, nilMirror.Enabled())
}

func TestMirrorOrderCreatedPostsSnapshot(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	mirror := New(config.RemoteSyncConfig{BaseURL: server.URL, Timeout: time.Second})
	order := &orders.Order{ID: "ord_1", Status: enums.OrderStatusPending}
	require.NoError(t, mirror.OrderCreated(context.Background(), order))

	assert.Equal(t, "/orders", gotPath)
	assert.Equal(t, "ord_1", gotBody["id"])
}

func TestMirrorStatusChangedPostsTransition(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	mirror := New(config.RemoteSyncConfig{BaseURL: server.URL, Timeout: time.Second})
	order := &orders.Order{ID: "ord_1", Status: enums.OrderStatusShipped, UpdatedAt: time.Now().UTC()}
	require.NoError(t, mirror.StatusChanged(context.Background(), order))

	assert.Equal(t, "/orders/ord_1/status", gotPath)
	assert.Equal(t, "shipped", gotBody["status"])
	assert.NotEmpty(t, gotBody["updated_at"])
}

func TestMirrorSurfacesRemoteFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	mirror := New(config.RemoteSyncConfig{BaseURL: server.URL, Timeout: time.Second})
	err := mirror.OrderCreated(context.Background(), &orders.Order{ID: "ord_1"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRemoteSync))
}

func TestMirrorUnreachableBackend(t *testing.T) {
	t.Parallel()

	mirror := New(config.RemoteSyncConfig{BaseURL: "http://127.0.0.1:1", Timeout: 100 * time.Millisecond})
	err := mirror.OrderCreated(context.Background(), &orders.Order{ID: "ord_1"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRemoteSync))
}

func TestMirrorStatusChangedRequiresOrder(t *testing.T) {
	t.Parallel()

	mirror := New(config.RemoteSyncConfig{BaseURL: "http://example.com", Timeout: time.Second})
	err := mirror.StatusChanged(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRemoteSync))
}
