package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/brightgoods/storefront-backend/internal/identity"
	"github.com/brightgoods/storefront-backend/pkg/logger"
)

const (
	clientIDHeader = "X-Client-Id"
	clientIDCookie = "storefront_client_id"
)

type clientIDCtxKey struct{}

// ClientIdentity resolves the per-browser client identifier for the request.
// Precedence: header, then cookie; when neither is present a fresh id is
// minted and pinned in a long-lived cookie so it survives reloads.
func ClientIdentity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.Header.Get(clientIDHeader)
			if clientID == "" {
				if cookie, err := r.Cookie(clientIDCookie); err == nil {
					clientID = cookie.Value
				}
			}
			if clientID == "" {
				clientID = identity.NewClientID()
				http.SetCookie(w, &http.Cookie{
					Name:     clientIDCookie,
					Value:    clientID,
					Path:     "/",
					Expires:  time.Now().Add(365 * 24 * time.Hour),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			w.Header().Set(clientIDHeader, clientID)

			ctx := context.WithValue(r.Context(), clientIDCtxKey{}, clientID)
			if logg != nil {
				ctx = logg.WithClientID(ctx, clientID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIDFromContext returns the client id resolved for the request, or ""
// when the middleware did not run.
func ClientIDFromContext(ctx context.Context) string {
	if value, ok := ctx.Value(clientIDCtxKey{}).(string); ok {
		return value
	}
	return ""
}
