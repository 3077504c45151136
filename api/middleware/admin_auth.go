package middleware

import (
	"net/http"
	"strings"

	"github.com/brightgoods/storefront-backend/api/responses"
	"github.com/brightgoods/storefront-backend/pkg/auth"
	"github.com/brightgoods/storefront-backend/pkg/config"
	pkgerrors "github.com/brightgoods/storefront-backend/pkg/errors"
	"github.com/brightgoods/storefront-backend/pkg/logger"
)

// AdminAuth requires a valid admin bearer token on every request.
func AdminAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authorization header"))
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" || token == header {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed authorization header"))
				return
			}

			if _, err := auth.ParseAdminToken(cfg, token); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid admin token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
