package controllers

import (
	"net/http"
	"time"

	"github.com/brightgoods/storefront-backend/api/responses"
	"github.com/brightgoods/storefront-backend/api/validators"
	"github.com/brightgoods/storefront-backend/pkg/auth"
	"github.com/brightgoods/storefront-backend/pkg/config"
	pkgerrors "github.com/brightgoods/storefront-backend/pkg/errors"
	"github.com/brightgoods/storefront-backend/pkg/logger"
	"github.com/brightgoods/storefront-backend/pkg/security"
)

type adminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type adminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// AdminLogin exchanges the admin console password for a bearer token.
func AdminLogin(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Admin.PasswordHash == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin console is disabled"))
			return
		}

		var payload adminLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ok, err := security.VerifyPassword(payload.Password, cfg.Admin.PasswordHash)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying admin password"))
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"))
			return
		}

		token, err := auth.MintAdminToken(cfg.JWT, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting admin token"))
			return
		}

		responses.WriteSuccess(w, adminLoginResponse{
			Token:     token,
			ExpiresIn: cfg.JWT.ExpirationMinutes * 60,
		})
	}
}
