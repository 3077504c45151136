package auth

import (
	"testing"
	"time"

	"github.com/brightgoods/storefront-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "storefront",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseAdminToken(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	token, err := MintAdminToken(cfg, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAdminToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "storefront", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestMintAdminTokenValidatesConfig(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	cfg.Secret = ""
	_, err := MintAdminToken(cfg, time.Now())
	require.Error(t, err)

	cfg = testJWTConfig()
	cfg.ExpirationMinutes = 0
	_, err = MintAdminToken(cfg, time.Now())
	require.Error(t, err)
}

func TestParseAdminTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	token, err := MintAdminToken(cfg, time.Now())
	require.NoError(t, err)

	other := cfg
	other.Secret = "different-secret"
	_, err = ParseAdminToken(other, token)
	require.Error(t, err)
}

func TestParseAdminTokenRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	token, err := MintAdminToken(cfg, time.Now())
	require.NoError(t, err)

	other := cfg
	other.Issuer = "someone-else"
	_, err = ParseAdminToken(other, token)
	require.Error(t, err)
}

func TestParseAdminTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	token, err := MintAdminToken(cfg, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = ParseAdminToken(cfg, token)
	require.Error(t, err)
}

func TestParseAdminTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := ParseAdminToken(testJWTConfig(), "not.a.token")
	require.Error(t, err)
}
