package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ervipinsingh/spice-drama-admin/config"
	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey: "test-secret-key",
		TokenTTL:  time.Hour,
		Issuer:    "test-issuer",
		Audience:  "test-audience",
	}
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	ctx := context.Background()
	issuer, err := NewTokenIssuer(testJWTConfig())
	require.NoError(t, err)

	account := &types.Account{
		ID:   uuid.New(),
		Role: types.RoleEditor,
	}

	token, expiresAt, err := issuer.Issue(ctx, account)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	accountID, err := issuer.Validate(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, account.ID, accountID)
}

func TestTokenIssuerValidate(t *testing.T) {
	ctx := context.Background()
	issuer, err := NewTokenIssuer(testJWTConfig())
	require.NoError(t, err)

	// Test case: token signed with a different secret
	t.Run("WrongSecret", func(t *testing.T) {
		other, err := NewTokenIssuer(config.JWTConfig{
			SecretKey: "another-secret",
			TokenTTL:  time.Hour,
			Issuer:    "test-issuer",
			Audience:  "test-audience",
		})
		require.NoError(t, err)

		token, _, err := other.Issue(ctx, &types.Account{ID: uuid.New()})
		require.NoError(t, err)

		_, err = issuer.Validate(ctx, token)
		assert.ErrorIs(t, err, types.ErrCredentialInvalid)
	})

	// Test case: expired token
	t.Run("Expired", func(t *testing.T) {
		claims := &Claims{
			AccountID: uuid.New().String(),
			Role:      types.RoleViewer,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				Audience:  jwt.ClaimStrings{"test-audience"},
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte("test-secret-key"))
		require.NoError(t, err)

		_, err = issuer.Validate(ctx, signed)
		assert.ErrorIs(t, err, types.ErrCredentialExpired)
	})

	// Test case: wrong issuer claim
	t.Run("WrongIssuer", func(t *testing.T) {
		other, err := NewTokenIssuer(config.JWTConfig{
			SecretKey: "test-secret-key",
			TokenTTL:  time.Hour,
			Issuer:    "someone-else",
			Audience:  "test-audience",
		})
		require.NoError(t, err)

		token, _, err := other.Issue(ctx, &types.Account{ID: uuid.New()})
		require.NoError(t, err)

		_, err = issuer.Validate(ctx, token)
		assert.ErrorIs(t, err, types.ErrCredentialInvalid)
	})

	// Test case: garbage input
	t.Run("Malformed", func(t *testing.T) {
		_, err := issuer.Validate(ctx, "not-a-token")
		assert.ErrorIs(t, err, types.ErrCredentialInvalid)
	})

	// Test case: unsigned token is rejected by the method allow-list
	t.Run("NoneAlgorithm", func(t *testing.T) {
		claims := &Claims{AccountID: uuid.New().String()}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Validate(ctx, unsigned)
		assert.ErrorIs(t, err, types.ErrCredentialInvalid)
	})
}

func TestTokenIssuerExtract(t *testing.T) {
	issuer, err := NewTokenIssuer(testJWTConfig())
	require.NoError(t, err)

	t.Run("BearerHeader", func(t *testing.T) {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer abc123")

		raw, ok := issuer.Extract(r)
		assert.True(t, ok)
		assert.Equal(t, "abc123", raw)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)

		_, ok := issuer.Extract(r)
		assert.False(t, ok)
	})

	t.Run("WrongScheme", func(t *testing.T) {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		_, ok := issuer.Extract(r)
		assert.False(t, ok)
	})
}

func TestNewTokenIssuerEmptySecret(t *testing.T) {
	_, err := NewTokenIssuer(config.JWTConfig{})
	assert.Error(t, err)
}
