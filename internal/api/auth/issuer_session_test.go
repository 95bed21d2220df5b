package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ervipinsingh/spice-drama-admin/config"
	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Strategy:   config.AuthStrategySession,
		SessionTTL: time.Hour,
		Cookie: config.CookieConfig{
			Name:     "admin_session",
			Path:     "/",
			SameSite: "lax",
		},
	}
}

func TestSessionIssuerIssue(t *testing.T) {
	ctx := context.Background()
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	issuer := NewSessionIssuer(mockDB, testAuthConfig(), false, slog.Default())
	account := &types.Account{ID: uuid.New()}

	mockDB.ExpectExec("INSERT INTO sessions").
		WithArgs(pgxmock.AnyArg(), account.ID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	raw, expiresAt, err := issuer.Issue(ctx, account)

	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)
	_, parseErr := uuid.Parse(raw)
	assert.NoError(t, parseErr, "session credential must be a uuid")
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestSessionIssuerValidate(t *testing.T) {
	logger := slog.Default()

	// Test case: live session slides its expiry and returns the account
	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		issuer := NewSessionIssuer(mockDB, testAuthConfig(), false, logger)
		sessionID := uuid.New()
		accountID := uuid.New()

		mockDB.ExpectQuery("SELECT account_id, expires_at, revoked_at FROM sessions").
			WithArgs(sessionID).
			WillReturnRows(pgxmock.NewRows([]string{"account_id", "expires_at", "revoked_at"}).
				AddRow(accountID, time.Now().Add(30*time.Minute), nil))
		mockDB.ExpectExec("UPDATE sessions SET expires_at").
			WithArgs(pgxmock.AnyArg(), sessionID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		got, err := issuer.Validate(ctx, sessionID.String())

		assert.NoError(t, err)
		assert.Equal(t, accountID, got)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	// Test case: expired session
	t.Run("Expired", func(t *testing.T) {
		ctx := context.Background()
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		issuer := NewSessionIssuer(mockDB, testAuthConfig(), false, logger)
		sessionID := uuid.New()

		mockDB.ExpectQuery("SELECT account_id, expires_at, revoked_at FROM sessions").
			WithArgs(sessionID).
			WillReturnRows(pgxmock.NewRows([]string{"account_id", "expires_at", "revoked_at"}).
				AddRow(uuid.New(), time.Now().Add(-time.Minute), nil))

		_, err = issuer.Validate(ctx, sessionID.String())

		assert.ErrorIs(t, err, types.ErrCredentialExpired)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	// Test case: revoked session
	t.Run("Revoked", func(t *testing.T) {
		ctx := context.Background()
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		issuer := NewSessionIssuer(mockDB, testAuthConfig(), false, logger)
		sessionID := uuid.New()
		revokedAt := time.Now().Add(-time.Minute)

		mockDB.ExpectQuery("SELECT account_id, expires_at, revoked_at FROM sessions").
			WithArgs(sessionID).
			WillReturnRows(pgxmock.NewRows([]string{"account_id", "expires_at", "revoked_at"}).
				AddRow(uuid.New(), time.Now().Add(30*time.Minute), &revokedAt))

		_, err = issuer.Validate(ctx, sessionID.String())

		assert.ErrorIs(t, err, types.ErrCredentialInvalid)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	// Test case: unknown session id
	t.Run("NotFound", func(t *testing.T) {
		ctx := context.Background()
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		issuer := NewSessionIssuer(mockDB, testAuthConfig(), false, logger)
		sessionID := uuid.New()

		mockDB.ExpectQuery("SELECT account_id, expires_at, revoked_at FROM sessions").
			WithArgs(sessionID).
			WillReturnRows(pgxmock.NewRows([]string{"account_id", "expires_at", "revoked_at"}))

		_, err = issuer.Validate(ctx, sessionID.String())

		assert.ErrorIs(t, err, types.ErrCredentialInvalid)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	// Test case: credential that is not even a uuid never reaches the store
	t.Run("MalformedID", func(t *testing.T) {
		ctx := context.Background()
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		issuer := NewSessionIssuer(mockDB, testAuthConfig(), false, logger)

		_, err = issuer.Validate(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, types.ErrCredentialInvalid)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestSessionIssuerRevoke(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		issuer := NewSessionIssuer(mockDB, testAuthConfig(), false, logger)
		sessionID := uuid.New()

		mockDB.ExpectExec("UPDATE sessions SET revoked_at").
			WithArgs(pgxmock.AnyArg(), sessionID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = issuer.Revoke(ctx, sessionID.String())

		assert.NoError(t, err)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	// Test case: revoking an already revoked session stays idempotent
	t.Run("AlreadyRevoked", func(t *testing.T) {
		ctx := context.Background()
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		issuer := NewSessionIssuer(mockDB, testAuthConfig(), false, logger)
		sessionID := uuid.New()

		mockDB.ExpectExec("UPDATE sessions SET revoked_at").
			WithArgs(pgxmock.AnyArg(), sessionID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err = issuer.Revoke(ctx, sessionID.String())

		assert.NoError(t, err)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestSessionIssuerCookies(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	issuer := NewSessionIssuer(mockDB, testAuthConfig(), false, slog.Default())

	t.Run("AttachAndExtract", func(t *testing.T) {
		sessionID := uuid.New().String()
		rec := httptest.NewRecorder()
		issuer.Attach(rec, sessionID, time.Now().Add(time.Hour))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "admin_session", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(cookies[0])
		raw, ok := issuer.Extract(r)
		assert.True(t, ok)
		assert.Equal(t, sessionID, raw)
	})

	t.Run("ClearExpiresCookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		issuer.Clear(rec)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "admin_session", cookies[0].Name)
		assert.Empty(t, cookies[0].Value)
		assert.Negative(t, cookies[0].MaxAge)
	})

	t.Run("SecureForcedInProduction", func(t *testing.T) {
		prod := NewSessionIssuer(mockDB, testAuthConfig(), true, slog.Default())
		rec := httptest.NewRecorder()
		prod.Attach(rec, uuid.New().String(), time.Now().Add(time.Hour))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.True(t, cookies[0].Secure)
	})
}
