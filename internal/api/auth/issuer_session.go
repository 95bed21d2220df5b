package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ervipinsingh/spice-drama-admin/config"
	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

// DB is the pgx surface the session store needs. *pgxpool.Pool
// satisfies it, as does pgxmock in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ CredentialIssuer = (*SessionIssuer)(nil)
	_ Revoker          = (*SessionIssuer)(nil)
)

// SessionIssuer implements the stateful strategy: an unguessable
// session id stored server-side, carried in an httpOnly cookie, with a
// sliding expiry. Sessions are revocable, which is the operational
// advantage this strategy buys over stateless tokens.
type SessionIssuer struct {
	db         DB
	sessionTTL time.Duration
	cookie     config.CookieConfig
	secure     bool
	logger     *slog.Logger
}

func NewSessionIssuer(db DB, cfg config.AuthConfig, production bool, logger *slog.Logger) *SessionIssuer {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	cookie := cfg.Cookie
	if cookie.Name == "" {
		cookie.Name = "admin_session"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &SessionIssuer{
		db:         db,
		sessionTTL: ttl,
		cookie:     cookie,
		// Secure is forced on in production regardless of config.
		secure: production || cfg.Cookie.Secure,
		logger: logger,
	}
}

func (s *SessionIssuer) Issue(ctx context.Context, account *types.Account) (string, time.Time, error) {
	sessionID := uuid.New()
	expiresAt := time.Now().Add(s.sessionTTL)

	_, err := s.db.Exec(ctx,
		"INSERT INTO sessions (id, account_id, expires_at) VALUES ($1, $2, $3)",
		sessionID, account.ID, expiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store session: %w", err)
	}
	return sessionID.String(), expiresAt, nil
}

func (s *SessionIssuer) Validate(ctx context.Context, raw string) (uuid.UUID, error) {
	sessionID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed session id", types.ErrCredentialInvalid)
	}

	var accountID uuid.UUID
	var expiresAt time.Time
	var revokedAt *time.Time
	err = s.db.QueryRow(ctx,
		"SELECT account_id, expires_at, revoked_at FROM sessions WHERE id = $1",
		sessionID).Scan(&accountID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, types.ErrCredentialInvalid
		}
		return uuid.Nil, fmt.Errorf("session lookup failed: %w", err)
	}

	if revokedAt != nil {
		return uuid.Nil, types.ErrCredentialInvalid
	}
	if time.Now().After(expiresAt) {
		return uuid.Nil, types.ErrCredentialExpired
	}

	// Slide the expiry on activity. A failed touch does not fail the
	// request; the session just keeps its previous expiry.
	s.touch(ctx, sessionID)

	return accountID, nil
}

func (s *SessionIssuer) touch(ctx context.Context, sessionID uuid.UUID) {
	_, err := s.db.Exec(ctx,
		"UPDATE sessions SET expires_at = $1 WHERE id = $2 AND revoked_at IS NULL",
		time.Now().Add(s.sessionTTL), sessionID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to touch session",
			slog.String("session_id", sessionID.String()),
			slog.Any("error", err),
		)
	}
}

// Revoke invalidates a session server-side; used by logout.
func (s *SessionIssuer) Revoke(ctx context.Context, raw string) error {
	sessionID, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: malformed session id", types.ErrCredentialInvalid)
	}

	tag, err := s.db.Exec(ctx,
		"UPDATE sessions SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL",
		time.Now(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already revoked or never existed; logout stays idempotent.
		s.logger.DebugContext(ctx, "Revoke found no live session",
			slog.String("session_id", sessionID.String()))
	}
	return nil
}

func (s *SessionIssuer) Extract(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.cookie.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (s *SessionIssuer) Attach(w http.ResponseWriter, raw string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    raw,
		Path:     s.cookie.Path,
		Domain:   s.cookie.Domain,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: parseSameSite(s.cookie.SameSite),
	})
}

func (s *SessionIssuer) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Path:     s.cookie.Path,
		Domain:   s.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: parseSameSite(s.cookie.SameSite),
	})
}

func parseSameSite(mode string) http.SameSite {
	switch mode {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
