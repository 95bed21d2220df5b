package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ervipinsingh/spice-drama-admin/config"
	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

var _ CredentialIssuer = (*TokenIssuer)(nil)

// Claims embedded in stateless access tokens. Role is informational
// only: the gate always re-reads the account, so a stale role claim
// cannot grant access.
type Claims struct {
	AccountID string     `json:"account_id"`
	Role      types.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer implements the stateless strategy: HS256-signed tokens
// carried in the Authorization header. No server-side state, and no
// revocation before expiry.
type TokenIssuer struct {
	secretKey []byte
	tokenTTL  time.Duration
	issuer    string
	audience  string
}

func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("JWT secret key cannot be empty")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenIssuer{
		secretKey: []byte(cfg.SecretKey),
		tokenTTL:  ttl,
		issuer:    cfg.Issuer,
		audience:  cfg.Audience,
	}, nil
}

func (t *TokenIssuer) Issue(_ context.Context, account *types.Account) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(t.tokenTTL)

	claims := &Claims{
		AccountID: account.ID.String(),
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

func (t *TokenIssuer) Validate(_ context.Context, raw string) (uuid.UUID, error) {
	claims := &Claims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if t.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(t.issuer))
	}
	if t.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(t.audience))
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secretKey, nil
	}, parserOpts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, types.ErrCredentialExpired
		}
		// Malformed, bad signature, wrong issuer/audience: all invalid.
		return uuid.Nil, fmt.Errorf("%w: %s", types.ErrCredentialInvalid, err)
	}
	if !token.Valid {
		return uuid.Nil, types.ErrCredentialInvalid
	}

	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", types.ErrCredentialInvalid)
	}
	return accountID, nil
}

func (t *TokenIssuer) Extract(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
		return "", false
	}
	return headerParts[1], true
}

// Attach is a no-op: bearer tokens travel in the login response body.
func (t *TokenIssuer) Attach(http.ResponseWriter, string, time.Time) {}

// Clear is a no-op: logout under the stateless strategy is a
// client-side discard of the token.
func (t *TokenIssuer) Clear(http.ResponseWriter) {}
