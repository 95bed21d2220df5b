package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService authenticates login attempts and manages credentials.
type AuthService interface {
	// Login verifies credentials and, on success, issues a credential.
	// Failures: types.ErrInvalidCredentials, types.ErrAccountInactive.
	Login(ctx context.Context, identifier, password string) (*types.Account, string, time.Time, error)

	// Logout revokes the presented credential where the active
	// strategy supports revocation; otherwise it is a no-op and the
	// client discards the token.
	Logout(ctx context.Context, rawCredential string) error

	// Verify runs the credential check without issuing anything.
	Verify(ctx context.Context, identifier, password string) (*types.Account, error)
}

// AuthServiceImpl implements AuthService on top of an account lookup
// and the configured credential issuer.
type AuthServiceImpl struct {
	accounts AccountLookup
	issuer   CredentialIssuer
	logger   *slog.Logger
}

func NewAuthService(accounts AccountLookup, issuer CredentialIssuer, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		accounts: accounts,
		issuer:   issuer,
		logger:   logger,
	}
}

// Verify looks up the account by username or email and compares the
// password. An unknown identifier and a wrong password both return
// ErrInvalidCredentials so responses cannot be used to probe for
// accounts. The active check runs only after a successful password
// comparison for the same reason: inactive status is not revealed to
// callers who do not hold the password.
func (s *AuthServiceImpl) Verify(ctx context.Context, identifier, password string) (*types.Account, error) {
	account, err := s.accounts.GetByLoginIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("account lookup failed: %w", err)
	}

	// bcrypt comparison is constant-time over the hash.
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, types.ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, types.ErrAccountInactive
	}

	account.PasswordHash = ""
	return account, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, identifier, password string) (*types.Account, string, time.Time, error) {
	account, err := s.Verify(ctx, identifier, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	credential, expiresAt, err := s.issuer.Issue(ctx, account)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to issue credential",
			slog.String("account_id", account.ID.String()),
			slog.Any("error", err),
		)
		return nil, "", time.Time{}, fmt.Errorf("credential issuance failed: %w", types.ErrInternal)
	}

	s.logger.InfoContext(ctx, "Login successful",
		slog.String("account_id", account.ID.String()),
		slog.String("username", account.Username),
	)
	return account, credential, expiresAt, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, rawCredential string) error {
	revoker, ok := s.issuer.(Revoker)
	if !ok {
		// Stateless strategy: nothing to revoke server-side.
		return nil
	}
	if err := revoker.Revoke(ctx, rawCredential); err != nil {
		if errors.Is(err, types.ErrCredentialInvalid) {
			return nil
		}
		return fmt.Errorf("logout failed: %w", types.ErrInternal)
	}
	return nil
}
