package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

// LoginRequest represents the login request body. Identifier matches
// either a username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse represents the login response body. Credential is the
// bearer token under the stateless strategy; under the stateful
// strategy the session id travels only in the httpOnly cookie and the
// field is left empty.
type LoginResponse struct {
	Success    bool                 `json:"success"`
	Credential string               `json:"credential,omitempty"`
	Account    types.AccountSummary `json:"account"`
}

// Generic response for simple success/error messages
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AccountLookup is the account read surface the auth core consumes.
// internal/api/account's repository satisfies it.
type AccountLookup interface {
	// GetByLoginIdentifier matches username exactly or email after
	// lower-casing, and is the only lookup returning the password hash.
	GetByLoginIdentifier(ctx context.Context, identifier string) (*types.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Account, error)
}

// Define typed context keys
type contextKey string

const accountKey contextKey = "account"

// AccountFromContext returns the account resolved by the Gate
// middleware for the current request.
func AccountFromContext(ctx context.Context) (*types.Account, bool) {
	account, ok := ctx.Value(accountKey).(*types.Account)
	return account, ok
}

// ContextWithAccount is exported for handler tests that bypass the gate.
func ContextWithAccount(ctx context.Context, account *types.Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}
