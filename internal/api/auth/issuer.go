package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

// CredentialIssuer mints and validates the opaque proof of identity.
// Exactly one implementation is selected at startup from deployment
// configuration; the two strategies never coexist in one service.
type CredentialIssuer interface {
	// Issue mints a credential for the account and returns its raw
	// form plus expiry.
	Issue(ctx context.Context, account *types.Account) (string, time.Time, error)

	// Validate resolves a raw credential to an account id. Failures
	// are types.ErrCredentialExpired or types.ErrCredentialInvalid.
	Validate(ctx context.Context, raw string) (uuid.UUID, error)

	// Extract pulls the raw credential off a request (Authorization
	// header or cookie, depending on strategy).
	Extract(r *http.Request) (string, bool)

	// Attach writes the credential to the response where the strategy
	// carries it (session cookie); a no-op for bearer tokens, which
	// travel in the login response body instead.
	Attach(w http.ResponseWriter, raw string, expiresAt time.Time)

	// Clear removes the transport-side credential on logout.
	Clear(w http.ResponseWriter)
}

// Revoker is implemented only by the stateful issuer. Stateless tokens
// cannot be revoked before expiry; that asymmetry is an operational
// property of the strategy, not a gap to paper over. The logout
// handler type-asserts for this.
type Revoker interface {
	Revoke(ctx context.Context, raw string) error
}
