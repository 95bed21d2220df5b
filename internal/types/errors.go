package types

import "errors"

// Sentinel errors shared by every component in the auth core. Services
// wrap these with %w; the HTTP boundary maps them to status codes and
// stable error codes (see internal/api).
var (
	// ErrInvalidCredentials covers both unknown identifier and wrong
	// password so login responses cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("action forbidden")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrConflict           = errors.New("username or email already exists")
	ErrNotFound           = errors.New("requested item not found")
	ErrInternal           = errors.New("internal error")

	// Credential validation failures. Both map to 401; they are kept
	// distinct so callers can log expiry separately from tampering.
	ErrCredentialExpired = errors.New("credential expired")
	ErrCredentialInvalid = errors.New("credential invalid")
)
