package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	appmetrics "github.com/ervipinsingh/spice-drama-admin/app/observability/metrics"
	"github.com/ervipinsingh/spice-drama-admin/internal/api"
	"github.com/ervipinsingh/spice-drama-admin/internal/ratelimit"
	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

type AuthHandler struct {
	authService AuthService
	issuer      CredentialIssuer
	limiter     *ratelimit.LoginLimiter
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, issuer CredentialIssuer, limiter *ratelimit.LoginLimiter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		issuer:      issuer,
		limiter:     limiter,
		logger:      logger,
	}
}

// Login godoc
// @Summary      Login
// @Description  Authenticates by username or email and issues a credential. Rate limited per origin IP.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse "Credential and account summary"
// @Failure      401 {object} Response "Invalid credentials"
// @Failure      403 {object} Response "Account inactive"
// @Failure      429 {object} Response "Too many attempts"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))
	m := appmetrics.Get()

	originKey := clientIP(r)
	if err := h.limiter.Check(ctx, originKey); err != nil {
		if errors.Is(err, types.ErrTooManyAttempts) {
			m.RateLimitedTotal.Add(ctx, 1)
			m.LoginAttemptsTotal.Add(ctx, 1,
				metric.WithAttributes(attribute.String("outcome", "rate_limited")))
			w.Header().Set("Retry-After", strconv.Itoa(int(h.limiter.Window().Seconds())))
			api.ErrorResponse(w, r, http.StatusTooManyRequests,
				fmt.Sprintf("too many login attempts, try again in %s", h.limiter.Window()))
			return
		}
		l.ErrorContext(ctx, "Rate limit check failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	// Every attempt that passed the check counts toward the window,
	// successful or not: brute force is throttled regardless of
	// whether the guesses are correct.
	if err := h.limiter.Record(ctx, originKey); err != nil {
		l.ErrorContext(ctx, "Rate limit record failed", slog.Any("error", err))
	}

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Identifier == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "identifier and password are required")
		return
	}

	account, credential, expiresAt, err := h.authService.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, types.ErrInvalidCredentials):
			outcome = "invalid_credentials"
		case errors.Is(err, types.ErrAccountInactive):
			outcome = "inactive"
		}
		m.LoginAttemptsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("outcome", outcome)))
		l.WarnContext(ctx, "Login failed",
			slog.String("identifier", req.Identifier), slog.Any("error", err))
		api.DomainErrorResponse(w, r, err)
		return
	}

	m.LoginAttemptsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", "success")))

	h.issuer.Attach(w, credential, expiresAt)

	resp := LoginResponse{
		Success: true,
		Account: account.Summary(),
	}
	// The stateful strategy carries the session id only in its
	// httpOnly cookie; bearer tokens go in the body.
	if _, stateful := h.issuer.(Revoker); !stateful {
		resp.Credential = credential
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Logout godoc
// @Summary      Logout
// @Description  Revokes the presented session where the strategy supports revocation; always clears the cookie.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} Response
// @Failure      401 {object} Response "Unauthorized"
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Logout"))

	raw, ok := h.issuer.Extract(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.authService.Logout(ctx, raw); err != nil {
		l.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.issuer.Clear(w)
	api.WriteJSONResponse(w, r, http.StatusOK, Response{Success: true, Message: "logged out"})
}

// Me godoc
// @Summary      Current account
// @Description  Returns the authenticated account's summary.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.AccountSummary
// @Failure      401 {object} Response "Unauthorized"
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, ok := AccountFromContext(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "Account not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, account.Summary())
}

// clientIP derives the rate-limit origin key. RealIP middleware runs
// first, so RemoteAddr already reflects X-Forwarded-For behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
