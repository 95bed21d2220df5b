package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	appmetrics "github.com/ervipinsingh/spice-drama-admin/app/observability/metrics"
	"github.com/ervipinsingh/spice-drama-admin/internal/api"
	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

// Gate is the single authorization middleware for every protected
// route: authenticate the credential, re-read the account, reject
// inactive accounts, then apply the role policy. The two checks are
// deliberately inseparable so no route can authenticate without the
// active-account check — a banned account is rejected on its very next
// request even though its credential still validates.
func Gate(issuer CredentialIssuer, accounts AccountLookup, required types.RoleSet, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Gate"))
			start := time.Now()
			m := appmetrics.Get()
			defer func() {
				m.GateDecisionDuration.Record(ctx, time.Since(start).Seconds())
			}()

			raw, ok := issuer.Extract(r)
			if !ok {
				l.WarnContext(ctx, "Missing credential", slog.String("path", r.URL.Path))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
				return
			}

			accountID, err := issuer.Validate(ctx, raw)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, types.ErrCredentialExpired) {
					reason = "expired"
				}
				m.CredentialFailuresTotal.Add(ctx, 1,
					metric.WithAttributes(attribute.String("reason", reason)))
				l.WarnContext(ctx, "Credential validation failed", slog.Any("error", err))
				api.DomainErrorResponse(w, r, err)
				return
			}

			// Fresh lookup on every request: role and active-state
			// changes take effect immediately, token claims do not.
			account, err := accounts.GetByID(ctx, accountID)
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
					return
				}
				l.ErrorContext(ctx, "Account lookup failed", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
				return
			}

			if !account.IsActive {
				l.WarnContext(ctx, "Inactive account rejected",
					slog.String("account_id", account.ID.String()))
				api.DomainErrorResponse(w, r, types.ErrAccountInactive)
				return
			}

			if !required.Contains(account.Role) {
				l.WarnContext(ctx, "Role check failed",
					slog.String("account_id", account.ID.String()),
					slog.String("role", string(account.Role)),
				)
				api.ErrorResponse(w, r, http.StatusForbidden, "insufficient permissions")
				return
			}

			ctx = ContextWithAccount(ctx, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
