package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ervipinsingh/spice-drama-admin/internal/api"
	"github.com/ervipinsingh/spice-drama-admin/internal/api/auth"
	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

type AccountHandler struct {
	accountService AccountService
	logger         *slog.Logger
}

func NewAccountHandler(accountService AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// UpdateStatusRequest is the body of PATCH /auth/users/{id}/status.
type UpdateStatusRequest struct {
	IsActive bool `json:"is_active"`
}

// CreateUser godoc
// @Summary      Create account
// @Description  Creates a new admin-panel account. Requires admin or super_admin.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body body types.CreateAccountParams true "New account"
// @Success      201 {object} types.AccountSummary
// @Failure      409 {object} auth.Response "Duplicate username or email"
// @Failure      403 {object} auth.Response "Forbidden"
// @Security     BearerAuth
// @Router       /auth/users [post]
func (h *AccountHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateUser"))

	actor, ok := auth.AccountFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var params types.CreateAccountParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.accountService.Create(ctx, actor, params)
	if err != nil {
		l.WarnContext(ctx, "Account creation failed", slog.Any("error", err))
		api.DomainErrorResponse(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, created.Summary())
}

// ListUsers godoc
// @Summary      List accounts
// @Tags         Users
// @Produce      json
// @Success      200 {array} types.AccountSummary
// @Failure      403 {object} auth.Response "Forbidden"
// @Security     BearerAuth
// @Router       /auth/users [get]
func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListUsers"))

	actor, ok := auth.AccountFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	accounts, err := h.accountService.List(ctx, actor)
	if err != nil {
		l.ErrorContext(ctx, "Account listing failed", slog.Any("error", err))
		api.DomainErrorResponse(w, r, err)
		return
	}

	summaries := make([]types.AccountSummary, 0, len(accounts))
	for i := range accounts {
		summaries = append(summaries, accounts[i].Summary())
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summaries)
}

// GetUser godoc
// @Summary      Account details
// @Tags         Users
// @Produce      json
// @Param        id path string true "Account ID"
// @Success      200 {object} types.AccountSummary
// @Failure      404 {object} auth.Response "Not found"
// @Security     BearerAuth
// @Router       /auth/users/{id} [get]
func (h *AccountHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetUser"))

	actor, ok := auth.AccountFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid account id")
		return
	}

	account, err := h.accountService.Get(ctx, actor, id)
	if err != nil {
		l.WarnContext(ctx, "Account fetch failed", slog.Any("error", err))
		api.DomainErrorResponse(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, account.Summary())
}

// DeleteUser godoc
// @Summary      Delete account
// @Description  Hard-deletes an account. Requires super_admin; self-deletion is always rejected.
// @Tags         Users
// @Produce      json
// @Param        id path string true "Account ID"
// @Success      200 {object} auth.Response
// @Failure      403 {object} auth.Response "Forbidden or self-delete"
// @Failure      404 {object} auth.Response "Not found"
// @Security     BearerAuth
// @Router       /auth/users/{id} [delete]
func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteUser"))

	actor, ok := auth.AccountFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid account id")
		return
	}

	if err := h.accountService.Delete(ctx, actor, id); err != nil {
		l.WarnContext(ctx, "Account deletion failed",
			slog.String("account_id", id.String()), slog.Any("error", err))
		api.DomainErrorResponse(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, auth.Response{Success: true, Message: "account deleted"})
}

// UpdateStatus godoc
// @Summary      Set account active state
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID"
// @Param        body body UpdateStatusRequest true "Desired state"
// @Success      200 {object} types.AccountSummary
// @Failure      404 {object} auth.Response "Not found"
// @Security     BearerAuth
// @Router       /auth/users/{id}/status [patch]
func (h *AccountHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateStatus"))

	actor, ok := auth.AccountFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid account id")
		return
	}

	var req UpdateStatusRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.accountService.SetActive(ctx, actor, id, req.IsActive)
	if err != nil {
		l.WarnContext(ctx, "Account status update failed",
			slog.String("account_id", id.String()), slog.Any("error", err))
		api.DomainErrorResponse(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, updated.Summary())
}

// Ban godoc
// @Summary      Ban account
// @Tags         Users
// @Produce      json
// @Param        id path string true "Account ID"
// @Success      200 {object} types.AccountSummary
// @Security     BearerAuth
// @Router       /users/ban/{id} [post]
func (h *AccountHandler) Ban(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// Unban godoc
// @Summary      Unban account
// @Tags         Users
// @Produce      json
// @Param        id path string true "Account ID"
// @Success      200 {object} types.AccountSummary
// @Security     BearerAuth
// @Router       /users/unban/{id} [post]
func (h *AccountHandler) Unban(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *AccountHandler) setActive(w http.ResponseWriter, r *http.Request, isActive bool) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "setActive"))

	actor, ok := auth.AccountFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid account id")
		return
	}

	updated, err := h.accountService.SetActive(ctx, actor, id, isActive)
	if err != nil {
		l.WarnContext(ctx, "Account active toggle failed",
			slog.String("account_id", id.String()), slog.Any("error", err))
		api.DomainErrorResponse(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, updated.Summary())
}
