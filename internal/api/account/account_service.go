package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	appmetrics "github.com/ervipinsingh/spice-drama-admin/app/observability/metrics"
	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

var _ AccountService = (*AccountServiceImpl)(nil)

// AccountService is the account lifecycle: administrative operations
// plus their authorization preconditions. The route gate already
// filters by role; the service enforces the same preconditions again
// so they cannot be bypassed by a mis-wired route.
type AccountService interface {
	// Create requires actor role in RoleSetUserAdmin. The new account
	// starts active; role defaults to viewer and must be a member of
	// the enumeration.
	Create(ctx context.Context, actor *types.Account, params types.CreateAccountParams) (*types.Account, error)

	List(ctx context.Context, actor *types.Account) ([]types.Account, error)
	Get(ctx context.Context, actor *types.Account, id uuid.UUID) (*types.Account, error)

	// SetActive bans (false) or unbans (true) the target account.
	SetActive(ctx context.Context, actor *types.Account, id uuid.UUID, isActive bool) (*types.Account, error)

	// Delete requires super_admin and always rejects self-deletion,
	// regardless of role. Deletion is terminal.
	Delete(ctx context.Context, actor *types.Account, id uuid.UUID) error
}

type AccountServiceImpl struct {
	repo   AccountRepo
	logger *slog.Logger
}

func NewAccountService(repo AccountRepo, logger *slog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *AccountServiceImpl) Create(ctx context.Context, actor *types.Account, params types.CreateAccountParams) (*types.Account, error) {
	if !types.RoleSetUserAdmin.Contains(actor.Role) {
		return nil, types.ErrForbidden
	}

	role, ok := types.ParseRole(params.Role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", types.ErrForbidden, params.Role)
	}
	if params.Username == "" || params.Email == "" || params.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", types.ErrConflict)
	}

	actorID := actor.ID
	created, err := s.repo.Create(ctx, CreateRecord{
		Username:  params.Username,
		Email:     params.Email,
		Password:  params.Password,
		Role:      role,
		CreatedBy: &actorID,
	})
	if err != nil {
		return nil, err
	}

	appmetrics.Get().LifecycleOperationsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("op", "create")))
	s.logger.InfoContext(ctx, "Account created",
		slog.String("account_id", created.ID.String()),
		slog.String("role", string(created.Role)),
		slog.String("created_by", actor.ID.String()),
	)
	return created, nil
}

func (s *AccountServiceImpl) List(ctx context.Context, actor *types.Account) ([]types.Account, error) {
	if !types.RoleSetUserAdmin.Contains(actor.Role) {
		return nil, types.ErrForbidden
	}
	return s.repo.List(ctx)
}

func (s *AccountServiceImpl) Get(ctx context.Context, actor *types.Account, id uuid.UUID) (*types.Account, error) {
	if !types.RoleSetUserAdmin.Contains(actor.Role) {
		return nil, types.ErrForbidden
	}
	return s.repo.GetByID(ctx, id)
}

func (s *AccountServiceImpl) SetActive(ctx context.Context, actor *types.Account, id uuid.UUID, isActive bool) (*types.Account, error) {
	if !types.RoleSetUserAdmin.Contains(actor.Role) {
		return nil, types.ErrForbidden
	}

	updated, err := s.repo.UpdateActive(ctx, id, isActive)
	if err != nil {
		return nil, err
	}

	op := "ban"
	if isActive {
		op = "unban"
	}
	appmetrics.Get().LifecycleOperationsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("op", op)))
	s.logger.InfoContext(ctx, "Account active state changed",
		slog.String("account_id", id.String()),
		slog.Bool("is_active", isActive),
		slog.String("actor_id", actor.ID.String()),
	)
	return updated, nil
}

func (s *AccountServiceImpl) Delete(ctx context.Context, actor *types.Account, id uuid.UUID) error {
	if !types.RoleSetUserDelete.Contains(actor.Role) {
		return types.ErrForbidden
	}
	// Self-deletion is forbidden for every role, super_admin included.
	if actor.ID == id {
		return fmt.Errorf("%w: cannot delete own account", types.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	appmetrics.Get().LifecycleOperationsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("op", "delete")))
	s.logger.InfoContext(ctx, "Account deleted",
		slog.String("account_id", id.String()),
		slog.String("actor_id", actor.ID.String()),
	)
	return nil
}
