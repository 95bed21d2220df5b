package account

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	appmetrics "github.com/ervipinsingh/spice-drama-admin/app/observability/metrics"
	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

func TestMain(m *testing.M) {
	appmetrics.InitAppMetrics()
	os.Exit(m.Run())
}

// MockAccountRepo is a mock implementation of the AccountRepo interface
type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Create(ctx context.Context, params CreateRecord) (*types.Account, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByLoginIdentifier(ctx context.Context, identifier string) (*types.Account, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Account), args.Error(1)
}

func (m *MockAccountRepo) List(ctx context.Context) ([]types.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Account), args.Error(1)
}

func (m *MockAccountRepo) UpdateActive(ctx context.Context, id uuid.UUID, isActive bool) (*types.Account, error) {
	args := m.Called(ctx, id, isActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Account), args.Error(1)
}

func (m *MockAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func adminActor() *types.Account {
	return &types.Account{ID: uuid.New(), Username: "admin", Role: types.RoleAdmin, IsActive: true}
}

func superAdminActor() *types.Account {
	return &types.Account{ID: uuid.New(), Username: "root", Role: types.RoleSuperAdmin, IsActive: true}
}

func TestAccountServiceCreate(t *testing.T) {
	logger := slog.Default()

	// Test case: admin creates an account, role defaults to viewer
	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)
		actor := adminActor()

		created := &types.Account{ID: uuid.New(), Username: "newuser", Role: types.RoleViewer, IsActive: true}
		mockRepo.On("Create", ctx, mock.MatchedBy(func(rec CreateRecord) bool {
			return rec.Username == "newuser" &&
				rec.Role == types.RoleViewer &&
				rec.CreatedBy != nil && *rec.CreatedBy == actor.ID
		})).Return(created, nil).Once()

		got, err := service.Create(ctx, actor, types.CreateAccountParams{
			Username: "newuser",
			Email:    "new@example.com",
			Password: "password123",
		})

		assert.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		mockRepo.AssertExpectations(t)
	})

	// Test case: a viewer cannot create accounts even if the route gate
	// were mis-wired
	t.Run("ViewerForbidden", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)
		actor := &types.Account{ID: uuid.New(), Role: types.RoleViewer, IsActive: true}

		_, err := service.Create(ctx, actor, types.CreateAccountParams{
			Username: "newuser",
			Email:    "new@example.com",
			Password: "password123",
		})

		assert.ErrorIs(t, err, types.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Create")
	})

	// Test case: role outside the enumeration
	t.Run("UnknownRole", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)

		_, err := service.Create(ctx, adminActor(), types.CreateAccountParams{
			Username: "newuser",
			Email:    "new@example.com",
			Password: "password123",
			Role:     "owner",
		})

		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "Create")
	})

	// Test case: duplicate username or email
	t.Run("Conflict", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)

		mockRepo.On("Create", ctx, mock.AnythingOfType("CreateRecord")).
			Return(nil, types.ErrConflict).Once()

		_, err := service.Create(ctx, adminActor(), types.CreateAccountParams{
			Username: "taken",
			Email:    "taken@example.com",
			Password: "password123",
		})

		assert.ErrorIs(t, err, types.ErrConflict)
		mockRepo.AssertExpectations(t)
	})
}

func TestAccountServiceSetActive(t *testing.T) {
	logger := slog.Default()

	// Test case: admin bans an account
	t.Run("Ban", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)
		targetID := uuid.New()

		banned := &types.Account{ID: targetID, IsActive: false}
		mockRepo.On("UpdateActive", ctx, targetID, false).Return(banned, nil).Once()

		got, err := service.SetActive(ctx, adminActor(), targetID, false)

		assert.NoError(t, err)
		assert.False(t, got.IsActive)
		mockRepo.AssertExpectations(t)
	})

	// Test case: editor cannot ban
	t.Run("EditorForbidden", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)
		actor := &types.Account{ID: uuid.New(), Role: types.RoleEditor, IsActive: true}

		_, err := service.SetActive(ctx, actor, uuid.New(), false)

		assert.ErrorIs(t, err, types.ErrForbidden)
		mockRepo.AssertNotCalled(t, "UpdateActive")
	})

	// Test case: unknown target
	t.Run("NotFound", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)
		targetID := uuid.New()

		mockRepo.On("UpdateActive", ctx, targetID, true).Return(nil, types.ErrNotFound).Once()

		_, err := service.SetActive(ctx, adminActor(), targetID, true)

		assert.ErrorIs(t, err, types.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})
}

func TestAccountServiceDelete(t *testing.T) {
	logger := slog.Default()

	// Test case: super_admin deletes another account
	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)
		targetID := uuid.New()

		mockRepo.On("Delete", ctx, targetID).Return(nil).Once()

		err := service.Delete(ctx, superAdminActor(), targetID)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	// Test case: admin is not allowed to delete at all
	t.Run("AdminForbidden", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)

		err := service.Delete(ctx, adminActor(), uuid.New())

		assert.ErrorIs(t, err, types.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Delete")
	})

	// Test case: self-deletion is rejected even for super_admin
	t.Run("SelfDeleteForbidden", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)
		actor := superAdminActor()

		err := service.Delete(ctx, actor, actor.ID)

		assert.ErrorIs(t, err, types.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Delete")
	})
}

func TestAccountServiceReads(t *testing.T) {
	logger := slog.Default()

	t.Run("ListRequiresAdmin", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)
		actor := &types.Account{ID: uuid.New(), Role: types.RoleViewer, IsActive: true}

		_, err := service.List(ctx, actor)

		assert.ErrorIs(t, err, types.ErrForbidden)
		mockRepo.AssertNotCalled(t, "List")
	})

	t.Run("ListSuccess", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)

		accounts := []types.Account{{ID: uuid.New()}, {ID: uuid.New()}}
		mockRepo.On("List", ctx).Return(accounts, nil).Once()

		got, err := service.List(ctx, adminActor())

		assert.NoError(t, err)
		assert.Len(t, got, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("GetSuccess", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockAccountRepo)
		service := NewAccountService(mockRepo, logger)
		target := &types.Account{ID: uuid.New()}

		mockRepo.On("GetByID", ctx, target.ID).Return(target, nil).Once()

		got, err := service.Get(ctx, adminActor(), target.ID)

		assert.NoError(t, err)
		assert.Equal(t, target.ID, got.ID)
		mockRepo.AssertExpectations(t)
	})
}
