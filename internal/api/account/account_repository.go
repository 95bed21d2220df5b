package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

// DB is the pgx surface the repository needs. *pgxpool.Pool satisfies
// it, as does pgxmock in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ AccountRepo = (*PostgresAccountRepo)(nil)

// AccountRepo defines the contract for account persistence. Only
// GetByLoginIdentifier returns the password hash, and only for the
// credential verifier; every other projection excludes it.
type AccountRepo interface {
	// Create hashes the password and persists a new account. Returns
	// types.ErrConflict when the username or email is already taken.
	Create(ctx context.Context, params CreateRecord) (*types.Account, error)

	// GetByLoginIdentifier matches username exactly or email after
	// lower-casing. Returns types.ErrNotFound when absent.
	GetByLoginIdentifier(ctx context.Context, identifier string) (*types.Account, error)

	GetByID(ctx context.Context, id uuid.UUID) (*types.Account, error)
	List(ctx context.Context) ([]types.Account, error)

	// UpdateActive flips the active flag and returns the updated row.
	UpdateActive(ctx context.Context, id uuid.UUID, isActive bool) (*types.Account, error)

	// Delete is a hard delete. The self-delete and super_admin
	// preconditions are the lifecycle service's responsibility.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateRecord carries validated fields into the store. Role has
// already been checked against the enumeration by the service.
type CreateRecord struct {
	Username  string
	Email     string
	Password  string
	Role      types.Role
	CreatedBy *uuid.UUID
}

type PostgresAccountRepo struct {
	logger *slog.Logger
	db     DB
}

func NewPostgresAccountRepo(db DB, logger *slog.Logger) *PostgresAccountRepo {
	return &PostgresAccountRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresAccountRepo) Create(ctx context.Context, params CreateRecord) (*types.Account, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Emails are stored lower-cased; usernames keep their case and are
	// compared exactly.
	email := strings.ToLower(strings.TrimSpace(params.Email))
	username := strings.TrimSpace(params.Username)

	var account types.Account
	err = r.db.QueryRow(ctx,
		`INSERT INTO accounts (username, email, password_hash, role, created_by)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, username, email, role, is_active, created_by, created_at`,
		username, email, string(hashedPassword), string(params.Role), params.CreatedBy).
		Scan(&account.ID, &account.Username, &account.Email, &account.Role,
			&account.IsActive, &account.CreatedBy, &account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, types.ErrConflict
		}
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	return &account, nil
}

func (r *PostgresAccountRepo) GetByLoginIdentifier(ctx context.Context, identifier string) (*types.Account, error) {
	var account types.Account
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, role, is_active, created_by, created_at
         FROM accounts
         WHERE username = $1 OR lower(email) = lower($1)`,
		strings.TrimSpace(identifier)).
		Scan(&account.ID, &account.Username, &account.Email, &account.PasswordHash,
			&account.Role, &account.IsActive, &account.CreatedBy, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("account lookup by identifier failed: %w", err)
	}
	return &account, nil
}

func (r *PostgresAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Account, error) {
	var account types.Account
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, role, is_active, created_by, created_at
         FROM accounts WHERE id = $1`, id).
		Scan(&account.ID, &account.Username, &account.Email, &account.Role,
			&account.IsActive, &account.CreatedBy, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("account lookup by id failed: %w", err)
	}
	return &account, nil
}

func (r *PostgresAccountRepo) List(ctx context.Context) ([]types.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, username, email, role, is_active, created_by, created_at
         FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("account list query failed: %w", err)
	}
	defer rows.Close()

	var accounts []types.Account
	for rows.Next() {
		var account types.Account
		if err := rows.Scan(&account.ID, &account.Username, &account.Email, &account.Role,
			&account.IsActive, &account.CreatedBy, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("account row scan failed: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("account list iteration failed: %w", err)
	}
	return accounts, nil
}

func (r *PostgresAccountRepo) UpdateActive(ctx context.Context, id uuid.UUID, isActive bool) (*types.Account, error) {
	var account types.Account
	err := r.db.QueryRow(ctx,
		`UPDATE accounts SET is_active = $1 WHERE id = $2
         RETURNING id, username, email, role, is_active, created_by, created_at`,
		isActive, id).
		Scan(&account.ID, &account.Username, &account.Email, &account.Role,
			&account.IsActive, &account.CreatedBy, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("account active update failed: %w", err)
	}
	return &account, nil
}

func (r *PostgresAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM accounts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("account delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Account deleted", slog.String("account_id", id.String()))
	return nil
}
