package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wavemax/affiliate-program/internal/domain"
)

// AdministratorRepository defines persistence access for administrator
// accounts. Permission checks re-read the live record through GetByAdminID
// on every gated request.
type AdministratorRepository interface {
	Create(ctx context.Context, admin *domain.Administrator) error
	Update(ctx context.Context, admin *domain.Administrator) error
	GetByAdminID(ctx context.Context, adminID string) (*domain.Administrator, error)
	GetByEmail(ctx context.Context, email string) (*domain.Administrator, error)
}

type administratorRepository struct {
	pool *pgxpool.Pool
}

// NewAdministratorRepository returns a Postgres-backed implementation.
func NewAdministratorRepository(pool *pgxpool.Pool) AdministratorRepository {
	return &administratorRepository{pool: pool}
}

func (r *administratorRepository) Create(ctx context.Context, admin *domain.Administrator) error {
	const query = `
        INSERT INTO administrators (admin_id, first_name, last_name, email, password_hash, permissions, active, require_password_change)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		admin.AdminID,
		admin.FirstName,
		admin.LastName,
		admin.Email,
		admin.PasswordHash,
		admin.Permissions,
		admin.Active,
		admin.RequirePasswordChange,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
}

func (r *administratorRepository) Update(ctx context.Context, admin *domain.Administrator) error {
	const query = `
        UPDATE administrators
        SET first_name=$1, last_name=$2, email=$3, password_hash=$4, permissions=$5,
            active=$6, require_password_change=$7, last_login_at=$8, updated_at=NOW()
        WHERE admin_id=$9`

	cmd, err := r.pool.Exec(ctx, query,
		admin.FirstName,
		admin.LastName,
		admin.Email,
		admin.PasswordHash,
		admin.Permissions,
		admin.Active,
		admin.RequirePasswordChange,
		admin.LastLoginAt,
		admin.AdminID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *administratorRepository) GetByAdminID(ctx context.Context, adminID string) (*domain.Administrator, error) {
	const query = `
        SELECT id, admin_id, first_name, last_name, email, password_hash, permissions,
               active, require_password_change, last_login_at, created_at, updated_at
        FROM administrators WHERE admin_id=$1`

	return r.scanOne(ctx, query, adminID)
}

func (r *administratorRepository) GetByEmail(ctx context.Context, email string) (*domain.Administrator, error) {
	const query = `
        SELECT id, admin_id, first_name, last_name, email, password_hash, permissions,
               active, require_password_change, last_login_at, created_at, updated_at
        FROM administrators WHERE email=$1`

	return r.scanOne(ctx, query, email)
}

func (r *administratorRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Administrator, error) {
	var admin domain.Administrator
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&admin.ID,
		&admin.AdminID,
		&admin.FirstName,
		&admin.LastName,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Permissions,
		&admin.Active,
		&admin.RequirePasswordChange,
		&admin.LastLoginAt,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}
