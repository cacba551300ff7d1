package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wavemax/affiliate-program/internal/domain"
)

// OperatorRepository defines persistence access for store operators. Shift
// checks re-read the live record through GetByOperatorID on every request.
type OperatorRepository interface {
	Create(ctx context.Context, op *domain.Operator) error
	Update(ctx context.Context, op *domain.Operator) error
	GetByOperatorID(ctx context.Context, operatorID string) (*domain.Operator, error)
	GetByEmail(ctx context.Context, email string) (*domain.Operator, error)
	SetShift(ctx context.Context, operatorID string, onShift bool) error
}

type operatorRepository struct {
	pool *pgxpool.Pool
}

// NewOperatorRepository returns a Postgres-backed implementation.
func NewOperatorRepository(pool *pgxpool.Pool) OperatorRepository {
	return &operatorRepository{pool: pool}
}

func (r *operatorRepository) Create(ctx context.Context, op *domain.Operator) error {
	const query = `
        INSERT INTO operators (operator_id, first_name, last_name, email, password_hash, active, on_shift, shift_start, shift_end, work_station)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		op.OperatorID,
		op.FirstName,
		op.LastName,
		op.Email,
		op.PasswordHash,
		op.Active,
		op.OnShift,
		op.ShiftStart,
		op.ShiftEnd,
		op.WorkStation,
	).Scan(&op.ID, &op.CreatedAt, &op.UpdatedAt)
}

func (r *operatorRepository) Update(ctx context.Context, op *domain.Operator) error {
	const query = `
        UPDATE operators
        SET first_name=$1, last_name=$2, email=$3, password_hash=$4, active=$5,
            on_shift=$6, shift_start=$7, shift_end=$8, work_station=$9, updated_at=NOW()
        WHERE operator_id=$10`

	cmd, err := r.pool.Exec(ctx, query,
		op.FirstName,
		op.LastName,
		op.Email,
		op.PasswordHash,
		op.Active,
		op.OnShift,
		op.ShiftStart,
		op.ShiftEnd,
		op.WorkStation,
		op.OperatorID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *operatorRepository) GetByOperatorID(ctx context.Context, operatorID string) (*domain.Operator, error) {
	const query = `
        SELECT id, operator_id, first_name, last_name, email, password_hash,
               active, on_shift, shift_start, shift_end, work_station, created_at, updated_at
        FROM operators WHERE operator_id=$1`

	return r.scanOne(ctx, query, operatorID)
}

func (r *operatorRepository) GetByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	const query = `
        SELECT id, operator_id, first_name, last_name, email, password_hash,
               active, on_shift, shift_start, shift_end, work_station, created_at, updated_at
        FROM operators WHERE email=$1`

	return r.scanOne(ctx, query, email)
}

func (r *operatorRepository) SetShift(ctx context.Context, operatorID string, onShift bool) error {
	const query = `UPDATE operators SET on_shift=$1, updated_at=NOW() WHERE operator_id=$2`

	cmd, err := r.pool.Exec(ctx, query, onShift, operatorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *operatorRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Operator, error) {
	var op domain.Operator
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&op.ID,
		&op.OperatorID,
		&op.FirstName,
		&op.LastName,
		&op.Email,
		&op.PasswordHash,
		&op.Active,
		&op.OnShift,
		&op.ShiftStart,
		&op.ShiftEnd,
		&op.WorkStation,
		&op.CreatedAt,
		&op.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &op, nil
}
