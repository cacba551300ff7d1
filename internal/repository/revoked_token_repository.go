package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wavemax/affiliate-program/internal/domain"
)

// RevokedTokenRepository is the durable revocation store consulted on every
// authenticated request. There is no permissive fallback: a lookup error
// fails the request closed.
type RevokedTokenRepository interface {
	Create(ctx context.Context, rec *domain.RevokedToken) error
	Exists(ctx context.Context, token string) (bool, error)
	DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type revokedTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRevokedTokenRepository returns a Postgres-backed implementation.
func NewRevokedTokenRepository(pool *pgxpool.Pool) RevokedTokenRepository {
	return &revokedTokenRepository{pool: pool}
}

func (r *revokedTokenRepository) Create(ctx context.Context, rec *domain.RevokedToken) error {
	const query = `
        INSERT INTO revoked_tokens (token, subject_id, subject_type, expires_at, reason)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (token) DO NOTHING
        RETURNING id, revoked_at`

	err := r.pool.QueryRow(ctx, query,
		rec.Token,
		rec.SubjectID,
		rec.SubjectType,
		rec.ExpiresAt,
		rec.Reason,
	).Scan(&rec.ID, &rec.RevokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Token was already revoked; the invariant still holds.
		return nil
	}
	return err
}

func (r *revokedTokenRepository) Exists(ctx context.Context, token string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token=$1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, token).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *revokedTokenRepository) DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM revoked_tokens WHERE revoked_at < $1`

	cmd, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
