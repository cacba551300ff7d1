package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wavemax/affiliate-program/internal/domain"
)

// AffiliateRepository defines persistence access for affiliate partners.
type AffiliateRepository interface {
	Create(ctx context.Context, aff *domain.Affiliate) error
	Update(ctx context.Context, aff *domain.Affiliate) error
	GetByAffiliateID(ctx context.Context, affiliateID string) (*domain.Affiliate, error)
	GetByEmail(ctx context.Context, email string) (*domain.Affiliate, error)
}

type affiliateRepository struct {
	pool *pgxpool.Pool
}

// NewAffiliateRepository returns a Postgres-backed implementation.
func NewAffiliateRepository(pool *pgxpool.Pool) AffiliateRepository {
	return &affiliateRepository{pool: pool}
}

const affiliateColumns = `
        id, affiliate_id, first_name, last_name, email, phone, business_name,
        address, city, state, zip_code, service_radius, commission_rate,
        w9_approved, password_hash, status, created_at, updated_at`

func (r *affiliateRepository) Create(ctx context.Context, aff *domain.Affiliate) error {
	const query = `
        INSERT INTO affiliates (affiliate_id, first_name, last_name, email, phone, business_name,
                                address, city, state, zip_code, service_radius, commission_rate,
                                w9_approved, password_hash, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		aff.AffiliateID,
		aff.FirstName,
		aff.LastName,
		aff.Email,
		aff.Phone,
		aff.BusinessName,
		aff.Address,
		aff.City,
		aff.State,
		aff.ZipCode,
		aff.ServiceRadius,
		aff.CommissionRate,
		aff.W9Approved,
		aff.PasswordHash,
		aff.Status,
	).Scan(&aff.ID, &aff.CreatedAt, &aff.UpdatedAt)
}

func (r *affiliateRepository) Update(ctx context.Context, aff *domain.Affiliate) error {
	const query = `
        UPDATE affiliates
        SET first_name=$1, last_name=$2, email=$3, phone=$4, business_name=$5,
            address=$6, city=$7, state=$8, zip_code=$9, service_radius=$10,
            commission_rate=$11, w9_approved=$12, password_hash=$13, status=$14, updated_at=NOW()
        WHERE affiliate_id=$15`

	cmd, err := r.pool.Exec(ctx, query,
		aff.FirstName,
		aff.LastName,
		aff.Email,
		aff.Phone,
		aff.BusinessName,
		aff.Address,
		aff.City,
		aff.State,
		aff.ZipCode,
		aff.ServiceRadius,
		aff.CommissionRate,
		aff.W9Approved,
		aff.PasswordHash,
		aff.Status,
		aff.AffiliateID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *affiliateRepository) GetByAffiliateID(ctx context.Context, affiliateID string) (*domain.Affiliate, error) {
	query := `SELECT ` + affiliateColumns + ` FROM affiliates WHERE affiliate_id=$1`
	return r.scanOne(ctx, query, affiliateID)
}

func (r *affiliateRepository) GetByEmail(ctx context.Context, email string) (*domain.Affiliate, error) {
	query := `SELECT ` + affiliateColumns + ` FROM affiliates WHERE email=$1`
	return r.scanOne(ctx, query, email)
}

func (r *affiliateRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Affiliate, error) {
	var aff domain.Affiliate
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&aff.ID,
		&aff.AffiliateID,
		&aff.FirstName,
		&aff.LastName,
		&aff.Email,
		&aff.Phone,
		&aff.BusinessName,
		&aff.Address,
		&aff.City,
		&aff.State,
		&aff.ZipCode,
		&aff.ServiceRadius,
		&aff.CommissionRate,
		&aff.W9Approved,
		&aff.PasswordHash,
		&aff.Status,
		&aff.CreatedAt,
		&aff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &aff, nil
}
