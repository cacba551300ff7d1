package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wavemax/affiliate-program/internal/domain"
)

// CustomerRepository defines persistence access for customers.
type CustomerRepository interface {
	Create(ctx context.Context, cust *domain.Customer) error
	Update(ctx context.Context, cust *domain.Customer) error
	GetByCustomerID(ctx context.Context, customerID string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	ListByAffiliate(ctx context.Context, affiliateID string) ([]*domain.Customer, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a Postgres-backed implementation.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

const customerColumns = `
        id, customer_id, affiliate_id, first_name, last_name, email, phone,
        address, city, state, zip_code, password_hash, active, created_at, updated_at`

func (r *customerRepository) Create(ctx context.Context, cust *domain.Customer) error {
	const query = `
        INSERT INTO customers (customer_id, affiliate_id, first_name, last_name, email, phone,
                               address, city, state, zip_code, password_hash, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		cust.CustomerID,
		cust.AffiliateID,
		cust.FirstName,
		cust.LastName,
		cust.Email,
		cust.Phone,
		cust.Address,
		cust.City,
		cust.State,
		cust.ZipCode,
		cust.PasswordHash,
		cust.Active,
	).Scan(&cust.ID, &cust.CreatedAt, &cust.UpdatedAt)
}

func (r *customerRepository) Update(ctx context.Context, cust *domain.Customer) error {
	const query = `
        UPDATE customers
        SET first_name=$1, last_name=$2, email=$3, phone=$4, address=$5,
            city=$6, state=$7, zip_code=$8, password_hash=$9, active=$10, updated_at=NOW()
        WHERE customer_id=$11`

	cmd, err := r.pool.Exec(ctx, query,
		cust.FirstName,
		cust.LastName,
		cust.Email,
		cust.Phone,
		cust.Address,
		cust.City,
		cust.State,
		cust.ZipCode,
		cust.PasswordHash,
		cust.Active,
		cust.CustomerID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) GetByCustomerID(ctx context.Context, customerID string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_id=$1`

	row := r.pool.QueryRow(ctx, query, customerID)
	return scanCustomer(row)
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email=$1`

	row := r.pool.QueryRow(ctx, query, email)
	return scanCustomer(row)
}

func (r *customerRepository) ListByAffiliate(ctx context.Context, affiliateID string) ([]*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE affiliate_id=$1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, affiliateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, cust)
	}
	return customers, rows.Err()
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var cust domain.Customer
	if err := row.Scan(
		&cust.ID,
		&cust.CustomerID,
		&cust.AffiliateID,
		&cust.FirstName,
		&cust.LastName,
		&cust.Email,
		&cust.Phone,
		&cust.Address,
		&cust.City,
		&cust.State,
		&cust.ZipCode,
		&cust.PasswordHash,
		&cust.Active,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cust, nil
}
