package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wavemax/affiliate-program/internal/domain"
)

// OrderRepository defines persistence access for orders and their bags.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	UpdateBagStatus(ctx context.Context, barcode string, status domain.BagStatus) error
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a Postgres-backed implementation.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `
        id, order_id, customer_id, affiliate_id, status, pickup_date, delivery_date,
        estimated_weight, actual_weight, total, affiliate_cut, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (order_id, customer_id, affiliate_id, status, pickup_date,
                            estimated_weight, actual_weight, total, affiliate_cut)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		order.OrderID,
		order.CustomerID,
		order.AffiliateID,
		order.Status,
		order.PickupDate,
		order.EstimatedWeight,
		order.ActualWeight,
		order.Total,
		order.AffiliateCut,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

func (r *orderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id=$1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		return nil, err
	}

	bags, err := r.listBags(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Bags = bags
	return order, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE order_id=$2`

	cmd, err := r.pool.Exec(ctx, query, status, orderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) UpdateBagStatus(ctx context.Context, barcode string, status domain.BagStatus) error {
	const query = `UPDATE bags SET status=$1 WHERE barcode=$2`

	cmd, err := r.pool.Exec(ctx, query, status, barcode)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) listBags(ctx context.Context, orderUUID string) ([]domain.Bag, error) {
	const query = `SELECT id, order_id, barcode, status, weight_lb FROM bags WHERE order_id=$1`

	rows, err := r.pool.Query(ctx, query, orderUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bags []domain.Bag
	for rows.Next() {
		var bag domain.Bag
		if err := rows.Scan(&bag.ID, &bag.OrderID, &bag.Barcode, &bag.Status, &bag.WeightLb); err != nil {
			return nil, err
		}
		bags = append(bags, bag)
	}
	return bags, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	if err := row.Scan(
		&order.ID,
		&order.OrderID,
		&order.CustomerID,
		&order.AffiliateID,
		&order.Status,
		&order.PickupDate,
		&order.DeliveryDate,
		&order.EstimatedWeight,
		&order.ActualWeight,
		&order.Total,
		&order.AffiliateCut,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &order, nil
}
