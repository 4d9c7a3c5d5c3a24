package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/restalytics/restalytics/internal/models"
)

// OrderRepository is the Postgres-backed order source, used when the order
// log lives in a database instead of a JSON file.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) BulkCreate(ctx context.Context, orders []models.Order) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"orders"},
		[]string{
			"id", "customer_name", "total", "ordered_at",
			"weekday_name", "received_at", "dispatched_at",
		},
		pgx.CopyFromSlice(len(orders), func(i int) ([]interface{}, error) {
			return []interface{}{
				orders[i].ID,
				orders[i].Customer.Name,
				orders[i].Total,
				orders[i].OrderedAt,
				orders[i].WeekdayName,
				orders[i].ReceivedAt,
				orders[i].DispatchedAt,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk insert orders: %w", err)
	}

	rows := make([][]interface{}, 0)
	for _, order := range orders {
		for _, item := range order.Items {
			rows = append(rows, []interface{}{order.ID, item.ProductName, item.Quantity})
		}
	}
	_, err = r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "product_name", "quantity"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk insert order items: %w", err)
	}
	return nil
}

// GetAll loads every order with its line items, ordered by insertion so the
// ranking tie-break stays stable across sources.
func (r *OrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	query := `
        SELECT
            id,
            customer_name,
            total,
            ordered_at,
            weekday_name,
            COALESCE(received_at, ''),
            COALESCE(dispatched_at, '')
        FROM orders
        ORDER BY inserted_at
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	index := make(map[string]int)
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID,
			&o.Customer.Name,
			&o.Total,
			&o.OrderedAt,
			&o.WeekdayName,
			&o.ReceivedAt,
			&o.DispatchedAt,
		); err != nil {
			return nil, err
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.pool.Query(ctx, `
        SELECT order_id, product_name, quantity
        FROM order_items
        ORDER BY id
    `)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var item models.LineItem
		if err := itemRows.Scan(&orderID, &item.ProductName, &item.Quantity); err != nil {
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, itemRows.Err()
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}

func (r *OrderRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM order_items"); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, "DELETE FROM orders")
	return err
}
