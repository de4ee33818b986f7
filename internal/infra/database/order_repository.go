package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/cacifebrand/cacife-dashboard/internal/entity"
)

// OrderRepository lê cacife_orders. A tabela é alimentada pelo
// e-commerce; daqui ninguém escreve nela.
type OrderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

func (r *OrderRepository) FetchSince(ctx context.Context, since time.Time) ([]entity.Order, error) {
	query := `
		SELECT COALESCE(customer_email, ''), COALESCE(customer_name, ''),
		       COALESCE(customer_phone, ''), COALESCE(product_name, ''),
		       COALESCE(total, 0), COALESCE(status, ''),
		       COALESCE(shipping_status, ''), COALESCE(payment_status, ''),
		       created_at
		FROM cacife_orders
		WHERE created_at >= $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	return collectPages(pageSize, func(limit, offset int) ([]entity.Order, error) {
		rows, err := r.DB.QueryContext(ctx, query, since, limit, offset)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var orders []entity.Order
		for rows.Next() {
			var o entity.Order
			if err := rows.Scan(&o.CustomerEmail, &o.CustomerName,
				&o.CustomerPhone, &o.ProductName,
				&o.Total, &o.Status,
				&o.ShippingStatus, &o.PaymentStatus,
				&o.CreatedAt); err != nil {
				return nil, err
			}
			orders = append(orders, o)
		}
		return orders, rows.Err()
	})
}
