package pgorders

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/ParcelForge/dispatchbox/internal/models"
)

// GetOrderByPublicID loads an order with its customer, delivery address and
// item lines. Returns (nil, nil) when no order carries the public id.
func (s *Storage) GetOrderByPublicID(ctx context.Context, orderID string) (*models.OrderDetail, error) {
	var d models.OrderDetail
	err := s.db.QueryRow(ctx, `
SELECT
  o.id, o.order_id, o.delivery_service, o.shipping_provider,
  o.shipping_interval, o.last_sent_at, o.created_at,
  o.customer_id, o.delivery_address_id,
  c.id, c.first_name, c.last_name,
  a.id, a.line_1, a.line_2, a.postcode, a.city, a.country_code
FROM customer_orders o
JOIN customers c ON c.id = o.customer_id
JOIN addresses a ON a.id = o.delivery_address_id
WHERE o.order_id = $1
`, orderID).Scan(
		&d.Order.ID, &d.Order.OrderID, &d.Order.DeliveryService, &d.Order.ShippingProvider,
		&d.Order.ShippingInterval, &d.Order.LastSentAt, &d.Order.CreatedAt,
		&d.Order.CustomerID, &d.Order.DeliveryAddressID,
		&d.Customer.ID, &d.Customer.FirstName, &d.Customer.LastName,
		&d.DeliveryAddress.ID, &d.DeliveryAddress.Line1, &d.DeliveryAddress.Line2,
		&d.DeliveryAddress.Postcode, &d.DeliveryAddress.City, &d.DeliveryAddress.CountryCode,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select order")
	}

	rows, err := s.db.Query(ctx, `
SELECT i.item_id, l.quantity, i.weight
FROM order_item_links l
JOIN items i ON i.id = l.item_id
WHERE l.customer_order_id = $1
ORDER BY i.id
`, d.Order.ID)
	if err != nil {
		return nil, errors.Wrap(err, "select order lines")
	}
	defer rows.Close()

	d.Lines = make([]models.OrderLine, 0, 4)
	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.ItemID, &l.Quantity, &l.Weight); err != nil {
			return nil, errors.Wrap(err, "scan order line")
		}
		d.Lines = append(d.Lines, l)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}

	return &d, nil
}

// ListOrdersByInterval returns all orders configured with the given
// recurrence bucket. Eligibility by age is decided by the caller.
func (s *Storage) ListOrdersByInterval(ctx context.Context, interval string) ([]*models.CustomerOrder, error) {
	rows, err := s.db.Query(ctx, `
SELECT
  id, order_id, delivery_service, shipping_provider,
  shipping_interval, last_sent_at, created_at,
  customer_id, delivery_address_id
FROM customer_orders
WHERE shipping_interval = $1
ORDER BY id
`, interval)
	if err != nil {
		return nil, errors.Wrap(err, "select orders by interval")
	}
	defer rows.Close()

	var out []*models.CustomerOrder
	for rows.Next() {
		var o models.CustomerOrder
		if err := rows.Scan(
			&o.ID, &o.OrderID, &o.DeliveryService, &o.ShippingProvider,
			&o.ShippingInterval, &o.LastSentAt, &o.CreatedAt,
			&o.CustomerID, &o.DeliveryAddressID,
		); err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, &o)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

// UpdateOrderLastSent stamps the only field this service mutates on orders.
// Called after a confirmed provider send, one commit per mutation.
func (s *Storage) UpdateOrderLastSent(ctx context.Context, orderID uint64, sentAt time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE customer_orders SET last_sent_at = $2 WHERE id = $1`,
		orderID, sentAt.UTC())
	return errors.Wrap(err, "update last_sent_at")
}

// CreateOrder inserts a full order graph in one transaction. Customers and
// addresses are created per order; items are shared and upserted by item_id.
func (s *Storage) CreateOrder(ctx context.Context, in models.OrderCreateInput) (*models.OrderDetail, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var customerID uint64
	err = tx.QueryRow(ctx,
		`INSERT INTO customers (first_name, last_name) VALUES ($1,$2) RETURNING id`,
		in.Customer.FirstName, in.Customer.LastName).Scan(&customerID)
	if err != nil {
		return nil, errors.Wrap(err, "insert customer")
	}

	var addressID uint64
	err = tx.QueryRow(ctx, `
INSERT INTO addresses (line_1, line_2, postcode, city, country_code)
VALUES ($1,$2,$3,$4,$5)
RETURNING id
`, in.DeliveryAddress.Line1, in.DeliveryAddress.Line2, in.DeliveryAddress.Postcode,
		in.DeliveryAddress.City, in.DeliveryAddress.CountryCode).Scan(&addressID)
	if err != nil {
		return nil, errors.Wrap(err, "insert address")
	}

	deliveryService := in.DeliveryService
	if deliveryService == "" {
		deliveryService = models.DeliveryServiceStandard
	}

	var orderID uint64
	err = tx.QueryRow(ctx, `
INSERT INTO customer_orders (
  order_id, delivery_service, shipping_provider, shipping_interval,
  last_sent_at, customer_id, delivery_address_id
)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`, in.OrderID, deliveryService, in.ShippingProvider, in.ShippingInterval,
		in.LastSentAt, customerID, addressID).Scan(&orderID)
	if err != nil {
		return nil, errors.Wrap(err, "insert order")
	}

	for _, l := range in.Lines {
		var itemID uint64
		err = tx.QueryRow(ctx, `
INSERT INTO items (item_id, weight)
VALUES ($1,$2)
ON CONFLICT (item_id) DO UPDATE SET weight = EXCLUDED.weight
RETURNING id
`, l.ItemID, l.Weight).Scan(&itemID)
		if err != nil {
			return nil, errors.Wrap(err, "upsert item")
		}

		quantity := l.Quantity
		if quantity < 1 {
			quantity = 1
		}
		_, err = tx.Exec(ctx, `
INSERT INTO order_item_links (customer_order_id, item_id, quantity)
VALUES ($1,$2,$3)
`, orderID, itemID, quantity)
		if err != nil {
			return nil, errors.Wrap(err, "insert order item link")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}

	return s.GetOrderByPublicID(ctx, in.OrderID)
}
