package pgorders

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS customers (
  id BIGSERIAL PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS addresses (
  id BIGSERIAL PRIMARY KEY,
  line_1 TEXT NOT NULL,
  line_2 TEXT NULL,
  postcode TEXT NOT NULL,
  city TEXT NOT NULL,
  country_code TEXT NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS items (
  id BIGSERIAL PRIMARY KEY,
  item_id TEXT NOT NULL UNIQUE,
  weight BIGINT NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS customer_orders (
  id BIGSERIAL PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  delivery_service TEXT NOT NULL DEFAULT 'standard',
  shipping_provider TEXT NOT NULL,
  shipping_interval TEXT NULL,
  last_sent_at TIMESTAMPTZ NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  customer_id BIGINT NOT NULL REFERENCES customers(id),
  delivery_address_id BIGINT NOT NULL REFERENCES addresses(id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_customer_orders_shipping_interval ON customer_orders(shipping_interval)`,
		`
CREATE TABLE IF NOT EXISTS order_item_links (
  customer_order_id BIGINT NOT NULL REFERENCES customer_orders(id) ON DELETE CASCADE,
  item_id BIGINT NOT NULL REFERENCES items(id),
  quantity INT NOT NULL DEFAULT 1 CHECK (quantity >= 1),
  PRIMARY KEY (customer_order_id, item_id)
)`,
		`
CREATE TABLE IF NOT EXISTS shipping_events (
  id BIGSERIAL PRIMARY KEY,
  order_id BIGINT NOT NULL REFERENCES customer_orders(id) ON DELETE CASCADE,
  event_name TEXT NOT NULL,
  event_time TIMESTAMPTZ NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE INDEX IF NOT EXISTS idx_shipping_events_order_id_event_time ON shipping_events(order_id, event_time DESC)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
