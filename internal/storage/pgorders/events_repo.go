package pgorders

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ParcelForge/dispatchbox/internal/models"
)

// CreateShippingEvent appends one delivery-status event. Events are never
// updated or deleted; replays produce duplicate rows on purpose.
func (s *Storage) CreateShippingEvent(ctx context.Context, orderID uint64, eventName string, eventTime time.Time) (*models.ShippingEvent, error) {
	var e models.ShippingEvent
	err := s.db.QueryRow(ctx, `
INSERT INTO shipping_events (order_id, event_name, event_time, created_at)
VALUES ($1,$2,$3, now())
RETURNING id, order_id, event_name, event_time, created_at
`, orderID, eventName, eventTime.UTC()).Scan(
		&e.ID, &e.OrderID, &e.EventName, &e.EventTime, &e.CreatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "insert shipping event")
	}
	return &e, nil
}

func (s *Storage) ListShippingEvents(ctx context.Context, orderID uint64, limit, offset int) ([]*models.ShippingEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(ctx, `
SELECT id, order_id, event_name, event_time, created_at
FROM shipping_events
WHERE order_id = $1
ORDER BY event_time DESC
LIMIT $2 OFFSET $3
`, orderID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "select shipping events")
	}
	defer rows.Close()

	var out []*models.ShippingEvent
	for rows.Next() {
		var e models.ShippingEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.EventName, &e.EventTime, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan shipping event")
		}
		out = append(out, &e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
