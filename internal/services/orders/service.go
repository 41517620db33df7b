package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/ParcelForge/dispatchbox/internal/broker/messages"
	"github.com/ParcelForge/dispatchbox/internal/cache"
	"github.com/ParcelForge/dispatchbox/internal/integrations/provider"
	"github.com/ParcelForge/dispatchbox/internal/models"
	"github.com/ParcelForge/dispatchbox/internal/telemetry"
)

// ErrOrderNotFound is matched with errors.Is when a public order id does not
// resolve to a stored order.
var ErrOrderNotFound = errors.New("order not found")

// ValidationError carries per-field messages for a rejected shipping-event
// payload. The HTTP layer echoes Fields verbatim in the 400 body.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

type Repository interface {
	GetOrderByPublicID(ctx context.Context, orderID string) (*models.OrderDetail, error)
	UpdateOrderLastSent(ctx context.Context, orderID uint64, sentAt time.Time) error
	CreateShippingEvent(ctx context.Context, orderID uint64, eventName string, eventTime time.Time) (*models.ShippingEvent, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Service struct {
	repo     Repository
	registry *provider.Registry
	cache    cache.BytesCache
	cacheTTL time.Duration

	producer Producer
	topic    string

	metrics *telemetry.Metrics
	now     func() time.Time
}

func New(repo Repository, registry *provider.Registry, c cache.BytesCache, cacheTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		cache:    c,
		cacheTTL: cacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithProducer makes the service publish an OrderDispatched message after
// every confirmed send. Publishing is best-effort.
func (s *Service) WithProducer(p Producer, topic string) *Service {
	s.producer = p
	s.topic = topic
	return s
}

func (s *Service) WithMetrics(m *telemetry.Metrics) *Service {
	s.metrics = m
	return s
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SendOrder loads the order by its public id, serializes it and dispatches
// it to the configured provider.
//
// Returns ErrOrderNotFound or an UnknownProviderError for the two abort
// cases; a provider dispatch failure comes back as (false, nil). On success
// last_sent_at is updated and committed before returning.
func (s *Service) SendOrder(ctx context.Context, publicOrderID string) (bool, error) {
	detail, err := s.getOrder(ctx, publicOrderID)
	if err != nil {
		return false, err
	}
	if detail == nil {
		return false, errors.Wrapf(ErrOrderNotFound, "order %s", publicOrderID)
	}

	providerID := detail.Order.ShippingProvider
	client, err := s.registry.ForProvider(providerID)
	if err != nil {
		s.recordDispatch(providerID, "unknown_provider")
		return false, err
	}

	payload := BuildOrderPayload(detail)
	if !client.SendOrder(ctx, payload) {
		s.recordDispatch(providerID, "failure")
		return false, nil
	}

	sentAt := s.now()
	if err := s.repo.UpdateOrderLastSent(ctx, detail.Order.ID, sentAt); err != nil {
		return false, err
	}
	if s.cache != nil && s.cacheTTL > 0 {
		_ = s.cache.Del(ctx, orderKey(publicOrderID))
	}
	s.recordDispatch(providerID, "success")

	s.publishDispatched(ctx, publicOrderID, providerID, sentAt)
	return true, nil
}

// RecordShippingEvent validates and persists one delivery-status callback.
// Rejections come back as *ValidationError with per-field messages.
func (s *Service) RecordShippingEvent(ctx context.Context, in models.ShippingEventInput) error {
	eventValue, ok := models.ShippingEventValue(in.EventName)
	if !ok {
		msg := "Must be one of: "
		for i, n := range models.ShippingEventNames {
			if i > 0 {
				msg += ", "
			}
			msg += n
		}
		msg += "."
		return &ValidationError{Fields: map[string][]string{"event_name": {msg}}}
	}
	if in.EventTime.IsZero() {
		return &ValidationError{Fields: map[string][]string{"event_time": {"Missing data for required field."}}}
	}

	detail, err := s.getOrder(ctx, in.PublicOrderID)
	if err != nil {
		return err
	}
	if detail == nil {
		return &ValidationError{Fields: map[string][]string{
			"order_id": {fmt.Sprintf("Order with string ID %s was not found", in.PublicOrderID)},
		}}
	}

	if _, err := s.repo.CreateShippingEvent(ctx, detail.Order.ID, eventValue, in.EventTime); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordShippingEvent(eventValue)
	}
	return nil
}

// getOrder is a best-effort cache-aside lookup; any cache problem falls
// through to the database.
func (s *Service) getOrder(ctx context.Context, publicOrderID string) (*models.OrderDetail, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, orderKey(publicOrderID)); err == nil && ok {
			var d models.OrderDetail
			if json.Unmarshal(b, &d) == nil {
				return &d, nil
			}
		}
	}

	detail, err := s.repo.GetOrderByPublicID(ctx, publicOrderID)
	if err != nil || detail == nil {
		return detail, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if b, err := json.Marshal(detail); err == nil {
			_ = s.cache.Set(ctx, orderKey(publicOrderID), b, s.cacheTTL)
		}
	}
	return detail, nil
}

func (s *Service) publishDispatched(ctx context.Context, orderID, providerID string, sentAt time.Time) {
	if s.producer == nil || s.topic == "" {
		return
	}
	b, err := json.Marshal(messages.OrderDispatched{
		OrderID:  orderID,
		Provider: providerID,
		SentAt:   sentAt,
	})
	if err != nil {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, []byte(orderID), b); err != nil {
		slog.Error("publish order dispatched", "order_id", orderID, "error", err.Error())
	}
}

func (s *Service) recordDispatch(providerID, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordDispatch(providerID, outcome)
	}
}

func orderKey(publicOrderID string) string {
	return fmt.Sprintf("order:%s:detail", publicOrderID)
}
