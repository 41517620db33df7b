package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ParcelForge/dispatchbox/internal/integrations/provider"
	"github.com/ParcelForge/dispatchbox/internal/integrations/provider/fake"
	"github.com/ParcelForge/dispatchbox/internal/models"
	"github.com/ParcelForge/dispatchbox/internal/services/orders"
)

type fakeRepo struct {
	events int
}

func (r *fakeRepo) GetOrderByPublicID(ctx context.Context, orderID string) (*models.OrderDetail, error) {
	if orderID != "demo-order-1" {
		return nil, nil
	}
	return &models.OrderDetail{
		Order: models.CustomerOrder{
			ID:               1,
			OrderID:          orderID,
			DeliveryService:  models.DeliveryServiceStandard,
			ShippingProvider: models.ShippingProviderDHL,
		},
		Customer: models.Customer{FirstName: "Joe", LastName: "Doe"},
		Lines:    []models.OrderLine{},
	}, nil
}

func (r *fakeRepo) UpdateOrderLastSent(ctx context.Context, orderID uint64, sentAt time.Time) error {
	return nil
}

func (r *fakeRepo) CreateShippingEvent(ctx context.Context, orderID uint64, eventName string, eventTime time.Time) (*models.ShippingEvent, error) {
	r.events++
	return &models.ShippingEvent{ID: 1, OrderID: orderID, EventName: eventName, EventTime: eventTime}, nil
}

type fakeConsumer struct {
	msgs [][]byte
}

func (c *fakeConsumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for _, m := range c.msgs {
		if err := handler(nil, m); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func testService(repo *fakeRepo) *orders.Service {
	reg := provider.NewRegistry(map[string]provider.Client{
		models.ShippingProviderDHL: fake.New(),
	})
	return orders.New(repo, reg, nil, 0)
}

func TestRunDispatchAPI_EndpointsServed(t *testing.T) {
	dir := t.TempDir()
	sw := filepath.Join(dir, "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))

	repo := &fakeRepo{}
	svc := testService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan string, 1)
	opts := dispatchAPIOpts{
		httpAddr:      "127.0.0.1:0",
		swaggerPath:   sw,
		topic:         "t",
		consumerGroup: "g",
		onListen:      func(httpAddr string) { addrCh <- httpAddr },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- runDispatchAPI(ctx, opts, svc, nil, &fakeConsumer{})
	}()

	httpAddr := <-addrCh

	resp, err := http.Get("http://" + httpAddr + "/swagger.json")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	resp, err = http.Get("http://" + httpAddr + "/api/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "This system is alive!", string(body))

	resp, err = http.Post("http://"+httpAddr+"/api/send-order/demo-order-1/", "application/json", nil)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	require.JSONEq(t, `{"success": true, "message": "OK"}`, string(body))

	resp, err = http.Get("http://" + httpAddr + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	cancel()
	require.Error(t, <-errCh)
}

func TestRunDispatchAPI_ConsumerAppliesEvents(t *testing.T) {
	dir := t.TempDir()
	sw := filepath.Join(dir, "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))

	repo := &fakeRepo{}
	svc := testService(repo)

	valid, err := json.Marshal(map[string]any{
		"event_name": "delivered",
		"event_time": "2026-08-30T10:00:00Z",
		"order_id":   "demo-order-1",
	})
	require.NoError(t, err)
	rejected, err := json.Marshal(map[string]any{
		"event_name": "lost",
		"event_time": "2026-08-30T10:00:00Z",
		"order_id":   "demo-order-1",
	})
	require.NoError(t, err)

	// The rejected message must not stop the loop.
	cons := &fakeConsumer{msgs: [][]byte{rejected, valid}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := dispatchAPIOpts{
		httpAddr:      "127.0.0.1:0",
		swaggerPath:   sw,
		topic:         "t",
		consumerGroup: "g",
		onListen:      func(string) {},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- runDispatchAPI(ctx, opts, svc, nil, cons)
	}()

	require.Eventually(t, func() bool {
		return repo.events == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.Error(t, <-errCh)
}
