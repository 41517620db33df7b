package pgorders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ParcelForge/dispatchbox/internal/models"
)

func TestPGOrders_RepoFlow(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "dispatchbox_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/dispatchbox_test?sslmode=disable"
	st, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	require.NoError(t, st.Ping(ctx))

	weekly := models.ShippingIntervalWeekly
	lastSent := time.Now().UTC().Add(-8 * 24 * time.Hour).Truncate(time.Second)
	created, err := st.CreateOrder(ctx, models.OrderCreateInput{
		OrderID:          "test-order",
		DeliveryService:  models.DeliveryServiceStandard,
		ShippingProvider: models.ShippingProviderDHL,
		ShippingInterval: &weekly,
		LastSentAt:       &lastSent,
		Customer:         models.Customer{FirstName: "Joe", LastName: "Doe"},
		DeliveryAddress: models.Address{
			Line1: "179 Harrow Road", Postcode: "W2 6NB", City: "London", CountryCode: "GB",
		},
		Lines: []models.OrderLine{
			{ItemID: "mercedes", Quantity: 3, Weight: 200000},
			{ItemID: "bicycle", Quantity: 1, Weight: 12000},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, created.Order.ID)
	require.Equal(t, "test-order", created.Order.OrderID)
	require.Equal(t, "Joe", created.Customer.FirstName)
	require.Nil(t, created.DeliveryAddress.Line2)
	require.Len(t, created.Lines, 2)
	require.NotNil(t, created.Order.LastSentAt)
	require.WithinDuration(t, lastSent, *created.Order.LastSentAt, time.Second)

	missing, err := st.GetOrderByPublicID(ctx, "no-such-order")
	require.NoError(t, err)
	require.Nil(t, missing)

	weeklyOrders, err := st.ListOrdersByInterval(ctx, models.ShippingIntervalWeekly)
	require.NoError(t, err)
	require.Len(t, weeklyOrders, 1)
	require.Equal(t, created.Order.ID, weeklyOrders[0].ID)

	monthlyOrders, err := st.ListOrdersByInterval(ctx, models.ShippingIntervalMonthly)
	require.NoError(t, err)
	require.Empty(t, monthlyOrders)

	sentAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.UpdateOrderLastSent(ctx, created.Order.ID, sentAt))
	reloaded, err := st.GetOrderByPublicID(ctx, "test-order")
	require.NoError(t, err)
	require.NotNil(t, reloaded.Order.LastSentAt)
	require.WithinDuration(t, sentAt, *reloaded.Order.LastSentAt, time.Second)

	evTime := time.Now().UTC().Truncate(time.Second)
	ev, err := st.CreateShippingEvent(ctx, created.Order.ID, models.ShippingEventInTransit, evTime)
	require.NoError(t, err)
	require.NotZero(t, ev.ID)
	require.Equal(t, created.Order.ID, ev.OrderID)

	// replaying the same event appends a second row, no dedup
	_, err = st.CreateShippingEvent(ctx, created.Order.ID, models.ShippingEventInTransit, evTime)
	require.NoError(t, err)

	events, err := st.ListShippingEvents(ctx, created.Order.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, models.ShippingEventInTransit, events[0].EventName)

	require.NoError(t, st.SeedDemoData(ctx)) // no-op, orders already exist
	all, err := st.ListOrdersByInterval(ctx, models.ShippingIntervalWeekly)
	require.NoError(t, err)
	require.Len(t, all, 1)
}
