package dhl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ParcelForge/dispatchbox/internal/integrations/provider"
)

func testPayload() provider.OrderPayload {
	return provider.OrderPayload{
		OrderID:         "test-order",
		DeliveryService: "standard",
		DeliveryAddress: provider.AddressPayload{
			Line1:       "179 Harrow Road",
			Postcode:    "W2 6NB",
			City:        "London",
			CountryCode: "GB",
			Recipient:   "Joe Doe",
		},
		Items: []provider.ItemPayload{
			{ItemID: "mercedes", Quantity: 3, Weight: 200000},
		},
	}
}

func TestClient_SendOrder_OK(t *testing.T) {
	var gotBody []byte
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/create-order/", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-dhl-token")
	require.True(t, c.SendOrder(context.Background(), testPayload()))
	require.Equal(t, "Bearer test-dhl-token", gotAuth)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &sent))
	require.Equal(t, "test-order", sent["order_id"])
	addr := sent["delivery_address"].(map[string]any)
	require.Equal(t, "Joe Doe", addr["recipient"])
	require.Nil(t, addr["line_2"])
}

func TestClient_SendOrder_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "t")
	require.False(t, c.SendOrder(context.Background(), testPayload()))
}

func TestClient_SendOrder_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	c := New(srv.URL, "t")
	require.False(t, c.SendOrder(context.Background(), testPayload()))
}
