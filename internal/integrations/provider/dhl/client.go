package dhl

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ParcelForge/dispatchbox/internal/integrations/provider"
)

// Client posts orders to the DHL order-creation API. The bearer token is
// installed once at construction; requests use a fixed 10s timeout since the
// provider contract has no explicit bound.
type Client struct {
	url        string
	authHeader string
	httpc      *http.Client
}

func New(baseURL, authToken string) *Client {
	if baseURL == "" {
		baseURL = "http://dummy.dhl.com"
	}
	return &Client{
		url:        baseURL + "/create-order/",
		authHeader: "Bearer " + authToken,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) SendOrder(ctx context.Context, payload provider.OrderPayload) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("dhl marshal order", "order_id", payload.OrderID, "error", err.Error())
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		slog.Error("dhl new request", "url", c.url, "error", err.Error())
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authHeader)

	resp, err := c.httpc.Do(req)
	if err != nil {
		slog.Error("dhl send order failed", "url", c.url, "order_id", payload.OrderID, "error", err.Error())
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		slog.Error("dhl responded with error status", "order_id", payload.OrderID, "status", resp.StatusCode)
		return false
	}
	return true
}
