package royalmail

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

// Client posts orders to the Royal Mail order-creation API using basic auth
// credentials set at construction. Requests use a fixed 10s timeout.
type Client struct {
	url      string
	login    string
	password string
	httpc    *http.Client
}

func New(baseURL, login, password string) *Client {
	if baseURL == "" {
		baseURL = "http://dummy.royal-mail.com"
	}
	return &Client{
		url:      baseURL + "/create-order/",
		login:    login,
		password: password,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) SendOrder(ctx context.Context, payload provider.OrderPayload) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("royal mail marshal order", "order_id", payload.OrderID, "error", err.Error())
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		slog.Error("royal mail new request", "url", c.url, "error", err.Error())
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.login, c.password)

	resp, err := c.httpc.Do(req)
	if err != nil {
		slog.Error("royal mail send order failed", "url", c.url, "order_id", payload.OrderID, "error", err.Error())
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		slog.Error("royal mail responded with error status", "order_id", payload.OrderID, "status", resp.StatusCode)
		return false
	}
	return true
}
