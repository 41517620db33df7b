package messages

import "time"

// ShippingEventReceived mirrors the HTTP callback body. Providers that
// integrate through the broker publish it to the shipping events topic and
// it flows into the same ingestion path as the endpoint.
type ShippingEventReceived struct {
	EventName string    `json:"event_name"`
	EventTime time.Time `json:"event_time"`
	OrderID   string    `json:"order_id"` // public identifier
}
