package provider

import "context"

// OrderPayload is the wire shape POSTed to shipping providers. All providers
// currently receive the identical payload.
type OrderPayload struct {
	OrderID         string         `json:"order_id"`
	DeliveryService string         `json:"delivery_service"`
	DeliveryAddress AddressPayload `json:"delivery_address"`
	Items           []ItemPayload  `json:"items"`
}

// AddressPayload carries the delivery address. Recipient is derived from the
// order's customer at serialization time, not stored on the address.
type AddressPayload struct {
	Line1       string  `json:"line_1"`
	Line2       *string `json:"line_2"`
	Postcode    string  `json:"postcode"`
	City        string  `json:"city"`
	CountryCode string  `json:"country_code"`
	Recipient   string  `json:"recipient"`
}

type ItemPayload struct {
	ItemID   string `json:"item_id"`
	Quantity int32  `json:"quantity"`
	Weight   int64  `json:"weight"`
}

// Client submits serialized orders to one shipping provider.
//
// The boolean is the whole contract: a completed request with a non-error
// status is true, everything else (transport failure, 4xx, 5xx) is false.
// Clients log failures but never surface them as errors, and never retry.
type Client interface {
	SendOrder(ctx context.Context, payload OrderPayload) bool
}
