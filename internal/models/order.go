package models

import "time"

// Enum values are stored as text columns.
const (
	DeliveryServiceStandard = "standard"
	DeliveryServiceExpress  = "express"
)

const (
	ShippingProviderDHL         = "dhl"
	ShippingProviderRoyalMail   = "royal_mail"
	ShippingProviderAmazonPrime = "amazon_prime"
)

const (
	ShippingIntervalWeekly  = "weekly"
	ShippingIntervalMonthly = "monthly"
)

// Shipping event names as providers report them on the callback channel.
// The failed event is the one case where the wire name and the stored value
// differ: callbacks say "failed", the row keeps "failed-to-deliver".
const (
	ShippingEventWaitingForCollection = "waiting_for_collection"
	ShippingEventInTransit            = "in_transit"
	ShippingEventDelivered            = "delivered"
	ShippingEventFailed               = "failed"
	ShippingEventFailedToDeliver      = "failed-to-deliver"
)

// ShippingEventNames lists the accepted wire names in validation-message order.
var ShippingEventNames = []string{
	ShippingEventWaitingForCollection,
	ShippingEventInTransit,
	ShippingEventDelivered,
	ShippingEventFailed,
}

// ShippingEventValue maps an inbound wire name to the stored event value.
// Stored values are not accepted on the wire.
func ShippingEventValue(name string) (string, bool) {
	switch name {
	case ShippingEventWaitingForCollection, ShippingEventInTransit, ShippingEventDelivered:
		return name, true
	case ShippingEventFailed:
		return ShippingEventFailedToDeliver, true
	}
	return "", false
}

type Customer struct {
	ID        uint64
	FirstName string
	LastName  string
}

type Address struct {
	ID          uint64
	Line1       string
	Line2       *string
	Postcode    string
	City        string
	CountryCode string
}

type Item struct {
	ID     uint64
	ItemID string
	Weight int64
}

// CustomerOrder is the order row. OrderID is the public identifier; the
// numeric ID never crosses the API boundary.
type CustomerOrder struct {
	ID                uint64
	OrderID           string
	DeliveryService   string
	ShippingProvider  string
	ShippingInterval  *string
	LastSentAt        *time.Time
	CreatedAt         time.Time
	CustomerID        uint64
	DeliveryAddressID uint64
}

// OrderLine is one order item link joined with its item row.
type OrderLine struct {
	ItemID   string
	Quantity int32
	Weight   int64
}

// OrderDetail is a customer order with the associations the send path needs.
type OrderDetail struct {
	Order           CustomerOrder
	Customer        Customer
	DeliveryAddress Address
	Lines           []OrderLine
}

type ShippingEvent struct {
	ID        uint64
	OrderID   uint64 // internal customer_orders.id
	EventName string
	EventTime time.Time
	CreatedAt time.Time
}

// ShippingEventInput is an inbound delivery-status callback before validation.
type ShippingEventInput struct {
	EventName     string
	EventTime     time.Time
	PublicOrderID string
}

// OrderCreateInput seeds a full order graph. Order entry itself is handled
// upstream; this exists for seeding and tests.
type OrderCreateInput struct {
	OrderID          string
	DeliveryService  string
	ShippingProvider string
	ShippingInterval *string
	LastSentAt       *time.Time
	Customer         Customer
	DeliveryAddress  Address
	Lines            []OrderLine
}
