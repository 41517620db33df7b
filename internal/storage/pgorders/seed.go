package pgorders

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ParcelForge/dispatchbox/internal/models"
)

// SeedDemoData inserts a small order graph for local runs. No-op when any
// orders already exist.
func (s *Storage) SeedDemoData(ctx context.Context) error {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM customer_orders`).Scan(&count); err != nil {
		return errors.Wrap(err, "count orders")
	}
	if count > 0 {
		return nil
	}

	weekly := models.ShippingIntervalWeekly
	monthly := models.ShippingIntervalMonthly
	line2 := "Flat 4"
	lastSent := time.Now().UTC().Add(-8 * 24 * time.Hour)

	seeds := []models.OrderCreateInput{
		{
			OrderID:          "demo-order-1",
			DeliveryService:  models.DeliveryServiceStandard,
			ShippingProvider: models.ShippingProviderDHL,
			Customer:         models.Customer{FirstName: "Joe", LastName: "Doe"},
			DeliveryAddress: models.Address{
				Line1: "179 Harrow Road", Postcode: "W2 6NB", City: "London", CountryCode: "GB",
			},
			Lines: []models.OrderLine{{ItemID: "mercedes", Quantity: 3, Weight: 200000}},
		},
		{
			OrderID:          "demo-order-2",
			DeliveryService:  models.DeliveryServiceExpress,
			ShippingProvider: models.ShippingProviderRoyalMail,
			ShippingInterval: &weekly,
			LastSentAt:       &lastSent,
			Customer:         models.Customer{FirstName: "Jane", LastName: "Smith"},
			DeliveryAddress: models.Address{
				Line1: "1 Main Street", Line2: &line2, Postcode: "SW1A 1AA", City: "London", CountryCode: "GB",
			},
			Lines: []models.OrderLine{{ItemID: "bicycle", Quantity: 1, Weight: 12000}},
		},
		{
			OrderID:          "demo-order-3",
			DeliveryService:  models.DeliveryServiceStandard,
			ShippingProvider: models.ShippingProviderDHL,
			ShippingInterval: &monthly,
			Customer:         models.Customer{FirstName: "Max", LastName: "Mustermann"},
			DeliveryAddress: models.Address{
				Line1: "Hauptstrasse 1", Postcode: "10115", City: "Berlin", CountryCode: "DE",
			},
			Lines: []models.OrderLine{{ItemID: "kettle", Quantity: 2, Weight: 1500}},
		},
	}

	for _, in := range seeds {
		if _, err := s.CreateOrder(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
