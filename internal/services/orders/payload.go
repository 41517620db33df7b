package orders

import (
	"github.com/ParcelForge/dispatchbox/internal/integrations/provider"
	"github.com/ParcelForge/dispatchbox/internal/models"
)

// BuildOrderPayload flattens an order graph into the wire shape shared by
// all providers, in the order's natural association order.
func BuildOrderPayload(d *models.OrderDetail) provider.OrderPayload {
	items := make([]provider.ItemPayload, 0, len(d.Lines))
	for _, l := range d.Lines {
		items = append(items, provider.ItemPayload{
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
			Weight:   l.Weight,
		})
	}

	return provider.OrderPayload{
		OrderID:         d.Order.OrderID,
		DeliveryService: d.Order.DeliveryService,
		DeliveryAddress: buildAddressPayload(d.DeliveryAddress, d.Customer),
		Items:           items,
	}
}

// buildAddressPayload takes the customer explicitly: the recipient line
// belongs to the order's customer, not to the address record.
func buildAddressPayload(a models.Address, recipient models.Customer) provider.AddressPayload {
	return provider.AddressPayload{
		Line1:       a.Line1,
		Line2:       a.Line2,
		Postcode:    a.Postcode,
		City:        a.City,
		CountryCode: a.CountryCode,
		Recipient:   recipient.FirstName + " " + recipient.LastName,
	}
}
