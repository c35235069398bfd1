package order

import "time"

// Order is the fully populated sales order read from the store database.
// Nested address, payment and line-item data is loaded up front so the
// feed builder does no hidden I/O.
type Order struct {
	IncrementID         string
	StoreID             int64
	CreatedAt           time.Time
	CurrencyCode        string
	GrandTotal          float64
	Subtotal            float64
	DiscountAmount      float64
	ShippingInclTax     float64
	Status              string
	StatusLabel         string
	CustomerID          *int64
	CustomerIsGuest     bool
	CustomerGroupID     *int64
	CustomerEmail       string
	BillingTelephone    string
	PaymentMethodTitle  string
	ShippingDescription string
	ShippingAddress     Address
	Items               []Item
	StatusHistory       []StatusEvent
}

// Address is the shipping address attached to an order.
type Address struct {
	CountryCode string
	City        string
	Street      string
	PostalCode  string
}

// Item is a single ordered line item.
type Item struct {
	SKU       string
	Name      string
	Qty       float64
	RowTotal  float64
	TaxAmount float64
}

// StatusEvent is one entry of the order's status history, ascending by
// creation time when loaded.
type StatusEvent struct {
	Status    string
	CreatedAt time.Time
}

// ModifiedAt returns the timestamp of the earliest status-history entry,
// falling back to the order's own creation time when the history is empty.
func (o *Order) ModifiedAt() time.Time {
	if len(o.StatusHistory) == 0 {
		return o.CreatedAt
	}
	earliest := o.StatusHistory[0].CreatedAt
	for _, e := range o.StatusHistory[1:] {
		if e.CreatedAt.Before(earliest) {
			earliest = e.CreatedAt
		}
	}
	return earliest
}

// TaxTotal folds the tax amounts of all line items.
func (o *Order) TaxTotal() float64 {
	var tax float64
	for _, item := range o.Items {
		tax += item.TaxAmount
	}
	return tax
}
