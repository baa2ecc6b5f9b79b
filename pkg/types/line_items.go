package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LineItem is the snapshot of one catalog item captured on an order.
type LineItem struct {
	Name     string          `json:"name" validate:"required"`
	Quantity int             `json:"quantity" validate:"required,min=1"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category" validate:"required"`
	Image    string          `json:"image" validate:"required"`
}

// LineItems persists as a JSON array.
type LineItems []LineItem

// Value marshals the items into JSON.
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	buf, err := json.Marshal([]LineItem(l))
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSON into the items.
func (l *LineItems) Scan(value interface{}) error {
	raw, err := jsonBytes(value, "line items")
	if err != nil {
		return err
	}
	if raw == nil {
		*l = LineItems{}
		return nil
	}
	var out []LineItem
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*l = LineItems(out)
	return nil
}

// Subtotal sums price times quantity across the items.
func (l LineItems) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
