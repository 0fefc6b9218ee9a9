package store

import "encoding/json"

// Order is one order record. CreatedAt is kept verbatim (ISO-8601, any offset or naive)
// and parsed by the cancellation policy.
type Order struct {
	OrderID   string            `json:"order_id"`
	Email     string            `json:"email"`
	CreatedAt string            `json:"created_at"`
	Items     []json.RawMessage `json:"items"`
}

// Clone returns a deep copy of the order, including the raw item documents.
func (o Order) Clone() Order {
	items := make([]json.RawMessage, len(o.Items))
	for i, item := range o.Items {
		items[i] = append(json.RawMessage(nil), item...)
	}
	o.Items = items
	return o
}
