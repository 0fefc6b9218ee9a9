package tools

import (
	"strings"

	"github.com/hrygo/shopdesk/store"
)

// OrderBook finds orders by id and email.
type OrderBook struct {
	orders []store.Order
}

// NewOrderBook creates an order book over orders.
func NewOrderBook(orders []store.Order) *OrderBook {
	return &OrderBook{orders: orders}
}

// Name returns the name of the tool.
func (b *OrderBook) Name() string {
	return ToolOrderLookup
}

// Lookup returns the first order whose id and email both match.
// Ids compare upper-cased and emails lower-cased, both trimmed. Either input
// missing or blank is a miss: an id alone never reveals an order.
func (b *OrderBook) Lookup(orderID, email *string) (store.Order, bool) {
	if orderID == nil || email == nil {
		return store.Order{}, false
	}
	id := strings.ToUpper(strings.TrimSpace(*orderID))
	em := strings.ToLower(strings.TrimSpace(*email))
	if id == "" || em == "" {
		return store.Order{}, false
	}

	for _, o := range b.orders {
		if strings.ToUpper(o.OrderID) == id && strings.ToLower(o.Email) == em {
			return o.Clone(), true
		}
	}
	return store.Order{}, false
}
