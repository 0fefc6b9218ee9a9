package store

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Corpus is the immutable snapshot of products and orders served to every request.
// It is built once at startup; accessors hand out copies so concurrent readers
// never observe a write.
type Corpus struct {
	products []Product
	orders   []Order
}

// NewCorpus validates the records and takes a private copy of them.
func NewCorpus(products []Product, orders []Order) (*Corpus, error) {
	c := &Corpus{
		products: make([]Product, 0, len(products)),
		orders:   make([]Order, 0, len(orders)),
	}

	seen := make(map[string]bool, len(products))
	for i, p := range products {
		if strings.TrimSpace(p.ID) == "" {
			return nil, errors.Errorf("product #%d: missing id", i)
		}
		if seen[p.ID] {
			return nil, errors.Errorf("product #%d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
		if p.Price < 0 {
			return nil, errors.Errorf("product %s: negative price %d", p.ID, p.Price)
		}
		c.products = append(c.products, p.Clone())
	}

	for i, o := range orders {
		if strings.TrimSpace(o.OrderID) == "" {
			return nil, errors.Errorf("order #%d: missing order_id", i)
		}
		if strings.TrimSpace(o.Email) == "" {
			return nil, errors.Errorf("order %s: missing email", o.OrderID)
		}
		if strings.TrimSpace(o.CreatedAt) == "" {
			return nil, errors.Errorf("order %s: missing created_at", o.OrderID)
		}
		c.orders = append(c.orders, o.Clone())
	}

	return c, nil
}

// Products returns a copy of the catalog in corpus order.
func (c *Corpus) Products() []Product {
	out := make([]Product, len(c.products))
	for i, p := range c.products {
		out[i] = p.Clone()
	}
	return out
}

// Orders returns a copy of the order book in corpus order.
func (c *Corpus) Orders() []Order {
	out := make([]Order, len(c.orders))
	for i, o := range c.orders {
		out[i] = o.Clone()
	}
	return out
}

// DecodeProducts reads a flat JSON array of products.
func DecodeProducts(r io.Reader) ([]Product, error) {
	var products []Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "failed to decode products")
	}
	return products, nil
}

// DecodeOrders reads a flat JSON array of orders.
func DecodeOrders(r io.Reader) ([]Order, error) {
	var orders []Order
	if err := json.NewDecoder(r).Decode(&orders); err != nil {
		return nil, errors.Wrap(err, "failed to decode orders")
	}
	return orders, nil
}
