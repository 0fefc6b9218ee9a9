// Package seed embeds the demo corpus used when no data directory is configured.
package seed

import (
	"bytes"
	_ "embed"

	"github.com/pkg/errors"

	"github.com/hrygo/shopdesk/store"
)

// ReferenceNow is the instant the demo orders are staged against: A1003 and A1004 are
// still cancellable at this time, A1001 and A1002 are not.
const ReferenceNow = "2025-09-07T12:00:00Z"

//go:embed products.json
var productsJSON []byte

//go:embed orders.json
var ordersJSON []byte

// Corpus decodes the embedded demo corpus.
func Corpus() (*store.Corpus, error) {
	products, err := Products()
	if err != nil {
		return nil, err
	}
	orders, err := Orders()
	if err != nil {
		return nil, err
	}
	c, err := store.NewCorpus(products, orders)
	if err != nil {
		return nil, errors.Wrap(err, "embedded seed corpus")
	}
	return c, nil
}

// Products decodes the embedded product list.
func Products() ([]store.Product, error) {
	return store.DecodeProducts(bytes.NewReader(productsJSON))
}

// Orders decodes the embedded order list.
func Orders() ([]store.Order, error) {
	return store.DecodeOrders(bytes.NewReader(ordersJSON))
}
