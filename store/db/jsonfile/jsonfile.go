// Package jsonfile reads the corpus from products.json and orders.json in the data directory.
package jsonfile

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/hrygo/shopdesk/internal/profile"
	"github.com/hrygo/shopdesk/store"
	"github.com/hrygo/shopdesk/store/seed"
)

const (
	ProductsFile = "products.json"
	OrdersFile   = "orders.json"
)

type DB struct {
	dir string
}

// NewDB returns a driver over profile.Data. An empty data directory serves the embedded seed corpus.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	return &DB{dir: profile.Data}, nil
}

func (d *DB) Products(_ context.Context) ([]store.Product, error) {
	if d.dir == "" {
		return seed.Products()
	}
	f, err := os.Open(filepath.Join(d.dir, ProductsFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open products")
	}
	defer f.Close()
	return store.DecodeProducts(f)
}

func (d *DB) Orders(_ context.Context) ([]store.Order, error) {
	if d.dir == "" {
		return seed.Orders()
	}
	f, err := os.Open(filepath.Join(d.dir, OrdersFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open orders")
	}
	defer f.Close()
	return store.DecodeOrders(f)
}

func (d *DB) Close() error {
	return nil
}
