package store

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/hrygo/shopdesk/internal/profile"
)

// ErrUnknownDriver is returned when the profile names a driver that is not compiled in.
var ErrUnknownDriver = errors.New("unknown corpus driver")

// Driver is a read-only source of the static corpus.
type Driver interface {
	Products(ctx context.Context) ([]Product, error)
	Orders(ctx context.Context) ([]Order, error)
	Close() error
}

// Importer is implemented by drivers that can be seeded from another corpus.
type Importer interface {
	ImportCorpus(ctx context.Context, c *Corpus) error
}

// Store provides access to the corpus behind a driver.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

// LoadCorpus reads every product and order once and freezes them into a Corpus.
// Any failure here is fatal for the process: no request can be served without it.
func (s *Store) LoadCorpus(ctx context.Context) (*Corpus, error) {
	products, err := s.driver.Products(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load products")
	}
	orders, err := s.driver.Orders(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load orders")
	}

	corpus, err := NewCorpus(products, orders)
	if err != nil {
		return nil, errors.Wrap(err, "corrupt corpus")
	}

	driverName := ""
	if s.profile != nil {
		driverName = s.profile.Driver
	}
	slog.Debug("corpus loaded",
		"driver", driverName,
		"products", len(products),
		"orders", len(orders))
	return corpus, nil
}

// Import copies a corpus into the underlying driver if it supports writes.
func (s *Store) Import(ctx context.Context, c *Corpus) error {
	importer, ok := s.driver.(Importer)
	if !ok {
		return errors.New("driver is read-only")
	}
	return importer.ImportCorpus(ctx, c)
}

func (s *Store) Close() error {
	return s.driver.Close()
}
