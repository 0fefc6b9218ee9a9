package postgres

import (
	"context"
	"database/sql"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hrygo/shopdesk/internal/profile"
	"github.com/hrygo/shopdesk/store"
	"github.com/hrygo/shopdesk/store/db/sqlcorpus"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB connects to PostgreSQL with profile.DSN and creates the corpus tables if needed.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil || profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open db")
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping db")
	}
	if err := sqlcorpus.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) Products(ctx context.Context) ([]store.Product, error) {
	if err := sqlcorpus.CheckSchema(ctx, d.db, sqlcorpus.Postgres); err != nil {
		return nil, err
	}
	return sqlcorpus.Products(ctx, d.db)
}

func (d *DB) Orders(ctx context.Context) ([]store.Order, error) {
	if err := sqlcorpus.CheckSchema(ctx, d.db, sqlcorpus.Postgres); err != nil {
		return nil, err
	}
	return sqlcorpus.Orders(ctx, d.db)
}

func (d *DB) ImportCorpus(ctx context.Context, c *store.Corpus) error {
	return sqlcorpus.Import(ctx, d.db, sqlcorpus.Postgres, c)
}

func (d *DB) Close() error {
	return d.db.Close()
}
