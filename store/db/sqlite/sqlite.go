package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/shopdesk/internal/profile"
	"github.com/hrygo/shopdesk/store"
	"github.com/hrygo/shopdesk/store/db/sqlcorpus"
)

// The corpus is written once by `shopdesk import` and read at startup, so a single
// connection is enough.

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the corpus database named by profile.DSN and creates the tables if needed.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// When using the `modernc.org/sqlite` driver, each pragma must be prefixed with `_pragma=`.
	separator := "?"
	if strings.Contains(profile.DSN, "?") {
		separator = "&"
	}
	sqliteDB, err := sql.Open("sqlite", profile.DSN+separator+"_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	if err := sqlcorpus.Migrate(context.Background(), sqliteDB); err != nil {
		sqliteDB.Close()
		return nil, err
	}

	return &DB{db: sqliteDB, profile: profile}, nil
}

func (d *DB) Products(ctx context.Context) ([]store.Product, error) {
	if err := sqlcorpus.CheckSchema(ctx, d.db, sqlcorpus.SQLite); err != nil {
		return nil, err
	}
	return sqlcorpus.Products(ctx, d.db)
}

func (d *DB) Orders(ctx context.Context) ([]store.Order, error) {
	if err := sqlcorpus.CheckSchema(ctx, d.db, sqlcorpus.SQLite); err != nil {
		return nil, err
	}
	return sqlcorpus.Orders(ctx, d.db)
}

func (d *DB) ImportCorpus(ctx context.Context, c *store.Corpus) error {
	return sqlcorpus.Import(ctx, d.db, sqlcorpus.SQLite, c)
}

func (d *DB) Close() error {
	return d.db.Close()
}
