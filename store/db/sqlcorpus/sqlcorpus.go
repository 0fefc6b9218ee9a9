// Package sqlcorpus holds the corpus schema and queries shared by the sqlite and postgres drivers.
package sqlcorpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/shopdesk/internal/version"
	"github.com/hrygo/shopdesk/store"
)

// Dialect captures the few differences between the SQL backends.
type Dialect struct {
	Name string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
}

var (
	SQLite   = Dialect{Name: "sqlite", Placeholder: func(int) string { return "?" }}
	Postgres = Dialect{Name: "postgres", Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
)

// Sizes, tags and items are stored as JSON text; position keeps corpus order,
// which catalog search relies on to break price ties.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS corpus_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product (
		position INTEGER PRIMARY KEY,
		id       TEXT NOT NULL UNIQUE,
		title    TEXT NOT NULL,
		price    INTEGER NOT NULL,
		sizes    TEXT NOT NULL,
		tags     TEXT NOT NULL,
		color    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_record (
		position   INTEGER PRIMARY KEY,
		order_id   TEXT NOT NULL,
		email      TEXT NOT NULL,
		created_at TEXT NOT NULL,
		items      TEXT NOT NULL
	)`,
}

// Migrate creates the corpus tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to migrate corpus schema")
		}
	}
	return nil
}

// CheckSchema verifies that the stored corpus was written by a compatible build.
func CheckSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	var schemaVersion string
	err := db.QueryRowContext(ctx,
		"SELECT value FROM corpus_meta WHERE key = "+d.Placeholder(1), "schema_version",
	).Scan(&schemaVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("corpus not imported yet (run `shopdesk import`)")
	}
	if err != nil {
		return errors.Wrap(err, "failed to read corpus schema version")
	}
	if !version.IsCorpusSchemaSupported(schemaVersion) {
		return errors.Errorf("corpus schema %s is not supported (need %s..%s)",
			schemaVersion, version.MinCorpusSchema, version.CorpusSchema)
	}
	return nil
}

func Products(ctx context.Context, db *sql.DB) ([]store.Product, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, title, price, sizes, tags, color FROM product ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query products")
	}
	defer rows.Close()

	var products []store.Product
	for rows.Next() {
		var p store.Product
		var sizes, tags string
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &sizes, &tags, &p.Color); err != nil {
			return nil, errors.Wrap(err, "failed to scan product")
		}
		if err := json.Unmarshal([]byte(sizes), &p.Sizes); err != nil {
			return nil, errors.Wrapf(err, "product %s: bad sizes column", p.ID)
		}
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return nil, errors.Wrapf(err, "product %s: bad tags column", p.ID)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate products")
	}
	return products, nil
}

func Orders(ctx context.Context, db *sql.DB) ([]store.Order, error) {
	rows, err := db.QueryContext(ctx, `SELECT order_id, email, created_at, items FROM order_record ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query orders")
	}
	defer rows.Close()

	var orders []store.Order
	for rows.Next() {
		var o store.Order
		var items string
		if err := rows.Scan(&o.OrderID, &o.Email, &o.CreatedAt, &items); err != nil {
			return nil, errors.Wrap(err, "failed to scan order")
		}
		if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
			return nil, errors.Wrapf(err, "order %s: bad items column", o.OrderID)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate orders")
	}
	return orders, nil
}

func placeholders(d Dialect, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.Placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

// Import replaces the stored corpus with c in a single transaction.
func Import(ctx context.Context, db *sql.DB, d Dialect, c *store.Corpus) error {
	if err := Migrate(ctx, db); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM product", "DELETE FROM order_record"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to clear corpus")
		}
	}

	insertProduct := "INSERT INTO product (position, id, title, price, sizes, tags, color) VALUES (" + placeholders(d, 7) + ")"
	for i, p := range c.Products() {
		sizes, err := json.Marshal(nonNil(p.Sizes))
		if err != nil {
			return errors.Wrap(err, "failed to encode sizes")
		}
		tags, err := json.Marshal(nonNil(p.Tags))
		if err != nil {
			return errors.Wrap(err, "failed to encode tags")
		}
		if _, err := tx.ExecContext(ctx, insertProduct, i, p.ID, p.Title, p.Price, string(sizes), string(tags), p.Color); err != nil {
			return errors.Wrapf(err, "failed to insert product %s", p.ID)
		}
	}

	insertOrder := "INSERT INTO order_record (position, order_id, email, created_at, items) VALUES (" + placeholders(d, 5) + ")"
	for i, o := range c.Orders() {
		items := o.Items
		if items == nil {
			items = []json.RawMessage{}
		}
		raw, err := json.Marshal(items)
		if err != nil {
			return errors.Wrap(err, "failed to encode items")
		}
		if _, err := tx.ExecContext(ctx, insertOrder, i, o.OrderID, o.Email, o.CreatedAt, string(raw)); err != nil {
			return errors.Wrapf(err, "failed to insert order %s", o.OrderID)
		}
	}

	upsertMeta := "INSERT INTO corpus_meta (key, value) VALUES (" + placeholders(d, 2) + ") " +
		"ON CONFLICT (key) DO UPDATE SET value = excluded.value"
	if _, err := tx.ExecContext(ctx, upsertMeta, "schema_version", version.CorpusSchema); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit corpus import")
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
