package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/shopdesk/internal/profile"
	"github.com/hrygo/shopdesk/store"
	"github.com/hrygo/shopdesk/store/seed"
)

func newTestDB(t *testing.T) store.Driver {
	t.Helper()
	driver, err := NewDB(&profile.Profile{
		Driver: profile.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "corpus.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })
	return driver
}

func TestImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	driver := newTestDB(t)

	want, err := seed.Corpus()
	require.NoError(t, err)

	s := store.New(driver, nil)
	require.NoError(t, s.Import(ctx, want))

	got, err := s.LoadCorpus(ctx)
	require.NoError(t, err)

	require.Equal(t, len(want.Products()), len(got.Products()))
	for i, p := range want.Products() {
		assert.Equal(t, p, got.Products()[i], "product order and content survive import")
	}
	require.Equal(t, len(want.Orders()), len(got.Orders()))
	for i, o := range want.Orders() {
		assert.Equal(t, o.OrderID, got.Orders()[i].OrderID)
		assert.Equal(t, o.CreatedAt, got.Orders()[i].CreatedAt)
		require.Len(t, got.Orders()[i].Items, len(o.Items))
		for j := range o.Items {
			assert.JSONEq(t, string(o.Items[j]), string(got.Orders()[i].Items[j]))
		}
	}
}

func TestReimportReplaces(t *testing.T) {
	ctx := context.Background()
	driver := newTestDB(t)
	s := store.New(driver, nil)

	full, err := seed.Corpus()
	require.NoError(t, err)
	require.NoError(t, s.Import(ctx, full))

	small, err := store.NewCorpus(
		[]store.Product{{ID: "X1", Title: "Only Dress", Price: 1, Sizes: []string{"M"}, Tags: nil, Color: "red"}},
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, s.Import(ctx, small))

	got, err := s.LoadCorpus(ctx)
	require.NoError(t, err)
	require.Len(t, got.Products(), 1)
	assert.Empty(t, got.Products()[0].Tags)
	assert.Empty(t, got.Orders())
}

func TestLoadBeforeImportFails(t *testing.T) {
	driver := newTestDB(t)
	_, err := store.New(driver, nil).LoadCorpus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shopdesk import")
}

func TestNewDBRequiresDSN(t *testing.T) {
	_, err := NewDB(&profile.Profile{Driver: profile.DriverSQLite})
	require.Error(t, err)
}
