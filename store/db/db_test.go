package db

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/shopdesk/internal/profile"
	"github.com/hrygo/shopdesk/store"
)

func TestNewDBDriver(t *testing.T) {
	driver, err := NewDBDriver(&profile.Profile{Driver: profile.DriverJSON})
	require.NoError(t, err)
	require.NoError(t, driver.Close())

	driver, err = NewDBDriver(&profile.Profile{
		Driver: profile.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "c.db"),
	})
	require.NoError(t, err)
	_, ok := driver.(store.Importer)
	assert.True(t, ok, "sqlite driver supports import")
	require.NoError(t, driver.Close())

	_, err = NewDBDriver(&profile.Profile{Driver: "mysql"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrUnknownDriver))

	_, err = NewDBDriver(&profile.Profile{Driver: profile.DriverPostgres})
	require.Error(t, err, "postgres without dsn")
}
