// Package db selects the corpus driver named by the profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/shopdesk/internal/profile"
	"github.com/hrygo/shopdesk/store"
	"github.com/hrygo/shopdesk/store/db/jsonfile"
	"github.com/hrygo/shopdesk/store/db/postgres"
	"github.com/hrygo/shopdesk/store/db/sqlite"
)

// NewDBDriver creates a corpus driver based on profile.Driver.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "", "json":
		driver, err = jsonfile.NewDB(profile)
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Wrapf(store.ErrUnknownDriver, "driver %q", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
