package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/shopdesk/internal/profile"
	"github.com/hrygo/shopdesk/store"
	"github.com/hrygo/shopdesk/store/db"
	"github.com/hrygo/shopdesk/store/db/jsonfile"
)

var importSource string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy a JSON corpus into the sqlite or postgres database",
	Long: `Copy a JSON corpus (products.json and orders.json) into the database named by
--driver and --dsn, replacing whatever corpus it held. Without --source the
embedded seed corpus is imported.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		p := profileFrom(cmd)
		if p.Driver == profile.DriverJSON {
			return errors.New("import needs --driver=sqlite or --driver=postgres")
		}

		source, err := jsonfile.NewDB(&profile.Profile{Driver: profile.DriverJSON, Data: importSource})
		if err != nil {
			return err
		}
		corpus, err := store.New(source, nil).LoadCorpus(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read source corpus")
		}

		target, err := db.NewDBDriver(p)
		if err != nil {
			printCorpusError(cmd.ErrOrStderr(), err, p)
			return err
		}
		targetStore := store.New(target, p)
		defer targetStore.Close()

		if err := targetStore.Import(ctx, corpus); err != nil {
			return errors.Wrap(err, "failed to import corpus")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %d products and %d orders into %s\n",
			len(corpus.Products()), len(corpus.Orders()), p.Driver)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "", "directory with products.json and orders.json (default: embedded seed corpus)")
}
