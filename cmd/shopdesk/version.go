package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrygo/shopdesk/internal/version"
)

var versionFull bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	// The corpus is not needed to print the version.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, _ []string) {
		if versionFull {
			fmt.Fprintln(cmd.OutOrStdout(), version.StringFull())
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "include build details")
}
