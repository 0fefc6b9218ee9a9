package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/shopdesk/ai/observability/logging"
	"github.com/hrygo/shopdesk/internal/profile"
	"github.com/hrygo/shopdesk/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "shopdesk",
	Short:         `A deterministic customer-support engine for an online dress shop: product help, order cancellation, and a guardrail for everything else.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if !isRunningAsSystemdService() {
			// Try to load .env file from current directory (ignore error if file doesn't exist)
			_ = godotenv.Load()
		}

		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(instanceProfile.LogLevel)
		if err != nil {
			return err
		}
		logger, err := logging.New(os.Stderr, instanceProfile.LogFormat, level)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		cmd.SetContext(withProfile(cmd.Context(), instanceProfile))
		return nil
	},
}

type profileKey struct{}

func withProfile(ctx context.Context, p *profile.Profile) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, profileKey{}, p)
}

func profileFrom(cmd *cobra.Command) *profile.Profile {
	if p, ok := cmd.Context().Value(profileKey{}).(*profile.Profile); ok {
		return p
	}
	return &profile.Profile{}
}

// loadProfile builds the profile from flags (via viper), then the environment.
func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:                viper.GetString("mode"),
		Data:                viper.GetString("data"),
		Driver:              viper.GetString("driver"),
		DSN:                 viper.GetString("dsn"),
		ConfigDir:           viper.GetString("config-dir"),
		Now:                 viper.GetString("now"),
		CancelWindowMinutes: viper.GetInt("cancel-window"),
		CancelRule:          viper.GetString("cancel-rule"),
		LogLevel:            viper.GetString("log-level"),
		LogFormat:           viper.GetString("log-format"),
		Workers:             viper.GetInt("workers"),
		RPS:                 viper.GetFloat64("rps"),
		Version:             version.GetCurrentVersion(viper.GetString("mode")),
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}
	return instanceProfile, nil
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", profile.DriverJSON)

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "demo", `mode of the engine, can be "prod" or "dev" or "demo"`)
	flags.String("data", "", "corpus directory with products.json and orders.json (default: embedded seed corpus)")
	flags.String("driver", profile.DriverJSON, "corpus driver (json, sqlite, postgres)")
	flags.String("dsn", "", "database source name for sqlite or postgres")
	flags.String("config-dir", "", "directory holding vocabulary.yaml")
	flags.String("now", "", "fixed clock for the cancellation policy, RFC 3339 (e.g. 2025-09-07T12:00:00Z)")
	flags.Int("cancel-window", 0, "cancellation window in minutes (default 60)")
	flags.String("cancel-rule", "", "CEL rule over elapsed, window and order_id (default \"elapsed < window\")")
	flags.String("log-level", "", "log level: debug, info, warn, error (default warn)")
	flags.String("log-format", "", "log format: text or json (default text)")

	for _, name := range []string{
		"mode", "data", "driver", "dsn", "config-dir", "now",
		"cancel-window", "cancel-rule", "log-level", "log-format",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("shopdesk")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(askCmd, batchCmd, importCmd, versionCmd)
}

// isRunningAsSystemdService detects if the process is running under systemd
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
