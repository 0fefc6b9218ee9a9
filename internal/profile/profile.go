package profile

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is configuration to start the engine.
type Profile struct {
	// Corpus source
	Driver string // json, sqlite, postgres
	DSN    string
	Data   string // directory holding products.json / orders.json; empty uses the embedded seed

	// Vocabulary overrides (vocabulary.yaml)
	ConfigDir string

	// Clock override in RFC 3339. Empty means wall-clock time.
	Now string

	// Cancellation policy
	CancelWindowMinutes int
	CancelRule          string // CEL expression over elapsed, window, order_id

	// Logging
	LogLevel  string
	LogFormat string // text, json

	// Batch processing
	Workers int
	RPS     float64

	Mode    string
	Version string
}

// Supported corpus drivers.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv fills fields that flags left empty from SHOPDESK_* environment variables.
func (p *Profile) FromEnv() {
	if p.Driver == "" {
		p.Driver = getEnvOrDefault("SHOPDESK_DRIVER", DriverJSON)
	}
	if p.DSN == "" {
		p.DSN = getEnvOrDefault("SHOPDESK_DSN", "")
	}
	if p.Data == "" {
		p.Data = getEnvOrDefault("SHOPDESK_DATA", "")
	}
	if p.ConfigDir == "" {
		p.ConfigDir = getEnvOrDefault("SHOPDESK_CONFIG_DIR", "")
	}
	if p.Now == "" {
		p.Now = getEnvOrDefault("SHOPDESK_NOW", "")
	}
	if p.CancelWindowMinutes <= 0 {
		p.CancelWindowMinutes = getEnvOrDefaultInt("SHOPDESK_CANCEL_WINDOW_MINUTES", 60)
	}
	if p.CancelRule == "" {
		p.CancelRule = getEnvOrDefault("SHOPDESK_CANCEL_RULE", "")
	}
	if p.LogLevel == "" {
		p.LogLevel = getEnvOrDefault("SHOPDESK_LOG_LEVEL", "warn")
	}
	if p.LogFormat == "" {
		p.LogFormat = getEnvOrDefault("SHOPDESK_LOG_FORMAT", "text")
	}
	if p.Workers <= 0 {
		p.Workers = getEnvOrDefaultInt("SHOPDESK_WORKERS", 4)
	}
	if p.RPS <= 0 {
		if v := os.Getenv("SHOPDESK_RPS"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				p.RPS = f
			}
		}
	}
}

// NowOverride parses the clock override. The zero time means "use wall-clock time".
func (p *Profile) NowOverride() (time.Time, error) {
	if p.Now == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, p.Now)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid clock override %q", p.Now)
	}
	return t.UTC(), nil
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	switch p.Driver {
	case DriverJSON, DriverSQLite, DriverPostgres:
	default:
		return errors.Errorf("unsupported driver %q", p.Driver)
	}

	if p.Data != "" {
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
	}

	if p.Driver == DriverSQLite && p.DSN == "" {
		if p.Data == "" {
			return errors.New("sqlite driver requires --dsn or --data")
		}
		p.DSN = filepath.Join(p.Data, "shopdesk_"+p.Mode+".db")
	}
	if p.Driver == DriverPostgres && p.DSN == "" {
		return errors.New("postgres driver requires --dsn")
	}

	if p.CancelWindowMinutes <= 0 {
		return errors.Errorf("cancel window must be positive, got %d", p.CancelWindowMinutes)
	}
	if p.Workers <= 0 {
		p.Workers = 1
	}
	if p.RPS < 0 {
		return errors.Errorf("rps must not be negative, got %v", p.RPS)
	}

	if _, err := p.NowOverride(); err != nil {
		return err
	}
	return nil
}
