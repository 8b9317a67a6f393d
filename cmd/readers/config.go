package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mobile-access/readers-go/pkg/dwell"
	"github.com/mobile-access/readers-go/pkg/history"
)

// Config holds the screen configuration. Fields carry yaml tags so the same
// struct is read from -config; flags given on the command line win.
type Config struct {
	ConfigFile string `yaml:"-"`

	Bridge   string `yaml:"bridge"`
	Discover bool   `yaml:"discover"`
	Filter   string `yaml:"bridgeName"`
	Simulate string `yaml:"simulate"`
	Secret   string `yaml:"secret"`
	Name     string `yaml:"name"`

	Dwell time.Duration `yaml:"dwell"`

	HTTP     string `yaml:"http"`
	EventLog string `yaml:"eventLog"`

	HistoryDSN    string `yaml:"historyDsn"`
	HistoryDriver string `yaml:"historyDriver"`
	HistorySize   int    `yaml:"historySize"`

	LogLevel    string `yaml:"logLevel"`
	Interactive bool   `yaml:"interactive"`
}

// Source selection errors.
var (
	ErrNoSource       = errors.New("one of -bridge, -discover or -simulate is required")
	ErrTooManySources = errors.New("-bridge, -discover and -simulate are mutually exclusive")
)

// defaultConfig returns the values used when neither file nor flag sets one.
func defaultConfig() Config {
	return Config{
		Name:          hostname(),
		Dwell:         dwell.DefaultDuration,
		HistoryDriver: history.DriverPGX,
		HistorySize:   1000,
		LogLevel:      "info",
		Interactive:   true,
	}
}

// registerFlags binds cfg's fields to fs, using cfg's current values as
// defaults.
func registerFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Configuration file path (YAML)")
	fs.StringVar(&cfg.Bridge, "bridge", cfg.Bridge, "Bridge host address (host:port)")
	fs.BoolVar(&cfg.Discover, "discover", cfg.Discover, "Find the bridge host over mDNS")
	fs.StringVar(&cfg.Filter, "bridge-name", cfg.Filter, "Only connect to a discovered bridge with this name")
	fs.StringVar(&cfg.Simulate, "simulate", cfg.Simulate, "Run an in-process simulator with this scenario (file or built-in name)")
	fs.StringVar(&cfg.Secret, "secret", cfg.Secret, "Bridge pairing secret")
	fs.StringVar(&cfg.Name, "name", cfg.Name, "Screen name announced to the bridge")
	fs.DurationVar(&cfg.Dwell, "dwell", cfg.Dwell, "How long an access status stays visible")
	fs.StringVar(&cfg.HTTP, "http", cfg.HTTP, "Serve the screen as JSON on this address (e.g. :8080)")
	fs.StringVar(&cfg.EventLog, "event-log", cfg.EventLog, "Capture events to a .rlog file")
	fs.StringVar(&cfg.HistoryDSN, "history-dsn", cfg.HistoryDSN, "PostgreSQL DSN for the status history (in-memory when empty)")
	fs.StringVar(&cfg.HistoryDriver, "history-driver", cfg.HistoryDriver, "History database driver: pgx, pq, sqlx")
	fs.IntVar(&cfg.HistorySize, "history-size", cfg.HistorySize, "Entries kept by the in-memory history")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&cfg.Interactive, "interactive", cfg.Interactive, "Enable the interactive screen")
}

// parseConfig parses args into a Config. Values from the -config file
// override defaults, and flags set in args override the file.
func parseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	registerFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.ConfigFile == "" {
		return cfg, cfg.validate()
	}

	fromFile := defaultConfig()
	if err := loadConfigFile(cfg.ConfigFile, &fromFile); err != nil {
		return Config{}, err
	}
	fromFile.ConfigFile = cfg.ConfigFile

	// Re-apply the flags given explicitly on top of the file values.
	overlay := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
	registerFlags(overlay, &fromFile)
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err == nil {
			err = overlay.Set(f.Name, f.Value.String())
		}
	})
	if err != nil {
		return Config{}, err
	}
	return fromFile, fromFile.validate()
}

// loadConfigFile decodes the YAML file at path into cfg.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c Config) validate() error {
	n := 0
	if c.Bridge != "" {
		n++
	}
	if c.Discover {
		n++
	}
	if c.Simulate != "" {
		n++
	}
	switch {
	case n == 0:
		return ErrNoSource
	case n > 1:
		return ErrTooManySources
	}
	if c.Dwell <= 0 {
		return fmt.Errorf("dwell must be positive, got %s", c.Dwell)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}
	return nil
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "readers-screen"
	}
	return h
}
