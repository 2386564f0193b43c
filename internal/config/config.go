// Package config loads server settings from defaults, an optional YAML or
// TOML file, RAGNAROK_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// EnvPrefix prefixes every environment override, e.g. RAGNAROK_LOGGING_LEVEL.
const EnvPrefix = "RAGNAROK"

// Catalog sources.
const (
	CatalogDemo     = "demo"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

// Config is the complete server configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Catalog      CatalogConfig      `mapstructure:"catalog"`
	Engine       EngineConfig       `mapstructure:"engine"`
	Presentation PresentationConfig `mapstructure:"presentation"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
}

// ServerConfig holds listener addresses.
type ServerConfig struct {
	GRPCAddress      string `mapstructure:"grpc_address"`
	WebSocketAddress string `mapstructure:"websocket_address"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig points at the Postgres card store.
type DatabaseConfig struct {
	URL     string `mapstructure:"url"`
	Migrate bool   `mapstructure:"migrate"`
}

// CatalogConfig picks where card definitions come from.
type CatalogConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

// EngineConfig holds game defaults.
type EngineConfig struct {
	Seed           uint64 `mapstructure:"seed"`
	StartingHealth int    `mapstructure:"starting_health"`
	StartingHand   int    `mapstructure:"starting_hand"`
	// ScriptBudget caps the Lua instructions one effect script may run.
	ScriptBudget int `mapstructure:"script_budget"`
}

// PresentationConfig paces combat playback and the websocket feed.
type PresentationConfig struct {
	StepDuration       time.Duration `mapstructure:"step_duration"`
	MaxEventsPerSecond float64       `mapstructure:"max_events_per_second"`
}

// TracingConfig enables the OTLP trace exporter.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

var defaults = map[string]any{
	"server.grpc_address":                ":50051",
	"server.websocket_address":           ":8080",
	"logging.level":                      "info",
	"logging.format":                     "console",
	"database.url":                       "",
	"database.migrate":                   false,
	"catalog.source":                     CatalogDemo,
	"catalog.path":                       "",
	"engine.seed":                        uint64(0),
	"engine.starting_health":             30,
	"engine.starting_hand":               3,
	"engine.script_budget":               1_000_000,
	"presentation.step_duration":         "1200ms",
	"presentation.max_events_per_second": 20.0,
	"tracing.enabled":                    false,
	"tracing.endpoint":                   "",
	"tracing.service_name":               "ragnarok-engine",
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"grpc-address":   "server.grpc_address",
	"ws-address":     "server.websocket_address",
	"log-level":      "logging.level",
	"log-format":     "logging.format",
	"database-url":   "database.url",
	"migrate":        "database.migrate",
	"catalog-source": "catalog.source",
	"catalog-path":   "catalog.path",
	"seed":           "engine.seed",
}

// RegisterFlags adds the server flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML or TOML configuration file")
	fs.String("grpc-address", defaults["server.grpc_address"].(string), "gRPC listen address")
	fs.String("ws-address", defaults["server.websocket_address"].(string), "websocket listen address")
	fs.String("log-level", defaults["logging.level"].(string), "log level (debug, info, warn, error)")
	fs.String("log-format", defaults["logging.format"].(string), "log format (json, console)")
	fs.String("database-url", "", "Postgres connection string")
	fs.Bool("migrate", false, "apply catalog migrations on startup")
	fs.String("catalog-source", CatalogDemo, "card catalog source (demo, file, postgres)")
	fs.String("catalog-path", "", "card content file for the file catalog source")
	fs.Uint64("seed", 0, "default game seed (0 draws one from the clock)")
}

// Loader reads and re-reads the configuration.
type Loader struct {
	v    *viper.Viper
	file string
}

// NewLoader prepares a loader. flags may be nil; otherwise it must have been
// set up by RegisterFlags and parsed. Files are read from fs.
func NewLoader(fs afero.Fs, flags *pflag.FlagSet) (*Loader, error) {
	v := viper.New()
	if fs != nil {
		v.SetFs(fs)
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	l := &Loader{v: v}
	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
		if f := flags.Lookup("config"); f != nil {
			l.file = f.Value.String()
		}
	}
	if l.file != "" {
		v.SetConfigFile(l.file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", l.file, err)
		}
	}
	return l, nil
}

// File returns the configuration file in use, if any.
func (l *Loader) File() string {
	return l.file
}

// Load decodes and validates the current settings.
func (l *Loader) Load() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch calls onChange with the reloaded configuration every time the
// configuration file changes. Without a file it does nothing.
func (l *Loader) Watch(onChange func(*Config, error)) {
	if l.file == "" {
		return
	}
	l.v.OnConfigChange(func(fsnotify.Event) {
		onChange(l.Load())
	})
	l.v.WatchConfig()
}

// Load is a shortcut for NewLoader followed by Loader.Load on the OS
// filesystem.
func Load(flags *pflag.FlagSet) (*Config, error) {
	l, err := NewLoader(afero.NewOsFs(), flags)
	if err != nil {
		return nil, err
	}
	return l.Load()
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs error
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = multierr.Append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}
	switch c.Catalog.Source {
	case CatalogDemo:
	case CatalogFile:
		if c.Catalog.Path == "" {
			errs = multierr.Append(errs, fmt.Errorf("catalog.path is required for the file source"))
		}
	case CatalogPostgres:
		if c.Database.URL == "" {
			errs = multierr.Append(errs, fmt.Errorf("database.url is required for the postgres source"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("catalog.source: unknown source %q", c.Catalog.Source))
	}
	if c.Database.Migrate && c.Database.URL == "" {
		errs = multierr.Append(errs, fmt.Errorf("database.migrate needs database.url"))
	}
	if c.Engine.StartingHealth <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("engine.starting_health must be positive"))
	}
	if c.Engine.StartingHand < 0 {
		errs = multierr.Append(errs, fmt.Errorf("engine.starting_hand must not be negative"))
	}
	if c.Engine.ScriptBudget <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("engine.script_budget must be positive"))
	}
	if c.Presentation.StepDuration < 0 {
		errs = multierr.Append(errs, fmt.Errorf("presentation.step_duration must not be negative"))
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		errs = multierr.Append(errs, fmt.Errorf("tracing.endpoint is required when tracing is enabled"))
	}
	return errs
}
