// Package config loads arcvalue settings from config.yaml, a local .env file
// and the environment, and initializes the global logger.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is prepended to every environment override, e.g.
// ARCVALUE_SOURCE_PROXY_BASE.
const EnvPrefix = "ARCVALUE"

// Config holds the full application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Capture CaptureConfig `yaml:"capture" mapstructure:"capture"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the proxy and state HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
	// UpstreamRPS limits page fetches made on behalf of /lookup callers.
	UpstreamRPS   float64 `yaml:"upstream_rps" mapstructure:"upstream_rps"`
	UpstreamBurst int     `yaml:"upstream_burst" mapstructure:"upstream_burst"`
}

// SourceConfig configures the resolver chain.
type SourceConfig struct {
	TargetBase  string        `yaml:"target_base" mapstructure:"target_base"`
	ProxyBase   string        `yaml:"proxy_base" mapstructure:"proxy_base"`
	FixturesDir string        `yaml:"fixtures_dir" mapstructure:"fixtures_dir"`
	HTTPTimeout time.Duration `yaml:"http_timeout" mapstructure:"http_timeout"`
	UserAgent   string        `yaml:"user_agent" mapstructure:"user_agent"`
	Window      int           `yaml:"window" mapstructure:"window"`
}

// CaptureConfig configures screen capture and recognition.
type CaptureConfig struct {
	Width         int           `yaml:"width" mapstructure:"width"`
	Height        int           `yaml:"height" mapstructure:"height"`
	ScreenshotCmd string        `yaml:"screenshot_cmd" mapstructure:"screenshot_cmd"`
	StreamCmd     string        `yaml:"stream_cmd" mapstructure:"stream_cmd"`
	Lang          string        `yaml:"lang" mapstructure:"lang"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	DebugDir      string        `yaml:"debug_dir" mapstructure:"debug_dir"`
}

// Enabled reports whether any frame provider is configured.
func (c CaptureConfig) Enabled() bool {
	return c.ScreenshotCmd != "" || c.StreamCmd != ""
}

// StoreConfig selects where lookup state is persisted.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Dir         string `yaml:"dir" mapstructure:"dir"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	AutoMigrate bool   `yaml:"auto_migrate" mapstructure:"auto_migrate"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (optional), .env (optional) and
// environment variables. Variables already set in the environment win over
// .env entries.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// bare names kept for existing deployments
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("store.database_url", EnvPrefix+"_STORE_DATABASE_URL", "DB_DSN")
	_ = v.BindEnv("store.auto_migrate", EnvPrefix+"_STORE_AUTO_MIGRATE", "DB_AUTO_MIGRATE")

	v.SetDefault("server.port", 4000)
	v.SetDefault("server.upstream_rps", 2.0)
	v.SetDefault("server.upstream_burst", 4)
	v.SetDefault("source.target_base", "https://arctracker.io")
	v.SetDefault("source.proxy_base", "http://localhost:4000")
	v.SetDefault("source.fixtures_dir", "fixtures")
	v.SetDefault("source.http_timeout", "10s")
	v.SetDefault("source.user_agent", "arcvalue/1.0 (+item value lookup)")
	v.SetDefault("source.window", 30)
	v.SetDefault("capture.width", 420)
	v.SetDefault("capture.height", 140)
	v.SetDefault("capture.lang", "eng")
	v.SetDefault("capture.timeout", "30s")
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.dir", "state")
	v.SetDefault("store.auto_migrate", "true")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	v.Set("store.auto_migrate", parseFlag(v.GetString("store.auto_migrate"), true))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "file":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.driver postgres requires store.database_url (or DB_DSN)")
		}
	default:
		return eris.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.Capture.Width <= 0 || c.Capture.Height <= 0 {
		return eris.Errorf("config: capture region must be positive, got %dx%d", c.Capture.Width, c.Capture.Height)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: invalid server.port %d", c.Server.Port)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return eris.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	return nil
}

// parseFlag accepts the usual spellings of on/off and falls back to def.
func parseFlag(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "t", "y":
		return true
	case "0", "false", "no", "off", "f", "n":
		return false
	}
	return def
}

// loadDotEnv copies key=value pairs from path into the environment without
// overwriting variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	ev := viper.New()
	ev.SetConfigFile(path)
	ev.SetConfigType("env")
	if err := ev.ReadInConfig(); err != nil {
		return eris.Wrapf(err, "config: read %s", path)
	}
	for _, k := range ev.AllKeys() {
		name := strings.ToUpper(k)
		if _, exists := os.LookupEnv(name); !exists {
			_ = os.Setenv(name, ev.GetString(k))
		}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
