package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"reddit-status-alerts/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Reddit   RedditConfig   `mapstructure:"reddit"`
	Search   SearchConfig   `mapstructure:"search"`
	Poller   PollerConfig   `mapstructure:"poller"`
	Alerting AlertingConfig `mapstructure:"alerting"`
	Server   ServerConfig   `mapstructure:"server"`
	Export   ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// RedditConfig covers credentials and endpoint URLs for the monitored target.
type RedditConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	UserAgent    string `mapstructure:"user_agent"`
	TokenURL     string `mapstructure:"token_url"`
	OAuthSearch  string `mapstructure:"oauth_search_url"`
	PublicSearch string `mapstructure:"public_search_url"`
	StatusURL    string `mapstructure:"status_url"`
}

// SearchConfig tunes report queries against both search sources.
type SearchConfig struct {
	Phrases        []string      `mapstructure:"phrases"`
	PageLimit      int           `mapstructure:"page_limit"`
	MaxPages       int           `mapstructure:"max_pages"`
	PublicLimit    int           `mapstructure:"public_limit"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// PollerConfig governs status polling cadence and history retention.
type PollerConfig struct {
	Interval          time.Duration `mapstructure:"interval"`
	AlignToBucket     bool          `mapstructure:"align_to_bucket"`
	StartupDelay      time.Duration `mapstructure:"startup_delay"`
	HistorySize       int           `mapstructure:"history_size"`
	OperationalMarker string        `mapstructure:"operational_marker"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

// AlertingConfig defines alert routing on status transitions.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes Telegram delivery parameters.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ServerConfig controls the liveness/metrics HTTP listener.
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	ChartWidth  int `mapstructure:"chart_width"`
	ChartHeight int `mapstructure:"chart_height"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REDDITWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Secret keys carry no defaults, and viper only resolves env vars for
	// keys it already knows about; bind them explicitly so they can be set
	// through the environment alone.
	for _, key := range []string{
		"reddit.client_id",
		"reddit.client_secret",
		"alerting.telegram.bot_token",
		"alerting.telegram.chat_id",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "redditwatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("reddit.user_agent", "redditwatch/1.0 (+https://example.com)")
	v.SetDefault("reddit.token_url", "https://www.reddit.com/api/v1/access_token")
	v.SetDefault("reddit.oauth_search_url", "https://oauth.reddit.com/search")
	v.SetDefault("reddit.public_search_url", "https://www.reddit.com/search.json")
	v.SetDefault("reddit.status_url", "https://www.redditstatus.com/api/v2/summary.json")

	v.SetDefault("search.phrases", []string{
		"reddit down", "is reddit down", "reddit not working", "reddit outage",
		"реддит не работает", "упал реддит", "reddit лежит",
	})
	v.SetDefault("search.page_limit", 100)
	v.SetDefault("search.max_pages", 6)
	v.SetDefault("search.public_limit", 250)
	v.SetDefault("search.request_timeout", "20s")

	v.SetDefault("poller.interval", "5m")
	v.SetDefault("poller.align_to_bucket", true)
	v.SetDefault("poller.startup_delay", "0s")
	v.SetDefault("poller.history_size", 288)
	v.SetDefault("poller.operational_marker", "Operational")
	v.SetDefault("poller.request_timeout", "15s")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("server.enabled", true)
	v.SetDefault("server.addr", ":10000")

	v.SetDefault("export.chart_width", 1280)
	v.SetDefault("export.chart_height", 720)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if len(c.Search.Phrases) == 0 {
		return fmt.Errorf("search.phrases must not be empty")
	}
	if c.Search.PageLimit <= 0 || c.Search.MaxPages <= 0 {
		return fmt.Errorf("search.page_limit and search.max_pages must be greater than zero")
	}
	if c.Search.PublicLimit <= 0 {
		return fmt.Errorf("search.public_limit must be greater than zero")
	}
	if c.Poller.Interval <= 0 {
		return fmt.Errorf("poller.interval must be greater than zero")
	}
	if c.Poller.HistorySize <= 0 {
		return fmt.Errorf("poller.history_size must be greater than zero")
	}
	if c.Poller.OperationalMarker == "" {
		return fmt.Errorf("poller.operational_marker must not be empty")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required when telegram is enabled")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required when telegram is enabled")
		}
	}
	if c.Export.ChartWidth <= 0 || c.Export.ChartHeight <= 0 {
		return fmt.Errorf("export.chart_width and export.chart_height must be greater than zero")
	}
	return nil
}

// HasRedditCredentials reports whether the authenticated source can be used.
func (c *Config) HasRedditCredentials() bool {
	return c.Reddit.ClientID != "" && c.Reddit.ClientSecret != ""
}
