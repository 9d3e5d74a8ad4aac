// Package config loads service settings: defaults, then an optional TOML file,
// then environment variables. Secrets are only ever read from here.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Version is reported by the health route and the version command.
const Version = "3.0.0"

type Config struct {
	Port string `toml:"port"`

	InstagramUsername string `toml:"instagram_username"`
	InstagramPassword string `toml:"instagram_password"`
	InstagramAPIBase  string `toml:"instagram_api_base"`

	AggregatorURL       string `toml:"aggregator_url"`
	AggregatorAPIKey    string `toml:"aggregator_api_key"`
	AggregatorKeyHeader string `toml:"aggregator_key_header"`
	TikwmURL            string `toml:"tikwm_url"`

	YtdlpPath        string   `toml:"ytdlp_path"`
	YtdlpCookiesFile string   `toml:"ytdlp_cookies_file"`
	YtdlpTimeout     Duration `toml:"ytdlp_timeout"`
	YtdlpMaxOutput   int64    `toml:"ytdlp_max_output"`

	HTTPTimeout      Duration `toml:"http_timeout"`
	BlockYouTube     bool     `toml:"block_youtube"`
	DefaultThumbnail string   `toml:"default_thumbnail"`

	DatabaseURL string `toml:"database_url"`
	APIToken    string `toml:"api_token"`

	RateLimitRPS   float64 `toml:"rate_limit_rps"`
	RateLimitBurst int     `toml:"rate_limit_burst"`
}

// Duration lets TOML files use strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Port:                "8080",
		InstagramAPIBase:    "https://i.instagram.com/api/v1",
		AggregatorKeyHeader: "X-API-Key",
		TikwmURL:            "https://www.tikwm.com",
		YtdlpPath:           "yt-dlp",
		YtdlpTimeout:        Duration{30 * time.Second},
		YtdlpMaxOutput:      8 << 20,
		HTTPTimeout:         Duration{20 * time.Second},
		BlockYouTube:        true,
		DefaultThumbnail:    "https://via.placeholder.com/640x360.png?text=Video",
		RateLimitBurst:      10,
	}
}

// Load builds the configuration. A missing .env or config file is not an error.
// The result is not validated: callers apply their overrides first and then
// call Validate.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.InstagramUsername, "IG_USERNAME")
	setString(&c.InstagramPassword, "IG_PASSWORD")
	setString(&c.InstagramAPIBase, "IG_API_BASE")
	setString(&c.AggregatorURL, "AGGREGATOR_URL")
	setString(&c.AggregatorAPIKey, "AGGREGATOR_API_KEY")
	setString(&c.AggregatorKeyHeader, "AGGREGATOR_KEY_HEADER")
	setString(&c.TikwmURL, "TIKWM_URL")
	setString(&c.YtdlpPath, "YTDLP_PATH")
	setString(&c.YtdlpCookiesFile, "YTDLP_COOKIES_FILE")
	setString(&c.DefaultThumbnail, "DEFAULT_THUMBNAIL")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.APIToken, "API_TOKEN")

	if v := os.Getenv("YTDLP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("YTDLP_TIMEOUT: %w", err)
		}
		c.YtdlpTimeout = Duration{d}
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HTTP_TIMEOUT: %w", err)
		}
		c.HTTPTimeout = Duration{d}
	}
	if v := os.Getenv("YTDLP_MAX_OUTPUT"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("YTDLP_MAX_OUTPUT: %w", err)
		}
		c.YtdlpMaxOutput = n
	}
	if v := os.Getenv("BLOCK_YOUTUBE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BLOCK_YOUTUBE: %w", err)
		}
		c.BlockYouTube = b
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimitBurst = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.YtdlpPath == "" {
		return fmt.Errorf("ytdlp path cannot be empty")
	}
	if c.YtdlpTimeout.Duration <= 0 {
		return fmt.Errorf("ytdlp timeout must be positive")
	}
	if c.HTTPTimeout.Duration <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.YtdlpMaxOutput <= 0 {
		return fmt.Errorf("ytdlp max output must be positive")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1")
	}
	if (c.InstagramUsername == "") != (c.InstagramPassword == "") {
		return fmt.Errorf("instagram username and password must be set together")
	}
	return nil
}

// InstagramConfigured reports whether both Instagram credentials are present.
func (c *Config) InstagramConfigured() bool {
	return c.InstagramUsername != "" && c.InstagramPassword != ""
}
