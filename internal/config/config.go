// Package config loads and validates the threadsnap configuration.
//
// Values come from (in ascending precedence) built-in defaults, the config
// file (.threadsnap.yaml), THREADSNAP_* environment variables, and command
// line flags bound through viper.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Session  SessionConfig  `mapstructure:"session"`
	Delays   DelayConfig    `mapstructure:"delays"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	Classify ClassifyConfig `mapstructure:"classify"`
}

// ServerConfig configures the HTTP shell.
type ServerConfig struct {
	Port           int     `mapstructure:"port" validate:"required,min=1,max=65535"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" validate:"gt=0"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" validate:"min=1"`
}

// ScrapeConfig bounds what the pipeline will accept.
type ScrapeConfig struct {
	// AllowedOrigins are literal URL prefixes; a request URL must start
	// with one of them or the handler rejects it with 403.
	AllowedOrigins []string      `mapstructure:"allowed_origins" validate:"required,min=1,dive,startswith=http"`
	NavTimeout     time.Duration `mapstructure:"nav_timeout" validate:"gt=0"`
}

// FetchConfig selects the fetch strategy.
type FetchConfig struct {
	// Mode is "browser", "static", or "auto".
	Mode string `mapstructure:"mode" validate:"oneof=browser static auto"`
}

// SessionConfig configures the shared browser session.
type SessionConfig struct {
	// ProfileDir is the persistent browser profile path. Empty means a
	// fixed directory under the OS temp dir, reused across restarts.
	ProfileDir string `mapstructure:"profile_dir"`
	UserAgent  string `mapstructure:"user_agent" validate:"required"`
	Headless   bool   `mapstructure:"headless"`
	Locale     string `mapstructure:"locale"`
	Timezone   string `mapstructure:"timezone"`
}

// DelayConfig names every wait the navigation state machine performs, so
// tests can substitute zeros.
type DelayConfig struct {
	ChallengeMin time.Duration `mapstructure:"challenge_min" validate:"min=0"`
	ChallengeMax time.Duration `mapstructure:"challenge_max" validate:"gtefield=ChallengeMin"`
	SettleMin    time.Duration `mapstructure:"settle_min" validate:"min=0"`
	SettleMax    time.Duration `mapstructure:"settle_max" validate:"gtefield=SettleMin"`
	ScrollSettle time.Duration `mapstructure:"scroll_settle" validate:"min=0"`
}

// ExtractConfig holds the markup selectors the extractor targets. These are
// site heuristics that change over time, so they live in config rather than
// code.
type ExtractConfig struct {
	TitleSelector   string `mapstructure:"title_selector" validate:"required"`
	ContentSelector string `mapstructure:"content_selector" validate:"required"`
}

// ClassifyConfig holds the link classification rule lists.
type ClassifyConfig struct {
	VideoHosts []string `mapstructure:"video_hosts" validate:"required,min=1"`
	ZipHosts   []string `mapstructure:"zip_hosts" validate:"required,min=1"`
	ImageExts  []string `mapstructure:"image_exts" validate:"required,min=1"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           5469,
			RateLimitRPS:   1,
			RateLimitBurst: 3,
		},
		Scrape: ScrapeConfig{
			AllowedOrigins: []string{
				"https://dropmms.co",
				"https://videmms24.com",
			},
			NavTimeout: 60 * time.Second,
		},
		Fetch: FetchConfig{
			Mode: "browser",
		},
		Session: SessionConfig{
			UserAgent: defaultUserAgent,
			Headless:  true,
			Locale:    "en-US",
			Timezone:  "America/New_York",
		},
		Delays: DelayConfig{
			ChallengeMin: 15 * time.Second,
			ChallengeMax: 25 * time.Second,
			SettleMin:    3 * time.Second,
			SettleMax:    6 * time.Second,
			ScrollSettle: 2 * time.Second,
		},
		Extract: ExtractConfig{
			TitleSelector:   "h1.p-title-value",
			ContentSelector: ".bbWrapper",
		},
		Classify: ClassifyConfig{
			VideoHosts: []string{
				"videmms", "streamtape", "mixdrop", "dood", "vidoza", "streamwish",
			},
			ZipHosts: []string{
				"gofile", "pixeldrain", "mega.nz", "workupload", "dropgalaxy",
			},
			ImageExts: []string{".jpg", "jpeg", ".png", ".gif", ".webp", ".bmp"},
		},
	}
}

// Load merges viper state over the defaults and validates the result.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
