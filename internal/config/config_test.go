package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestDefault_Values(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 5469 {
		t.Errorf("port = %d, want 5469", cfg.Server.Port)
	}
	if len(cfg.Scrape.AllowedOrigins) == 0 {
		t.Error("expected default allowed origins")
	}
	for _, origin := range cfg.Scrape.AllowedOrigins {
		if !strings.HasPrefix(origin, "https://") {
			t.Errorf("origin %q is not https", origin)
		}
	}
	if cfg.Delays.ChallengeMin > cfg.Delays.ChallengeMax {
		t.Error("challenge delay bounds inverted")
	}
	if cfg.Delays.SettleMin > cfg.Delays.SettleMax {
		t.Error("settle delay bounds inverted")
	}
	if cfg.Fetch.Mode != "browser" {
		t.Errorf("fetch mode = %q, want browser", cfg.Fetch.Mode)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 5469 {
		t.Errorf("port = %d, want default 5469", cfg.Server.Port)
	}
	if cfg.Extract.TitleSelector == "" || cfg.Extract.ContentSelector == "" {
		t.Error("expected default selectors")
	}
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("server.port", 8080)
	v.Set("fetch.mode", "auto")
	v.Set("scrape.nav_timeout", "90s")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Fetch.Mode != "auto" {
		t.Errorf("mode = %q, want auto", cfg.Fetch.Mode)
	}
	if cfg.Scrape.NavTimeout != 90*time.Second {
		t.Errorf("nav_timeout = %v, want 90s", cfg.Scrape.NavTimeout)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	v := viper.New()
	v.Set("server.port", 99999)

	if _, err := Load(v); err == nil {
		t.Error("expected validation error for out-of-range port")
	}
}

func TestLoad_InvalidFetchMode(t *testing.T) {
	v := viper.New()
	v.Set("fetch.mode", "curl")

	if _, err := Load(v); err == nil {
		t.Error("expected validation error for unknown fetch mode")
	}
}

func TestLoad_InvalidOrigin(t *testing.T) {
	v := viper.New()
	v.Set("scrape.allowed_origins", []string{"ftp://example.com"})

	if _, err := Load(v); err == nil {
		t.Error("expected validation error for non-http origin")
	}
}

func TestValidate_InvertedDelays(t *testing.T) {
	cfg := Default()
	cfg.Delays.ChallengeMin = 30 * time.Second
	cfg.Delays.ChallengeMax = 10 * time.Second

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for inverted challenge delays")
	}
}
