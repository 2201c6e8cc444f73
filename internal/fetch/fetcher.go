// Package fetch abstracts how rendered markup is obtained: through the
// hardened browser session, a plain static HTTP fetch, or an auto mode that
// upgrades from static to browser when the page demands it.
package fetch

import (
	"context"
	"fmt"
	"time"
)

// Fetcher produces the rendered HTML for a URL.
type Fetcher interface {
	// Fetch returns the page markup, rendered as fully as the strategy
	// allows.
	Fetch(ctx context.Context, url string) (string, error)

	// Close releases held resources (browser session, if any).
	Close() error

	// Type returns "browser", "static" or "auto".
	Type() string
}

// Mode selects a fetch strategy.
type Mode string

const (
	ModeBrowser Mode = "browser"
	ModeStatic  Mode = "static"
	ModeAuto    Mode = "auto"
)

// StaticConfig configures the static fetcher.
type StaticConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// New creates a fetcher for the mode. browser is the fully wired
// browser-session fetcher; static and auto are derived from cfg.
func New(mode Mode, browser *BrowserFetcher, cfg StaticConfig) (Fetcher, error) {
	switch mode {
	case ModeBrowser:
		return browser, nil
	case ModeStatic:
		return NewStaticFetcher(cfg), nil
	case ModeAuto:
		return NewAutoFetcher(NewStaticFetcher(cfg), browser), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s", mode)
	}
}
