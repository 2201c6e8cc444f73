package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
)

// StaticFetcher fetches raw HTML with Colly, no JavaScript execution. It is
// only useful against mirror hosts that render server-side and sit behind
// no challenge; the auto fetcher uses it as a cheap first attempt.
type StaticFetcher struct {
	cfg StaticConfig
}

// NewStaticFetcher creates a static fetcher.
func NewStaticFetcher(cfg StaticConfig) *StaticFetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &StaticFetcher{cfg: cfg}
}

// Fetch retrieves the page body over plain HTTP. The request timeout, not
// ctx, bounds the fetch; Colly does not thread a stdlib context through.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
	)
	c.SetRequestTimeout(f.cfg.Timeout)

	var (
		html     string
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		html = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("static fetch failed: HTTP %d: %w", r.StatusCode, err)
			return
		}
		fetchErr = fmt.Errorf("static fetch failed: %w", err)
	})

	if err := c.Visit(targetURL); err != nil {
		return "", fmt.Errorf("static fetch failed: %w", err)
	}
	if fetchErr != nil {
		return "", fetchErr
	}
	return html, nil
}

// Close releases resources; the static fetcher holds none.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return string(ModeStatic)
}
