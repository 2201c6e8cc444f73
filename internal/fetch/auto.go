package fetch

import (
	"context"

	"github.com/threadsnap/threadsnap/internal/logger"
)

// AutoFetcher tries a cheap static fetch first and upgrades to the browser
// session when the result shows a challenge page or client-side rendering.
type AutoFetcher struct {
	static  *StaticFetcher
	browser *BrowserFetcher
}

// NewAutoFetcher creates an auto fetcher.
func NewAutoFetcher(static *StaticFetcher, browser *BrowserFetcher) *AutoFetcher {
	return &AutoFetcher{static: static, browser: browser}
}

// Fetch attempts static first; any failure or a page that needs rendering
// falls through to the browser.
func (f *AutoFetcher) Fetch(ctx context.Context, url string) (string, error) {
	html, err := f.static.Fetch(ctx, url)
	if err != nil {
		logger.Debug("static fetch failed, upgrading to browser", "url", url, "error", err)
		return f.browser.Fetch(ctx, url)
	}
	if NeedsBrowser(html) {
		logger.Debug("static fetch needs rendering, upgrading to browser", "url", url)
		return f.browser.Fetch(ctx, url)
	}
	return html, nil
}

// Close releases the browser session.
func (f *AutoFetcher) Close() error {
	return f.browser.Close()
}

// Type returns the fetcher type.
func (f *AutoFetcher) Type() string {
	return string(ModeAuto)
}
