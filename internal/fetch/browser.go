package fetch

import (
	"context"

	"github.com/threadsnap/threadsnap/internal/navigator"
	"github.com/threadsnap/threadsnap/internal/session"
)

// BrowserFetcher renders pages through the shared stealth browser session
// and the challenge-aware navigator. This is the default strategy and the
// only one that survives interstitial challenges.
type BrowserFetcher struct {
	manager *session.Manager
	nav     *navigator.Navigator
}

// NewBrowserFetcher wires the session manager and navigator together. The
// browser itself is not started until the first Fetch.
func NewBrowserFetcher(manager *session.Manager, nav *navigator.Navigator) *BrowserFetcher {
	return &BrowserFetcher{manager: manager, nav: nav}
}

// Fetch acquires the shared session and drives a fresh page to capture.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	sess, err := f.manager.Acquire(ctx)
	if err != nil {
		return "", err
	}
	return f.nav.Render(ctx, sessionOpener{sess}, url)
}

// Close tears down the browser session.
func (f *BrowserFetcher) Close() error {
	return f.manager.Close()
}

// Type returns the fetcher type.
func (f *BrowserFetcher) Type() string {
	return string(ModeBrowser)
}

// sessionOpener adapts *session.Session to the navigator's PageOpener.
type sessionOpener struct {
	sess *session.Session
}

func (o sessionOpener) OpenPage(ctx context.Context) (navigator.PageDriver, error) {
	return o.sess.NewPage(ctx)
}
