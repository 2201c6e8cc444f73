// Package session owns the single long-lived, fingerprint-hardened browser
// session and hands out short-lived pages for individual navigations.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/singleflight"

	"github.com/threadsnap/threadsnap/internal/logger"
)

// ErrLaunch indicates the browser session could not be constructed. It is
// fatal for the requesting scrape only; the session stays uncreated and the
// next acquisition retries.
var ErrLaunch = errors.New("browser session launch failed")

const (
	launchTimeout = 30 * time.Second

	// networkSettleMax bounds the post-navigation wait for in-flight
	// network activity to quiesce. Content on the target site loads
	// asynchronously, so the load event alone is not enough.
	networkSettleMax = 10 * time.Second
)

// Config configures the shared browser session.
type Config struct {
	// ProfileDir is the persistent on-disk profile. Empty selects a fixed
	// directory under the OS temp dir, reused across process restarts and
	// never cleaned up here.
	ProfileDir string
	UserAgent  string
	Headless   bool
	Locale     string
	Timezone   string
}

// Manager lazily constructs the process-wide Session exactly once.
// Concurrent first acquisitions share a single in-flight construction; a
// construction that fails is not cached, so a later call can retry.
type Manager struct {
	cfg Config

	// launch is swappable so tests can count constructions without a
	// real browser.
	launch func(ctx context.Context) (*Session, error)

	group singleflight.Group
	mu    sync.RWMutex
	sess  *Session
}

// NewManager creates a manager. No browser is started until Acquire.
func NewManager(cfg Config) *Manager {
	m := &Manager{cfg: cfg}
	m.launch = m.launchBrowser
	return m
}

// Acquire returns the shared Session, constructing it on first use.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	s := m.sess
	m.mu.RUnlock()
	if s != nil {
		return s, nil
	}

	v, err, _ := m.group.Do("session", func() (any, error) {
		// A racing caller may have finished construction between our
		// fast-path check and joining the flight.
		m.mu.RLock()
		s := m.sess
		m.mu.RUnlock()
		if s != nil {
			return s, nil
		}

		s, err := m.launch(ctx)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.sess = s
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Close tears the session down. The core never calls this during normal
// operation (process exit terminates the browser); it exists for the CLI
// one-shot path and tests.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess != nil {
		m.sess.close()
		m.sess = nil
	}
	return nil
}

// launchBrowser starts the hardened browser. The request context is
// deliberately not threaded into the allocator: the session outlives the
// request that triggered its creation.
func (m *Manager) launchBrowser(_ context.Context) (*Session, error) {
	profile := m.cfg.ProfileDir
	if profile == "" {
		profile = filepath.Join(os.TempDir(), "threadsnap-profile")
	}
	if err := os.MkdirAll(profile, 0o755); err != nil {
		return nil, fmt.Errorf("%w: profile dir: %v", ErrLaunch, err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:], stealthAllocatorOptions(m.cfg.Headless)...)
	opts = append(opts,
		chromedp.UserDataDir(profile),
		chromedp.UserAgent(m.cfg.UserAgent),
	)
	if m.cfg.Locale != "" {
		opts = append(opts, chromedp.Flag("lang", m.cfg.Locale))
	}
	if m.cfg.Timezone != "" {
		opts = append(opts, chromedp.Env("TZ="+m.cfg.Timezone))
	}
	if path := findChromePath(); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run forces the browser process to start now, surfacing
	// missing-binary and unwritable-profile failures here instead of on
	// the first navigation.
	launchCtx, cancel := context.WithTimeout(browserCtx, launchTimeout)
	defer cancel()
	if err := chromedp.Run(launchCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	logger.Info("browser session launched",
		"profile", profile,
		"headless", m.cfg.Headless)

	return &Session{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

// Session is the shared browser context. It is safe for concurrent use:
// each request drives its own Page, only page creation touches shared
// state, and chromedp serializes that internally.
type Session struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewPage opens a fresh tab with the stealth script registered ahead of any
// navigation. The caller owns the page and must Close it on every exit
// path.
func (s *Session) NewPage(ctx context.Context) (*Page, error) {
	pageCtx, cancel := chromedp.NewContext(s.browserCtx)
	p := &Page{ctx: pageCtx, cancel: cancel}
	if err := p.run(ctx, injectStealth()); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to prepare page: %w", err)
	}
	return p, nil
}

func (s *Session) close() {
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

// Page is a short-lived tab handle used for exactly one navigation. It is
// owned by the request that created it and never shared.
type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// run executes chromedp actions on the page, bounded by the caller's
// deadline when one is set.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := p.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(p.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

// Navigate drives the page to targetURL and waits for network activity to
// settle. The networkIdle lifecycle listener is registered before the
// navigation starts so in-flight requests are not missed.
func (p *Page) Navigate(ctx context.Context, targetURL string) error {
	return p.run(ctx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(cctx context.Context) error {
			idle := make(chan struct{}, 1)
			lctx, cancel := context.WithCancel(cctx)
			defer cancel()
			chromedp.ListenTarget(lctx, func(ev any) {
				if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
					select {
					case idle <- struct{}{}:
					default:
					}
				}
			})

			if err := chromedp.Navigate(targetURL).Do(cctx); err != nil {
				return err
			}

			select {
			case <-idle:
				return nil
			case <-time.After(networkSettleMax):
				// Some pages never go idle (long-polling, analytics
				// beacons); settled enough.
				return nil
			case <-cctx.Done():
				return cctx.Err()
			}
		}),
	)
}

// Title returns the current document title.
func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, chromedp.Title(&title))
	return title, err
}

// ScrollToBottom scrolls to the end of the document to trigger
// scroll-activated lazy loading.
func (p *Page) ScrollToBottom(ctx context.Context) error {
	return p.run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}

// HTML captures the fully rendered markup.
func (p *Page) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, chromedp.OuterHTML("html", &html))
	return html, err
}

// Close releases the tab. Safe to call on every exit path.
func (p *Page) Close() {
	p.cancel()
}
