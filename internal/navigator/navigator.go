// Package navigator drives a browser page to a stable, fully-rendered state
// and captures its markup. It detects anti-bot interstitials by title and
// waits them out passively; it does not solve challenges.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/threadsnap/threadsnap/internal/logger"
)

// ErrNavigation indicates the page could not be driven to a captured state.
// Fatal for the request; the page is still released.
var ErrNavigation = errors.New("navigation failed")

// Phase labels a step of the render state machine. The machine is linear:
// no phase ever transitions back to an earlier one, and a failed capture is
// terminal for the request.
type Phase string

const (
	PhaseNavigating     Phase = "navigating"
	PhaseChallengeCheck Phase = "challenge_check"
	PhaseChallengeWait  Phase = "challenge_wait"
	PhaseSettling       Phase = "settling"
	PhaseScrolling      Phase = "scrolling"
	PhaseCaptured       Phase = "captured"
)

// challengeTitles are the interstitial title signatures. Matching is a
// case-insensitive substring check.
var challengeTitles = []string{
	"just a moment",
	"attention required",
	"checking your browser",
	"ddos protection",
}

// PageDriver is the minimal browser surface Render needs, so the state
// machine can be exercised against a fake without a real browser.
type PageDriver interface {
	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	ScrollToBottom(ctx context.Context) error
	HTML(ctx context.Context) (string, error)
	Close()
}

// PageOpener hands out fresh pages; the shared browser session implements
// it.
type PageOpener interface {
	OpenPage(ctx context.Context) (PageDriver, error)
}

// Delays names every wait the machine performs. Tests substitute zeros.
type Delays struct {
	// ChallengeMin..ChallengeMax bounds the randomized pause that lets an
	// interstitial resolve passively.
	ChallengeMin time.Duration
	ChallengeMax time.Duration
	// SettleMin..SettleMax bounds the randomized pause for lazy content
	// after navigation.
	SettleMin time.Duration
	SettleMax time.Duration
	// ScrollSettle is the pause after scrolling to the bottom, for
	// scroll-activated lazy loading.
	ScrollSettle time.Duration
}

// Config configures a Navigator.
type Config struct {
	// Timeout is the ceiling on the navigate-and-settle step.
	Timeout time.Duration
	Delays  Delays
	// OnPhase, when set, observes every state transition.
	OnPhase func(Phase)
}

// Navigator renders pages through the challenge-aware state machine.
type Navigator struct {
	cfg Config
}

// New creates a navigator.
func New(cfg Config) *Navigator {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Navigator{cfg: cfg}
}

// Render opens a page, walks it through NAVIGATING, CHALLENGE_CHECK,
// optional CHALLENGE_WAIT, SETTLING, SCROLLING and CAPTURED, and returns
// the fully rendered markup. The page is closed on every exit path.
func (n *Navigator) Render(ctx context.Context, opener PageOpener, targetURL string) (string, error) {
	page, err := opener.OpenPage(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: open page: %v", ErrNavigation, err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	n.phase(PhaseNavigating)
	if err := page.Navigate(navCtx, targetURL); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNavigation, err)
	}

	n.phase(PhaseChallengeCheck)
	title, err := page.Title(navCtx)
	if err != nil {
		return "", fmt.Errorf("%w: read title: %v", ErrNavigation, err)
	}
	if IsChallengeTitle(title) {
		logger.Warn("interstitial challenge detected, waiting it out", "title", title, "url", targetURL)
		n.phase(PhaseChallengeWait)
		if err := n.pause(ctx, randBetween(n.cfg.Delays.ChallengeMin, n.cfg.Delays.ChallengeMax)); err != nil {
			return "", fmt.Errorf("%w: %v", ErrNavigation, err)
		}
	}

	n.phase(PhaseSettling)
	if err := n.pause(ctx, randBetween(n.cfg.Delays.SettleMin, n.cfg.Delays.SettleMax)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNavigation, err)
	}

	n.phase(PhaseScrolling)
	if err := page.ScrollToBottom(navCtx); err != nil {
		return "", fmt.Errorf("%w: scroll: %v", ErrNavigation, err)
	}
	if err := n.pause(ctx, n.cfg.Delays.ScrollSettle); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNavigation, err)
	}

	html, err := page.HTML(navCtx)
	if err != nil {
		return "", fmt.Errorf("%w: capture: %v", ErrNavigation, err)
	}
	n.phase(PhaseCaptured)

	logger.Debug("page captured", "url", targetURL, "html_size", len(html))
	return html, nil
}

// IsChallengeTitle reports whether a page title matches a known
// interstitial signature.
func IsChallengeTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, sig := range challengeTitles {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

func (n *Navigator) phase(p Phase) {
	if n.cfg.OnPhase != nil {
		n.cfg.OnPhase(p)
	}
}

// pause sleeps for d, aborting early if ctx is cancelled.
func (n *Navigator) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// randBetween picks a duration in [min, max].
func randBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
