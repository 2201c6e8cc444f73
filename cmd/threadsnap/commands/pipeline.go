package commands

import (
	"context"

	"github.com/threadsnap/threadsnap/internal/config"
	"github.com/threadsnap/threadsnap/internal/extract"
	"github.com/threadsnap/threadsnap/internal/fetch"
	"github.com/threadsnap/threadsnap/internal/logger"
	"github.com/threadsnap/threadsnap/internal/navigator"
	"github.com/threadsnap/threadsnap/internal/session"
)

// pipeline is the composed scrape-and-classify path shared by the serve and
// scrape commands: fetch rendered markup, then extract and classify.
type pipeline struct {
	fetcher   fetch.Fetcher
	extractor *extract.Extractor
}

// buildPipeline wires session manager, navigator, fetcher and extractor
// from config. The browser is not launched until the first scrape.
func buildPipeline(cfg config.Config) (*pipeline, error) {
	manager := session.NewManager(session.Config{
		ProfileDir: cfg.Session.ProfileDir,
		UserAgent:  cfg.Session.UserAgent,
		Headless:   cfg.Session.Headless,
		Locale:     cfg.Session.Locale,
		Timezone:   cfg.Session.Timezone,
	})

	nav := navigator.New(navigator.Config{
		Timeout: cfg.Scrape.NavTimeout,
		Delays: navigator.Delays{
			ChallengeMin: cfg.Delays.ChallengeMin,
			ChallengeMax: cfg.Delays.ChallengeMax,
			SettleMin:    cfg.Delays.SettleMin,
			SettleMax:    cfg.Delays.SettleMax,
			ScrollSettle: cfg.Delays.ScrollSettle,
		},
		OnPhase: func(p navigator.Phase) {
			logger.Debug("navigation phase", "phase", string(p))
		},
	})

	browser := fetch.NewBrowserFetcher(manager, nav)
	fetcher, err := fetch.New(fetch.Mode(cfg.Fetch.Mode), browser, fetch.StaticConfig{
		UserAgent: cfg.Session.UserAgent,
		Timeout:   cfg.Scrape.NavTimeout,
	})
	if err != nil {
		return nil, err
	}

	extractor := extract.New(
		extract.Config{
			TitleSelector:   cfg.Extract.TitleSelector,
			ContentSelector: cfg.Extract.ContentSelector,
		},
		extract.NewRules(cfg.Classify.VideoHosts, cfg.Classify.ZipHosts, cfg.Classify.ImageExts),
	)

	return &pipeline{fetcher: fetcher, extractor: extractor}, nil
}

// Scrape runs the full pipeline for one URL.
func (p *pipeline) Scrape(ctx context.Context, url string) (extract.Result, error) {
	html, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return extract.Result{}, err
	}
	return p.extractor.Extract(html)
}

// Close releases the browser session, if one was launched.
func (p *pipeline) Close() error {
	return p.fetcher.Close()
}
