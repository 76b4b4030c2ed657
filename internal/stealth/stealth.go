// Package stealth reduces the chance that the portal's bot defenses block
// the browser session, and detects when they do.
package stealth

import (
	"context"

	"github.com/stylepost/stylepost/internal/log"
	"github.com/stylepost/stylepost/internal/model"
)

const (
	// defaultUserAgent is a realistic Firefox identity string, the same
	// browser family the session actually runs.
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/115.0"

	defaultViewportWidth  = 1920
	defaultViewportHeight = 1080

	// webdriverInitScript suppresses the standard automation flag exposed
	// to page scripts. Applied once per session before any navigation.
	webdriverInitScript = "Object.defineProperty(navigator, 'webdriver', {get: () => undefined})"
)

// Inspector is the minimal read-only page view the guard needs to run its
// detection probe. Browser drivers implement it.
type Inspector interface {
	Count(ctx context.Context, loc model.Locator) (int, error)
	HasText(ctx context.Context, text string) (bool, error)
}

// Cleaner removes all elements matching a locator from the live page.
// Browser drivers implement it.
type Cleaner interface {
	RemoveAll(ctx context.Context, loc model.Locator) (int, error)
}

// GuardConfig is the configuration for the anti-detection guard.
type GuardConfig struct {
	// IndicatorTexts and IndicatorLocators are the challenge indicators the
	// probe scans for (e.g. CAPTCHA prompts and widgets).
	IndicatorTexts    []string
	IndicatorLocators []model.Locator
	// WidgetLocators are overlay widgets removed after every settle so they
	// can't intercept clicks.
	WidgetLocators []model.Locator
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Logger         log.Logger
}

func (c *GuardConfig) defaults() error {
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = defaultViewportWidth
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = defaultViewportHeight
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "stealth.Guard"})
	return nil
}

// Guard configures the browser session to minimize automation fingerprints
// and probes pages for anti-bot challenges after every navigation.
type Guard struct {
	indicatorTexts    []string
	indicatorLocators []model.Locator
	widgetLocators    []model.Locator
	userAgent         string
	viewportWidth     int
	viewportHeight    int
	logger            log.Logger
}

// NewGuard creates a new anti-detection guard.
func NewGuard(cfg GuardConfig) (*Guard, error) {
	if err := cfg.defaults(); err != nil {
		return nil, err
	}

	return &Guard{
		indicatorTexts:    cfg.IndicatorTexts,
		indicatorLocators: cfg.IndicatorLocators,
		widgetLocators:    cfg.WidgetLocators,
		userAgent:         cfg.UserAgent,
		viewportWidth:     cfg.ViewportWidth,
		viewportHeight:    cfg.ViewportHeight,
		logger:            cfg.Logger,
	}, nil
}

// UserAgent returns the browser identity string to fix on the session.
func (g *Guard) UserAgent() string { return g.userAgent }

// Viewport returns the session viewport size.
func (g *Guard) Viewport() (width, height int) { return g.viewportWidth, g.viewportHeight }

// InitScripts returns the scripts to install on the session before any
// navigation happens.
func (g *Guard) InitScripts() []string {
	return []string{webdriverInitScript}
}

// Probe scans the current page for challenge indicators. The result is
// advisory input to the caller's failure classification, the probe itself
// never aborts anything.
func (g *Guard) Probe(ctx context.Context, insp Inspector) (bool, error) {
	for _, loc := range g.indicatorLocators {
		n, err := insp.Count(ctx, loc)
		if err != nil {
			return false, err
		}
		if n > 0 {
			g.logger.Errorf("Challenge indicator present: %s", loc)
			return true, nil
		}
	}

	for _, text := range g.indicatorTexts {
		found, err := insp.HasText(ctx, text)
		if err != nil {
			return false, err
		}
		if found {
			g.logger.Errorf("Challenge indicator text present: %q", text)
			return true, nil
		}
	}

	return false, nil
}

// CleanWidgets removes interfering overlay widgets from the page. Best
// effort: failures are logged and never propagated.
func (g *Guard) CleanWidgets(ctx context.Context, cleaner Cleaner) {
	removed := 0
	for _, loc := range g.widgetLocators {
		n, err := cleaner.RemoveAll(ctx, loc)
		if err != nil {
			g.logger.Warningf("Could not remove widget %s: %v", loc, err)
			continue
		}
		removed += n
	}

	if removed > 0 {
		g.logger.Debugf("Removed %d interfering widget(s)", removed)
	}
}
