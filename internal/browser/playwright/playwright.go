// Package playwright implements the browser driver on top of the Playwright
// browser-control capability.
package playwright

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	pw "github.com/playwright-community/playwright-go"

	"github.com/stylepost/stylepost/internal/log"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/stealth"
)

const (
	defaultSettleTimeout = 180 * time.Second
	defaultActionTimeout = 10 * time.Second
)

// DriverConfig is the configuration for the Playwright driver.
type DriverConfig struct {
	Guard         *stealth.Guard
	ScreenshotDir string
	Headless      bool
	// SlowMo is the delay injected between browser operations.
	SlowMo time.Duration
	// SettleTimeout bounds the wait for network quiescence after an action.
	SettleTimeout time.Duration
	// ActionTimeout bounds the wait for an element in value-setting primitives.
	ActionTimeout time.Duration
	Logger        log.Logger
}

func (c *DriverConfig) defaults() error {
	if c.Guard == nil {
		return fmt.Errorf("guard is required")
	}
	if c.ScreenshotDir == "" {
		return fmt.Errorf("screenshot dir is required")
	}
	if c.SettleTimeout <= 0 {
		c.SettleTimeout = defaultSettleTimeout
	}
	if c.ActionTimeout <= 0 {
		c.ActionTimeout = defaultActionTimeout
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "browser.Playwright"})
	return nil
}

// Driver is a Playwright implementation of browser.Driver. It owns exactly
// one Firefox page with strictly ordered actions.
type Driver struct {
	cfg     DriverConfig
	guard   *stealth.Guard
	logger  log.Logger
	pwRun   *pw.Playwright
	browser pw.Browser
	page    pw.Page
}

// NewDriver creates a new Playwright driver. The session is not started
// until Open is called.
func NewDriver(cfg DriverConfig) (*Driver, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Driver{
		cfg:    cfg,
		guard:  cfg.Guard,
		logger: cfg.Logger,
	}, nil
}

// Open starts Playwright, launches Firefox and prepares a page with the
// guard's session fingerprint applied before any navigation.
func (d *Driver) Open(ctx context.Context) error {
	if d.page != nil {
		return fmt.Errorf("session already open")
	}

	if err := os.MkdirAll(d.cfg.ScreenshotDir, 0o755); err != nil {
		return fmt.Errorf("could not create screenshot dir: %w", err)
	}

	run, err := pw.Run()
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}
	d.pwRun = run

	browser, err := run.Firefox.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(d.cfg.Headless),
		SlowMo:   pw.Float(float64(d.cfg.SlowMo.Milliseconds())),
	})
	if err != nil {
		d.stopPlaywright()
		return fmt.Errorf("could not launch browser: %w", err)
	}
	d.browser = browser

	width, height := d.guard.Viewport()
	browserCtx, err := browser.NewContext(pw.BrowserNewContextOptions{
		UserAgent: pw.String(d.guard.UserAgent()),
		Viewport:  &pw.Size{Width: width, Height: height},
	})
	if err != nil {
		_ = d.Close(ctx)
		return fmt.Errorf("could not create browser context: %w", err)
	}

	for _, script := range d.guard.InitScripts() {
		if err := browserCtx.AddInitScript(pw.Script{Content: pw.String(script)}); err != nil {
			_ = d.Close(ctx)
			return fmt.Errorf("could not install init script: %w", err)
		}
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		_ = d.Close(ctx)
		return fmt.Errorf("could not open page: %w", err)
	}
	page.SetDefaultTimeout(float64(d.cfg.ActionTimeout.Milliseconds()))
	d.page = page

	d.logger.Infof("Browser session started")
	return nil
}

// Close releases the browser session. Safe to call on a session that never
// opened or already closed.
func (d *Driver) Close(ctx context.Context) error {
	var closeErr error
	if d.browser != nil {
		closeErr = d.browser.Close()
		d.browser = nil
	}
	d.page = nil
	d.stopPlaywright()

	if closeErr != nil {
		return fmt.Errorf("could not close browser: %w", closeErr)
	}
	d.logger.Infof("Browser session closed")
	return nil
}

func (d *Driver) stopPlaywright() {
	if d.pwRun != nil {
		if err := d.pwRun.Stop(); err != nil {
			d.logger.Warningf("Could not stop playwright: %v", err)
		}
		d.pwRun = nil
	}
}

// Navigate loads the URL and settles.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	if _, err := d.page.Goto(url, pw.PageGotoOptions{
		Timeout: pw.Float(float64(d.cfg.SettleTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("could not navigate to %s: %v: %w", url, err, model.ErrNavigationTimeout)
	}

	return d.settle(ctx)
}

// ClickAndSettle clicks the first match and waits for network quiescence.
func (d *Driver) ClickAndSettle(ctx context.Context, loc model.Locator) error {
	if err := d.Click(ctx, loc); err != nil {
		return err
	}
	return d.settle(ctx)
}

// Click clicks the first match without settling.
func (d *Driver) Click(ctx context.Context, loc model.Locator) error {
	if err := d.page.Locator(loc.String()).First().Click(); err != nil {
		return elementErr("click", loc, err)
	}
	return nil
}

// Fill sets the value of the first matching input.
func (d *Driver) Fill(ctx context.Context, loc model.Locator, text string) error {
	if err := d.page.Locator(loc.String()).First().Fill(text); err != nil {
		return elementErr("fill", loc, err)
	}
	return nil
}

// SelectOption selects the option with the given label on the first match.
func (d *Driver) SelectOption(ctx context.Context, loc model.Locator, label string) error {
	if _, err := d.page.Locator(loc.String()).First().SelectOption(pw.SelectOptionValues{
		Labels: &[]string{label},
	}); err != nil {
		return elementErr("select option", loc, err)
	}
	return nil
}

// UploadFile sets the file input to the given path.
func (d *Driver) UploadFile(ctx context.Context, loc model.Locator, path string) error {
	if err := d.page.Locator(loc.String()).First().SetInputFiles(path); err != nil {
		return elementErr("upload file", loc, err)
	}
	return nil
}

// WaitForVisible waits until the locator has a visible match.
func (d *Driver) WaitForVisible(ctx context.Context, loc model.Locator, timeout time.Duration) error {
	err := d.page.Locator(loc.String()).First().WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateVisible,
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return elementErr("wait for", loc, err)
	}
	return nil
}

// WaitForHidden waits until the locator has no visible match.
func (d *Driver) WaitForHidden(ctx context.Context, loc model.Locator, timeout time.Duration) error {
	err := d.page.Locator(loc.String()).First().WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateHidden,
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return elementErr("wait hidden", loc, err)
	}
	return nil
}

// WaitForText waits until the given text is present on the page.
func (d *Driver) WaitForText(ctx context.Context, text string, timeout time.Duration) error {
	err := d.page.GetByText(text).First().WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateVisible,
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("text %q did not appear: %v: %w", text, err, model.ErrElementNotFound)
	}
	return nil
}

// Count returns the number of elements matching the locator.
func (d *Driver) Count(ctx context.Context, loc model.Locator) (int, error) {
	n, err := d.page.Locator(loc.String()).Count()
	if err != nil {
		return 0, fmt.Errorf("could not count %s: %w", loc, err)
	}
	return n, nil
}

// HasText reports whether the given text is present on the page. Part of the
// stealth.Inspector surface used by the guard probe.
func (d *Driver) HasText(ctx context.Context, text string) (bool, error) {
	n, err := d.page.GetByText(text).Count()
	if err != nil {
		return false, fmt.Errorf("could not look up text %q: %w", text, err)
	}
	return n > 0, nil
}

// RemoveAll removes every element matching the locator from the DOM. Part of
// the stealth.Cleaner surface used for widget cleanup.
func (d *Driver) RemoveAll(ctx context.Context, loc model.Locator) (int, error) {
	res, err := d.page.Evaluate(
		`sel => { const els = document.querySelectorAll(sel); els.forEach(el => el.remove()); return els.length; }`,
		loc.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("could not remove %s: %w", loc, err)
	}

	if n, ok := res.(int); ok {
		return n, nil
	}
	if f, ok := res.(float64); ok {
		return int(f), nil
	}
	return 0, nil
}

// NthCellText returns the text of cell within the nth row match.
func (d *Driver) NthCellText(ctx context.Context, rows model.Locator, n int, cell model.Locator) (string, error) {
	text, err := d.page.Locator(rows.String()).Nth(n).Locator(cell.String()).First().TextContent()
	if err != nil {
		return "", elementErr("read cell", cell, err)
	}
	return text, nil
}

// ClickInNthAndSettle clicks child within the nth row match, then settles.
func (d *Driver) ClickInNthAndSettle(ctx context.Context, rows model.Locator, n int, child model.Locator) error {
	if err := d.page.Locator(rows.String()).Nth(n).Locator(child.String()).First().Click(); err != nil {
		return elementErr("click", child, err)
	}
	return d.settle(ctx)
}

// Screenshot captures the current viewport. Never fails the caller.
func (d *Driver) Screenshot(ctx context.Context, prefix string) string {
	if d.page == nil {
		return ""
	}

	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	path := filepath.Join(d.cfg.ScreenshotDir, fmt.Sprintf("%s-%s.png", prefix, id))

	if _, err := d.page.Screenshot(pw.PageScreenshotOptions{Path: pw.String(path)}); err != nil {
		d.logger.Warningf("Could not save screenshot %s: %v", path, err)
		return ""
	}

	d.logger.Infof("Screenshot saved: %s", path)
	return path
}

// settle waits for network quiescence, removes interfering widgets and runs
// the detection probe. Every navigation goes through here.
func (d *Driver) settle(ctx context.Context) error {
	err := d.page.WaitForLoadState(pw.PageWaitForLoadStateOptions{
		State:   pw.LoadStateNetworkidle,
		Timeout: pw.Float(float64(d.cfg.SettleTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("page did not settle: %v: %w", err, model.ErrNavigationTimeout)
	}

	d.guard.CleanWidgets(ctx, d)

	detected, err := d.guard.Probe(ctx, d)
	if err != nil {
		d.logger.Warningf("Detection probe failed: %v", err)
		return nil
	}
	if detected {
		return model.ErrBotDetected
	}

	return nil
}

func elementErr(action string, loc model.Locator, err error) error {
	return fmt.Errorf("could not %s %s: %v: %w", action, loc, err, model.ErrElementNotFound)
}
