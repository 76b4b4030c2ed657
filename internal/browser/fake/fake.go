// Package fake implements a scripted browser driver for tests. It simulates
// the portal UI without launching a real browser: tests declare which
// locators exist, which texts appear, cell contents for table scans and
// per-operation failures.
package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stylepost/stylepost/internal/browser"
	"github.com/stylepost/stylepost/internal/log"
	"github.com/stylepost/stylepost/internal/model"
)

var _ browser.Driver = (*Driver)(nil)

// DriverConfig is the configuration for the fake driver.
type DriverConfig struct {
	Logger log.Logger
}

func (c *DriverConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "browser.Fake"})
	return nil
}

// Driver is a fake implementation of browser.Driver.
type Driver struct {
	mu     sync.Mutex
	logger log.Logger

	// Scripted page state.
	counts    map[model.Locator]int
	texts     map[string]bool
	cellTexts map[cellKey]string
	failures  map[string]error
	hooks     map[string]func()

	// ScreenshotPath is returned by Screenshot. Defaults to a generated name.
	ScreenshotPath string

	opened bool
	closed bool
	calls  []string
}

type cellKey struct {
	rows model.Locator
	n    int
	cell model.Locator
}

// NewDriver creates a new fake driver.
func NewDriver(cfg DriverConfig) (*Driver, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Driver{
		logger:    cfg.Logger,
		counts:    map[model.Locator]int{},
		texts:     map[string]bool{},
		cellTexts: map[cellKey]string{},
		failures:  map[string]error{},
		hooks:     map[string]func(){},
	}, nil
}

// SetCount scripts the number of matches a locator resolves to.
func (d *Driver) SetCount(loc model.Locator, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counts[loc] = n
}

// SetText scripts whether a text is present on the page.
func (d *Driver) SetText(text string, present bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.texts[text] = present
}

// SetCellText scripts the text of cell within the nth match of rows.
func (d *Driver) SetCellText(rows model.Locator, n int, cell model.Locator, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cellTexts[cellKey{rows: rows, n: n, cell: cell}] = text
}

// FailOn scripts an error for an operation on a locator. The key format is
// "<op>:<locator>", e.g. "click-and-settle:#register".
func (d *Driver) FailOn(op string, loc model.Locator, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[op+":"+loc.String()] = err
}

// OnCall registers a hook executed every time op runs, regardless of
// locator. Hooks run outside the driver lock.
func (d *Driver) OnCall(op string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks[op] = fn
}

// Calls returns the operations performed on the driver, in order.
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Opened returns true when the session was opened.
func (d *Driver) Opened() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened
}

// Closed returns true when the session was released.
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Driver) op(op string, loc model.Locator) error {
	d.mu.Lock()
	key := op + ":" + loc.String()
	d.calls = append(d.calls, key)
	err := d.failures[key]
	hook := d.hooks[op]
	d.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

// Open opens the fake session.
func (d *Driver) Open(ctx context.Context) error {
	if err := d.op("open", ""); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = true
	return nil
}

// Close releases the fake session.
func (d *Driver) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "close:")
	d.closed = true
	return nil
}

// Navigate simulates loading a URL.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	return d.op("navigate", model.Locator(url))
}

// ClickAndSettle simulates a click followed by a settle.
func (d *Driver) ClickAndSettle(ctx context.Context, loc model.Locator) error {
	return d.op("click-and-settle", loc)
}

// Click simulates a client-side click.
func (d *Driver) Click(ctx context.Context, loc model.Locator) error {
	return d.op("click", loc)
}

// Fill simulates setting an input value.
func (d *Driver) Fill(ctx context.Context, loc model.Locator, text string) error {
	return d.op("fill", loc)
}

// SelectOption simulates selecting a dropdown option by label.
func (d *Driver) SelectOption(ctx context.Context, loc model.Locator, label string) error {
	return d.op("select", loc)
}

// UploadFile simulates setting a file input.
func (d *Driver) UploadFile(ctx context.Context, loc model.Locator, path string) error {
	return d.op("upload", loc)
}

// WaitForVisible simulates waiting for a visible match.
func (d *Driver) WaitForVisible(ctx context.Context, loc model.Locator, timeout time.Duration) error {
	return d.op("wait-visible", loc)
}

// WaitForHidden simulates waiting for the matches to disappear.
func (d *Driver) WaitForHidden(ctx context.Context, loc model.Locator, timeout time.Duration) error {
	return d.op("wait-hidden", loc)
}

// WaitForText simulates waiting for a text. Texts scripted absent fail with
// model.ErrElementNotFound, like the real driver.
func (d *Driver) WaitForText(ctx context.Context, text string, timeout time.Duration) error {
	if err := d.op("wait-text", model.Locator(text)); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if present, ok := d.texts[text]; ok && !present {
		return fmt.Errorf("text %q did not appear: %w", text, model.ErrElementNotFound)
	}
	return nil
}

// Count returns the scripted match count for the locator.
func (d *Driver) Count(ctx context.Context, loc model.Locator) (int, error) {
	if err := d.op("count", loc); err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[loc], nil
}

// HasText reports the scripted presence of a text.
func (d *Driver) HasText(ctx context.Context, text string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.texts[text], nil
}

// RemoveAll simulates widget removal.
func (d *Driver) RemoveAll(ctx context.Context, loc model.Locator) (int, error) {
	if err := d.op("remove-all", loc); err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.counts[loc]
	d.counts[loc] = 0
	return n, nil
}

// NthCellText returns the scripted cell text.
func (d *Driver) NthCellText(ctx context.Context, rows model.Locator, n int, cell model.Locator) (string, error) {
	if err := d.op("cell-text", rows); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	text, ok := d.cellTexts[cellKey{rows: rows, n: n, cell: cell}]
	if !ok {
		return "", fmt.Errorf("cell %s[%d] %s: %w", rows, n, cell, model.ErrElementNotFound)
	}
	return text, nil
}

// ClickInNthAndSettle simulates clicking inside the nth row match.
func (d *Driver) ClickInNthAndSettle(ctx context.Context, rows model.Locator, n int, child model.Locator) error {
	return d.op(fmt.Sprintf("click-nth-%d", n), rows)
}

// Screenshot returns the scripted screenshot path.
func (d *Driver) Screenshot(ctx context.Context, prefix string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "screenshot:"+prefix)
	if d.ScreenshotPath != "" {
		return d.ScreenshotPath
	}
	return fmt.Sprintf("/tmp/%s.png", prefix)
}
