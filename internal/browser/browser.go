package browser

import (
	"context"
	"time"

	"github.com/stylepost/stylepost/internal/model"
)

// Driver owns one browser session and exposes the small vocabulary of
// primitives the posting protocol is written against, so protocol code never
// touches the browser-control library directly.
//
// Locators may resolve to multiple elements; every click/fill primitive acts
// deterministically on the first match in DOM order. The locator table is
// externally maintained and occasional ambiguity is expected, so progress is
// favored over strictness.
type Driver interface {
	// Open acquires the browser session. Close must be called on every exit
	// path of a run so no browser processes leak.
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	// Navigate loads a URL and settles. Like every settle it runs the
	// anti-detection probe before returning.
	Navigate(ctx context.Context, url string) error

	// ClickAndSettle clicks the first match and blocks until network
	// activity quiesces, then runs widget cleanup and the detection probe.
	// Returns model.ErrNavigationTimeout when quiescence is not reached and
	// model.ErrBotDetected when the probe finds a challenge.
	ClickAndSettle(ctx context.Context, loc model.Locator) error

	// Click clicks the first match without waiting for navigation. Used for
	// modal-local controls whose effects are purely client side.
	Click(ctx context.Context, loc model.Locator) error

	Fill(ctx context.Context, loc model.Locator, text string) error
	SelectOption(ctx context.Context, loc model.Locator, label string) error
	UploadFile(ctx context.Context, loc model.Locator, path string) error

	// Explicit synchronization points used to confirm UI state transitions
	// instead of fixed delays.
	WaitForVisible(ctx context.Context, loc model.Locator, timeout time.Duration) error
	WaitForHidden(ctx context.Context, loc model.Locator, timeout time.Duration) error
	WaitForText(ctx context.Context, text string, timeout time.Duration) error

	// Count returns how many elements currently match the locator.
	Count(ctx context.Context, loc model.Locator) (int, error)

	// NthCellText returns the text of cell within the nth element matching
	// rows. Used to scan the salon selection table.
	NthCellText(ctx context.Context, rows model.Locator, n int, cell model.Locator) (string, error)

	// ClickInNthAndSettle clicks child within the nth element matching rows,
	// then settles like ClickAndSettle.
	ClickInNthAndSettle(ctx context.Context, rows model.Locator, n int, child model.Locator) error

	// Screenshot captures the current viewport to a uniquely named file and
	// returns its path. It never fails the caller: a save failure is logged
	// and an empty path returned.
	Screenshot(ctx context.Context, prefix string) string
}
