// Package protocol implements the fixed, ordered automation steps that drive
// the portal UI: sign in, navigate to the style form, submit one record.
// Steps communicate failures through model.StepOutcome values, no errors
// cross the protocol boundary.
package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/stylepost/stylepost/internal/browser"
	"github.com/stylepost/stylepost/internal/log"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/selectors"
)

// Protocol is the ordered step vocabulary the task executor runs items
// against.
type Protocol interface {
	// SignIn signs in to the portal, selecting the salon on multi-salon
	// accounts. Any failure here is fatal for the whole task.
	SignIn(ctx context.Context, creds model.Credentials) model.StepOutcome

	// NavigateToForm clicks through the fixed menus to the style management
	// page. Runs once per session, before the item loop.
	NavigateToForm(ctx context.Context) model.StepOutcome

	// SubmitRecord posts a single record: image upload, form fields, coupon,
	// hashtags, register, back to list.
	SubmitRecord(ctx context.Context, rec model.Record, imageDir string) model.StepOutcome
}

const (
	defaultWaitTimeout = 30 * time.Second
	// defaultHashtagSettle is the fixed client-side settle between hashtag
	// adds. The add action never touches the network, so there is nothing
	// to wait on besides the page script registering the chip.
	defaultHashtagSettle = 500 * time.Millisecond
)

// SalonBoardConfig is the configuration for the salon board protocol.
type SalonBoardConfig struct {
	Driver    browser.Driver
	Selectors selectors.Table

	// CouponStrict controls the coupon-mismatch policy: when true a coupon
	// name that matches no option fails the record (recoverable); when false
	// the record still submits with the coupon left unset.
	CouponStrict bool

	// WaitTimeout bounds modal visibility and confirmation waits.
	WaitTimeout time.Duration
	// HashtagSettle is the pause between hashtag adds.
	HashtagSettle time.Duration

	Logger log.Logger
}

func (c *SalonBoardConfig) defaults() error {
	if c.Driver == nil {
		return fmt.Errorf("driver is required")
	}
	if err := c.Selectors.Validate(); err != nil {
		return fmt.Errorf("selectors are required: %w", err)
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = defaultWaitTimeout
	}
	if c.HashtagSettle <= 0 {
		c.HashtagSettle = defaultHashtagSettle
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "protocol.SalonBoard"})
	return nil
}

var _ Protocol = (*SalonBoard)(nil)

// SalonBoard implements Protocol against the salon portal.
type SalonBoard struct {
	driver        browser.Driver
	sels          selectors.Table
	couponStrict  bool
	waitTimeout   time.Duration
	hashtagSettle time.Duration
	logger        log.Logger
}

// NewSalonBoard creates a new salon board protocol.
func NewSalonBoard(cfg SalonBoardConfig) (*SalonBoard, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &SalonBoard{
		driver:        cfg.Driver,
		sels:          cfg.Selectors,
		couponStrict:  cfg.CouponStrict,
		waitTimeout:   cfg.WaitTimeout,
		hashtagSettle: cfg.HashtagSettle,
		logger:        cfg.Logger,
	}, nil
}
