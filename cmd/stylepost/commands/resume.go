package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/storage/sqlite"
)

type ResumeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID        string
	selectorsPath string

	userID    string
	password  string
	salonID   string
	salonName string

	headed        bool
	slowMo        time.Duration
	settleTimeout time.Duration
	couponStrict  bool
	maxFailures   int
}

// NewResumeCommand returns the resume command.
func NewResumeCommand(rootCmd *RootCommand, app *kingpin.Application) *ResumeCommand {
	c := &ResumeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("resume", "Resume an interrupted task from its first unfinished record.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("selectors", "Locator table file (defaults to selectors.yaml in the data dir).").StringVar(&c.selectorsPath)

	c.Cmd.Flag("user-id", "Portal account user ID.").Envar("STYLEPOST_USER_ID").Required().StringVar(&c.userID)
	c.Cmd.Flag("password", "Portal account password.").Envar("STYLEPOST_PASSWORD").Required().StringVar(&c.password)
	c.Cmd.Flag("salon-id", "Salon ID to pick on multi-salon accounts.").Envar("STYLEPOST_SALON_ID").StringVar(&c.salonID)
	c.Cmd.Flag("salon-name", "Salon name to pick on multi-salon accounts.").Envar("STYLEPOST_SALON_NAME").StringVar(&c.salonName)

	c.Cmd.Flag("headed", "Run the browser with a visible window.").BoolVar(&c.headed)
	c.Cmd.Flag("slow-mo", "Delay injected between browser operations.").DurationVar(&c.slowMo)
	c.Cmd.Flag("settle-timeout", "Maximum wait for the page to settle after an action.").Default("180s").DurationVar(&c.settleTimeout)
	c.Cmd.Flag("coupon-strict", "Fail a record when its coupon matches no option instead of posting without it.").BoolVar(&c.couponStrict)
	c.Cmd.Flag("max-failures", "Consecutive recoverable failures tolerated before the run stops.").Default("3").IntVar(&c.maxFailures)

	return c
}

func (c ResumeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ResumeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	return executeTask(ctx, c.rootCmd, repo, sessionOptions{
		TaskID:        c.taskID,
		SelectorsPath: c.selectorsPath,
		Credentials: model.Credentials{
			UserID:    c.userID,
			Password:  c.password,
			SalonID:   c.salonID,
			SalonName: c.salonName,
		},
		Resume:        true,
		Headed:        c.headed,
		SlowMo:        c.slowMo,
		SettleTimeout: c.settleTimeout,
		CouponStrict:  c.couponStrict,
		MaxFailures:   c.maxFailures,
	})
}
