package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/ulid/v2"

	apprun "github.com/stylepost/stylepost/internal/app/run"
	"github.com/stylepost/stylepost/internal/browser/playwright"
	"github.com/stylepost/stylepost/internal/conventions"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/printer"
	"github.com/stylepost/stylepost/internal/protocol"
	"github.com/stylepost/stylepost/internal/selectors"
	"github.com/stylepost/stylepost/internal/stealth"
	"github.com/stylepost/stylepost/internal/storage"
	"github.com/stylepost/stylepost/internal/storage/sqlite"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	recordsPath   string
	imagesDir     string
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

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Post every record of a record file to the salon portal.")
	c.Cmd.Flag("records", "Record file (.csv, .xlsx or .xlsm). Required unless --task-id is given.").StringVar(&c.recordsPath)
	c.Cmd.Flag("images", "Directory containing the image files the records reference. Required unless --task-id is given.").StringVar(&c.imagesDir)
	c.Cmd.Flag("task-id", "Run an already created pending task with its stored paths instead of creating one.").StringVar(&c.taskID)
	c.Cmd.Flag("selectors", "Locator table file (defaults to selectors.yaml in the data dir).").StringVar(&c.selectorsPath)

	// Credentials are only held in memory for the session, they are never
	// written to the task database or the logs.
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

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	if err := checkRunArgs(c.taskID, c.recordsPath, c.imagesDir); err != nil {
		return err
	}

	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	taskID := c.taskID
	if taskID == "" {
		taskID, err = c.createTask(ctx, repo)
		if err != nil {
			return err
		}
	}

	return executeTask(ctx, c.rootCmd, repo, sessionOptions{
		TaskID:        taskID,
		SelectorsPath: c.selectorsPath,
		Credentials: model.Credentials{
			UserID:    c.userID,
			Password:  c.password,
			SalonID:   c.salonID,
			SalonName: c.salonName,
		},
		Headed:        c.headed,
		SlowMo:        c.slowMo,
		SettleTimeout: c.settleTimeout,
		CouponStrict:  c.couponStrict,
		MaxFailures:   c.maxFailures,
	})
}

// checkRunArgs enforces the two mutually exclusive ways of starting a run: a
// new task from --records/--images, or an already created --task-id whose
// stored paths are used.
func checkRunArgs(taskID, recordsPath, imagesDir string) error {
	if taskID != "" {
		if recordsPath != "" || imagesDir != "" {
			return fmt.Errorf("--task-id runs the task with its stored paths, it cannot be combined with --records or --images")
		}
		return nil
	}

	if recordsPath == "" || imagesDir == "" {
		return fmt.Errorf("--records and --images are required when no --task-id is given")
	}
	return nil
}

func (c RunCommand) createTask(ctx context.Context, repo storage.Repository) (string, error) {
	recordsPath, err := filepath.Abs(c.recordsPath)
	if err != nil {
		return "", fmt.Errorf("could not resolve record file path: %w", err)
	}
	imagesDir, err := filepath.Abs(c.imagesDir)
	if err != nil {
		return "", fmt.Errorf("could not resolve images directory: %w", err)
	}

	task := model.Task{
		ID:          ulid.Make().String(),
		Status:      model.TaskStatusPending,
		RecordsPath: recordsPath,
		ImagesDir:   imagesDir,
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.CreateTask(ctx, task); err != nil {
		return "", fmt.Errorf("could not create task: %w", err)
	}

	return task.ID, nil
}

// sessionOptions are the shared browser-run options of the run and resume
// commands.
type sessionOptions struct {
	TaskID        string
	SelectorsPath string
	Credentials   model.Credentials
	Resume        bool

	Headed        bool
	SlowMo        time.Duration
	SettleTimeout time.Duration
	CouponStrict  bool
	MaxFailures   int
}

// executeTask wires the browser stack and the run service, executes the task
// and prints its final state.
func executeTask(ctx context.Context, rootCmd *RootCommand, repo storage.Repository, opts sessionOptions) error {
	logger := rootCmd.Logger

	table, err := loadSelectors(ctx, rootCmd, opts.SelectorsPath)
	if err != nil {
		return fmt.Errorf("could not load locator table: %w", err)
	}

	guard, err := stealth.NewGuard(stealth.GuardConfig{
		IndicatorTexts:    table.Detection.Texts,
		IndicatorLocators: table.Detection.Locators,
		WidgetLocators:    table.Widgets,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("could not create guard: %w", err)
	}

	driver, err := playwright.NewDriver(playwright.DriverConfig{
		Guard:         guard,
		ScreenshotDir: conventions.TaskScreenshotDir(rootCmd.DataDir, opts.TaskID),
		Headless:      !opts.Headed,
		SlowMo:        opts.SlowMo,
		SettleTimeout: opts.SettleTimeout,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("could not create browser driver: %w", err)
	}

	proto, err := protocol.NewSalonBoard(protocol.SalonBoardConfig{
		Driver:       driver,
		Selectors:    table,
		CouponStrict: opts.CouponStrict,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create protocol: %w", err)
	}

	svc, err := apprun.NewService(apprun.ServiceConfig{
		Driver:                 driver,
		Protocol:               proto,
		Repository:             repo,
		MaxConsecutiveFailures: opts.MaxFailures,
		Logger:                 logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	task, err := svc.Run(ctx, apprun.Request{
		TaskID:      opts.TaskID,
		Credentials: opts.Credentials,
		Resume:      opts.Resume,
	})
	if err != nil {
		return fmt.Errorf("could not run task %q: %w", opts.TaskID, err)
	}

	p := printer.NewTablePrinter(rootCmd.Stdout)

	switch task.Status {
	case model.TaskStatusSucceeded:
		return p.PrintMessage(fmt.Sprintf("Task %s succeeded: %d/%d records posted.", task.ID, task.CompletedItems, task.TotalItems))
	case model.TaskStatusInterrupted:
		return p.PrintMessage(fmt.Sprintf("Task %s interrupted at %d/%d records, resume it with: stylepost resume %s", task.ID, task.CompletedItems, task.TotalItems, task.ID))
	default:
		if err := p.PrintMessage(fmt.Sprintf("Task %s: %d/%d records posted.", task.ID, task.CompletedItems, task.TotalItems)); err != nil {
			return err
		}
		return fmt.Errorf("task %s failed: %s", task.ID, task.ErrorSummary)
	}
}

// loadSelectors loads the locator table from the explicit path or the data
// directory default.
func loadSelectors(ctx context.Context, rootCmd *RootCommand, path string) (selectors.Table, error) {
	if path == "" {
		path = filepath.Join(rootCmd.DataDir, conventions.SelectorsFile)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return selectors.Table{}, err
	}

	repo := selectors.NewYAMLRepository(os.DirFS(filepath.Dir(abs)))
	return repo.GetTable(ctx, filepath.Base(abs))
}
