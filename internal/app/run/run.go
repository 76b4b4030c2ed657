// Package run implements the task executor: it turns the step protocol into
// a resilient, resumable batch run with per-item progress persistence.
package run

import (
	"context"
	"fmt"
	"time"

	"github.com/stylepost/stylepost/internal/browser"
	"github.com/stylepost/stylepost/internal/log"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/protocol"
	"github.com/stylepost/stylepost/internal/records"
	"github.com/stylepost/stylepost/internal/storage"
)

const defaultMaxConsecutiveFailures = 3

// ServiceConfig is the configuration for the run service.
type ServiceConfig struct {
	Driver     browser.Driver
	Protocol   protocol.Protocol
	Repository storage.Repository

	// LoadRecords loads the record file. Defaults to records.Load.
	LoadRecords func(path string) ([]model.Record, error)

	// MaxConsecutiveFailures bounds recoverable failures in a row before the
	// run stops: a broken page fails every remaining item the same way, and
	// there is no point grinding through it.
	MaxConsecutiveFailures int

	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Driver == nil {
		return fmt.Errorf("driver is required")
	}
	if c.Protocol == nil {
		return fmt.Errorf("protocol is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.LoadRecords == nil {
		c.LoadRecords = records.Load
	}
	if c.MaxConsecutiveFailures <= 0 {
		c.MaxConsecutiveFailures = defaultMaxConsecutiveFailures
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Run"})
	return nil
}

// Service executes one batch posting task from claim to terminal status.
type Service struct {
	driver      browser.Driver
	protocol    protocol.Protocol
	repo        storage.Repository
	loadRecords func(path string) ([]model.Record, error)
	maxFailures int
	logger      log.Logger
}

// NewService creates a new run service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		driver:      cfg.Driver,
		protocol:    cfg.Protocol,
		repo:        cfg.Repository,
		loadRecords: cfg.LoadRecords,
		maxFailures: cfg.MaxConsecutiveFailures,
		logger:      cfg.Logger,
	}, nil
}

// Request are the options for running a task.
type Request struct {
	TaskID      string
	Credentials model.Credentials
	// Resume re-enters an interrupted task at its first non-terminal item.
	Resume bool
}

// Run executes the task to a terminal status. The returned task reflects the
// final persisted state; a non-nil error means the run could not even reach
// the item loop (validation, eligibility or session failures), and in that
// case the failure is still persisted before returning.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	if req.TaskID == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}
	if err := req.Credentials.Validate(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	task, err := s.repo.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	if err := s.checkEligible(task, req.Resume); err != nil {
		return nil, err
	}

	logger := s.logger.WithValues(log.Kv{"task": task.ID})

	// Progress writes must survive a cancelled run context: an interrupted
	// task is only resumable if its state made it to the sink.
	persistCtx := context.WithoutCancel(ctx)

	// Fail-fast validation before any browser work.
	recs, err := s.loadRecords(task.RecordsPath)
	if err != nil {
		return s.failBeforeRun(persistCtx, task, fmt.Errorf("could not load records: %w", err))
	}
	if err := records.ValidateImages(recs, task.ImagesDir); err != nil {
		return s.failBeforeRun(persistCtx, task, err)
	}

	task.TotalItems = len(recs)
	items, err := s.seedItems(persistCtx, task, recs)
	if err != nil {
		return nil, err
	}

	// Claim the task.
	task.Status = model.TaskStatusProcessing
	task.ErrorSummary = ""
	task.CompletedItems = model.CountSucceeded(items)
	if err := s.repo.UpdateTask(persistCtx, *task); err != nil {
		return nil, fmt.Errorf("could not claim task: %w", err)
	}
	logger.Infof("Task claimed: %d items, %d already completed", task.TotalItems, task.CompletedItems)

	if err := s.driver.Open(ctx); err != nil {
		return s.failBeforeRun(persistCtx, task, fmt.Errorf("could not open browser session: %w", err))
	}
	// The session is released on every exit path: success, failure or
	// interruption.
	defer func() {
		if cerr := s.driver.Close(persistCtx); cerr != nil {
			logger.Errorf("Could not release browser session: %v", cerr)
		}
	}()

	if out := s.protocol.SignIn(ctx, req.Credentials); !out.Success() {
		return s.abortRun(ctx, persistCtx, task, logger, "sign-in", out)
	}
	if out := s.protocol.NavigateToForm(ctx); !out.Success() {
		return s.abortRun(ctx, persistCtx, task, logger, "navigate", out)
	}

	interrupted, stopReason := s.runItems(ctx, persistCtx, task, items, recs, logger)

	return s.finish(persistCtx, task, items, interrupted, stopReason, logger)
}

// runItems iterates the items in file order, starting from the first item
// not already succeeded or skipped. It returns whether an interrupt was
// observed and, for fatal stops, the stop reason.
func (s *Service) runItems(ctx, persistCtx context.Context, task *model.Task, items []model.Item, recs []model.Record, logger log.Logger) (interrupted bool, stopReason string) {
	consecutive := 0

	for i := range items {
		it := &items[i]
		if it.Status.Done() {
			continue
		}

		// Cooperative interruption point: mid-item browser operations always
		// run to completion so the portal's form is never left half
		// submitted.
		if s.interruptRequested(ctx, task.ID) {
			logger.Infof("Interrupt observed, stopping before item %d", it.Index)
			return true, ""
		}

		it.Status = model.ItemStatusProcessing
		it.ErrorMessage = ""
		it.ScreenshotPath = ""
		it.ProcessedAt = nil
		if err := s.repo.UpdateItem(persistCtx, *it); err != nil {
			logger.Errorf("Could not persist item %d: %v", it.Index, err)
		}

		out := s.protocol.SubmitRecord(ctx, recs[it.Index], task.ImagesDir)

		now := time.Now().UTC()
		it.ProcessedAt = &now

		if out.Success() {
			it.Status = model.ItemStatusSucceeded
			if err := s.repo.UpdateItem(persistCtx, *it); err != nil {
				logger.Errorf("Could not persist item %d: %v", it.Index, err)
			}

			task.CompletedItems = model.CountSucceeded(items)
			// A concurrent interrupt flag must survive the progress write.
			if cur, cerr := s.repo.GetTask(persistCtx, task.ID); cerr == nil && cur.Status == model.TaskStatusInterrupted {
				task.Status = model.TaskStatusInterrupted
			}
			if err := s.repo.UpdateTask(persistCtx, *task); err != nil {
				logger.Errorf("Could not persist progress: %v", err)
			}

			consecutive = 0
			logger.Infof("Item %d succeeded (%d/%d)", it.Index, task.CompletedItems, task.TotalItems)
			continue
		}

		it.Status = model.ItemStatusFailed
		it.ErrorMessage = out.Message()
		it.ScreenshotPath = s.driver.Screenshot(persistCtx, fmt.Sprintf("%s-item-%d", task.ID, it.Index))
		if err := s.repo.UpdateItem(persistCtx, *it); err != nil {
			logger.Errorf("Could not persist item %d: %v", it.Index, err)
		}

		if out.Fatal() {
			logger.Errorf("Item %d failed fatally: %s", it.Index, out.Message())
			return false, out.Message()
		}

		consecutive++
		logger.Warningf("Item %d failed: %s", it.Index, out.Message())
		if consecutive >= s.maxFailures {
			return false, fmt.Sprintf("%d consecutive failures, page state no longer trusted", consecutive)
		}
	}

	return false, ""
}

// finish releases nothing itself (the session defer does), it only settles
// the task's terminal status from the items' final state.
func (s *Service) finish(persistCtx context.Context, task *model.Task, items []model.Item, interrupted bool, stopReason string, logger log.Logger) (*model.Task, error) {
	task.CompletedItems = model.CountSucceeded(items)

	switch {
	case interrupted || s.interruptRequested(persistCtx, task.ID):
		task.Status = model.TaskStatusInterrupted
		logger.Infof("Task interrupted at %d/%d", task.CompletedItems, task.TotalItems)
	case model.AllDone(items):
		now := time.Now().UTC()
		task.Status = model.TaskStatusSucceeded
		task.CompletedAt = &now
		logger.Infof("Task succeeded: %d/%d items", task.CompletedItems, task.TotalItems)
	default:
		now := time.Now().UTC()
		task.Status = model.TaskStatusFailed
		task.CompletedAt = &now
		task.ErrorSummary = s.summarize(items, stopReason)
		logger.Errorf("Task failed: %s", task.ErrorSummary)
	}

	if err := s.repo.UpdateTask(persistCtx, *task); err != nil {
		return nil, fmt.Errorf("could not persist terminal status: %w", err)
	}

	return task, nil
}

func (s *Service) summarize(items []model.Item, stopReason string) string {
	failed := 0
	for _, it := range items {
		if it.Status == model.ItemStatusFailed {
			failed++
		}
	}

	summary := fmt.Sprintf("%d of %d records failed", failed, len(items))
	if stopReason != "" {
		summary = fmt.Sprintf("%s (stopped: %s)", summary, stopReason)
	}
	return summary
}

// abortRun handles a fatal sign-in or navigation outcome: screenshot, task
// failed (or interrupted when cancellation was requested concurrently), no
// items attempted.
func (s *Service) abortRun(ctx, persistCtx context.Context, task *model.Task, logger log.Logger, step string, out model.StepOutcome) (*model.Task, error) {
	task.ScreenshotPath = s.driver.Screenshot(persistCtx, fmt.Sprintf("%s-%s-failed", task.ID, step))

	// The run context carries the cancellation signal, the persist context
	// deliberately does not.
	if ctx.Err() != nil || s.interruptRequested(persistCtx, task.ID) {
		task.Status = model.TaskStatusInterrupted
	} else {
		now := time.Now().UTC()
		task.Status = model.TaskStatusFailed
		task.CompletedAt = &now
	}
	task.ErrorSummary = out.Message()

	if err := s.repo.UpdateTask(persistCtx, *task); err != nil {
		logger.Errorf("Could not persist aborted task: %v", err)
	}

	return task, fmt.Errorf("%s failed: %s", step, out.Message())
}

// failBeforeRun marks the task failed before any item work happened
// (validation or session acquisition failures).
func (s *Service) failBeforeRun(persistCtx context.Context, task *model.Task, cause error) (*model.Task, error) {
	now := time.Now().UTC()
	task.Status = model.TaskStatusFailed
	task.ErrorSummary = cause.Error()
	task.CompletedAt = &now

	if err := s.repo.UpdateTask(persistCtx, *task); err != nil {
		s.logger.Errorf("Could not persist failed task: %v", err)
	}

	return task, cause
}

// seedItems creates the task's items on the first run and reuses the
// persisted ones on resume, so (task id, index) stays stable across runs.
func (s *Service) seedItems(ctx context.Context, task *model.Task, recs []model.Record) ([]model.Item, error) {
	items, err := s.repo.ListItems(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("could not list items: %w", err)
	}

	if len(items) == 0 {
		items = make([]model.Item, 0, len(recs))
		for i, rec := range recs {
			items = append(items, model.Item{
				TaskID: task.ID,
				Index:  i,
				Status: model.ItemStatusPending,
				Label:  rec.Label(),
			})
		}
		if err := s.repo.CreateItems(ctx, items); err != nil {
			return nil, fmt.Errorf("could not create items: %w", err)
		}
		return items, nil
	}

	if len(items) != len(recs) {
		return nil, fmt.Errorf("record file has %d rows but task has %d items: %w", len(recs), len(items), model.ErrNotValid)
	}

	return items, nil
}

func (s *Service) checkEligible(task *model.Task, resume bool) error {
	if resume {
		// Processing is resumable too: a crashed run leaves the claim behind
		// without ever settling a terminal status.
		if task.Status != model.TaskStatusInterrupted && task.Status != model.TaskStatusProcessing {
			return fmt.Errorf("cannot resume task with status %q: %w", task.Status, model.ErrNotValid)
		}
		return nil
	}

	if task.Status != model.TaskStatusPending {
		return fmt.Errorf("cannot run task with status %q: %w", task.Status, model.ErrNotValid)
	}
	return nil
}

// interruptRequested reports whether the run should stop: either the run
// context was cancelled (signal) or another process flagged the task
// interrupted in the progress sink.
func (s *Service) interruptRequested(ctx context.Context, taskID string) bool {
	if ctx.Err() != nil {
		return true
	}

	t, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		s.logger.Warningf("Could not check interrupt flag: %v", err)
		return false
	}
	return t.Status == model.TaskStatusInterrupted
}
