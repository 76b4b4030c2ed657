// Package interrupt implements the cooperative cancellation request for a
// running task.
package interrupt

import (
	"context"
	"fmt"

	"github.com/stylepost/stylepost/internal/log"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/storage"
)

// ServiceConfig is the configuration for the interrupt service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Interrupt"})
	return nil
}

// Service flags tasks for interruption.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new interrupt service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Interrupt flags the task so its executor stops at the next item boundary.
// Only pending and processing tasks can be interrupted; flagging an already
// interrupted task is a no-op.
func (s *Service) Interrupt(ctx context.Context, taskID string) (*model.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	switch task.Status {
	case model.TaskStatusInterrupted:
		return task, nil
	case model.TaskStatusPending, model.TaskStatusProcessing:
	default:
		return nil, fmt.Errorf("cannot interrupt task with status %q: %w", task.Status, model.ErrNotValid)
	}

	task.Status = model.TaskStatusInterrupted
	if err := s.repo.UpdateTask(ctx, *task); err != nil {
		return nil, fmt.Errorf("could not flag task: %w", err)
	}

	s.logger.WithValues(log.Kv{"task": task.ID}).Infof("Task flagged for interruption")

	return task, nil
}
