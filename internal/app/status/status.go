// Package status implements task progress inspection.
package status

import (
	"context"
	"fmt"

	"github.com/stylepost/stylepost/internal/log"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/storage"
)

// ServiceConfig is the configuration for the status service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Status"})
	return nil
}

// Service reports a task's persisted state.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// TaskStatus is a task together with its per-item progress.
type TaskStatus struct {
	Task  model.Task
	Items []model.Item
}

// Status returns the task and its items in file order.
func (s *Service) Status(ctx context.Context, taskID string) (*TaskStatus, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	items, err := s.repo.ListItems(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not list items: %w", err)
	}

	return &TaskStatus{
		Task:  *task,
		Items: items,
	}, nil
}
