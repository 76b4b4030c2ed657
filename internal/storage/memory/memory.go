package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stylepost/stylepost/internal/log"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/storage"
)

var _ storage.Repository = (*Repository)(nil)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	tasks  map[string]model.Task
	items  map[string]map[int]model.Item
	mu     sync.RWMutex
	logger log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		tasks:  make(map[string]model.Task),
		items:  make(map[string]map[int]model.Item),
		logger: cfg.Logger,
	}, nil
}

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; ok {
		return fmt.Errorf("task %s: %w", t.ID, model.ErrAlreadyExists)
	}

	r.tasks[t.ID] = t
	r.logger.Debugf("Created task in repository: %s", t.ID)
	return nil
}

// GetTask retrieves a task by id.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	taskCopy := t
	return &taskCopy, nil
}

// UpdateTask upserts the task state.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[t.ID] = t
	return nil
}

// CreateItems creates the task's items.
func (r *Repository) CreateItems(ctx context.Context, items []model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range items {
		byIndex, ok := r.items[it.TaskID]
		if !ok {
			byIndex = make(map[int]model.Item)
			r.items[it.TaskID] = byIndex
		}
		if _, ok := byIndex[it.Index]; ok {
			return fmt.Errorf("item %s/%d: %w", it.TaskID, it.Index, model.ErrAlreadyExists)
		}
		byIndex[it.Index] = it
	}

	return nil
}

// ListItems returns the task's items ordered by index.
func (r *Repository) ListItems(ctx context.Context, taskID string) ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byIndex := r.items[taskID]
	items := make([]model.Item, 0, len(byIndex))
	for _, it := range byIndex {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Index < items[j].Index })

	return items, nil
}

// UpdateItem upserts the item state.
func (r *Repository) UpdateItem(ctx context.Context, it model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byIndex, ok := r.items[it.TaskID]
	if !ok {
		byIndex = make(map[int]model.Item)
		r.items[it.TaskID] = byIndex
	}
	byIndex[it.Index] = it

	return nil
}
