package storage

import (
	"context"

	"github.com/stylepost/stylepost/internal/model"
)

// Repository is the progress sink: the single durable source of truth for
// task and item state. Update calls are idempotent, the executor persists
// after every status change including ones already recorded during a prior
// run.
type Repository interface {
	CreateTask(ctx context.Context, t model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	// UpdateTask upserts the full task state keyed by task id.
	UpdateTask(ctx context.Context, t model.Task) error

	CreateItems(ctx context.Context, items []model.Item) error
	// ListItems returns the task's items ordered by index.
	ListItems(ctx context.Context, taskID string) ([]model.Item, error)
	// UpdateItem upserts the item state keyed by (task id, index).
	UpdateItem(ctx context.Context, it model.Item) error
}
