package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stylepost/stylepost/internal/log"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/storage"
	"github.com/stylepost/stylepost/internal/storage/sqlite/migrations"
)

var _ storage.Repository = (*Repository)(nil)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	query := `
		INSERT INTO tasks (
			id, status, total_items, completed_items,
			records_path, images_dir,
			error_summary, screenshot_path,
			created_at, completed_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		t.ID,
		t.Status,
		t.TotalItems,
		t.CompletedItems,
		t.RecordsPath,
		t.ImagesDir,
		t.ErrorSummary,
		t.ScreenshotPath,
		t.CreatedAt.Unix(),
		unixOrNil(t.CompletedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: tasks.") {
			return fmt.Errorf("task already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert task: %w", err)
	}

	r.logger.Debugf("Created task in repository: %s", t.ID)
	return nil
}

// GetTask retrieves a task by id.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	query := `
		SELECT
			id, status, total_items, completed_items,
			records_path, images_dir,
			error_summary, screenshot_path,
			created_at, completed_at
		FROM tasks
		WHERE id = ?
	`

	var t model.Task
	var createdAt int64
	var completedAt *int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Status,
		&t.TotalItems,
		&t.CompletedItems,
		&t.RecordsPath,
		&t.ImagesDir,
		&t.ErrorSummary,
		&t.ScreenshotPath,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	t.CompletedAt = timeOrNil(completedAt)

	return &t, nil
}

// UpdateTask upserts the full task state keyed by task id. Repeating an
// update with the same values is a no-op, which keeps progress persistence
// idempotent across resumed runs.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task) error {
	query := `
		INSERT INTO tasks (
			id, status, total_items, completed_items,
			records_path, images_dir,
			error_summary, screenshot_path,
			created_at, completed_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			total_items = excluded.total_items,
			completed_items = excluded.completed_items,
			error_summary = excluded.error_summary,
			screenshot_path = excluded.screenshot_path,
			completed_at = excluded.completed_at
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		t.ID,
		t.Status,
		t.TotalItems,
		t.CompletedItems,
		t.RecordsPath,
		t.ImagesDir,
		t.ErrorSummary,
		t.ScreenshotPath,
		t.CreatedAt.Unix(),
		unixOrNil(t.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}

	return nil
}

// CreateItems creates the task's items in one transaction.
func (r *Repository) CreateItems(ctx context.Context, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit

	query := `
		INSERT INTO task_items (task_id, item_index, status, label, error_message, screenshot_path, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("could not prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		_, err := stmt.ExecContext(ctx, it.TaskID, it.Index, it.Status, it.Label, it.ErrorMessage, it.ScreenshotPath, unixOrNil(it.ProcessedAt))
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return fmt.Errorf("item %s/%d: %w", it.TaskID, it.Index, model.ErrAlreadyExists)
			}
			return fmt.Errorf("could not insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// ListItems returns the task's items ordered by index.
func (r *Repository) ListItems(ctx context.Context, taskID string) ([]model.Item, error) {
	query := `
		SELECT task_id, item_index, status, label, error_message, screenshot_path, processed_at
		FROM task_items
		WHERE task_id = ?
		ORDER BY item_index ASC
	`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var it model.Item
		var processedAt *int64
		err := rows.Scan(&it.TaskID, &it.Index, &it.Status, &it.Label, &it.ErrorMessage, &it.ScreenshotPath, &processedAt)
		if err != nil {
			return nil, fmt.Errorf("could not scan item: %w", err)
		}
		it.ProcessedAt = timeOrNil(processedAt)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate items: %w", err)
	}

	return items, nil
}

// UpdateItem upserts the item state keyed by (task id, index).
func (r *Repository) UpdateItem(ctx context.Context, it model.Item) error {
	query := `
		INSERT INTO task_items (task_id, item_index, status, label, error_message, screenshot_path, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(task_id, item_index) DO UPDATE SET
			status = excluded.status,
			label = excluded.label,
			error_message = excluded.error_message,
			screenshot_path = excluded.screenshot_path,
			processed_at = excluded.processed_at
	`

	_, err := r.db.ExecContext(ctx, query, it.TaskID, it.Index, it.Status, it.Label, it.ErrorMessage, it.ScreenshotPath, unixOrNil(it.ProcessedAt))
	if err != nil {
		return fmt.Errorf("could not update item: %w", err)
	}

	return nil
}

func unixOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timeOrNil(u *int64) *time.Time {
	if u == nil {
		return nil
	}
	t := time.Unix(*u, 0).UTC()
	return &t
}
