package model

import (
	"fmt"
	"time"
)

// TaskStatus represents the status of a batch posting task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has been created but not claimed yet.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusProcessing indicates a worker is executing the task.
	TaskStatusProcessing TaskStatus = "processing"
	// TaskStatusSucceeded indicates every item ended succeeded or skipped.
	TaskStatusSucceeded TaskStatus = "succeeded"
	// TaskStatusFailed indicates the task ended with at least one failure.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusInterrupted indicates the task was stopped cooperatively and
	// can be resumed later.
	TaskStatusInterrupted TaskStatus = "interrupted"
)

// Terminal returns true when the status can't transition any further.
// Interrupted is not terminal, a resume moves it back to processing.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusSucceeded || s == TaskStatusFailed
}

// Task represents one batch submission run against the salon portal.
type Task struct {
	ID             string
	Status         TaskStatus
	TotalItems     int
	CompletedItems int
	RecordsPath    string
	ImagesDir      string
	ErrorSummary   string
	ScreenshotPath string
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// Validate validates the task state invariants.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required: %w", ErrNotValid)
	}
	if t.RecordsPath == "" {
		return fmt.Errorf("records path is required: %w", ErrNotValid)
	}
	if t.ImagesDir == "" {
		return fmt.Errorf("images dir is required: %w", ErrNotValid)
	}
	if t.TotalItems < 0 || t.CompletedItems < 0 || t.CompletedItems > t.TotalItems {
		return fmt.Errorf("completed items must be within [0, total items]: %w", ErrNotValid)
	}
	return nil
}

// ItemStatus represents the status of a single record within a task.
type ItemStatus string

const (
	// ItemStatusPending indicates the item has not been attempted yet.
	ItemStatusPending ItemStatus = "pending"
	// ItemStatusProcessing indicates the item is being submitted right now.
	ItemStatusProcessing ItemStatus = "processing"
	// ItemStatusSucceeded indicates the item was submitted.
	ItemStatusSucceeded ItemStatus = "succeeded"
	// ItemStatusFailed indicates the item submission failed.
	ItemStatusFailed ItemStatus = "failed"
	// ItemStatusSkipped indicates the item was deliberately not submitted.
	ItemStatusSkipped ItemStatus = "skipped"
)

// Done returns true when the item must not be attempted again on resume.
// Failed items are retried in place, they are not done.
func (s ItemStatus) Done() bool {
	return s == ItemStatusSucceeded || s == ItemStatusSkipped
}

// Item represents one record within a task, one row of the input file.
// The (TaskID, Index) pair is stable across resumes.
type Item struct {
	TaskID         string
	Index          int
	Status         ItemStatus
	Label          string
	ErrorMessage   string
	ScreenshotPath string
	ProcessedAt    *time.Time
}

// CountSucceeded returns the number of succeeded items. It is the value
// CompletedItems must always match on the owning task.
func CountSucceeded(items []Item) int {
	n := 0
	for _, it := range items {
		if it.Status == ItemStatusSucceeded {
			n++
		}
	}
	return n
}

// AllDone returns true when every item is succeeded or skipped.
func AllDone(items []Item) bool {
	for _, it := range items {
		if !it.Status.Done() {
			return false
		}
	}
	return true
}
