package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/stylepost/stylepost/internal/model"
)

// JSONPrinter prints task information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// taskOutput represents the full task status output.
type taskOutput struct {
	ID             string       `json:"id"`
	Status         string       `json:"status"`
	TotalItems     int          `json:"total_items"`
	CompletedItems int          `json:"completed_items"`
	RecordsPath    string       `json:"records_path"`
	ImagesDir      string       `json:"images_dir"`
	ErrorSummary   string       `json:"error_summary,omitempty"`
	ScreenshotPath string       `json:"screenshot_path,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	CompletedAt    *time.Time   `json:"completed_at"`
	Items          []itemOutput `json:"items"`
}

// itemOutput represents a single item in the status output.
type itemOutput struct {
	Index          int        `json:"index"`
	Status         string     `json:"status"`
	Label          string     `json:"label"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	ScreenshotPath string     `json:"screenshot_path,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at"`
}

// checkOutput represents a single preflight check result.
type checkOutput struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintTaskStatus prints detailed task status in JSON format.
func (j *JSONPrinter) PrintTaskStatus(task model.Task, items []model.Item) error {
	output := taskOutput{
		ID:             task.ID,
		Status:         string(task.Status),
		TotalItems:     task.TotalItems,
		CompletedItems: task.CompletedItems,
		RecordsPath:    task.RecordsPath,
		ImagesDir:      task.ImagesDir,
		ErrorSummary:   task.ErrorSummary,
		ScreenshotPath: task.ScreenshotPath,
		CreatedAt:      task.CreatedAt.UTC(),
		Items:          make([]itemOutput, 0, len(items)),
	}

	if task.CompletedAt != nil {
		utcTime := task.CompletedAt.UTC()
		output.CompletedAt = &utcTime
	}

	for _, it := range items {
		item := itemOutput{
			Index:          it.Index,
			Status:         string(it.Status),
			Label:          it.Label,
			ErrorMessage:   it.ErrorMessage,
			ScreenshotPath: it.ScreenshotPath,
		}
		if it.ProcessedAt != nil {
			utcTime := it.ProcessedAt.UTC()
			item.ProcessedAt = &utcTime
		}
		output.Items = append(output.Items, item)
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// PrintCheckResults prints preflight check results in JSON format.
func (j *JSONPrinter) PrintCheckResults(results []model.CheckResult) error {
	output := make([]checkOutput, 0, len(results))
	for _, r := range results {
		output = append(output, checkOutput{
			ID:      r.ID,
			Status:  string(r.Status),
			Message: r.Message,
		})
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
