package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/stylepost/stylepost/internal/model"
)

// TablePrinter prints task information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintTaskStatus prints detailed task status followed by its items.
func (t *TablePrinter) PrintTaskStatus(task model.Task, items []model.Item) error {
	fmt.Fprintf(t.writer, "ID:          %s\n", task.ID)
	fmt.Fprintf(t.writer, "Status:      %s\n", task.Status)
	fmt.Fprintf(t.writer, "Progress:    %d/%d\n", task.CompletedItems, task.TotalItems)
	fmt.Fprintf(t.writer, "Records:     %s\n", task.RecordsPath)
	fmt.Fprintf(t.writer, "Images:      %s\n", task.ImagesDir)
	fmt.Fprintf(t.writer, "Created:     %s\n", FormatTimestamp(task.CreatedAt))

	if task.CompletedAt != nil {
		fmt.Fprintf(t.writer, "Completed:   %s\n", FormatTimestamp(*task.CompletedAt))
	}
	if task.ErrorSummary != "" {
		fmt.Fprintf(t.writer, "Error:       %s\n", task.ErrorSummary)
	}
	if task.ScreenshotPath != "" {
		fmt.Fprintf(t.writer, "Screenshot:  %s\n", task.ScreenshotPath)
	}

	if len(items) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "INDEX\tSTATUS\tLABEL\tPROCESSED\tERROR")

	// Print rows.
	for _, it := range items {
		processed := "-"
		if it.ProcessedAt != nil {
			processed = TimeAgo(*it.ProcessedAt)
		}
		errMsg := "-"
		if it.ErrorMessage != "" {
			errMsg = it.ErrorMessage
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", it.Index, it.Status, it.Label, processed, errMsg)
	}

	return nil
}

// PrintCheckResults prints preflight check results in a table format.
func (t *TablePrinter) PrintCheckResults(results []model.CheckResult) error {
	if len(results) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

	// Print header.
	fmt.Fprintln(tw, "CHECK\tSTATUS\tMESSAGE")

	// Print rows.
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Status, r.Message)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	ok, warnings, errors := model.CountByStatus(results)
	fmt.Fprintf(t.writer, "\n%d ok, %d warnings, %d errors\n", ok, warnings, errors)

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
