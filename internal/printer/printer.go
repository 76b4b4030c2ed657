package printer

import "github.com/stylepost/stylepost/internal/model"

// Printer knows how to print task information in different formats.
type Printer interface {
	PrintTaskStatus(task model.Task, items []model.Item) error
	PrintCheckResults(results []model.CheckResult) error
	PrintMessage(msg string) error
}
