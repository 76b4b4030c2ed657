package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/stylepost/stylepost/internal/app/interrupt"
	"github.com/stylepost/stylepost/internal/printer"
	"github.com/stylepost/stylepost/internal/storage/sqlite"
)

type InterruptCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
}

// NewInterruptCommand returns the interrupt command.
func NewInterruptCommand(rootCmd *RootCommand, app *kingpin.Application) *InterruptCommand {
	c := &InterruptCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("interrupt", "Flag a running task so it stops at the next record boundary.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)

	return c
}

func (c InterruptCommand) Name() string { return c.Cmd.FullCommand() }

func (c InterruptCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	// Create interrupt service.
	svc, err := interrupt.NewService(interrupt.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute interrupt.
	task, err := svc.Interrupt(ctx, c.taskID)
	if err != nil {
		return fmt.Errorf("could not interrupt task: %w", err)
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	return p.PrintMessage(fmt.Sprintf("Task %s flagged for interruption, it stops after the record in flight.", task.ID))
}
