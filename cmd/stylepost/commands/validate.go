package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/stylepost/stylepost/internal/app/validate"
	"github.com/stylepost/stylepost/internal/conventions"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/printer"
	"github.com/stylepost/stylepost/internal/selectors"
)

type ValidateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	recordsPath   string
	imagesDir     string
	selectorsPath string
	format        string
}

// NewValidateCommand returns the validate command.
func NewValidateCommand(rootCmd *RootCommand, app *kingpin.Application) *ValidateCommand {
	c := &ValidateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("validate", "Check a record file, its images and the locator table without opening a browser.")
	c.Cmd.Flag("records", "Record file (.csv, .xlsx or .xlsm).").Required().StringVar(&c.recordsPath)
	c.Cmd.Flag("images", "Directory containing the image files the records reference.").Required().StringVar(&c.imagesDir)
	c.Cmd.Flag("selectors", "Locator table file (defaults to selectors.yaml in the data dir).").StringVar(&c.selectorsPath)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c ValidateCommand) Name() string { return c.Cmd.FullCommand() }

func (c ValidateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	selectorsPath := c.selectorsPath
	if selectorsPath == "" {
		selectorsPath = filepath.Join(c.rootCmd.DataDir, conventions.SelectorsFile)
	}
	abs, err := filepath.Abs(selectorsPath)
	if err != nil {
		return fmt.Errorf("could not resolve locator table path: %w", err)
	}

	// Create validate service.
	svc, err := validate.NewService(validate.ServiceConfig{
		Selectors: selectors.NewYAMLRepository(os.DirFS(filepath.Dir(abs))),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute checks.
	results, err := svc.Validate(ctx, validate.Request{
		RecordsPath:   c.recordsPath,
		ImagesDir:     c.imagesDir,
		SelectorsPath: filepath.Base(abs),
	})
	if err != nil {
		return fmt.Errorf("could not validate: %w", err)
	}

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintCheckResults(results); err != nil {
		return fmt.Errorf("could not print results: %w", err)
	}

	if model.HasErrors(results) {
		return fmt.Errorf("validation failed")
	}

	return nil
}
