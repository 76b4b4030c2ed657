// Package validate implements the preflight checks that run before any
// browser work: record file shape, image presence and locator table health.
package validate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stylepost/stylepost/internal/log"
	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/records"
	"github.com/stylepost/stylepost/internal/selectors"
)

// SelectorsGetter gets locator tables.
type SelectorsGetter interface {
	GetTable(ctx context.Context, path string) (selectors.Table, error)
}

// ServiceConfig is the configuration for the validate service.
type ServiceConfig struct {
	// LoadRecords loads the record file. Defaults to records.Load.
	LoadRecords func(path string) ([]model.Record, error)
	Selectors   SelectorsGetter
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.LoadRecords == nil {
		c.LoadRecords = records.Load
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Validate"})
	return nil
}

// Service runs preflight checks on a task's inputs.
type Service struct {
	loadRecords func(path string) ([]model.Record, error)
	selectors   SelectorsGetter
	logger      log.Logger
}

// NewService creates a new validate service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		loadRecords: cfg.LoadRecords,
		selectors:   cfg.Selectors,
		logger:      cfg.Logger,
	}, nil
}

// Request are the inputs to validate.
type Request struct {
	RecordsPath   string
	ImagesDir     string
	SelectorsPath string
}

// Validate runs every check and returns their results. The run itself only
// errors on bad arguments; failing checks are reported in the results.
func (s *Service) Validate(ctx context.Context, req Request) ([]model.CheckResult, error) {
	if req.RecordsPath == "" {
		return nil, fmt.Errorf("records path is required: %w", model.ErrNotValid)
	}

	results := []model.CheckResult{}

	recs := s.checkRecords(&results, req.RecordsPath)
	s.checkImages(&results, recs, req.ImagesDir)
	s.checkSelectors(ctx, &results, req.SelectorsPath)

	ok, warnings, errors := model.CountByStatus(results)
	s.logger.Infof("Preflight finished: %d ok, %d warnings, %d errors", ok, warnings, errors)

	return results, nil
}

func (s *Service) checkRecords(results *[]model.CheckResult, path string) []model.Record {
	recs, err := s.loadRecords(path)
	if err != nil {
		*results = append(*results, model.CheckResult{
			ID:      "records_file",
			Message: err.Error(),
			Status:  model.CheckStatusError,
		})
		return nil
	}

	*results = append(*results, model.CheckResult{
		ID:      "records_file",
		Message: fmt.Sprintf("%d records loaded", len(recs)),
		Status:  model.CheckStatusOK,
	})

	withoutCoupon := 0
	for _, rec := range recs {
		if rec.Coupon == "" {
			withoutCoupon++
		}
	}
	if withoutCoupon > 0 {
		*results = append(*results, model.CheckResult{
			ID:      "records_coupons",
			Message: fmt.Sprintf("%d records have no coupon, those posts get no coupon attached", withoutCoupon),
			Status:  model.CheckStatusWarning,
		})
	}

	return recs
}

func (s *Service) checkImages(results *[]model.CheckResult, recs []model.Record, imageDir string) {
	if recs == nil {
		return
	}

	if imageDir == "" {
		*results = append(*results, model.CheckResult{
			ID:      "images_present",
			Message: "images directory is required",
			Status:  model.CheckStatusError,
		})
		return
	}

	if info, err := os.Stat(imageDir); err != nil || !info.IsDir() {
		*results = append(*results, model.CheckResult{
			ID:      "images_present",
			Message: fmt.Sprintf("images directory %q is not readable", imageDir),
			Status:  model.CheckStatusError,
		})
		return
	}

	if err := records.ValidateImages(recs, imageDir); err != nil {
		*results = append(*results, model.CheckResult{
			ID:      "images_present",
			Message: err.Error(),
			Status:  model.CheckStatusError,
		})
		return
	}

	*results = append(*results, model.CheckResult{
		ID:      "images_present",
		Message: fmt.Sprintf("all %d image files present in %s", len(recs), filepath.Clean(imageDir)),
		Status:  model.CheckStatusOK,
	})
}

func (s *Service) checkSelectors(ctx context.Context, results *[]model.CheckResult, path string) {
	if s.selectors == nil || path == "" {
		return
	}

	table, err := s.selectors.GetTable(ctx, path)
	if err != nil {
		*results = append(*results, model.CheckResult{
			ID:      "selectors_table",
			Message: err.Error(),
			Status:  model.CheckStatusError,
		})
		return
	}

	*results = append(*results, model.CheckResult{
		ID:      "selectors_table",
		Message: fmt.Sprintf("locator table version %q loaded", table.Version),
		Status:  model.CheckStatusOK,
	})
}
