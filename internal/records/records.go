// Package records loads the tabular record source: one row per style to
// post, CSV or XLSX, mapped by header names.
package records

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/stylepost/stylepost/internal/model"
)

// Column names of the record file header.
const (
	ColumnImage      = "image"
	ColumnStylist    = "stylist"
	ColumnStyleName  = "style_name"
	ColumnCategory   = "category"
	ColumnLength     = "length"
	ColumnComment    = "comment"
	ColumnMenuDetail = "menu_detail"
	ColumnCoupon     = "coupon"
	ColumnHashtags   = "hashtags"
)

var requiredColumns = []string{ColumnImage, ColumnStylist, ColumnStyleName, ColumnCategory, ColumnLength}

// Load reads the record file at path, choosing the parser by extension
// (.csv, .xlsx, .xlsm).
func Load(path string) ([]model.Record, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = loadCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = loadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported record file type %q: %w", filepath.Ext(path), model.ErrNotValid)
	}
	if err != nil {
		return nil, err
	}

	return fromRows(rows)
}

func loadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open record file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // Validated against the header below.
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse CSV: %w", err)
	}
	return rows, nil
}

func loadXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open record file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %w", model.ErrNotValid)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func fromRows(rows [][]string) ([]model.Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("record file is empty: %w", model.ErrNotValid)
	}

	columns, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		rec := model.Record{
			ImageFile:  cell(ColumnImage),
			Stylist:    cell(ColumnStylist),
			StyleName:  cell(ColumnStyleName),
			Category:   model.ParseCategory(cell(ColumnCategory)),
			Length:     cell(ColumnLength),
			Comment:    cell(ColumnComment),
			MenuDetail: cell(ColumnMenuDetail),
			Coupon:     cell(ColumnCoupon),
			Hashtags:   cell(ColumnHashtags),
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("record file has no data rows: %w", model.ErrNotValid)
	}

	return records, nil
}

func mapHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns %s: %w", strings.Join(missing, ", "), model.ErrNotValid)
	}

	return columns, nil
}

// ValidateImages checks that every referenced image file exists in imageDir.
// This is the fail-fast pre-run check: a missing image aborts the task
// before any browser work begins.
func ValidateImages(records []model.Record, imageDir string) error {
	var missing []string
	for _, rec := range records {
		if _, err := os.Stat(filepath.Join(imageDir, rec.ImageFile)); err != nil {
			missing = append(missing, rec.ImageFile)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing image files %s: %w", strings.Join(missing, ", "), model.ErrNotValid)
	}
	return nil
}
