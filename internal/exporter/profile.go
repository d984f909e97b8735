package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"fifaclean/internal/dataset"
)

// Profile carries the run metrics shown on the workbook's Summary and
// Outliers sheets.
type Profile struct {
	NullsBefore   int
	NullsAfter    int
	NullReduction float64
	Positions     map[string]int
	Clipped       map[string]int
}

// WriteProfileWorkbook writes the data-profile workbook: a Summary
// sheet with the run metrics, a Columns sheet with per-column
// statistics, and an Outliers sheet with the clipped counts.
func WriteProfileWorkbook(path string, ds *dataset.Dataset, profile Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, ds, profile); err != nil {
		return err
	}
	if err := writeColumnsSheet(f, ds); err != nil {
		return err
	}
	if err := writeOutliersSheet(f, profile); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, ds *dataset.Dataset, profile Profile) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	rows := [][]any{
		{"Metric", "Value"},
		{"Rows", ds.Rows()},
		{"Columns", ds.NumColumns()},
		{"Remaining nulls", ds.TotalNulls()},
		{"Nulls before imputation", profile.NullsBefore},
		{"Nulls after imputation", profile.NullsAfter},
		{"Null reduction %", profile.NullReduction},
	}
	for _, pos := range sortedKeys(profile.Positions) {
		rows = append(rows, []any{"Position " + pos, profile.Positions[pos]})
	}
	return writeRows(f, sheet, rows)
}

func writeColumnsSheet(f *excelize.File, ds *dataset.Dataset) error {
	const sheet = "Columns"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create columns sheet: %w", err)
	}

	rows := [][]any{
		{"Column", "Kind", "Nulls", "Min", "Mean", "Max", "Distinct"},
	}
	for _, info := range ds.Schema() {
		row := []any{info.Name, info.Kind.String(), ds.NullCount(info.Name), nil, nil, nil, nil}
		switch info.Kind {
		case dataset.KindNumeric:
			values, valid, err := ds.Numeric(info.Name)
			if err != nil {
				return err
			}
			nonNull := dataset.Compact(values, valid)
			if min, max, ok := dataset.MinMax(nonNull); ok {
				mean, _ := dataset.Mean(nonNull)
				row[3], row[4], row[5] = min, mean, max
			}
		case dataset.KindText:
			values, valid, err := ds.Text(info.Name)
			if err != nil {
				return err
			}
			seen := make(map[string]bool)
			for i, v := range values {
				if valid[i] {
					seen[v] = true
				}
			}
			row[6] = len(seen)
		}
		rows = append(rows, row)
	}
	return writeRows(f, sheet, rows)
}

func writeOutliersSheet(f *excelize.File, profile Profile) error {
	const sheet = "Outliers"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create outliers sheet: %w", err)
	}

	rows := [][]any{{"Column", "Clipped values"}}
	for _, name := range sortedKeys(profile.Clipped) {
		rows = append(rows, []any{name, profile.Clipped[name]})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("invalid cell coordinates: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
