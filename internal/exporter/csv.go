// Package exporter writes the cleaned dataset to its flat-file
// artifacts: a CSV copy and a data-profile workbook.
package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fifaclean/internal/dataset"
)

// timeLayout formats time cells in the CSV output.
const timeLayout = "2006-01-02 15:04:05"

// WriteDatasetCSV writes the dataset to a CSV file: UTF-8 BOM for
// Excel compatibility, header row of column names, one row per record,
// empty cells for nulls. The parent directory is created when absent.
func WriteDatasetCSV(path string, ds *dataset.Dataset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	// BOM helps Excel recognize UTF-8.
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		file.Close()
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(ds.Columns()); err != nil {
		file.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}

	schema := ds.Schema()
	record := make([]string, len(schema))
	for row := 0; row < ds.Rows(); row++ {
		for i, info := range schema {
			cell, err := cellString(ds, info, row)
			if err != nil {
				file.Close()
				return err
			}
			record[i] = cell
		}
		if err := writer.Write(record); err != nil {
			file.Close()
			return fmt.Errorf("failed to write record %d: %w", row, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return file.Close()
}

// cellString formats one cell. Floats use the shortest representation
// that round-trips; nulls become empty cells.
func cellString(ds *dataset.Dataset, info dataset.ColumnInfo, row int) (string, error) {
	switch info.Kind {
	case dataset.KindNumeric:
		nums, valid, err := ds.Numeric(info.Name)
		if err != nil {
			return "", err
		}
		if !valid[row] {
			return "", nil
		}
		return strconv.FormatFloat(nums[row], 'f', -1, 64), nil
	case dataset.KindTime:
		times, valid, err := ds.Times(info.Name)
		if err != nil {
			return "", err
		}
		if !valid[row] {
			return "", nil
		}
		return times[row].Format(timeLayout), nil
	default:
		texts, valid, err := ds.Text(info.Name)
		if err != nil {
			return "", err
		}
		if !valid[row] {
			return "", nil
		}
		return texts[row], nil
	}
}
