// Package store reads and writes datasets as SQLite tables using the
// pure-Go modernc.org/sqlite driver.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"fifaclean/internal/dataset"
)

// timeLayout is the format SQLite datetime text columns use.
const timeLayout = "2006-01-02 15:04:05"

// Open opens an existing SQLite store for reading. A missing file is
// an error: sql.Open would silently create an empty database.
func Open(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("store %s is not accessible: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	return db, nil
}

// OpenForWrite opens (or creates) a SQLite store for writing.
func OpenForWrite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	return db, nil
}

// ReadQuery executes a query and materializes the result as a dataset.
// Column kinds are inferred from the scanned values: a column whose
// non-null values are all numeric becomes numeric, anything else text.
// A column with no values at all falls back to its declared SQL type.
func ReadQuery(ctx context.Context, db *sql.DB, query string) (*dataset.Dataset, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read column names: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	cells := make([][]any, len(names))
	count := 0
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", count, err)
		}
		for i, v := range values {
			cells[i] = append(cells[i], v)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	ds := dataset.New(count)
	for i, name := range names {
		if err := addColumn(ds, name, cells[i], types[i].DatabaseTypeName()); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// addColumn infers a column kind from the scanned values and appends
// the column to the dataset.
func addColumn(ds *dataset.Dataset, name string, values []any, declaredType string) error {
	numeric := true
	hasValue := false
	for _, v := range values {
		switch v.(type) {
		case nil:
		case int64, float64:
			hasValue = true
		default:
			numeric = false
			hasValue = true
		}
	}
	if !hasValue {
		numeric = declaredNumeric(declaredType)
	}

	valid := make([]bool, len(values))
	if numeric {
		nums := make([]float64, len(values))
		for i, v := range values {
			switch x := v.(type) {
			case int64:
				nums[i] = float64(x)
				valid[i] = true
			case float64:
				nums[i] = x
				valid[i] = true
			}
		}
		return ds.AddNumeric(name, nums, valid)
	}

	texts := make([]string, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case nil:
		case string:
			texts[i] = x
			valid[i] = true
		case []byte:
			texts[i] = string(x)
			valid[i] = true
		case int64:
			texts[i] = strconv.FormatInt(x, 10)
			valid[i] = true
		case float64:
			texts[i] = strconv.FormatFloat(x, 'f', -1, 64)
			valid[i] = true
		default:
			texts[i] = fmt.Sprint(x)
			valid[i] = true
		}
	}
	return ds.AddText(name, texts, valid)
}

// declaredNumeric reports whether a declared SQLite type denotes a
// numeric affinity.
func declaredNumeric(declared string) bool {
	t := strings.ToUpper(declared)
	for _, marker := range []string{"INT", "REAL", "FLOA", "DOUB", "NUM", "DEC"} {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return false
}

// QuoteIdentifier quotes a table or column name for embedding in SQL.
// SQLite doubles embedded double quotes; Go's %q would backslash-escape
// them, which SQLite does not understand.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// WriteTable writes a dataset as a table with full overwrite
// semantics: drop, create, and insert run inside one transaction, so a
// failed write leaves the previous table intact.
func WriteTable(ctx context.Context, db *sql.DB, table string, ds *dataset.Dataset) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdentifier(table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}

	schema := ds.Schema()
	defs := make([]string, len(schema))
	for i, info := range schema {
		defs[i] = QuoteIdentifier(info.Name) + " " + sqlType(ds, info)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdentifier(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	quoted := make([]string, len(schema))
	for i, info := range schema {
		quoted[i] = QuoteIdentifier(info.Name)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(schema)), ",")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdentifier(table), strings.Join(quoted, ", "), placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for row := 0; row < ds.Rows(); row++ {
		args, err := rowArgs(ds, schema, row)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", row, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table %s: %w", table, err)
	}
	return nil
}

// rowArgs converts one dataset row to driver arguments, with nil for
// null cells.
func rowArgs(ds *dataset.Dataset, schema []dataset.ColumnInfo, row int) ([]any, error) {
	args := make([]any, len(schema))
	for i, info := range schema {
		switch info.Kind {
		case dataset.KindNumeric:
			nums, valid, err := ds.Numeric(info.Name)
			if err != nil {
				return nil, err
			}
			if valid[row] {
				args[i] = nums[row]
			}
		case dataset.KindText:
			texts, valid, err := ds.Text(info.Name)
			if err != nil {
				return nil, err
			}
			if valid[row] {
				args[i] = texts[row]
			}
		case dataset.KindTime:
			times, valid, err := ds.Times(info.Name)
			if err != nil {
				return nil, err
			}
			if valid[row] {
				args[i] = times[row].Format(timeLayout)
			}
		}
	}
	return args, nil
}

// sqlType picks the SQL column type: TEXT for text and time columns,
// INTEGER for numeric columns whose non-null values are all integral,
// REAL otherwise.
func sqlType(ds *dataset.Dataset, info dataset.ColumnInfo) string {
	if info.Kind != dataset.KindNumeric {
		return "TEXT"
	}
	nums, valid, err := ds.Numeric(info.Name)
	if err != nil {
		return "REAL"
	}
	for i, v := range nums {
		if !valid[i] {
			continue
		}
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt64 {
			return "REAL"
		}
	}
	return "INTEGER"
}
