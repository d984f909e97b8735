// Package inspect produces a read-only structural report of a SQLite
// store: its tables, their columns and row counts, sample value kinds,
// discovered football-attribute columns, and table recommendations for
// the cleaning pipeline.
package inspect

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"fifaclean/internal/dataset"
	"fifaclean/internal/store"
)

// Report section limits.
const (
	maxColumnsShown    = 10
	maxSampleColumns   = 5
	maxAttributesShown = 15
	sampleRows         = 3
)

// targetAttributes are the attribute-name fragments searched for when
// identifying football rating columns.
var targetAttributes = []string{
	"overall", "potential", "rating", "age", "position",
	"acceleration", "speed", "stamina", "strength",
	"control", "dribbling", "passing", "crossing",
	"finishing", "positioning", "vision", "reaction",
	"shot", "defense", "physic",
}

// preferredMainTable is the table the cleaning pipeline consumes.
const preferredMainTable = "Player_Attributes"

// ColumnDef describes one column as declared in the store.
type ColumnDef struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

// TableStructure is the analysis of one table.
type TableStructure struct {
	Name     string
	RowCount int
	Columns  []ColumnDef
	Sample   *dataset.Dataset
}

// Analyzer inspects the structure of a SQLite store.
type Analyzer struct {
	db   *sql.DB
	path string
}

// NewAnalyzer opens the store at path for analysis.
func NewAnalyzer(path string) (*Analyzer, error) {
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	return &Analyzer{db: db, path: path}, nil
}

// Close releases the store connection.
func (a *Analyzer) Close() error {
	return a.db.Close()
}

// Tables returns all table names sorted alphabetically.
func (a *Analyzer) Tables(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Structure analyzes one table: declared columns, row count, and a
// small value sample.
func (a *Analyzer) Structure(ctx context.Context, table string) (*TableStructure, error) {
	columns, err := a.columns(ctx, table)
	if err != nil {
		return nil, err
	}

	var count int
	countQuery := "SELECT COUNT(*) FROM " + store.QuoteIdentifier(table)
	if err := a.db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}

	sample, err := store.ReadQuery(ctx, a.db,
		fmt.Sprintf("SELECT * FROM %s LIMIT %d", store.QuoteIdentifier(table), sampleRows))
	if err != nil {
		// The sample is informative only.
		sample = nil
	}

	return &TableStructure{
		Name:     table,
		RowCount: count,
		Columns:  columns,
		Sample:   sample,
	}, nil
}

// columns reads the declared column definitions of a table.
func (a *Analyzer) columns(ctx context.Context, table string) ([]ColumnDef, error) {
	rows, err := a.db.QueryContext(ctx, "PRAGMA table_info("+store.QuoteIdentifier(table)+")")
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var defs []ColumnDef
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, declared   string
			defaultValue     sql.NullString
		)
		if err := rows.Scan(&cid, &name, &declared, &notNull, &defaultValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		defs = append(defs, ColumnDef{
			Name:       name,
			Type:       declared,
			NotNull:    notNull != 0,
			PrimaryKey: pk != 0,
		})
	}
	return defs, rows.Err()
}

// FindAttributes returns, per table, the columns whose lowercase name
// contains one of the target attribute fragments.
func (a *Analyzer) FindAttributes(ctx context.Context) (map[string][]string, error) {
	tables, err := a.Tables(ctx)
	if err != nil {
		return nil, err
	}

	found := make(map[string][]string)
	for _, table := range tables {
		columns, err := a.columns(ctx, table)
		if err != nil {
			return nil, err
		}
		for _, col := range columns {
			lower := strings.ToLower(col.Name)
			for _, attr := range targetAttributes {
				if strings.Contains(lower, attr) {
					found[table] = append(found[table], col.Name)
					break
				}
			}
		}
	}
	return found, nil
}

// WriteReport writes the complete sectioned report to w.
func (a *Analyzer) WriteReport(ctx context.Context, w io.Writer) error {
	line := strings.Repeat("=", 80)
	section := strings.Repeat("-", 40)

	fmt.Fprintf(w, "%s\n", line)
	fmt.Fprintf(w, "STRUCTURE REPORT - FOOTBALL DATABASE\n")
	fmt.Fprintf(w, "%s\n", line)

	tables, err := a.Tables(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n1. AVAILABLE TABLES (%d):\n%s\n", len(tables), section)
	for i, table := range tables {
		fmt.Fprintf(w, "   %2d. %s\n", i+1, table)
	}

	fmt.Fprintf(w, "\n2. DETAILED TABLE ANALYSIS:\n%s\n", section)
	for _, table := range tables {
		structure, err := a.Structure(ctx, table)
		if err != nil {
			return err
		}
		writeStructure(w, structure)
	}

	fmt.Fprintf(w, "\n3. IDENTIFIED FOOTBALL ATTRIBUTES:\n%s\n", section)
	attrs, err := a.FindAttributes(ctx)
	if err != nil {
		return err
	}
	if len(attrs) == 0 {
		fmt.Fprintf(w, "   No columns matched the usual attribute names\n")
	}
	for _, table := range tables {
		columns, ok := attrs[table]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "\n   Table '%s':\n", table)
		for i, col := range columns {
			if i == maxAttributesShown {
				fmt.Fprintf(w, "     ... and %d more attributes\n", len(columns)-maxAttributesShown)
				break
			}
			fmt.Fprintf(w, "     - %s\n", col)
		}
	}

	writeRecommendations(w, section, tables)

	fmt.Fprintf(w, "\n%s\n", line)
	fmt.Fprintf(w, "END OF REPORT\n")
	fmt.Fprintf(w, "%s\n", line)
	return nil
}

func writeStructure(w io.Writer, s *TableStructure) {
	fmt.Fprintf(w, "\n   TABLE: %s\n", s.Name)
	fmt.Fprintf(w, "   - Rows: %d\n", s.RowCount)
	fmt.Fprintf(w, "   - Columns: %d\n", len(s.Columns))

	if len(s.Columns) > 0 {
		fmt.Fprintf(w, "   - Main columns:\n")
		for i, col := range s.Columns {
			if i == maxColumnsShown {
				fmt.Fprintf(w, "     ... and %d more columns\n", len(s.Columns)-maxColumnsShown)
				break
			}
			fmt.Fprintf(w, "     %2d. %-25s (%s)\n", i+1, col.Name, col.Type)
		}
	}

	if s.Sample != nil && s.Sample.Rows() > 0 {
		fmt.Fprintf(w, "   - Value kinds (first %d columns):\n", maxSampleColumns)
		for i, info := range s.Sample.Schema() {
			if i == maxSampleColumns {
				break
			}
			fmt.Fprintf(w, "     - %-20s: %s\n", info.Name, info.Kind)
		}
	}
}

func writeRecommendations(w io.Writer, section string, tables []string) {
	fmt.Fprintf(w, "\n4. PROJECT RECOMMENDATIONS:\n%s\n", section)

	var playerTables, attributeTables []string
	hasMain := false
	for _, table := range tables {
		lower := strings.ToLower(table)
		if strings.Contains(lower, "player") {
			playerTables = append(playerTables, table)
		}
		if strings.Contains(lower, "attribute") {
			attributeTables = append(attributeTables, table)
		}
		if table == preferredMainTable {
			hasMain = true
		}
	}

	if len(playerTables) > 0 {
		fmt.Fprintf(w, "   - Player tables identified:\n")
		for _, table := range playerTables {
			fmt.Fprintf(w, "     - %s\n", table)
		}
	}
	if len(attributeTables) > 0 {
		fmt.Fprintf(w, "   - Attribute tables identified:\n")
		for _, table := range attributeTables {
			fmt.Fprintf(w, "     - %s\n", table)
		}
	}

	fmt.Fprintf(w, "\n   - RECOMMENDED MAIN TABLE:\n")
	if hasMain {
		fmt.Fprintf(w, "     %s - holds player ratings and statistics\n", preferredMainTable)
	} else {
		fmt.Fprintf(w, "     none found: expected %s\n", preferredMainTable)
	}
}
