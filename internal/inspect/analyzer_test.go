package inspect

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func createAnalyzerFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "database.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE Player_Attributes (
			id INTEGER PRIMARY KEY,
			player_api_id INTEGER NOT NULL,
			overall_rating INTEGER,
			potential INTEGER,
			preferred_foot TEXT,
			sprint_speed INTEGER,
			ball_control INTEGER
		)`,
		`CREATE TABLE Player (
			player_api_id INTEGER,
			player_name TEXT,
			birthday TEXT
		)`,
		`CREATE TABLE League (id INTEGER, name TEXT)`,
		`INSERT INTO Player_Attributes VALUES (1, 10, 70, 75, 'right', 80, 65)`,
		`INSERT INTO Player_Attributes VALUES (2, 11, 68, NULL, 'left', 72, 60)`,
		`INSERT INTO Player VALUES (10, 'Iker Casillas', '1981-05-20 00:00:00')`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestAnalyzer_Tables(t *testing.T) {
	a, err := NewAnalyzer(createAnalyzerFixture(t))
	require.NoError(t, err)
	defer a.Close()

	tables, err := a.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"League", "Player", "Player_Attributes"}, tables)
}

func TestAnalyzer_Structure(t *testing.T) {
	a, err := NewAnalyzer(createAnalyzerFixture(t))
	require.NoError(t, err)
	defer a.Close()

	s, err := a.Structure(context.Background(), "Player_Attributes")
	require.NoError(t, err)

	assert.Equal(t, "Player_Attributes", s.Name)
	assert.Equal(t, 2, s.RowCount)
	require.Len(t, s.Columns, 7)

	assert.Equal(t, "id", s.Columns[0].Name)
	assert.Equal(t, "INTEGER", s.Columns[0].Type)
	assert.True(t, s.Columns[0].PrimaryKey)
	assert.Equal(t, "player_api_id", s.Columns[1].Name)
	assert.True(t, s.Columns[1].NotNull)
	assert.False(t, s.Columns[2].NotNull)
	assert.Equal(t, "preferred_foot", s.Columns[4].Name)
	assert.Equal(t, "TEXT", s.Columns[4].Type)

	require.NotNil(t, s.Sample)
	assert.Equal(t, 2, s.Sample.Rows())
	assert.True(t, s.Sample.Has("overall_rating"))
}

func TestAnalyzer_FindAttributes(t *testing.T) {
	a, err := NewAnalyzer(createAnalyzerFixture(t))
	require.NoError(t, err)
	defer a.Close()

	found, err := a.FindAttributes(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"overall_rating", "potential", "sprint_speed", "ball_control",
	}, found["Player_Attributes"])
	assert.NotContains(t, found, "League")
}

func TestAnalyzer_WriteReport(t *testing.T) {
	a, err := NewAnalyzer(createAnalyzerFixture(t))
	require.NoError(t, err)
	defer a.Close()

	var out bytes.Buffer
	require.NoError(t, a.WriteReport(context.Background(), &out))
	report := out.String()

	assert.Contains(t, report, "STRUCTURE REPORT - FOOTBALL DATABASE")
	assert.Contains(t, report, "1. AVAILABLE TABLES (3):")
	assert.Contains(t, report, "2. DETAILED TABLE ANALYSIS:")
	assert.Contains(t, report, "TABLE: Player_Attributes")
	assert.Contains(t, report, "- Rows: 2")
	assert.Contains(t, report, "3. IDENTIFIED FOOTBALL ATTRIBUTES:")
	assert.Contains(t, report, "overall_rating")
	assert.Contains(t, report, "4. PROJECT RECOMMENDATIONS:")
	assert.Contains(t, report, "RECOMMENDED MAIN TABLE:")
	assert.Contains(t, report, "Player_Attributes - holds player ratings and statistics")
	assert.Contains(t, report, "END OF REPORT")
}

func TestNewAnalyzer_MissingStore(t *testing.T) {
	_, err := NewAnalyzer(filepath.Join(t.TempDir(), "missing.sqlite"))
	assert.Error(t, err)
}
