package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifaclean/internal/dataset"
)

func buildExportDataset(t *testing.T) *dataset.Dataset {
	t.Helper()

	ds := dataset.New(3)
	require.NoError(t, ds.AddNumeric("id", []float64{1, 2, 3}, nil))
	require.NoError(t, ds.AddNumeric("overall_rating",
		[]float64{66.5, 0, 100},
		[]bool{true, false, true}))
	require.NoError(t, ds.AddText("player_name",
		[]string{"Iker Casillas", "", "Marco Duarte"},
		[]bool{true, false, true}))
	require.NoError(t, ds.AddTime("birthday",
		[]time.Time{
			time.Date(1981, 5, 20, 0, 0, 0, 0, time.UTC),
			{},
			time.Date(1988, 10, 2, 0, 0, 0, 0, time.UTC),
		},
		[]bool{true, false, true}))
	return ds
}

func TestWriteDatasetCSV(t *testing.T) {
	ds := buildExportDataset(t)
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	require.NoError(t, WriteDatasetCSV(path, ds))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"id", "overall_rating", "player_name", "birthday"}, records[0])
	assert.Equal(t, []string{"1", "66.5", "Iker Casillas", "1981-05-20 00:00:00"}, records[1])
	// Null cells are empty, not zero.
	assert.Equal(t, []string{"2", "", "", ""}, records[2])
	assert.Equal(t, []string{"3", "100", "Marco Duarte", "1988-10-02 00:00:00"}, records[3])
}

func TestWriteDatasetCSV_FloatFormatting(t *testing.T) {
	ds := dataset.New(3)
	require.NoError(t, ds.AddNumeric("value", []float64{0.1, 33.333333333333336, 50}, nil))

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteDatasetCSV(path, ds))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	// Shortest round-trip representation: no trailing zeros, no
	// scientific notation for these magnitudes.
	assert.Equal(t, "0.1", records[1][0])
	assert.Equal(t, "33.333333333333336", records[2][0])
	assert.Equal(t, "50", records[3][0])
}

func TestWriteDatasetCSV_UncreatableDirectory(t *testing.T) {
	ds := buildExportDataset(t)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := WriteDatasetCSV(filepath.Join(blocker, "sub", "out.csv"), ds)
	assert.Error(t, err)
}
