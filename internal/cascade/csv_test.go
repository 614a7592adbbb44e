package cascade

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"cascade-router/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteLedgerCSV(t *testing.T) {
	r, err := RouteReservoir(st("A", 10, 36000), series(5, 2), true)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, WriteLedgerCSV(path, r.Ledger))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "storage_end", rows[0][6])
	assert.Equal(t, []string{"0", "2021-03-01T00:00:00Z", "A", "5.000000", "10.000000", "36000.000000", "18000.000000", "0.000000", "DRAINING"}, rows[1])
	assert.Equal(t, "PASSING", rows[2][8])
}

func TestWriteSeriesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.csv")
	err := WriteSeriesCSV(path, []string{"B", "A"}, map[string]model.Series{
		"A": series(1, 2),
		"B": series(0.5, 0.25),
	})
	require.NoError(t, err)

	rows := readCSV(t, path)
	assert.Equal(t, [][]string{
		{"time", "B", "A"},
		{"2021-03-01T00:00:00Z", "0.500000", "1.000000"},
		{"2021-03-01T01:00:00Z", "0.250000", "2.000000"},
	}, rows)

	err = WriteSeriesCSV(path, []string{"A", "B"}, map[string]model.Series{
		"A": series(1, 2),
		"B": series(1),
	})
	assert.Error(t, err)
	assert.Error(t, WriteSeriesCSV(path, []string{"Z"}, map[string]model.Series{}))
}
