package cascade

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"cascade-router/internal/model"
)

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"hour",
		"time",
		"station",
		"inflow",
		"outflow",
		"storage_start",
		"storage_end",
		"spillage",
		"regime",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Hour),
			fmtTime(r.Time),
			r.Station,
			fmtFloat(r.Inflow),
			fmtFloat(r.Outflow),
			fmtFloat(r.StorageStart),
			fmtFloat(r.StorageEnd),
			fmtFloat(r.Spillage),
			string(r.Regime),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// WriteSeriesCSV writes a wide table: one time column followed by one column
// per station, in the given order. All series must share start and length.
func WriteSeriesCSV(path string, order []string, series map[string]model.Series) error {
	if len(order) == 0 {
		return fmt.Errorf("no stations to write")
	}
	first, ok := series[order[0]]
	if !ok {
		return fmt.Errorf("no series for station %s", order[0])
	}
	for _, id := range order[1:] {
		s, ok := series[id]
		if !ok {
			return fmt.Errorf("no series for station %s", id)
		}
		if s.Len() != first.Len() || !s.Start.Equal(first.Start) {
			return fmt.Errorf("series for %s is not aligned with %s", id, order[0])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(append([]string{"time"}, order...)); err != nil {
		return err
	}
	row := make([]string, len(order)+1)
	for t := 0; t < first.Len(); t++ {
		row[0] = fmtTime(first.Time(t))
		for j, id := range order {
			row[j+1] = fmtFloat(series[id].Values[t])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
