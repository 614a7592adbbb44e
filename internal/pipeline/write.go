package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cascade-router/internal/cascade"
	"cascade-router/internal/config"
	"cascade-router/internal/log"
	"cascade-router/internal/scale"
	"cascade-router/internal/store"
)

// Write emits the run's artifacts under cfg.Dir:
//
//	scaled/<year>.csv        always
//	combined.csv             when cfg.Combined
//	ledger/<station>.csv     when cfg.Ledger, one per storage station
//
// and the scaled series into SQLite when cfg.SQLitePath is set.
func Write(ctx context.Context, out *Output, cfg config.OutputConfig) error {
	order := out.Order()
	if len(order) == 0 {
		return fmt.Errorf("no station produced output")
	}

	scaledDir := filepath.Join(cfg.Dir, "scaled")
	if err := os.MkdirAll(scaledDir, 0755); err != nil {
		return err
	}
	for _, y := range scale.ByYear(out.Scaled) {
		path := filepath.Join(scaledDir, scale.Filename(y.Year))
		if err := cascade.WriteSeriesCSV(path, order, y.Series); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	if cfg.Combined {
		path := filepath.Join(cfg.Dir, "combined.csv")
		if err := cascade.WriteSeriesCSV(path, order, out.Routed.Combined()); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	if cfg.Ledger {
		ledgerDir := filepath.Join(cfg.Dir, "ledger")
		if err := os.MkdirAll(ledgerDir, 0755); err != nil {
			return err
		}
		for _, id := range order {
			s := out.Routed.Stations[id]
			if s == nil || s.Ledger == nil {
				continue
			}
			path := filepath.Join(ledgerDir, id+".csv")
			if err := cascade.WriteLedgerCSV(path, s.Ledger); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
	}

	if cfg.SQLitePath != "" {
		db, err := store.Open(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.WriteScaled(ctx, out.Scaled); err != nil {
			return err
		}
	}

	log.Infow("outputs written", "dir", cfg.Dir, "stations", len(order))
	return nil
}
