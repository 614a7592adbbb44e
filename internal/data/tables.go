package data

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"cascade-router/internal/config"
	"cascade-router/internal/model"
	"cascade-router/internal/resample"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// StationRow is one row of the station attribute table.
type StationRow struct {
	ID              string  `csv:"id"`
	MaxOutflow      float64 `csv:"qmax"`
	StorageCapacity float64 `csv:"storage_capacity"`
}

// LinkRow is one row of the topology table.
type LinkRow struct {
	Station     string `csv:"station_id"`
	Upstream    string `csv:"upstream_id"`
	Kind        string `csv:"link_kind"`
	ClipStation string `csv:"clip_station"`
}

// InflowRow is one weekly raw inflow record.
type InflowRow struct {
	Station string  `csv:"station_id"`
	Year    int     `csv:"year"`
	Week    int     `csv:"week"`
	Value   float64 `csv:"value"`
}

// LoadStations reads the station table. storageScale converts the file's
// storage unit to m³ (1e6 for hm³).
func LoadStations(path string, storageScale float64) ([]model.Station, error) {
	var rows []*StationRow
	if err := unmarshalCSV(path, &rows); err != nil {
		return nil, err
	}
	out := make([]model.Station, 0, len(rows))
	seen := map[string]bool{}
	for _, r := range rows {
		id := strings.TrimSpace(r.ID)
		if seen[id] {
			return nil, &model.ConfigError{Station: id, Reason: "duplicate station id"}
		}
		seen[id] = true
		out = append(out, model.Station{
			ID:              id,
			MaxOutflow:      r.MaxOutflow,
			StorageCapacity: r.StorageCapacity * storageScale,
		})
	}
	return out, nil
}

type topologyFile struct {
	Links []config.LinkConfig `yaml:"links"`
}

// LoadTopology reads the topology table from CSV, or from YAML when the
// file ends in .yaml/.yml.
func LoadTopology(path string) ([]model.Link, error) {
	var cfgs []config.LinkConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var f topologyFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfgs = f.Links
	default:
		var rows []*LinkRow
		if err := unmarshalCSV(path, &rows); err != nil {
			return nil, err
		}
		for _, r := range rows {
			cfgs = append(cfgs, config.LinkConfig{
				Station:     strings.TrimSpace(r.Station),
				Upstream:    strings.TrimSpace(r.Upstream),
				Kind:        r.Kind,
				ClipStation: strings.TrimSpace(r.ClipStation),
			})
		}
	}

	out := make([]model.Link, 0, len(cfgs))
	for i, c := range cfgs {
		l, err := c.ToModel()
		if err != nil {
			return nil, fmt.Errorf("%s link %d: %w", path, i+1, err)
		}
		out = append(out, l)
	}
	return out, nil
}

// LoadInflows reads the weekly raw inflow table.
func LoadInflows(path string) ([]resample.WeeklyRecord, error) {
	var rows []*InflowRow
	if err := unmarshalCSV(path, &rows); err != nil {
		return nil, err
	}
	out := make([]resample.WeeklyRecord, 0, len(rows))
	for i, r := range rows {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) || r.Value < 0 {
			return nil, &model.IntegrityError{Station: r.Station, Hour: -1, Reason: fmt.Sprintf("%s row %d: invalid weekly inflow %g", path, i+2, r.Value)}
		}
		out = append(out, resample.WeeklyRecord{
			Station: strings.TrimSpace(r.Station),
			Year:    r.Year,
			Week:    r.Week,
			Value:   r.Value,
		})
	}
	return out, nil
}

func unmarshalCSV(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
