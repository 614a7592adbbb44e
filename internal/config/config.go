package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cascade-router/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk run configuration shape (YAML).
type Config struct {
	Horizon HorizonConfig `yaml:"horizon"`
	Inputs  InputsConfig  `yaml:"inputs"`

	// Inline stations overlay the stations file by id.
	Stations []StationConfig `yaml:"stations"`
	// Inline links replace every file link targeting the same station.
	Topology []LinkConfig `yaml:"topology"`

	Routing RoutingConfig `yaml:"routing"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
}

type HorizonConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type InputsConfig struct {
	StationsFile string `yaml:"stations_file"`
	TopologyFile string `yaml:"topology_file"`
	InflowsFile  string `yaml:"inflows_file"`
	// StorageUnit is m3 (default) or hm3.
	StorageUnit string `yaml:"storage_unit"`
}

type StationConfig struct {
	ID              string  `yaml:"id" json:"id"`
	MaxOutflow      float64 `yaml:"qmax" json:"qmax"`
	StorageCapacity float64 `yaml:"storage_capacity" json:"storage_capacity"`
}

type LinkConfig struct {
	Station     string `yaml:"station" json:"station"`
	Upstream    string `yaml:"upstream" json:"upstream"`
	Kind        string `yaml:"kind" json:"kind"`
	ClipStation string `yaml:"clip_station,omitempty" json:"clip_station,omitempty"`
}

type RoutingConfig struct {
	Workers        int  `yaml:"workers"`
	StrictOverflow bool `yaml:"strict_overflow"`
}

type OutputConfig struct {
	Dir        string `yaml:"dir"`
	Combined   bool   `yaml:"combined"`
	Ledger     bool   `yaml:"ledger"`
	SQLitePath string `yaml:"sqlite_path"`
}

type LogConfig struct {
	Debug bool `yaml:"debug"`
}

const (
	UnitM3  = "m3"
	UnitHM3 = "hm3"
)

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "results"
	}
	if c.Inputs.StorageUnit == "" {
		c.Inputs.StorageUnit = UnitM3
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the config and resolves its file paths, but does not
// validate it. Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	c.Inputs.StationsFile = resolvePath(dir, c.Inputs.StationsFile)
	c.Inputs.TopologyFile = resolvePath(dir, c.Inputs.TopologyFile)
	c.Inputs.InflowsFile = resolvePath(dir, c.Inputs.InflowsFile)
	return &c, nil
}

// resolvePath prefers interpreting relative paths as relative to the config
// file directory, but falls back to the provided path (relative to cwd) if
// that doesn't exist.
func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, _, err := c.Horizon.Bounds(); err != nil {
		return err
	}
	if c.Inputs.StationsFile == "" && len(c.Stations) == 0 {
		return errors.New("inputs.stations_file or stations is required")
	}
	if c.Inputs.InflowsFile == "" {
		return errors.New("inputs.inflows_file is required")
	}
	if _, err := c.Inputs.StorageScale(); err != nil {
		return err
	}
	if c.Routing.Workers < 0 {
		return errors.New("routing.workers must be >= 0")
	}
	for _, s := range c.Stations {
		if strings.TrimSpace(s.ID) == "" {
			return errors.New("stations: id is required")
		}
	}
	for i, l := range c.Topology {
		if _, err := l.ToModel(); err != nil {
			return fmt.Errorf("topology[%d]: %w", i, err)
		}
	}
	return nil
}

// Bounds parses the horizon. Both ends are inclusive hourly stamps.
func (h HorizonConfig) Bounds() (time.Time, time.Time, error) {
	if h.Start == "" || h.End == "" {
		return time.Time{}, time.Time{}, errors.New("horizon.start and horizon.end are required")
	}
	start, err := parseTime(h.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("horizon.start: %w", err)
	}
	end, err := parseTime(h.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("horizon.end: %w", err)
	}
	if _, err := model.HourCount(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// parseTime accepts RFC3339 or a bare date (UTC midnight).
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// StorageScale converts the configured storage unit to m³.
func (in InputsConfig) StorageScale() (float64, error) {
	switch strings.ToLower(in.StorageUnit) {
	case "", UnitM3:
		return 1, nil
	case UnitHM3:
		return 1e6, nil
	default:
		return 0, fmt.Errorf("inputs.storage_unit %q must be %s or %s", in.StorageUnit, UnitM3, UnitHM3)
	}
}

func (l LinkConfig) ToModel() (model.Link, error) {
	if l.Station == "" || l.Upstream == "" {
		return model.Link{}, &model.ConfigError{Station: l.Station, Reason: "link needs station and upstream"}
	}
	kind, err := model.ParseLinkKind(l.Kind)
	if err != nil {
		return model.Link{}, &model.ConfigError{Station: l.Station, Reason: fmt.Sprintf("unknown link kind %q", l.Kind)}
	}
	return model.Link{
		Station:     l.Station,
		Upstream:    l.Upstream,
		Kind:        kind,
		ClipStation: l.ClipStation,
	}, nil
}

func (s StationConfig) ToModel() model.Station {
	return model.Station{
		ID:              s.ID,
		MaxOutflow:      s.MaxOutflow,
		StorageCapacity: s.StorageCapacity,
	}
}

// InlineLinks converts the inline topology.
func (c *Config) InlineLinks() ([]model.Link, error) {
	out := make([]model.Link, 0, len(c.Topology))
	for i, l := range c.Topology {
		ml, err := l.ToModel()
		if err != nil {
			return nil, fmt.Errorf("topology[%d]: %w", i, err)
		}
		out = append(out, ml)
	}
	return out, nil
}

// MergeTopology drops every base link whose receiving station has an
// override link, then appends the overrides. Base order is kept.
func MergeTopology(base, override []model.Link) []model.Link {
	replaced := map[string]bool{}
	for _, l := range override {
		replaced[l.Station] = true
	}
	out := make([]model.Link, 0, len(base)+len(override))
	for _, l := range base {
		if !replaced[l.Station] {
			out = append(out, l)
		}
	}
	return append(out, override...)
}

// MergeStations overlays non-zero fields of override onto base by id.
// Stations only present in override are appended.
func MergeStations(base []model.Station, override []StationConfig) []model.Station {
	out := make([]model.Station, len(base))
	copy(out, base)
	idx := make(map[string]int, len(out))
	for i, s := range out {
		idx[s.ID] = i
	}
	for _, o := range override {
		i, ok := idx[o.ID]
		if !ok {
			idx[o.ID] = len(out)
			out = append(out, o.ToModel())
			continue
		}
		if o.MaxOutflow != 0 {
			out[i].MaxOutflow = o.MaxOutflow
		}
		if o.StorageCapacity != 0 {
			out[i].StorageCapacity = o.StorageCapacity
		}
	}
	return out
}
