// Package pipeline wires the resampler, the topology, the cascade engine and
// the normalizer into one batch run.
package pipeline

import (
	"fmt"
	"sort"
	"time"

	"cascade-router/internal/cascade"
	"cascade-router/internal/config"
	"cascade-router/internal/data"
	"cascade-router/internal/log"
	"cascade-router/internal/model"
	"cascade-router/internal/resample"
	"cascade-router/internal/scale"
	"cascade-router/internal/topology"
)

// Inputs are the three external tables plus the horizon.
type Inputs struct {
	Stations []model.Station
	Links    []model.Link
	Inflows  []resample.WeeklyRecord

	Start time.Time
	End   time.Time
}

type Options struct {
	Workers        int
	Ledger         bool
	StrictOverflow bool
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Workers:        cfg.Routing.Workers,
		Ledger:         cfg.Output.Ledger,
		StrictOverflow: cfg.Routing.StrictOverflow,
	}
}

// Output is everything a run produces. Failures is keyed by cascade id;
// ScaleErrors by station id.
type Output struct {
	Forest    *topology.Forest
	Routed    *cascade.Result
	Scaled    map[string]model.Series
	Fallbacks []resample.Fallback

	Failures    map[string]error
	ScaleErrors map[string]error
}

// Failed reports whether any cascade or station produced no output.
func (o *Output) Failed() bool {
	return len(o.Failures) > 0 || len(o.ScaleErrors) > 0
}

// Order lists the stations with scaled output in topological order.
func (o *Output) Order() []string {
	var out []string
	for _, id := range o.Forest.Order() {
		if _, ok := o.Scaled[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// LoadInputs reads the tables named by cfg and applies its inline overrides.
func LoadInputs(cfg *config.Config) (*Inputs, error) {
	start, end, err := cfg.Horizon.Bounds()
	if err != nil {
		return nil, err
	}
	unit, err := cfg.Inputs.StorageScale()
	if err != nil {
		return nil, err
	}

	var stations []model.Station
	if cfg.Inputs.StationsFile != "" {
		stations, err = data.LoadStations(cfg.Inputs.StationsFile, unit)
		if err != nil {
			return nil, fmt.Errorf("load stations: %w", err)
		}
	}
	inline := make([]config.StationConfig, len(cfg.Stations))
	for i, s := range cfg.Stations {
		s.StorageCapacity *= unit
		inline[i] = s
	}
	stations = config.MergeStations(stations, inline)

	var links []model.Link
	if cfg.Inputs.TopologyFile != "" {
		links, err = data.LoadTopology(cfg.Inputs.TopologyFile)
		if err != nil {
			return nil, fmt.Errorf("load topology: %w", err)
		}
	}
	override, err := cfg.InlineLinks()
	if err != nil {
		return nil, err
	}
	links = config.MergeTopology(links, override)

	inflows, err := data.LoadInflows(cfg.Inputs.InflowsFile)
	if err != nil {
		return nil, fmt.Errorf("load inflows: %w", err)
	}

	return &Inputs{
		Stations: stations,
		Links:    links,
		Inflows:  inflows,
		Start:    start,
		End:      end,
	}, nil
}

// Run routes one dataset. The returned error covers problems that stop every
// cascade (an invalid topology); per-cascade and per-station failures are
// reported in the Output.
func Run(in *Inputs, opts Options) (*Output, error) {
	forest, err := topology.Build(in.Stations, in.Links, topology.Options{StrictOverflow: opts.StrictOverflow})
	if err != nil {
		return nil, err
	}
	for _, u := range forest.Unrouted() {
		log.Warnw("clipped link has no overflow receiver", "link", u.Link.String())
	}

	batch := resample.Stations(in.Inflows, in.Start, in.End)
	for _, fb := range batch.Fallbacks {
		log.Warnw("week 53 has no following year, reusing week 52", "station", fb.Station, "year", fb.Year)
	}

	known := map[string]bool{}
	for _, s := range forest.Stations() {
		known[s.ID] = true
		if _, ok := batch.Series[s.ID]; ok {
			continue
		}
		if _, ok := batch.Errors[s.ID]; !ok {
			batch.Errors[s.ID] = &model.ConfigError{Station: s.ID, Reason: "no weekly inflow records"}
		}
	}
	var unknown []string
	for id := range batch.Series {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		log.Warnw("inflow records for unknown station ignored", "station", id)
	}

	engine := cascade.New(opts.Workers, opts.Ledger)
	routed := engine.Run(forest, batch.Series, batch.Errors)

	byID := make(map[string]model.Station, len(in.Stations))
	for _, s := range forest.Stations() {
		byID[s.ID] = s
	}
	scaled, scaleErrs := scale.NormalizeAll(byID, routed.Combined())
	for id, err := range scaleErrs {
		log.Errorw("station not scaled", "station", id, "error", err)
	}

	log.Infow("run finished",
		"stations", len(scaled),
		"cascades", len(routed.Cascades),
		"failed_cascades", len(routed.Failures),
		"hours", hours(in.Start, in.End),
	)

	return &Output{
		Forest:      forest,
		Routed:      routed,
		Scaled:      scaled,
		Fallbacks:   batch.Fallbacks,
		Failures:    routed.Failures,
		ScaleErrors: scaleErrs,
	}, nil
}

// RunConfig loads the inputs of cfg and runs them with its options.
func RunConfig(cfg *config.Config) (*Output, error) {
	in, err := LoadInputs(cfg)
	if err != nil {
		return nil, err
	}
	return Run(in, OptionsFromConfig(cfg))
}

func hours(start, end time.Time) int {
	n, _ := model.HourCount(start, end)
	return n
}
