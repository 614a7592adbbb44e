package cascade

import (
	"runtime"

	"cascade-router/internal/log"
	"cascade-router/internal/model"
	"cascade-router/internal/topology"

	"golang.org/x/sync/errgroup"
)

// Engine routes every cascade of a forest. Cascades share no state, so each
// one runs in its own goroutine and owns its series buffers.
type Engine struct {
	// Workers bounds concurrent cascades; <= 0 means GOMAXPROCS.
	Workers int
	// Ledger fills StationResult.Ledger for bottleneck stations.
	Ledger bool
}

func New(workers int, ledger bool) *Engine {
	return &Engine{Workers: workers, Ledger: ledger}
}

// Run routes all cascades of forest. A cascade fails without routing when one
// of its stations has a topology error (forest.Errors) or an entry in
// inflowErrs, the stations whose inflow could not be built. A failed cascade
// never stops the others.
func (e *Engine) Run(forest *topology.Forest, inflows map[string]model.Series, inflowErrs map[string]error) *Result {
	cascades := forest.Cascades()

	type outcome struct {
		res *CascadeResult
		err error
	}
	outcomes := make([]outcome, len(cascades))

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(workers)

	for i, c := range cascades {
		i, c := i, c
		g.Go(func() error {
			if err := stationErr(forest, c, inflowErrs); err != nil {
				outcomes[i].err = err
				return nil
			}
			log.Infow("routing cascade", "cascade", c.ID, "stations", len(c.Order))
			res, err := e.RouteCascade(forest, c, inflows)
			outcomes[i] = outcome{res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	out := &Result{
		Stations: map[string]*StationResult{},
		Failures: map[string]error{},
	}
	for i, o := range outcomes {
		id := cascades[i].ID
		if o.err != nil {
			log.Errorw("cascade failed", "cascade", id, "error", o.err)
			out.Failures[id] = o.err
			continue
		}
		out.Cascades = append(out.Cascades, o.res)
		for sid, s := range o.res.Stations {
			out.Stations[sid] = s
			if s.Unrouted != nil {
				log.Warnw("clip excess has no overflow receiver", "station", sid, "cascade", id)
			}
		}
	}
	return out
}

// stationErr returns the first recorded error of a station in c, in routing
// order.
func stationErr(forest *topology.Forest, c topology.Cascade, inflowErrs map[string]error) error {
	for _, id := range c.Order {
		if err, ok := forest.Errors()[id]; ok {
			return err
		}
		if err, ok := inflowErrs[id]; ok {
			return err
		}
	}
	return nil
}
