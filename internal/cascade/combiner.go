package cascade

import (
	"fmt"
	"math"
	"time"

	"cascade-router/internal/model"
	"cascade-router/internal/topology"

	"gonum.org/v1/gonum/floats"
)

// RouteCascade walks one cascade upstream-first. Each station's combined
// inflow is its own inflow plus the contribution of every inbound link; storage
// stations then run the reservoir recurrence on that combined inflow.
//
// Any station failure aborts the whole cascade.
func (e *Engine) RouteCascade(forest *topology.Forest, c topology.Cascade, inflows map[string]model.Series) (*CascadeResult, error) {
	out := &CascadeResult{
		ID:       c.ID,
		Order:    c.Order,
		Stations: make(map[string]*StationResult, len(c.Order)),
	}

	unrouted := map[string][]model.Link{}
	for _, u := range forest.Unrouted() {
		unrouted[u.Link.Upstream] = append(unrouted[u.Link.Upstream], u.Link)
	}

	var (
		n     int
		start time.Time
	)
	for i, id := range c.Order {
		node := forest.Node(id)
		if node == nil {
			return nil, &model.ConfigError{Station: id, Reason: "station missing from topology"}
		}
		own, ok := inflows[id]
		if !ok {
			return nil, &model.ConfigError{Station: id, Reason: "no inflow series"}
		}
		if i == 0 {
			n, start = own.Len(), own.Start
		} else if own.Len() != n || !own.Start.Equal(start) {
			return nil, &model.ConfigError{Station: id, Reason: fmt.Sprintf("inflow series spans %d hours, cascade spans %d", own.Len(), n)}
		}

		res := &StationResult{
			Station:  node.Station,
			Own:      own,
			Combined: own.Clone(),
		}

		for _, l := range node.Inbound {
			src, ok := out.Stations[l.Upstream]
			if !ok {
				return nil, &model.ConfigError{Station: id, Reason: fmt.Sprintf("upstream %s not routed before %s", l.Upstream, id)}
			}
			add, err := contribution(l, src, e.clipQmax(forest, l))
			if err != nil {
				return nil, err
			}
			floats.Add(res.Combined.Values, add)
		}
		if err := checkFlows(id, res.Combined.Values); err != nil {
			return nil, err
		}

		if node.Station.Bottleneck() {
			r, err := RouteReservoir(node.Station, res.Combined, e.Ledger)
			if err != nil {
				return nil, err
			}
			res.Outflow = r.Outflow
			res.Storage = r.Storage
			res.Spillage = r.Spillage
			res.Bootstrap = r.Bootstrap
			res.Ledger = r.Ledger
		}

		for _, l := range unrouted[id] {
			lost := excess(res.Delivered(), e.clipQmax(forest, l))
			if res.Unrouted == nil {
				res.Unrouted = lost
			} else {
				floats.Add(res.Unrouted, lost)
			}
		}
		out.Stations[id] = res
	}
	return out, nil
}

func (e *Engine) clipQmax(forest *topology.Forest, l model.Link) float64 {
	if node := forest.Node(l.ClipAt()); node != nil {
		return node.Station.MaxOutflow
	}
	return 0
}

// checkFlows rejects negative or non-finite combined inflow.
func checkFlows(station string, v []float64) error {
	for t, x := range v {
		if x < 0 || math.IsNaN(x) || x > maxFlow {
			return &model.IntegrityError{Station: station, Hour: t, Reason: fmt.Sprintf("invalid combined inflow %g", x)}
		}
	}
	return nil
}

// maxFlow is far above any river discharge and catches +Inf.
const maxFlow = 1e12
