package cascade

import (
	"fmt"

	"cascade-router/internal/model"
)

// Routing is the Node Simulator output for one bottleneck station. The
// series are aligned with the inflow; Bootstrap is the synthetic row that
// precedes hour 0.
type Routing struct {
	Bootstrap model.RoutingState
	Outflow   []float64
	Storage   []float64
	Spillage  []float64
	Ledger    []LedgerRow
}

// RouteReservoir runs the hourly storage/discharge/spillage recurrence over
// the inflow series. The ledger is only filled when withLedger is set.
func RouteReservoir(station model.Station, inflow model.Series, withLedger bool) (*Routing, error) {
	res, err := model.NewReservoir(station.ID, station.Params())
	if err != nil {
		return nil, err
	}

	n := inflow.Len()
	out := &Routing{
		Bootstrap: res.State,
		Outflow:   make([]float64, n),
		Storage:   make([]float64, n),
		Spillage:  make([]float64, n),
	}
	if withLedger {
		out.Ledger = make([]LedgerRow, 0, n)
	}

	for t, x := range inflow.Values {
		step, err := res.Step(t, x)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", station.ID, err)
		}
		out.Outflow[t] = step.Outflow
		out.Storage[t] = step.StorageEnd
		out.Spillage[t] = step.Spillage

		if withLedger {
			out.Ledger = append(out.Ledger, LedgerRow{
				Hour:         t,
				Time:         inflow.Time(t),
				Station:      station.ID,
				Inflow:       step.Inflow,
				Outflow:      step.Outflow,
				StorageStart: step.StorageStart,
				StorageEnd:   step.StorageEnd,
				Spillage:     step.Spillage,
				Regime:       step.Regime,
			})
		}
	}
	return out, nil
}
