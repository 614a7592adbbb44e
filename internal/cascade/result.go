package cascade

import (
	"time"

	"cascade-router/internal/model"
)

// LedgerRow is one hour of a bottleneck station's routing.
// This is the primary artifact for "what happened" at a reservoir.
type LedgerRow struct {
	Hour int
	Time time.Time

	Station string

	Inflow       float64
	Outflow      float64
	StorageStart float64
	StorageEnd   float64
	Spillage     float64

	Regime model.Regime
}

// StationResult holds every hourly series produced for one station.
type StationResult struct {
	Station model.Station

	// Own is the station's resampled inflow before any upstream contribution.
	Own model.Series
	// Combined is own inflow plus all inbound contributions.
	Combined model.Series

	// Set for bottleneck stations only.
	Outflow   []float64
	Storage   []float64
	Spillage  []float64
	Bootstrap model.RoutingState
	Ledger    []LedgerRow

	// Unrouted is clip excess with no overflow receiver (m³/s), nil when none.
	Unrouted []float64
}

// Delivered is what a full link passes downstream: the reservoir outflow at a
// bottleneck station, the combined inflow elsewhere.
func (r *StationResult) Delivered() []float64 {
	if r.Station.Bottleneck() {
		return r.Outflow
	}
	return r.Combined.Values
}

// CascadeResult holds the routed stations of one cascade in routing order.
type CascadeResult struct {
	ID       string
	Order    []string
	Stations map[string]*StationResult
}

// Result merges every cascade of a run. Failures maps a cascade id to the
// error that stopped it; the other cascades are still complete.
type Result struct {
	Cascades []*CascadeResult
	Stations map[string]*StationResult
	Failures map[string]error
}

// Combined returns the combined inflow series of every routed station.
func (r *Result) Combined() map[string]model.Series {
	out := make(map[string]model.Series, len(r.Stations))
	for id, s := range r.Stations {
		out[id] = s.Combined
	}
	return out
}
