package model

import (
	"fmt"
	"math"
)

// ReservoirParams defines the physical limits of a bottleneck station.
// Units:
// - MaxOutflow: m³/s (Qmax)
// - StorageCapacity: m³ (0 = pass-through node)
type ReservoirParams struct {
	MaxOutflow      float64
	StorageCapacity float64
}

// RoutingState is the carried-forward (outflow, storage, spillage) triple.
type RoutingState struct {
	Outflow  float64 // m³/s
	Storage  float64 // m³
	Spillage float64 // m³/s
}

// Reservoir is a convenience wrapper bundling params + state.
type Reservoir struct {
	Station string
	Params  ReservoirParams
	State   RoutingState
}

// storageTolerance absorbs rounding noise in the volume balance (m³).
const storageTolerance = 1e-6

// NewReservoir validates params and seeds the bootstrap row:
// full storage, draining at Qmax, no spillage.
func NewReservoir(station string, params ReservoirParams) (*Reservoir, error) {
	r := &Reservoir{
		Station: station,
		Params:  params,
		State:   BootstrapState(params),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// BootstrapState is the synthetic row preceding the first real hour.
func BootstrapState(p ReservoirParams) RoutingState {
	return RoutingState{
		Outflow:  p.MaxOutflow,
		Storage:  p.StorageCapacity,
		Spillage: 0,
	}
}

func (r *Reservoir) Validate() error {
	p := r.Params
	if math.IsNaN(p.MaxOutflow) || p.MaxOutflow <= 0 {
		return &ConfigError{Station: r.Station, Reason: "max outflow must be > 0"}
	}
	if math.IsNaN(p.StorageCapacity) || p.StorageCapacity < 0 {
		return &ConfigError{Station: r.Station, Reason: "storage capacity must be >= 0"}
	}
	if r.State.Storage < 0 || r.State.Storage > p.StorageCapacity {
		return &IntegrityError{Station: r.Station, Hour: -1, Reason: fmt.Sprintf("initial storage %g outside [0, %g]", r.State.Storage, p.StorageCapacity)}
	}
	return nil
}

// StepResult captures what happened in one hour.
type StepResult struct {
	Inflow       float64 // m³/s
	Outflow      float64 // m³/s, always <= MaxOutflow
	StorageStart float64 // m³
	StorageEnd   float64 // m³
	Spillage     float64 // m³/s
	Regime       Regime
}

// Step advances the reservoir by one hour.
//
// When storage plus this hour's inflow can sustain MaxOutflow for the whole
// hour the reservoir drains at MaxOutflow, otherwise inflow passes straight
// through. Volume above StorageCapacity is reported as spillage.
func (r *Reservoir) Step(hour int, inflow float64) (StepResult, error) {
	if math.IsNaN(inflow) || math.IsInf(inflow, 0) {
		return StepResult{}, &IntegrityError{Station: r.Station, Hour: hour, Reason: "non-finite inflow"}
	}
	if inflow < 0 {
		return StepResult{}, &IntegrityError{Station: r.Station, Hour: hour, Reason: fmt.Sprintf("negative inflow %g", inflow)}
	}

	qm := r.Params.MaxOutflow
	capacity := r.Params.StorageCapacity
	prev := r.State.Storage

	res := StepResult{
		Inflow:       inflow,
		StorageStart: prev,
	}

	available := prev + inflow*SecondsPerHour
	if available >= qm*SecondsPerHour {
		res.Outflow = qm
	} else {
		res.Outflow = inflow
	}

	raw := inflow*SecondsPerHour - res.Outflow*SecondsPerHour + prev
	if raw < 0 {
		if raw < -storageTolerance {
			return StepResult{}, &IntegrityError{Station: r.Station, Hour: hour, Reason: fmt.Sprintf("storage underflow %g m³", raw)}
		}
		raw = 0
	}
	res.StorageEnd = math.Min(raw, capacity)
	if raw > capacity {
		res.Spillage = (raw - capacity) / SecondsPerHour
	}
	res.Regime = RegimeOf(res, qm)

	r.State = RoutingState{
		Outflow:  res.Outflow,
		Storage:  res.StorageEnd,
		Spillage: res.Spillage,
	}
	return res, nil
}
