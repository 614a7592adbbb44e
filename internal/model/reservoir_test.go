package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func route(t *testing.T, params ReservoirParams, inflow []float64) []StepResult {
	t.Helper()
	r, err := NewReservoir("T", params)
	require.NoError(t, err)
	out := make([]StepResult, 0, len(inflow))
	for i, x := range inflow {
		res, err := r.Step(i+1, x)
		require.NoError(t, err)
		out = append(out, res)
	}
	return out
}

func TestNewReservoirBootstrap(t *testing.T) {
	r, err := NewReservoir("A", ReservoirParams{MaxOutflow: 10, StorageCapacity: 36000})
	require.NoError(t, err)
	assert.Equal(t, RoutingState{Outflow: 10, Storage: 36000, Spillage: 0}, r.State)
}

func TestNewReservoirRejectsZeroQmax(t *testing.T) {
	_, err := NewReservoir("A", ReservoirParams{MaxOutflow: 0, StorageCapacity: 100})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	_, err = NewReservoir("A", ReservoirParams{MaxOutflow: 5, StorageCapacity: -1})
	assert.True(t, IsConfigError(err))
}

func TestStepDrainsThenPasses(t *testing.T) {
	steps := route(t, ReservoirParams{MaxOutflow: 10, StorageCapacity: 36000}, []float64{5, 2})

	assert.Equal(t, 10.0, steps[0].Outflow)
	assert.Equal(t, 18000.0, steps[0].StorageEnd)
	assert.Equal(t, 0.0, steps[0].Spillage)
	assert.Equal(t, RegimeDraining, steps[0].Regime)

	assert.Equal(t, 2.0, steps[1].Outflow)
	assert.Equal(t, 18000.0, steps[1].StorageEnd)
	assert.Equal(t, 0.0, steps[1].Spillage)
	assert.Equal(t, RegimePassing, steps[1].Regime)
}

func TestStepPassThroughNode(t *testing.T) {
	steps := route(t, ReservoirParams{MaxOutflow: 8, StorageCapacity: 0}, []float64{3, 9, 8})

	outflow := []float64{3, 8, 8}
	spill := []float64{0, 1, 0}
	for i, s := range steps {
		assert.Equal(t, outflow[i], s.Outflow, "outflow hour %d", i+1)
		assert.InDelta(t, spill[i], s.Spillage, 1e-12, "spillage hour %d", i+1)
		assert.Equal(t, 0.0, s.StorageEnd)
	}
	assert.Equal(t, RegimeSpilling, steps[1].Regime)
}

func TestStepSpillsAboveCapacity(t *testing.T) {
	// Full reservoir, inflow 30 against a 10 m³/s drain: 20 m³/s spills.
	steps := route(t, ReservoirParams{MaxOutflow: 10, StorageCapacity: 7200}, []float64{30})
	assert.Equal(t, 10.0, steps[0].Outflow)
	assert.Equal(t, 7200.0, steps[0].StorageEnd)
	assert.InDelta(t, 20.0, steps[0].Spillage, 1e-9)
}

func TestStepBounds(t *testing.T) {
	params := ReservoirParams{MaxOutflow: 12, StorageCapacity: 50000}
	inflow := []float64{0, 1, 30, 30, 2, 0, 0, 0, 14, 11.5, 40, 0.25, 7, 7, 7, 80, 0, 0, 0, 0}
	steps := route(t, params, inflow)

	prev := params.StorageCapacity
	for i, s := range steps {
		assert.GreaterOrEqual(t, s.Outflow, 0.0)
		assert.LessOrEqual(t, s.Outflow, params.MaxOutflow)
		assert.GreaterOrEqual(t, s.StorageEnd, 0.0)
		assert.LessOrEqual(t, s.StorageEnd, params.StorageCapacity)
		assert.GreaterOrEqual(t, s.Spillage, 0.0)

		balance := prev + inflow[i]*SecondsPerHour - s.Outflow*SecondsPerHour - s.Spillage*SecondsPerHour
		assert.InDelta(t, balance, s.StorageEnd, 1e-6, "mass balance hour %d", i+1)
		prev = s.StorageEnd
	}
}

func TestStepRejectsNegativeInflow(t *testing.T) {
	r, err := NewReservoir("N", ReservoirParams{MaxOutflow: 1, StorageCapacity: 10})
	require.NoError(t, err)
	_, err = r.Step(3, -0.5)
	require.Error(t, err)
	assert.True(t, IsIntegrityError(err))
	assert.Contains(t, err.Error(), "hour 3")
}

func TestValidateRejectsInitialStorageOutOfBounds(t *testing.T) {
	r, err := NewReservoir("S", ReservoirParams{MaxOutflow: 2, StorageCapacity: 100})
	require.NoError(t, err)

	r.State.Storage = 150
	err = r.Validate()
	require.Error(t, err)
	assert.True(t, IsIntegrityError(err), "got %v", err)
	assert.Equal(t, "integrity: station S: initial storage 150 outside [0, 100]", err.Error())

	r.State.Storage = -1
	assert.True(t, IsIntegrityError(r.Validate()))
}
