package cascade

import (
	"errors"
	"os"
	"testing"
	"time"

	"cascade-router/internal/log"
	"cascade-router/internal/model"
	"cascade-router/internal/topology"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.UseNop()
	os.Exit(m.Run())
}

var t0 = time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC)

func st(id string, qmax, storage float64) model.Station {
	return model.Station{ID: id, MaxOutflow: qmax, StorageCapacity: storage}
}

func ln(station, upstream string, kind model.LinkKind) model.Link {
	return model.Link{Station: station, Upstream: upstream, Kind: kind}
}

func series(v ...float64) model.Series {
	return model.Series{Start: t0, Values: v}
}

func build(t *testing.T, stations []model.Station, links []model.Link) *topology.Forest {
	t.Helper()
	f, err := topology.Build(stations, links, topology.Options{})
	require.NoError(t, err)
	return f
}

func TestRunConservesVolumeThroughClipAndOverflow(t *testing.T) {
	f := build(t,
		[]model.Station{st("A", 5, 0), st("B", 100, 0), st("C", 100, 0)},
		[]model.Link{
			ln("C", "A", model.LinkClipped),
			ln("B", "A", model.LinkOverflow),
			ln("C", "B", model.LinkFull),
		},
	)
	inflows := map[string]model.Series{
		"A": series(3, 7, 12),
		"B": series(1, 1, 1),
		"C": series(2, 2, 2),
	}

	res := New(2, false).Run(f, inflows, nil)
	require.Empty(t, res.Failures)

	assert.Equal(t, []float64{1, 3, 8}, res.Stations["B"].Combined.Values)
	got := res.Stations["C"].Combined.Values
	for i := range got {
		total := inflows["A"].Values[i] + inflows["B"].Values[i] + inflows["C"].Values[i]
		assert.InDelta(t, total, got[i], 1e-9, "hour %d", i)
	}
	assert.Nil(t, res.Stations["A"].Unrouted)

	// Own inflow is never mutated by routing.
	assert.Equal(t, []float64{2, 2, 2}, inflows["C"].Values)
}

func TestRunRoutesBottleneckOutflowAndSpillage(t *testing.T) {
	f := build(t,
		[]model.Station{st("A", 1, 3600), st("B", 10, 0), st("C", 10, 0)},
		[]model.Link{
			ln("B", "A", model.LinkFull),
			ln("C", "A", model.LinkSpillage),
		},
	)
	inflows := map[string]model.Series{
		"A": series(0, 5),
		"B": series(0, 0),
		"C": series(0, 0),
	}

	res := New(1, true).Run(f, inflows, nil)
	require.Empty(t, res.Failures)

	a := res.Stations["A"]
	assert.Equal(t, []float64{1, 1}, a.Outflow)
	assert.Equal(t, []float64{0, 3600}, a.Storage)
	assert.Equal(t, []float64{0, 3}, a.Spillage)
	assert.Equal(t, model.RoutingState{Outflow: 1, Storage: 3600}, a.Bootstrap)
	require.Len(t, a.Ledger, 2)
	assert.Equal(t, model.RegimeSpilling, a.Ledger[1].Regime)
	assert.Equal(t, t0.Add(time.Hour), a.Ledger[1].Time)

	assert.Equal(t, []float64{1, 1}, res.Stations["B"].Combined.Values)
	assert.Equal(t, []float64{0, 3}, res.Stations["C"].Combined.Values)

	// Inflow volume = outflow + spillage + storage change.
	in := (0.0 + 5) * model.SecondsPerHour
	out := (1.0 + 1 + 0 + 3) * model.SecondsPerHour
	assert.InDelta(t, in, out+(a.Storage[1]-a.Bootstrap.Storage), 1e-9)

	assert.Nil(t, res.Stations["B"].Ledger)
}

func TestRunWithoutLedger(t *testing.T) {
	f := build(t, []model.Station{st("A", 10, 36000)}, nil)
	res := New(0, false).Run(f, map[string]model.Series{"A": series(5, 2)}, nil)
	require.Empty(t, res.Failures)
	assert.Equal(t, []float64{10, 2}, res.Stations["A"].Outflow)
	assert.Equal(t, []float64{18000, 18000}, res.Stations["A"].Storage)
	assert.Nil(t, res.Stations["A"].Ledger)
}

func TestRunAnnualMeanLink(t *testing.T) {
	start := time.Date(2020, time.December, 31, 23, 0, 0, 0, time.UTC)
	f := build(t,
		[]model.Station{st("COR", 1, 0), st("SIS", 1, 0)},
		[]model.Link{ln("SIS", "COR", model.LinkAnnualMean)},
	)
	inflows := map[string]model.Series{
		"COR": {Start: start, Values: []float64{8784, 8760 * 2, 0}},
		"SIS": {Start: start, Values: []float64{0, 0, 0}},
	}
	res := New(1, false).Run(f, inflows, nil)
	require.Empty(t, res.Failures)

	got := res.Stations["SIS"].Combined.Values
	assert.InDelta(t, 1.0, got[0], 1e-12)
	assert.InDelta(t, 2.0, got[1], 1e-12)
	assert.InDelta(t, 2.0, got[2], 1e-12)
}

func TestRunRecordsUnroutedExcess(t *testing.T) {
	f := build(t,
		[]model.Station{st("A", 5, 0), st("C", 100, 0)},
		[]model.Link{ln("C", "A", model.LinkClipped)},
	)
	inflows := map[string]model.Series{
		"A": series(3, 7, 12),
		"C": series(0, 0, 0),
	}
	res := New(1, false).Run(f, inflows, nil)
	require.Empty(t, res.Failures)

	assert.Equal(t, []float64{3, 5, 5}, res.Stations["C"].Combined.Values)
	assert.Equal(t, []float64{0, 2, 7}, res.Stations["A"].Unrouted)
}

func TestRunClipsAtReferenceStation(t *testing.T) {
	f := build(t,
		[]model.Station{st("KIL", 4, 0), st("CHJLG", 100, 0), st("CHJ", 100, 0), st("SPILL", 100, 0)},
		[]model.Link{
			{Station: "CHJ", Upstream: "CHJLG", Kind: model.LinkClipped, ClipStation: "KIL"},
			{Station: "SPILL", Upstream: "CHJLG", Kind: model.LinkOverflow, ClipStation: "KIL"},
		},
	)
	inflows := map[string]model.Series{
		"KIL":   series(0, 0),
		"CHJLG": series(3, 9),
		"CHJ":   series(0, 0),
		"SPILL": series(0, 0),
	}
	res := New(1, false).Run(f, inflows, nil)
	require.Empty(t, res.Failures)
	assert.Equal(t, []float64{3, 4}, res.Stations["CHJ"].Combined.Values)
	assert.Equal(t, []float64{0, 5}, res.Stations["SPILL"].Combined.Values)
}

func TestRunIsolatesFailedCascades(t *testing.T) {
	f := build(t,
		[]model.Station{st("A1", 1, 0), st("A2", 1, 0), st("B1", 1, 0), st("B2", 1, 0), st("C1", 1, 0)},
		[]model.Link{ln("A2", "A1", model.LinkFull), ln("B2", "B1", model.LinkFull)},
	)
	inflows := map[string]model.Series{
		"A1": series(1, 1),
		"A2": series(1, 1),
		"B1": series(1, -1),
		"B2": series(1, 1),
		// C1 has no series: its resampling failed upstream.
	}
	resampleErr := &model.ConfigError{Station: "C1", Reason: "fewer than 2 weekly points"}

	res := New(3, false).Run(f, inflows, map[string]error{"C1": resampleErr})

	require.Len(t, res.Failures, 2)
	assert.True(t, model.IsIntegrityError(res.Failures["B2"]), "got %v", res.Failures["B2"])
	assert.True(t, errors.Is(res.Failures["C1"], resampleErr))

	require.Len(t, res.Cascades, 1)
	assert.Equal(t, "A2", res.Cascades[0].ID)
	assert.Equal(t, []float64{2, 2}, res.Stations["A2"].Combined.Values)
	assert.NotContains(t, res.Stations, "B1")
	assert.NotContains(t, res.Stations, "B2")
}

func TestRunSkipsCascadesWithStationErrors(t *testing.T) {
	f := build(t,
		[]model.Station{st("A1", 1, 0), st("A2", 1, 0), st("Z", 0, 500)},
		[]model.Link{ln("A2", "A1", model.LinkFull)},
	)
	require.Contains(t, f.Errors(), "Z")

	inflows := map[string]model.Series{
		"A1": series(1, 1),
		"A2": series(1, 1),
		"Z":  series(1, 1),
	}
	res := New(0, false).Run(f, inflows, nil)

	require.Len(t, res.Failures, 1)
	assert.True(t, model.IsConfigError(res.Failures["Z"]), "got %v", res.Failures["Z"])
	assert.NotContains(t, res.Stations, "Z")
	assert.Equal(t, []float64{2, 2}, res.Stations["A2"].Combined.Values)
}

func TestRouteCascadeRejectsMisalignedSeries(t *testing.T) {
	f := build(t,
		[]model.Station{st("A", 1, 0), st("B", 1, 0)},
		[]model.Link{ln("B", "A", model.LinkFull)},
	)
	_, err := New(1, false).RouteCascade(f, f.Cascades()[0], map[string]model.Series{
		"A": series(1, 1, 1),
		"B": series(1, 1),
	})
	require.Error(t, err)
	assert.True(t, model.IsConfigError(err))

	_, err = New(1, false).RouteCascade(f, f.Cascades()[0], map[string]model.Series{"A": series(1)})
	assert.True(t, model.IsConfigError(err))
}

func TestResultCombined(t *testing.T) {
	f := build(t, []model.Station{st("A", 1, 0), st("B", 2, 0)}, nil)
	res := New(2, false).Run(f, map[string]model.Series{"A": series(1), "B": series(2)}, nil)
	c := res.Combined()
	require.Len(t, c, 2)
	assert.Equal(t, []float64{2}, c["B"].Values)
}
