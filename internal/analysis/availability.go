package analysis

import (
	"math"
	"sort"
	"time"

	"cascade-router/internal/cascade"
	"cascade-router/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Availability is a station-level summary of a scaled inflow series, used for
// ranking stations by how much of their rated flow the river provides.
type Availability struct {
	Station string

	Start time.Time
	End   time.Time

	Count int

	Min  float64
	Max  float64
	Mean float64
	P05  float64
	P95  float64

	// HoursAboveRated counts hours with scaled inflow > 1.
	HoursAboveRated int

	// Volumes in m³ over the whole horizon.
	SpilledVolume  float64
	UnroutedVolume float64

	// Annual is the sum of scaled hours per calendar year, i.e. the
	// equivalent full-flow hours the inflow could sustain.
	Annual []YearFactor
}

type YearFactor struct {
	Year  int
	Hours float64
}

// ComputeAvailability summarizes a scaled series. routed may be nil when only
// the scaled series is known.
func ComputeAvailability(station string, scaled model.Series, routed *cascade.StationResult) Availability {
	a := Availability{Station: station}
	if scaled.Len() == 0 {
		return a
	}
	a.Count = scaled.Len()
	a.Start = scaled.Start
	a.End = scaled.End()

	vals := make([]float64, len(scaled.Values))
	copy(vals, scaled.Values)
	sort.Float64s(vals)
	a.Min = vals[0]
	a.Max = vals[len(vals)-1]
	a.Mean = stat.Mean(vals, nil)
	a.P05 = stat.Quantile(0.05, stat.LinInterp, vals, nil)
	a.P95 = stat.Quantile(0.95, stat.LinInterp, vals, nil)
	a.HoursAboveRated = len(vals) - sort.SearchFloat64s(vals, math.Nextafter(1, 2))

	for _, span := range scaled.Years() {
		a.Annual = append(a.Annual, YearFactor{
			Year:  span.Year,
			Hours: floats.Sum(scaled.Values[span.Lo:span.Hi]),
		})
	}

	if routed != nil {
		a.SpilledVolume = floats.Sum(routed.Spillage) * model.SecondsPerHour
		a.UnroutedVolume = floats.Sum(routed.Unrouted) * model.SecondsPerHour
	}
	return a
}
