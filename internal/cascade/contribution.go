package cascade

import (
	"fmt"
	"math"

	"cascade-router/internal/model"

	"gonum.org/v1/gonum/floats"
)

// contribution returns the hourly series a link adds to its receiving
// station. clipQmax is the Qmax of the link's clip station (clipped and
// overflow links only).
func contribution(l model.Link, src *StationResult, clipQmax float64) ([]float64, error) {
	delivered := src.Delivered()
	switch l.Kind {
	case model.LinkFull:
		out := make([]float64, len(delivered))
		copy(out, delivered)
		return out, nil
	case model.LinkClipped:
		return clip(delivered, clipQmax), nil
	case model.LinkOverflow:
		return excess(delivered, clipQmax), nil
	case model.LinkSpillage:
		if src.Spillage == nil {
			return nil, &model.ConfigError{Station: l.Upstream, Reason: fmt.Sprintf("no spillage series for %s", l)}
		}
		out := make([]float64, len(src.Spillage))
		copy(out, src.Spillage)
		return out, nil
	case model.LinkAnnualMean:
		return annualMean(model.Series{Start: src.Combined.Start, Values: delivered}), nil
	default:
		return nil, &model.ConfigError{Station: l.Station, Reason: fmt.Sprintf("unknown link kind %q", l.Kind)}
	}
}

// clip returns min(v, qmax) elementwise.
func clip(v []float64, qmax float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Min(x, qmax)
	}
	return out
}

// excess returns v - min(v, qmax) elementwise.
func excess(v []float64, qmax float64) []float64 {
	out := clip(v, qmax)
	floats.SubTo(out, v, out)
	return out
}

// annualMean spreads each calendar year's volume evenly over the hours of
// that year (8760, or 8784 in leap years).
func annualMean(s model.Series) []float64 {
	out := make([]float64, s.Len())
	for _, span := range s.Years() {
		mean := floats.Sum(s.Values[span.Lo:span.Hi]) / float64(model.HoursInYear(span.Year))
		for i := span.Lo; i < span.Hi; i++ {
			out[i] = mean
		}
	}
	return out
}
