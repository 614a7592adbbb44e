// Package scale turns combined inflow into dimensionless availability.
package scale

import (
	"fmt"
	"math"

	"cascade-router/internal/model"
)

// Normalize returns combined / Qmax for every hour. Values above 1.0 are kept;
// consumers decide how to treat them.
func Normalize(station model.Station, combined model.Series) (model.Series, error) {
	q := station.MaxOutflow
	if !(q > 0) || math.IsInf(q, 0) {
		return model.Series{}, &model.ConfigError{Station: station.ID, Reason: fmt.Sprintf("cannot scale by max outflow %g", q)}
	}
	out := model.NewSeries(combined.Start, combined.Len())
	for i, x := range combined.Values {
		out.Values[i] = x / q
	}
	return out, nil
}

// NormalizeAll scales every combined series. Stations missing from the table
// and stations with an invalid Qmax are reported in the error map and skipped.
func NormalizeAll(stations map[string]model.Station, combined map[string]model.Series) (map[string]model.Series, map[string]error) {
	out := make(map[string]model.Series, len(combined))
	errs := map[string]error{}
	for id, s := range combined {
		st, ok := stations[id]
		if !ok {
			errs[id] = &model.ConfigError{Station: id, Reason: "station missing from station table"}
			continue
		}
		scaled, err := Normalize(st, s)
		if err != nil {
			errs[id] = err
			continue
		}
		out[id] = scaled
	}
	return out, errs
}

// Year is one calendar-year slice of a set of aligned series.
type Year struct {
	Year   int
	Series map[string]model.Series
}

// ByYear partitions aligned series by calendar year, ascending.
func ByYear(series map[string]model.Series) []Year {
	var spans []model.YearSpan
	for _, s := range series {
		spans = s.Years()
		break
	}
	out := make([]Year, 0, len(spans))
	for _, span := range spans {
		y := Year{Year: span.Year, Series: make(map[string]model.Series, len(series))}
		for id, s := range series {
			if span.Hi > s.Len() {
				continue
			}
			start := s.Time(span.Lo)
			vals := make([]float64, span.Hi-span.Lo)
			copy(vals, s.Values[span.Lo:span.Hi])
			y.Series[id] = model.Series{Start: start, Values: vals}
		}
		out = append(out, y)
	}
	return out
}

// Filename is the partition file name for a year.
func Filename(year int) string {
	return fmt.Sprintf("%d.csv", year)
}
