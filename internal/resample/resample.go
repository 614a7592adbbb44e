// Package resample turns weekly per-station samples into dense hourly series.
package resample

import (
	"fmt"
	"time"

	"cascade-router/internal/model"

	"gonum.org/v1/gonum/interp"
)

// WeeklySeries holds one station's weekly samples, ordered in time.
type WeeklySeries struct {
	Station string
	Times   []time.Time
	Values  []float64
}

// Hourly resamples w onto every hour of [start, end].
//
// Weekly samples are placed on their hour and linearly interpolated. The first
// and last hours are forced to the first weekly value so the series never
// extrapolates past its samples.
func Hourly(w WeeklySeries, start, end time.Time) (model.Series, error) {
	if len(w.Values) != len(w.Times) {
		return model.Series{}, &model.ConfigError{Station: w.Station, Reason: "weekly times and values differ in length"}
	}
	if len(w.Values) < 2 {
		return model.Series{}, &model.ConfigError{Station: w.Station, Reason: fmt.Sprintf("need at least 2 weekly points to interpolate, got %d", len(w.Values))}
	}
	n, err := model.HourCount(start, end)
	if err != nil {
		return model.Series{}, &model.ConfigError{Station: w.Station, Reason: err.Error()}
	}

	known := make(map[int]float64, len(w.Values)+2)
	for i, t := range w.Times {
		d := t.Sub(start)
		if d%time.Hour != 0 {
			return model.Series{}, &model.ConfigError{Station: w.Station, Reason: fmt.Sprintf("weekly sample %s is not on an hour boundary", t.Format(time.RFC3339))}
		}
		idx := int(d / time.Hour)
		if idx < 0 || idx >= n {
			return model.Series{}, &model.ConfigError{Station: w.Station, Reason: fmt.Sprintf("weekly sample %s outside horizon", t.Format(time.RFC3339))}
		}
		if i > 0 && !t.After(w.Times[i-1]) {
			return model.Series{}, &model.ConfigError{Station: w.Station, Reason: "weekly samples must be strictly increasing in time"}
		}
		known[idx] = w.Values[i]
	}
	known[0] = w.Values[0]
	known[n-1] = w.Values[0]

	xs := make([]float64, 0, len(known))
	ys := make([]float64, 0, len(known))
	for idx := 0; idx < n; idx++ {
		if v, ok := known[idx]; ok {
			xs = append(xs, float64(idx))
			ys = append(ys, v)
		}
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return model.Series{}, fmt.Errorf("station %s: fit hourly interpolant: %w", w.Station, err)
	}

	out := model.NewSeries(start, n)
	for i := range out.Values {
		if v, ok := known[i]; ok {
			out.Values[i] = v
			continue
		}
		out.Values[i] = pl.Predict(float64(i))
	}
	return out, nil
}
