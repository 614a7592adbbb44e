package model

import (
	"fmt"
	"time"
)

// SecondsPerHour converts m³/s rates to hourly volumes.
const SecondsPerHour = 3600.0

// Series is an hourly, monotonically time-indexed vector of flows (m³/s) or
// dimensionless values. Values[i] is the value at Start + i hours.
type Series struct {
	Start  time.Time
	Values []float64
}

func NewSeries(start time.Time, n int) Series {
	return Series{Start: start, Values: make([]float64, n)}
}

// HourCount returns the number of hourly stamps in [start, end].
func HourCount(start, end time.Time) (int, error) {
	if !end.After(start) {
		return 0, fmt.Errorf("horizon end %s must be after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	d := end.Sub(start)
	if d%time.Hour != 0 {
		return 0, fmt.Errorf("horizon %s..%s is not a whole number of hours", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return int(d/time.Hour) + 1, nil
}

func (s Series) Len() int {
	return len(s.Values)
}

func (s Series) Time(i int) time.Time {
	return s.Start.Add(time.Duration(i) * time.Hour)
}

// End is the timestamp of the last value.
func (s Series) End() time.Time {
	if len(s.Values) == 0 {
		return s.Start
	}
	return s.Time(len(s.Values) - 1)
}

func (s Series) Clone() Series {
	out := Series{Start: s.Start, Values: make([]float64, len(s.Values))}
	copy(out.Values, s.Values)
	return out
}

// YearSpan is the half-open index range [Lo, Hi) of one calendar year.
type YearSpan struct {
	Year int
	Lo   int
	Hi   int
}

// Years splits the series index range by calendar year of each stamp (in the
// location of Start).
func (s Series) Years() []YearSpan {
	var out []YearSpan
	for i := 0; i < len(s.Values); {
		y := s.Time(i).Year()
		next := time.Date(y+1, time.January, 1, 0, 0, 0, 0, s.Start.Location())
		hi := int(next.Sub(s.Start) / time.Hour)
		if next.Sub(s.Start)%time.Hour != 0 {
			hi++
		}
		if hi > len(s.Values) {
			hi = len(s.Values)
		}
		out = append(out, YearSpan{Year: y, Lo: i, Hi: hi})
		i = hi
	}
	return out
}

// HoursInYear is 8784 in leap years and 8760 otherwise.
func HoursInYear(year int) int {
	if time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366 {
		return 8784
	}
	return 8760
}
