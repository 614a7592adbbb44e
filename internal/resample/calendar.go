package resample

import (
	"fmt"
	"sort"
	"time"

	"cascade-router/internal/model"
)

// WeeklyRecord is one raw (station, year, week) sample of the inflow table.
type WeeklyRecord struct {
	Station string
	Year    int
	Week    int
	Value   float64
}

// HasWeek53 reports whether the calendar year carries a 53rd ISO week.
func HasWeek53(year int) bool {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w == 53
}

// Fallback records a week 53 filled from its own year because the following
// year lies outside the data.
type Fallback struct {
	Station string
	Year    int
}

// AlignWeeks orders one station's records and fills the 53rd week of long
// years with a copy of the following year's first week. A long year whose
// successor is absent reuses its own last week and is reported as a Fallback.
// Partial years (not reaching week 52) are left untouched.
func AlignWeeks(station string, records []WeeklyRecord) ([]WeeklyRecord, []Fallback, error) {
	rs := make([]WeeklyRecord, len(records))
	copy(rs, records)
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Year != rs[j].Year {
			return rs[i].Year < rs[j].Year
		}
		return rs[i].Week < rs[j].Week
	})

	byYear := map[int][]WeeklyRecord{}
	var years []int
	for i, r := range rs {
		if r.Week < 1 || r.Week > 53 {
			return nil, nil, &model.ConfigError{Station: station, Reason: fmt.Sprintf("week %d of %d out of range", r.Week, r.Year)}
		}
		if i > 0 && rs[i-1].Year == r.Year && rs[i-1].Week == r.Week {
			return nil, nil, &model.ConfigError{Station: station, Reason: fmt.Sprintf("duplicate week %d of %d", r.Week, r.Year)}
		}
		if _, ok := byYear[r.Year]; !ok {
			years = append(years, r.Year)
		}
		byYear[r.Year] = append(byYear[r.Year], r)
	}

	var out []WeeklyRecord
	var fallbacks []Fallback
	for i, y := range years {
		weeks := byYear[y]
		if i > 0 && years[i-1] != y-1 {
			return nil, nil, &model.ConfigError{Station: station, Reason: fmt.Sprintf("no records for year %d", y-1)}
		}
		for k := 1; k < len(weeks); k++ {
			if weeks[k].Week != weeks[k-1].Week+1 {
				return nil, nil, &model.ConfigError{Station: station, Reason: fmt.Sprintf("gap after week %d of %d", weeks[k-1].Week, y)}
			}
		}
		out = append(out, weeks...)

		last := weeks[len(weeks)-1]
		if last.Week != 52 || !HasWeek53(y) {
			continue
		}
		extra := last
		if next, ok := byYear[y+1]; ok && next[0].Week == 1 {
			extra.Value = next[0].Value
		} else {
			fallbacks = append(fallbacks, Fallback{Station: station, Year: y})
		}
		extra.Week = 53
		out = append(out, extra)
	}
	return out, fallbacks, nil
}

// WeekStamps returns the weekly sample times for n aligned records: every
// Sunday 00:00 within [start, end], followed by end itself when one more
// record remains.
func WeekStamps(start, end time.Time, n int) ([]time.Time, error) {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	if first.Before(start) {
		first = first.AddDate(0, 0, 1)
	}
	for first.Weekday() != time.Sunday {
		first = first.AddDate(0, 0, 1)
	}

	var stamps []time.Time
	for t := first; !t.After(end); t = t.AddDate(0, 0, 7) {
		stamps = append(stamps, t)
	}
	switch {
	case n == len(stamps):
		return stamps, nil
	case n == len(stamps)+1 && (len(stamps) == 0 || !stamps[len(stamps)-1].Equal(end)):
		return append(stamps, end), nil
	default:
		return nil, fmt.Errorf("%d weekly records do not fit the %d weekly stamps of %s..%s",
			n, len(stamps), start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
}

// Weekly aligns a station's raw records and stamps them onto the horizon.
func Weekly(station string, records []WeeklyRecord, start, end time.Time) (WeeklySeries, []Fallback, error) {
	aligned, fallbacks, err := AlignWeeks(station, records)
	if err != nil {
		return WeeklySeries{}, nil, err
	}
	stamps, err := WeekStamps(start, end, len(aligned))
	if err != nil {
		return WeeklySeries{}, nil, &model.ConfigError{Station: station, Reason: err.Error()}
	}
	w := WeeklySeries{
		Station: station,
		Times:   stamps,
		Values:  make([]float64, len(aligned)),
	}
	for i, r := range aligned {
		w.Values[i] = r.Value
	}
	return w, fallbacks, nil
}
