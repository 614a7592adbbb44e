package resample

import (
	"testing"
	"time"

	"cascade-router/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func hour(h int) time.Time { return t0.Add(time.Duration(h) * time.Hour) }

func TestHourlyInterpolatesBetweenWeeklyPoints(t *testing.T) {
	w := WeeklySeries{
		Station: "A",
		Times:   []time.Time{hour(2), hour(6)},
		Values:  []float64{10, 30},
	}
	s, err := Hourly(w, t0, hour(10))
	require.NoError(t, err)
	require.Equal(t, 11, s.Len())

	want := []float64{10, 10, 10, 15, 20, 25, 30, 25, 20, 15, 10}
	for i, v := range want {
		assert.InDelta(t, v, s.Values[i], 1e-9, "hour %d", i)
	}
	assert.Equal(t, t0, s.Start)
}

func TestHourlyBoundaryUsesFirstWeeklyValue(t *testing.T) {
	w := WeeklySeries{
		Station: "B",
		Times:   []time.Time{hour(0), hour(5), hour(9)},
		Values:  []float64{4, 8, 100},
	}
	s, err := Hourly(w, t0, hour(9))
	require.NoError(t, err)
	assert.Equal(t, 4.0, s.Values[0])
	assert.Equal(t, 4.0, s.Values[s.Len()-1])
	assert.InDelta(t, 5.6, s.Values[2], 1e-9)
}

func TestHourlyRequiresTwoPoints(t *testing.T) {
	w := WeeklySeries{Station: "C", Times: []time.Time{hour(1)}, Values: []float64{3}}
	_, err := Hourly(w, t0, hour(5))
	require.Error(t, err)
	assert.True(t, model.IsConfigError(err))
}

func TestHourlyRejectsOutOfHorizonSamples(t *testing.T) {
	w := WeeklySeries{Station: "D", Times: []time.Time{hour(1), hour(20)}, Values: []float64{1, 2}}
	_, err := Hourly(w, t0, hour(5))
	assert.True(t, model.IsConfigError(err))

	w = WeeklySeries{Station: "D", Times: []time.Time{hour(1), hour(2).Add(time.Minute)}, Values: []float64{1, 2}}
	_, err = Hourly(w, t0, hour(5))
	assert.True(t, model.IsConfigError(err))
}

func TestHasWeek53(t *testing.T) {
	assert.True(t, HasWeek53(2015))
	assert.True(t, HasWeek53(2020))
	assert.False(t, HasWeek53(2019))
	assert.False(t, HasWeek53(2021))
}

func fullYear(station string, year int, base float64) []WeeklyRecord {
	out := make([]WeeklyRecord, 0, 52)
	for w := 1; w <= 52; w++ {
		out = append(out, WeeklyRecord{Station: station, Year: year, Week: w, Value: base + float64(w)})
	}
	return out
}

func TestAlignWeeksDuplicatesNextYearFirstWeek(t *testing.T) {
	records := append(fullYear("S", 2020, 0), WeeklyRecord{Station: "S", Year: 2021, Week: 1, Value: 77})
	records = append(records, WeeklyRecord{Station: "S", Year: 2021, Week: 2, Value: 78})

	aligned, fallbacks, err := AlignWeeks("S", records)
	require.NoError(t, err)
	assert.Empty(t, fallbacks)
	require.Len(t, aligned, 55)
	assert.Equal(t, WeeklyRecord{Station: "S", Year: 2020, Week: 53, Value: 77}, aligned[52])
	assert.Equal(t, 77.0, aligned[53].Value)
}

func TestAlignWeeksFallsBackToOwnLastWeek(t *testing.T) {
	aligned, fallbacks, err := AlignWeeks("S", fullYear("S", 2020, 100))
	require.NoError(t, err)
	require.Len(t, aligned, 53)
	assert.Equal(t, 152.0, aligned[52].Value)
	assert.Equal(t, []Fallback{{Station: "S", Year: 2020}}, fallbacks)
}

func TestAlignWeeksLeavesShortYearsAlone(t *testing.T) {
	aligned, fallbacks, err := AlignWeeks("S", fullYear("S", 2019, 0))
	require.NoError(t, err)
	assert.Len(t, aligned, 52)
	assert.Empty(t, fallbacks)
}

func TestAlignWeeksRejectsGaps(t *testing.T) {
	records := []WeeklyRecord{
		{Station: "S", Year: 2021, Week: 1},
		{Station: "S", Year: 2021, Week: 3},
	}
	_, _, err := AlignWeeks("S", records)
	assert.True(t, model.IsConfigError(err))
}

func TestWeekStamps(t *testing.T) {
	end := time.Date(2021, 1, 31, 23, 0, 0, 0, time.UTC)

	stamps, err := WeekStamps(t0, end, 5)
	require.NoError(t, err)
	require.Len(t, stamps, 5)
	assert.Equal(t, time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC), stamps[0])
	assert.Equal(t, time.Sunday, stamps[4].Weekday())

	stamps, err = WeekStamps(t0, end, 6)
	require.NoError(t, err)
	assert.Equal(t, end, stamps[5])

	_, err = WeekStamps(t0, end, 7)
	assert.Error(t, err)
}

func TestStationsKeepsFailuresPerStation(t *testing.T) {
	end := time.Date(2021, 1, 31, 23, 0, 0, 0, time.UTC)
	var records []WeeklyRecord
	for w := 1; w <= 6; w++ {
		records = append(records, WeeklyRecord{Station: "OK", Year: 2021, Week: w, Value: float64(w)})
	}
	records = append(records, WeeklyRecord{Station: "BAD", Year: 2021, Week: 1, Value: 1})

	b := Stations(records, t0, end)
	require.Contains(t, b.Series, "OK")
	assert.Equal(t, 31*24, b.Series["OK"].Len())
	assert.Equal(t, 1.0, b.Series["OK"].Values[0])
	require.Contains(t, b.Errors, "BAD")
	assert.True(t, model.IsConfigError(b.Errors["BAD"]))
}
