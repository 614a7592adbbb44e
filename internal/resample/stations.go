package resample

import (
	"time"

	"cascade-router/internal/model"
)

// Batch is the outcome of resampling a whole inflow table. Station failures
// are kept per station so unrelated cascades can still be routed.
type Batch struct {
	Series    map[string]model.Series
	Errors    map[string]error
	Fallbacks []Fallback
}

// Stations groups raw records by station and resamples each one onto the
// hourly horizon [start, end].
func Stations(records []WeeklyRecord, start, end time.Time) *Batch {
	grouped := map[string][]WeeklyRecord{}
	var order []string
	for _, r := range records {
		if _, ok := grouped[r.Station]; !ok {
			order = append(order, r.Station)
		}
		grouped[r.Station] = append(grouped[r.Station], r)
	}

	b := &Batch{
		Series: make(map[string]model.Series, len(grouped)),
		Errors: map[string]error{},
	}
	for _, id := range order {
		w, fallbacks, err := Weekly(id, grouped[id], start, end)
		if err != nil {
			b.Errors[id] = err
			continue
		}
		b.Fallbacks = append(b.Fallbacks, fallbacks...)
		s, err := Hourly(w, start, end)
		if err != nil {
			b.Errors[id] = err
			continue
		}
		b.Series[id] = s
	}
	return b
}
