package analysis

import (
	"sort"

	"cascade-router/internal/cascade"
	"cascade-router/internal/model"
)

type RankedAvailability struct {
	Rank int
	Availability
}

// RankByMean computes availability per station and sorts descending by mean
// scaled inflow. Ties keep station id order.
func RankByMean(scaled map[string]model.Series, routed map[string]*cascade.StationResult) []RankedAvailability {
	out := make([]RankedAvailability, 0, len(scaled))
	for id, s := range scaled {
		a := ComputeAvailability(id, s, routed[id])
		out = append(out, RankedAvailability{Availability: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean > out[j].Mean
		}
		return out[i].Station < out[j].Station
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
