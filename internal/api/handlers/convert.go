package handlers

import (
	"sort"

	"cascade-router/internal/analysis"
	"cascade-router/internal/api/models"
	"cascade-router/internal/pipeline"
)

// CachedRun is one routing result kept for follow-up requests.
type CachedRun struct {
	ID     string
	Output *pipeline.Output
	Ledger bool
}

func buildRouteResponse(r *CachedRun, includeSeries bool) models.RouteResponse {
	out := r.Output
	resp := models.RouteResponse{
		ID:     r.ID,
		Status: "ok",
	}
	if out.Failed() {
		resp.Status = "partial"
	}

	cascadeOf := map[string]string{}
	for _, c := range out.Forest.Cascades() {
		resp.Cascades = append(resp.Cascades, models.CascadeInfo{ID: c.ID, Order: c.Order})
		for _, id := range c.Order {
			cascadeOf[id] = c.ID
		}
	}

	for _, id := range out.Order() {
		s := out.Routed.Stations[id]
		scaled := out.Scaled[id]
		if resp.Hours == 0 {
			resp.Hours = scaled.Len()
			resp.Window = models.TimeWindow{Start: scaled.Start, End: scaled.End()}
		}
		a := analysis.ComputeAvailability(id, scaled, s)
		sum := models.StationSummary{
			Station:         id,
			Cascade:         cascadeOf[id],
			MaxOutflow:      s.Station.MaxOutflow,
			StorageCapacity: s.Station.StorageCapacity,
			Bottleneck:      s.Station.Bottleneck(),
			MeanScaled:      a.Mean,
			P05Scaled:       a.P05,
			P95Scaled:       a.P95,
			MaxScaled:       a.Max,
			HoursAboveRated: a.HoursAboveRated,
			SpilledM3:       a.SpilledVolume,
			UnroutedM3:      a.UnroutedVolume,
		}
		if includeSeries {
			series := stationSeries(r, id)
			sum.Series = &series
		}
		resp.Stations = append(resp.Stations, sum)
	}

	for _, u := range out.Forest.Unrouted() {
		resp.Unrouted = append(resp.Unrouted, u.Link.String())
	}
	for _, fb := range out.Fallbacks {
		resp.Fallbacks = append(resp.Fallbacks, models.Fallback{Station: fb.Station, Year: fb.Year})
	}
	resp.Failures = failures(out)
	return resp
}

func stationSeries(r *CachedRun, id string) models.StationSeries {
	s := r.Output.Routed.Stations[id]
	out := models.StationSeries{
		Start:    s.Own.Start,
		Own:      s.Own.Values,
		Combined: s.Combined.Values,
		Scaled:   r.Output.Scaled[id].Values,
		Outflow:  s.Outflow,
		Storage:  s.Storage,
		Spillage: s.Spillage,
		Unrouted: s.Unrouted,
	}
	if r.Ledger {
		for _, row := range s.Ledger {
			out.Ledger = append(out.Ledger, models.LedgerRow{
				Hour:         row.Hour,
				Time:         row.Time,
				Inflow:       row.Inflow,
				Outflow:      row.Outflow,
				StorageStart: row.StorageStart,
				StorageEnd:   row.StorageEnd,
				Spillage:     row.Spillage,
				Regime:       string(row.Regime),
			})
		}
	}
	return out
}

func failures(out *pipeline.Output) []models.Failure {
	var res []models.Failure
	add := func(scope string, errs map[string]error) {
		ids := make([]string, 0, len(errs))
		for id := range errs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			_, code := errorCode(errs[id])
			res = append(res, models.Failure{Scope: scope, ID: id, Code: code, Message: errs[id].Error()})
		}
	}
	add("cascade", out.Failures)
	add("station", out.ScaleErrors)
	return res
}

func buildRankings(ranked []analysis.RankedAvailability, limit int) []models.Ranking {
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	out := make([]models.Ranking, 0, len(ranked))
	for _, r := range ranked {
		rk := models.Ranking{
			Rank:            r.Rank,
			Station:         r.Station,
			Count:           r.Count,
			Mean:            r.Mean,
			P05:             r.P05,
			P95:             r.P95,
			HoursAboveRated: r.HoursAboveRated,
			SpilledM3:       r.SpilledVolume,
			UnroutedM3:      r.UnroutedVolume,
		}
		for _, y := range r.Annual {
			rk.Annual = append(rk.Annual, models.YearFactor{Year: y.Year, Hours: y.Hours})
		}
		out = append(out, rk)
	}
	return out
}
