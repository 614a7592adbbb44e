package handlers

import (
	"net/http"
	"time"

	"cascade-router/internal/api/models"
	"cascade-router/internal/config"
	"cascade-router/internal/data"
	"cascade-router/internal/log"
	"cascade-router/internal/model"
	"cascade-router/internal/pipeline"
	"cascade-router/internal/resample"

	"github.com/gin-gonic/gin"
)

// RouteHandler runs the engine on request data and keeps the results for
// follow-up requests.
type RouteHandler struct {
	cache RunCache
}

// RunCache holds routing results by run id.
type RunCache = *data.ResultCache[*CachedRun]

// NewRouteHandler creates a route handler backed by cache.
func NewRouteHandler(cache RunCache) *RouteHandler {
	return &RouteHandler{cache: cache}
}

// NewRunCache creates the result cache used by RouteHandler.
func NewRunCache(ttl time.Duration) RunCache {
	return data.NewResultCache[*CachedRun](ttl, 5*time.Minute)
}

// Route handles POST /api/v1/route
func (h *RouteHandler) Route(c *gin.Context) {
	var req models.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	in, err := buildInputs(req)
	if err != nil {
		abortWithEngineError(c, err)
		return
	}

	out, err := pipeline.Run(in, pipeline.Options{
		Workers:        req.Options.Workers,
		Ledger:         req.Options.IncludeLedger,
		StrictOverflow: req.Options.StrictOverflow,
	})
	if err != nil {
		abortWithEngineError(c, err)
		return
	}

	r := &CachedRun{Output: out, Ledger: req.Options.IncludeLedger}
	r.ID = h.cache.Put(r)
	log.Infow("route request finished", "run", r.ID, "stations", len(out.Scaled), "failed", out.Failed())

	c.JSON(http.StatusOK, buildRouteResponse(r, req.Options.IncludeSeries))
}

// GetRun handles GET /api/v1/runs/:id
func (h *RouteHandler) GetRun(c *gin.Context) {
	r, ok := h.cache.Get(c.Param("id"))
	if !ok {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "run not found or expired")
		return
	}
	c.JSON(http.StatusOK, buildRouteResponse(r, false))
}

// GetStationSeries handles GET /api/v1/runs/:id/stations/:station
func (h *RouteHandler) GetStationSeries(c *gin.Context) {
	r, ok := h.cache.Get(c.Param("id"))
	if !ok {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "run not found or expired")
		return
	}
	id := c.Param("station")
	if _, ok := r.Output.Scaled[id]; !ok {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "station "+id+" has no output in this run")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run":     r.ID,
		"station": id,
		"series":  stationSeries(r, id),
	})
}

func buildInputs(req models.RouteRequest) (*pipeline.Inputs, error) {
	horizon := config.HorizonConfig{Start: req.Horizon.Start, End: req.Horizon.End}
	start, end, err := horizon.Bounds()
	if err != nil {
		return nil, &model.ConfigError{Reason: err.Error()}
	}
	unit, err := config.InputsConfig{StorageUnit: req.Options.StorageUnit}.StorageScale()
	if err != nil {
		return nil, &model.ConfigError{Reason: err.Error()}
	}

	in := &pipeline.Inputs{Start: start, End: end}
	for _, s := range req.Stations {
		st := s.ToModel()
		st.StorageCapacity *= unit
		in.Stations = append(in.Stations, st)
	}
	for _, l := range req.Links {
		ml, err := l.ToModel()
		if err != nil {
			return nil, err
		}
		in.Links = append(in.Links, ml)
	}
	for _, r := range req.Inflows {
		if r.Value < 0 {
			return nil, &model.IntegrityError{Station: r.StationID, Hour: -1, Reason: "negative weekly inflow"}
		}
		in.Inflows = append(in.Inflows, resample.WeeklyRecord{
			Station: r.StationID,
			Year:    r.Year,
			Week:    r.Week,
			Value:   r.Value,
		})
	}
	return in, nil
}
