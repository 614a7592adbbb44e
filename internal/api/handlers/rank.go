package handlers

import (
	"net/http"

	"cascade-router/internal/analysis"
	"cascade-router/internal/api/models"
	"cascade-router/internal/config"
	"cascade-router/internal/data"
	"cascade-router/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// RankHandler ranks the stations of a dataset config.
type RankHandler struct {
	dir string
}

// NewRankHandler creates a rank handler; an empty dir uses DATASET_DIR.
func NewRankHandler(dir string) *RankHandler {
	if dir == "" {
		dir = data.GetDefaultDatasetDir()
	}
	return &RankHandler{dir: dir}
}

// RankStations handles GET /api/v1/rank
func (h *RankHandler) RankStations(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	ds, err := data.FindDataset(h.dir, req.Dataset)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	cfg, err := config.Load(ds.Path)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}
	out, err := pipeline.RunConfig(cfg)
	if err != nil {
		abortWithEngineError(c, err)
		return
	}

	ranked := analysis.RankByMean(out.Scaled, out.Routed.Stations)
	c.JSON(http.StatusOK, models.RankResponse{
		Dataset:  ds.Name,
		Rankings: buildRankings(ranked, req.Limit),
	})
}
