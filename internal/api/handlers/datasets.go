package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"cascade-router/internal/api/models"
	"cascade-router/internal/data"

	"github.com/gin-gonic/gin"
)

// DatasetHandler serves the run configurations found in a directory.
type DatasetHandler struct {
	dir string
}

// NewDatasetHandler creates a dataset handler; an empty dir uses DATASET_DIR.
func NewDatasetHandler(dir string) *DatasetHandler {
	if dir == "" {
		dir = data.GetDefaultDatasetDir()
	}
	return &DatasetHandler{dir: dir}
}

// ListDatasets handles GET /api/v1/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	list, err := data.ListDatasets(h.dir)
	if err != nil {
		// A missing directory just means no datasets.
		if errors.Is(err, fs.ErrNotExist) {
			c.JSON(http.StatusOK, gin.H{"datasets": []models.DatasetInfo{}, "count": 0})
			return
		}
		abortWithError(c, http.StatusInternalServerError, "DATASETS_LOAD_ERROR", fmt.Sprintf("Failed to list datasets: %v", err))
		return
	}

	datasets := make([]models.DatasetInfo, len(list))
	for i, d := range list {
		datasets[i] = models.DatasetInfo{Name: d.Name, File: d.Path}
	}
	c.JSON(http.StatusOK, gin.H{
		"datasets": datasets,
		"count":    len(datasets),
	})
}
