// Package api assembles the HTTP surface of the routing engine.
package api

import (
	"net/http"

	"cascade-router/internal/api/handlers"
	"cascade-router/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Options configures the router.
type Options struct {
	DatasetDir string
	Cache      handlers.RunCache
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	routeHandler := handlers.NewRouteHandler(opts.Cache)
	datasetHandler := handlers.NewDatasetHandler(opts.DatasetDir)
	rankHandler := handlers.NewRankHandler(opts.DatasetDir)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/route", routeHandler.Route)
		v1.GET("/runs/:id", routeHandler.GetRun)
		v1.GET("/runs/:id/stations/:station", routeHandler.GetStationSeries)

		v1.GET("/link-kinds", handlers.ListLinkKinds)
		v1.GET("/datasets", datasetHandler.ListDatasets)
		v1.GET("/rank", rankHandler.RankStations)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}
