package main

import (
	"fmt"
	"os"

	"cascade-router/internal/api"
	"cascade-router/internal/api/handlers"
	"cascade-router/internal/data"
	"cascade-router/internal/log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // ignore missing file

	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	production := os.Getenv("API_ENV") == "production"

	if err := log.Init(!production); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	datasetDir := data.GetDefaultDatasetDir()
	if info, err := os.Stat(datasetDir); err == nil && info.IsDir() {
		log.Infof("Dataset directory found: %s", datasetDir)
	} else {
		log.Warnf("Dataset directory not found at: %s (error: %v)", datasetDir, err)
	}

	ttl := data.CacheTTLFromEnv()
	cache := handlers.NewRunCache(ttl)
	defer cache.Close()

	router := api.NewRouter(api.Options{
		DatasetDir: datasetDir,
		Cache:      cache,
	})

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.Infow("starting API server", "addr", addr, "result_ttl", ttl.String())
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
