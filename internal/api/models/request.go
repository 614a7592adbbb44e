package models

import "cascade-router/internal/config"

// RouteRequest is the request body for POST /api/v1/route.
type RouteRequest struct {
	Horizon  HorizonRequest         `json:"horizon" binding:"required"`
	Stations []config.StationConfig `json:"stations" binding:"required,min=1"`
	Links    []config.LinkConfig    `json:"links,omitempty"`
	Inflows  []InflowRecord         `json:"inflows" binding:"required,min=1"`
	Options  RouteOptions           `json:"options,omitempty"`
}

// HorizonRequest is the inclusive hourly horizon (RFC3339 or YYYY-MM-DD).
type HorizonRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// InflowRecord is one weekly raw inflow value.
type InflowRecord struct {
	StationID string  `json:"station_id" binding:"required"`
	Year      int     `json:"year" binding:"required"`
	Week      int     `json:"week" binding:"required"`
	Value     float64 `json:"value"`
}

// RouteOptions contains optional routing parameters.
type RouteOptions struct {
	Workers        int    `json:"workers,omitempty"`
	StrictOverflow bool   `json:"strict_overflow,omitempty"`
	StorageUnit    string `json:"storage_unit,omitempty"`    // m3 (default) or hm3
	IncludeSeries  bool   `json:"include_series,omitempty"`  // default: false
	IncludeLedger  bool   `json:"include_ledger,omitempty"`  // default: false
}

// RankRequest ranks the stations of a dataset from DATASET_DIR.
type RankRequest struct {
	Dataset string `form:"dataset" binding:"required"`
	Limit   int    `form:"limit,omitempty"` // default: all
}
