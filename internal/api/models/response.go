package models

import "time"

// RouteResponse is the response from a routing run.
type RouteResponse struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"` // "ok" or "partial"
	Window    TimeWindow       `json:"window"`
	Hours     int              `json:"hours"`
	Cascades  []CascadeInfo    `json:"cascades"`
	Stations  []StationSummary `json:"stations"`
	Unrouted  []string         `json:"unrouted_links,omitempty"`
	Fallbacks []Fallback       `json:"week53_fallbacks,omitempty"`
	Failures  []Failure        `json:"failures,omitempty"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CascadeInfo is one independent cascade in routing order.
type CascadeInfo struct {
	ID    string   `json:"id"`
	Order []string `json:"order"`
}

// StationSummary contains aggregated results for one routed station.
type StationSummary struct {
	Station         string  `json:"station"`
	Cascade         string  `json:"cascade"`
	MaxOutflow      float64 `json:"qmax"`
	StorageCapacity float64 `json:"storage_capacity"`
	Bottleneck      bool    `json:"bottleneck"`

	MeanScaled      float64 `json:"mean_scaled"`
	P05Scaled       float64 `json:"p05_scaled"`
	P95Scaled       float64 `json:"p95_scaled"`
	MaxScaled       float64 `json:"max_scaled"`
	HoursAboveRated int     `json:"hours_above_rated"`
	SpilledM3       float64 `json:"spilled_m3"`
	UnroutedM3      float64 `json:"unrouted_m3"`

	Series *StationSeries `json:"series,omitempty"`
}

// StationSeries holds the hourly series of one station.
type StationSeries struct {
	Start    time.Time   `json:"start"`
	Own      []float64   `json:"own"`
	Combined []float64   `json:"combined"`
	Scaled   []float64   `json:"scaled,omitempty"`
	Outflow  []float64   `json:"outflow,omitempty"`
	Storage  []float64   `json:"storage,omitempty"`
	Spillage []float64   `json:"spillage,omitempty"`
	Unrouted []float64   `json:"unrouted,omitempty"`
	Ledger   []LedgerRow `json:"ledger,omitempty"`
}

// LedgerRow represents one hour of a storage station's routing.
type LedgerRow struct {
	Hour         int       `json:"hour"`
	Time         time.Time `json:"time"`
	Inflow       float64   `json:"inflow"`
	Outflow      float64   `json:"outflow"`
	StorageStart float64   `json:"storage_start"`
	StorageEnd   float64   `json:"storage_end"`
	Spillage     float64   `json:"spillage"`
	Regime       string    `json:"regime"` // "DRAINING", "PASSING", "SPILLING"
}

// Fallback reports a long year whose week 53 reused its own week 52.
type Fallback struct {
	Station string `json:"station"`
	Year    int    `json:"year"`
}

// Failure is a cascade or station that produced no output.
type Failure struct {
	Scope   string `json:"scope"` // "cascade" or "station"
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RankResponse represents the response from ranking stations
type RankResponse struct {
	Dataset  string    `json:"dataset"`
	Rankings []Ranking `json:"rankings"`
}

// Ranking represents one ranked station
type Ranking struct {
	Rank            int          `json:"rank"`
	Station         string       `json:"station"`
	Count           int          `json:"count"`
	Mean            float64      `json:"mean"`
	P05             float64      `json:"p05"`
	P95             float64      `json:"p95"`
	HoursAboveRated int          `json:"hours_above_rated"`
	SpilledM3       float64      `json:"spilled_m3"`
	UnroutedM3      float64      `json:"unrouted_m3"`
	Annual          []YearFactor `json:"annual,omitempty"`
}

// YearFactor is the equivalent full-flow hours of one calendar year.
type YearFactor struct {
	Year  int     `json:"year"`
	Hours float64 `json:"hours"`
}

// LinkKindInfo describes a supported link kind
type LinkKindInfo struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Main        bool     `json:"main"`
	Description string   `json:"description"`
}

// DatasetInfo represents a run configuration available to /rank
type DatasetInfo struct {
	Name string `json:"name"`
	File string `json:"file"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
