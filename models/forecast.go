// ABOUTME: Forecasting parameters, trend data, and projection results
// ABOUTME: Serializable output of the forecasting engine

package models

import "time"

// ForecastParameters is the caller-supplied forecast configuration
type ForecastParameters struct {
	ForecastHorizonMonths int     `json:"forecast_horizon_months"`
	AnnualGrowthPercent   float64 `json:"annual_growth_percent"`
	ConfidenceLevel       float64 `json:"confidence_level"`
	IncludeSeasonality    bool    `json:"include_seasonality"` // reserved, not yet applied
}

// DefaultForecastParameters returns a 3-year planning horizon with 15% growth
func DefaultForecastParameters() ForecastParameters {
	return ForecastParameters{
		ForecastHorizonMonths: 36,
		AnnualGrowthPercent:   15.0,
		ConfidenceLevel:       80.0,
	}
}

// DataPoint is a single (timestamp, value) observation
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// TrendData holds a fitted linear trend for one resource series
type TrendData struct {
	Slope      float64     `json:"slope"`     // rate of change per day
	RSquared   float64     `json:"r_squared"` // goodness of fit, clamped to [0,1]
	DataPoints []DataPoint `json:"data_points"`
}

// ResourceTrends groups the fitted trends per resource axis
type ResourceTrends struct {
	VCPUTrend    TrendData `json:"vcpu_trend"`
	MemoryTrend  TrendData `json:"memory_trend"`
	StorageTrend TrendData `json:"storage_trend"`
	VMCountTrend TrendData `json:"vm_count_trend"`
}

// ProjectedMetrics is the projected demand at the target date
type ProjectedMetrics struct {
	TotalVCPUs                int     `json:"total_vcpus"`
	TotalProvisionedMemoryGB  float64 `json:"total_provisioned_memory_gb"`
	TotalConsumedMemoryGB     float64 `json:"total_consumed_memory_gb"`
	TotalProvisionedStorageGB float64 `json:"total_provisioned_storage_gb"`
	TotalConsumedStorageGB    float64 `json:"total_consumed_storage_gb"`
	TotalVMs                  int     `json:"total_vms"`
}

// Range is a symmetric confidence interval around a point projection
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ConfidenceIntervals holds per-resource projection intervals
type ConfidenceIntervals struct {
	VCPURange    Range `json:"vcpu_range"`
	MemoryRange  Range `json:"memory_range"`
	StorageRange Range `json:"storage_range"`
}

// ResourceProjections is the forward-looking half of a forecast
type ResourceProjections struct {
	TargetDate          time.Time           `json:"target_date"`
	ProjectedMetrics    ProjectedMetrics    `json:"projected_metrics"`
	ConfidenceIntervals ConfidenceIntervals `json:"confidence_intervals"`
}

// ForecastResult is the full output of a forecast run
type ForecastResult struct {
	HistoricalTrends ResourceTrends      `json:"historical_trends"`
	Projections      ResourceProjections `json:"projections"`
	ConfidenceLevel  float64             `json:"confidence_level"`
	Methodology      string              `json:"methodology"`
	GeneratedAt      time.Time           `json:"generated_at"`
}
