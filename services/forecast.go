// ABOUTME: Forecasting engine projecting future resource demand from snapshots
// ABOUTME: OLS trend fitting with a compound-growth fallback for sparse history

package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/atlasplan/migration-planner/models"
)

// Methodology labels reported on forecast results
const (
	MethodologyLinearRegression = "Linear Regression"
	MethodologyCompoundGrowth   = "Simple Compound Growth"
)

// ForecastingEngine fits resource trends and projects future demand
type ForecastingEngine struct{}

// NewForecastingEngine creates a new forecasting engine
func NewForecastingEngine() *ForecastingEngine {
	return &ForecastingEngine{}
}

// GenerateForecast projects demand over the forecast horizon. With fewer
// than 2 snapshots it falls back to compound growth from the single
// snapshot; with none at all there is nothing to project from and the call
// fails.
func (f *ForecastingEngine) GenerateForecast(history []models.Environment, params models.ForecastParameters) (*models.ForecastResult, error) {
	if len(history) == 0 {
		return nil, errors.New("forecast requires at least one environment snapshot")
	}
	if len(history) < 2 {
		return f.simpleForecast(&history[0], params), nil
	}

	sorted := make([]models.Environment, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ParsedAt.Before(sorted[j].ParsedAt)
	})

	series := extractTimeSeries(sorted)

	trends, err := calculateTrends(series)
	if err != nil {
		return nil, err
	}

	projections := projectFutureValues(trends, params)

	result := &models.ForecastResult{
		HistoricalTrends: *trends,
		Projections:      projections,
		ConfidenceLevel:  confidenceLevel(series),
		Methodology:      MethodologyLinearRegression,
		GeneratedAt:      time.Now().UTC(),
	}

	slog.Info("forecast generated",
		"snapshots", len(history),
		"horizon_months", params.ForecastHorizonMonths,
		"confidence", result.ConfidenceLevel)

	return result, nil
}

// simpleForecast compounds the annual growth rate over the horizon when
// there is not enough history for a regression
func (f *ForecastingEngine) simpleForecast(env *models.Environment, params models.ForecastParameters) *models.ForecastResult {
	metrics := env.SummaryMetrics
	growthFactor := 1.0 + params.AnnualGrowthPercent/100.0
	years := float64(params.ForecastHorizonMonths) / 12.0
	compound := math.Pow(growthFactor, years)

	projected := models.ProjectedMetrics{
		TotalVCPUs:                int(float64(metrics.TotalVCPUs) * compound),
		TotalProvisionedMemoryGB:  metrics.TotalProvisionedMemoryGB * compound,
		TotalConsumedMemoryGB:     metrics.TotalConsumedMemoryGB * compound,
		TotalProvisionedStorageGB: metrics.TotalProvisionedStorageGB * compound,
		TotalConsumedStorageGB:    metrics.TotalConsumedStorageGB * compound,
		TotalVMs:                  int(float64(env.TotalVMs) * compound),
	}

	// Each trend gets an implied monthly slope and an assumed fit quality
	singlePoint := func(value float64) models.TrendData {
		return models.TrendData{
			Slope:    value * (growthFactor - 1.0) / 12.0,
			RSquared: 0.8,
			DataPoints: []models.DataPoint{
				{Timestamp: env.ParsedAt, Value: value},
			},
		}
	}

	return &models.ForecastResult{
		HistoricalTrends: models.ResourceTrends{
			VCPUTrend:    singlePoint(float64(metrics.TotalVCPUs)),
			MemoryTrend:  singlePoint(metrics.TotalProvisionedMemoryGB),
			StorageTrend: singlePoint(metrics.TotalConsumedStorageGB),
			VMCountTrend: singlePoint(float64(env.TotalVMs)),
		},
		Projections: models.ResourceProjections{
			TargetDate:       env.ParsedAt.AddDate(0, 0, params.ForecastHorizonMonths*30),
			ProjectedMetrics: projected,
			ConfidenceIntervals: models.ConfidenceIntervals{
				VCPURange:    models.Range{Low: float64(projected.TotalVCPUs) * 0.9, High: float64(projected.TotalVCPUs) * 1.1},
				MemoryRange:  models.Range{Low: projected.TotalProvisionedMemoryGB * 0.9, High: projected.TotalProvisionedMemoryGB * 1.1},
				StorageRange: models.Range{Low: projected.TotalConsumedStorageGB * 0.9, High: projected.TotalConsumedStorageGB * 1.1},
			},
		},
		ConfidenceLevel: 80.0,
		Methodology:     MethodologyCompoundGrowth,
		GeneratedAt:     time.Now().UTC(),
	}
}

// timeSeries groups the four extracted resource series
type timeSeries struct {
	vcpu    []models.DataPoint
	memory  []models.DataPoint
	storage []models.DataPoint
	vmCount []models.DataPoint
}

func extractTimeSeries(envs []models.Environment) *timeSeries {
	series := &timeSeries{}
	for _, env := range envs {
		ts := env.ParsedAt
		series.vcpu = append(series.vcpu, models.DataPoint{Timestamp: ts, Value: float64(env.SummaryMetrics.TotalVCPUs)})
		series.memory = append(series.memory, models.DataPoint{Timestamp: ts, Value: env.SummaryMetrics.TotalProvisionedMemoryGB})
		series.storage = append(series.storage, models.DataPoint{Timestamp: ts, Value: env.SummaryMetrics.TotalConsumedStorageGB})
		series.vmCount = append(series.vmCount, models.DataPoint{Timestamp: ts, Value: float64(env.TotalVMs)})
	}
	return series
}

func calculateTrends(series *timeSeries) (*models.ResourceTrends, error) {
	vcpu, err := LinearTrend(series.vcpu)
	if err != nil {
		return nil, fmt.Errorf("vcpu trend: %w", err)
	}
	memory, err := LinearTrend(series.memory)
	if err != nil {
		return nil, fmt.Errorf("memory trend: %w", err)
	}
	storage, err := LinearTrend(series.storage)
	if err != nil {
		return nil, fmt.Errorf("storage trend: %w", err)
	}
	vmCount, err := LinearTrend(series.vmCount)
	if err != nil {
		return nil, fmt.Errorf("vm count trend: %w", err)
	}

	return &models.ResourceTrends{
		VCPUTrend:    vcpu,
		MemoryTrend:  memory,
		StorageTrend: storage,
		VMCountTrend: vmCount,
	}, nil
}

// LinearTrend fits an ordinary least-squares line to the series, with x as
// days since the first point. Slope is value per day. R squared is clamped
// to [0,1]. Fewer than 2 points is a hard error.
func LinearTrend(points []models.DataPoint) (models.TrendData, error) {
	if len(points) < 2 {
		return models.TrendData{}, errors.New("need at least 2 data points for trend analysis")
	}

	base := points[0].Timestamp
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Timestamp.Sub(base).Hours() / 24.0
		ys[i] = p.Value
	}

	n := float64(len(points))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssTot, ssRes float64
	for i := range xs {
		ssTot += (ys[i] - meanY) * (ys[i] - meanY)
		predicted := slope*xs[i] + intercept
		ssRes += (ys[i] - predicted) * (ys[i] - predicted)
	}

	rSquared := 0.0
	if ssTot > 0 {
		rSquared = 1.0 - ssRes/ssTot
	}
	if rSquared < 0 {
		rSquared = 0
	}
	if rSquared > 1 {
		rSquared = 1
	}

	data := make([]models.DataPoint, len(points))
	copy(data, points)

	return models.TrendData{
		Slope:      slope,
		RSquared:   rSquared,
		DataPoints: data,
	}, nil
}

// projectFutureValues extends each trend over the horizon, floors the
// projection at the last observed baseline, then layers the business growth
// rate on top as a demand overlay
func projectFutureValues(trends *models.ResourceTrends, params models.ForecastParameters) models.ResourceProjections {
	monthsAhead := float64(params.ForecastHorizonMonths)
	daysAhead := monthsAhead * 30.0

	last := func(t models.TrendData) models.DataPoint {
		return t.DataPoints[len(t.DataPoints)-1]
	}

	projectFrom := func(t models.TrendData) float64 {
		baseline := last(t).Value
		projected := baseline + t.Slope*daysAhead
		if projected < baseline {
			projected = baseline
		}
		return projected
	}

	growthMultiplier := 1.0 + params.AnnualGrowthPercent/100.0*monthsAhead/12.0

	finalVCPU := projectFrom(trends.VCPUTrend) * growthMultiplier
	finalMemory := projectFrom(trends.MemoryTrend) * growthMultiplier
	finalStorage := projectFrom(trends.StorageTrend) * growthMultiplier
	finalVMCount := projectFrom(trends.VMCountTrend) * growthMultiplier

	factor := confidenceFactor(trends)

	return models.ResourceProjections{
		TargetDate: last(trends.VCPUTrend).Timestamp.AddDate(0, 0, int(daysAhead)),
		ProjectedMetrics: models.ProjectedMetrics{
			TotalVCPUs:               int(finalVCPU),
			TotalProvisionedMemoryGB: finalMemory,
			// Consumed memory and provisioned storage are estimated from the
			// projected figures; discovery only trends provisioned memory and
			// consumed storage
			TotalConsumedMemoryGB:     finalMemory * 0.8,
			TotalProvisionedStorageGB: finalStorage * 1.2,
			TotalConsumedStorageGB:    finalStorage,
			TotalVMs:                  int(finalVMCount),
		},
		ConfidenceIntervals: models.ConfidenceIntervals{
			VCPURange:    models.Range{Low: finalVCPU * (1.0 - factor), High: finalVCPU * (1.0 + factor)},
			MemoryRange:  models.Range{Low: finalMemory * (1.0 - factor), High: finalMemory * (1.0 + factor)},
			StorageRange: models.Range{Low: finalStorage * (1.0 - factor), High: finalStorage * (1.0 + factor)},
		},
	}
}

// confidenceFactor converts mean fit quality into a symmetric interval
// half-width between 10% and 40%
func confidenceFactor(trends *models.ResourceTrends) float64 {
	avgRSquared := (trends.VCPUTrend.RSquared + trends.MemoryTrend.RSquared + trends.StorageTrend.RSquared) / 3.0
	uncertainty := 1.0 - avgRSquared
	factor := uncertainty * 0.5
	if factor < 0.1 {
		factor = 0.1
	}
	if factor > 0.4 {
		factor = 0.4
	}
	return factor
}

// confidenceLevel steps up with snapshot count and span, capped at 98
func confidenceLevel(series *timeSeries) float64 {
	count := len(series.vcpu)

	var base float64
	switch {
	case count <= 1:
		base = 60.0
	case count <= 3:
		base = 70.0
	case count <= 6:
		base = 80.0
	case count <= 12:
		base = 90.0
	default:
		base = 95.0
	}

	var spanDays float64
	if count > 1 {
		spanDays = series.vcpu[count-1].Timestamp.Sub(series.vcpu[0].Timestamp).Hours() / 24.0
	}

	switch {
	case spanDays > 90:
		base += 5.0
	case spanDays > 30:
		base += 2.0
	}

	if base > 98.0 {
		base = 98.0
	}
	return base
}
