// ABOUTME: Tests for the forecasting engine
// ABOUTME: Validates trend fitting, projections, and the sparse-history fallback

package services

import (
	"testing"
	"time"

	"github.com/atlasplan/migration-planner/models"
)

func testSnapshot(parsedAt time.Time, vcpus int, memoryGB, storageGB float64, vms int) models.Environment {
	return models.Environment{
		Name:     "prod",
		ParsedAt: parsedAt,
		TotalVMs: vms,
		SummaryMetrics: models.EnvironmentSummary{
			TotalVCPUs:                vcpus,
			TotalProvisionedMemoryGB:  memoryGB,
			TotalConsumedMemoryGB:     memoryGB * 0.8,
			TotalProvisionedStorageGB: storageGB * 1.2,
			TotalConsumedStorageGB:    storageGB,
		},
	}
}

func TestGenerateForecast_NoHistory(t *testing.T) {
	engine := NewForecastingEngine()
	if _, err := engine.GenerateForecast(nil, models.DefaultForecastParameters()); err == nil {
		t.Error("Expected error with no snapshots, got nil")
	}
}

func TestGenerateForecast_SingleSnapshotFallback(t *testing.T) {
	// Scenario: one snapshot, 12% annual growth over 12 months
	// Compound: 100 vCPUs x 1.12 = 112
	parsedAt := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	history := []models.Environment{testSnapshot(parsedAt, 100, 1000, 5000, 50)}
	params := models.ForecastParameters{ForecastHorizonMonths: 12, AnnualGrowthPercent: 12.0}

	engine := NewForecastingEngine()
	result, err := engine.GenerateForecast(history, params)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Methodology != MethodologyCompoundGrowth {
		t.Errorf("Expected methodology %q, got %q", MethodologyCompoundGrowth, result.Methodology)
	}
	if result.ConfidenceLevel != 80.0 {
		t.Errorf("Expected confidence 80, got %g", result.ConfidenceLevel)
	}
	if result.Projections.ProjectedMetrics.TotalVCPUs != 112 {
		t.Errorf("Expected projected vCPUs 112, got %d", result.Projections.ProjectedMetrics.TotalVCPUs)
	}

	// Target date is horizon x 30 days past the snapshot
	expectedTarget := parsedAt.AddDate(0, 0, 360)
	if !result.Projections.TargetDate.Equal(expectedTarget) {
		t.Errorf("Expected target date %s, got %s", expectedTarget, result.Projections.TargetDate)
	}

	low := result.Projections.ConfidenceIntervals.VCPURange.Low
	high := result.Projections.ConfidenceIntervals.VCPURange.High
	if low >= float64(result.Projections.ProjectedMetrics.TotalVCPUs) || high <= float64(result.Projections.ProjectedMetrics.TotalVCPUs) {
		t.Errorf("Expected interval to bracket the projection, got [%g, %g]", low, high)
	}
}

func TestGenerateForecast_LinearRegression(t *testing.T) {
	// Six monthly snapshots with vCPUs growing 10 per 30 days
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var history []models.Environment
	for i := 0; i < 6; i++ {
		history = append(history, testSnapshot(
			base.AddDate(0, 0, 30*i),
			100+10*i,
			1000+100*float64(i),
			5000+500*float64(i),
			50+5*i,
		))
	}

	engine := NewForecastingEngine()
	result, err := engine.GenerateForecast(history, models.ForecastParameters{ForecastHorizonMonths: 12})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Methodology != MethodologyLinearRegression {
		t.Errorf("Expected methodology %q, got %q", MethodologyLinearRegression, result.Methodology)
	}

	trend := result.HistoricalTrends.VCPUTrend
	if trend.Slope <= 0 {
		t.Errorf("Expected positive vCPU slope, got %g", trend.Slope)
	}
	// Perfectly linear data fits exactly
	if trend.RSquared < 0.99 {
		t.Errorf("Expected R squared near 1 for linear data, got %g", trend.RSquared)
	}

	// 10 vCPUs per 30 days continued for 360 days: 150 + 120 = 270
	if got := result.Projections.ProjectedMetrics.TotalVCPUs; got < 265 || got > 275 {
		t.Errorf("Expected projected vCPUs near 270, got %d", got)
	}

	if result.ConfidenceLevel < 50 || result.ConfidenceLevel > 98 {
		t.Errorf("Expected confidence in [50, 98], got %g", result.ConfidenceLevel)
	}
}

func TestGenerateForecast_SortsUnorderedHistory(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	history := []models.Environment{
		testSnapshot(base.AddDate(0, 0, 60), 120, 1200, 6000, 60),
		testSnapshot(base, 100, 1000, 5000, 50),
		testSnapshot(base.AddDate(0, 0, 30), 110, 1100, 5500, 55),
	}

	engine := NewForecastingEngine()
	result, err := engine.GenerateForecast(history, models.ForecastParameters{ForecastHorizonMonths: 6})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.HistoricalTrends.VCPUTrend.Slope <= 0 {
		t.Errorf("Expected positive slope after sorting, got %g", result.HistoricalTrends.VCPUTrend.Slope)
	}
}

func TestGenerateForecast_ProjectionFlooredAtBaseline(t *testing.T) {
	// A shrinking estate never projects below the last observation
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	history := []models.Environment{
		testSnapshot(base, 200, 2000, 10000, 100),
		testSnapshot(base.AddDate(0, 0, 30), 180, 1800, 9000, 90),
		testSnapshot(base.AddDate(0, 0, 60), 160, 1600, 8000, 80),
	}

	engine := NewForecastingEngine()
	result, err := engine.GenerateForecast(history, models.ForecastParameters{ForecastHorizonMonths: 12})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := result.Projections.ProjectedMetrics.TotalVCPUs; got < 160 {
		t.Errorf("Expected projection floored at last baseline 160, got %d", got)
	}
}

func TestLinearTrend_TooFewPoints(t *testing.T) {
	points := []models.DataPoint{{Timestamp: time.Now(), Value: 100}}
	if _, err := LinearTrend(points); err == nil {
		t.Error("Expected error for a single data point, got nil")
	}
}

func TestLinearTrend_Fit(t *testing.T) {
	// Value grows 2 per day: slope 2, intercept at the first observation
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var points []models.DataPoint
	for i := 0; i < 10; i++ {
		points = append(points, models.DataPoint{
			Timestamp: base.AddDate(0, 0, i),
			Value:     50 + 2*float64(i),
		})
	}

	trend, err := LinearTrend(points)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if trend.Slope < 1.99 || trend.Slope > 2.01 {
		t.Errorf("Expected slope 2, got %g", trend.Slope)
	}
	if trend.RSquared < 0.999 {
		t.Errorf("Expected R squared 1 for exact fit, got %g", trend.RSquared)
	}
	if len(trend.DataPoints) != 10 {
		t.Errorf("Expected 10 retained data points, got %d", len(trend.DataPoints))
	}
}

func TestLinearTrend_FlatSeries(t *testing.T) {
	// Constant values: zero slope, R squared clamps to 0 (no variance to explain)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []models.DataPoint{
		{Timestamp: base, Value: 100},
		{Timestamp: base.AddDate(0, 0, 30), Value: 100},
		{Timestamp: base.AddDate(0, 0, 60), Value: 100},
	}

	trend, err := LinearTrend(points)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if trend.Slope != 0 {
		t.Errorf("Expected slope 0 for flat series, got %g", trend.Slope)
	}
	if trend.RSquared < 0 || trend.RSquared > 1 {
		t.Errorf("Expected R squared in [0,1], got %g", trend.RSquared)
	}
}

func TestConfidenceLevel_GrowsWithHistory(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	engine := NewForecastingEngine()
	params := models.ForecastParameters{ForecastHorizonMonths: 6}

	build := func(n int) []models.Environment {
		var history []models.Environment
		for i := 0; i < n; i++ {
			history = append(history, testSnapshot(base.AddDate(0, 0, 30*i), 100+i, 1000, 5000, 50))
		}
		return history
	}

	three, err := engine.GenerateForecast(build(3), params)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	twelve, err := engine.GenerateForecast(build(12), params)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if twelve.ConfidenceLevel <= three.ConfidenceLevel {
		t.Errorf("Expected confidence to grow with history: 3 snapshots %g, 12 snapshots %g",
			three.ConfidenceLevel, twelve.ConfidenceLevel)
	}
	if twelve.ConfidenceLevel > 98 {
		t.Errorf("Expected confidence capped at 98, got %g", twelve.ConfidenceLevel)
	}
}

func TestGenerateForecast_ConsumedEstimates(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	history := []models.Environment{
		testSnapshot(base, 100, 1000, 5000, 50),
		testSnapshot(base.AddDate(0, 0, 30), 110, 1100, 5500, 55),
	}

	engine := NewForecastingEngine()
	result, err := engine.GenerateForecast(history, models.ForecastParameters{ForecastHorizonMonths: 6})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	projected := result.Projections.ProjectedMetrics
	if projected.TotalConsumedMemoryGB != projected.TotalProvisionedMemoryGB*0.8 {
		t.Errorf("Expected consumed memory estimated at 80%% of provisioned, got %g vs %g",
			projected.TotalConsumedMemoryGB, projected.TotalProvisionedMemoryGB)
	}
	if projected.TotalProvisionedStorageGB != projected.TotalConsumedStorageGB*1.2 {
		t.Errorf("Expected provisioned storage estimated at 120%% of consumed, got %g vs %g",
			projected.TotalProvisionedStorageGB, projected.TotalConsumedStorageGB)
	}
}
