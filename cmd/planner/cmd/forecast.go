// ABOUTME: Forecast command projecting future resource demand
// ABOUTME: Fits trends over historical snapshots or compounds growth from one

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlasplan/migration-planner/config"
	"github.com/atlasplan/migration-planner/models"
	"github.com/atlasplan/migration-planner/services"
)

var (
	forecastHistoryPath string
	forecastHorizon     int
	forecastGrowth      float64
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast future resource demand",
	Long: `Project resource demand over the forecast horizon from historical
environment snapshots (a JSON array). With a single snapshot the forecast
falls back to simple compound growth.

Exit codes:
  0 - Forecast generated
  2 - Error (unreadable history, insufficient data, invalid parameters)`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runForecast(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(forecastCmd)
	forecastCmd.Flags().StringVar(&forecastHistoryPath, "history", "history.json", "Path to snapshot history JSON array")
	forecastCmd.Flags().IntVar(&forecastHorizon, "horizon", 0, "Forecast horizon in months (overrides config)")
	forecastCmd.Flags().Float64Var(&forecastGrowth, "growth", -1, "Annual growth percent (overrides config)")
}

// runForecast executes the forecast and returns exit code
func runForecast(w io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	params := cfg.ForecastParameters()
	if forecastHorizon > 0 {
		params.ForecastHorizonMonths = forecastHorizon
	}
	if forecastGrowth >= 0 {
		params.AnnualGrowthPercent = forecastGrowth
	}
	if err := services.ValidateForecastParameters(params); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	history, err := loadEnvironments(forecastHistoryPath)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	engine := services.NewForecastingEngine()
	result, err := engine.GenerateForecast(history, params)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		if err := writeResult(w, result); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	} else {
		printForecastResult(w, result)
	}

	return 0
}

func printForecastResult(w io.Writer, result *models.ForecastResult) {
	projected := result.Projections.ProjectedMetrics
	fmt.Fprintf(w, "Forecast (%s, confidence %.0f%%)\n", result.Methodology, result.ConfidenceLevel)
	fmt.Fprintf(w, "  Target date: %s\n", result.Projections.TargetDate.Format("2006-01-02"))
	fmt.Fprintf(w, "  Projected vCPUs: %d (%.0f-%.0f)\n", projected.TotalVCPUs,
		result.Projections.ConfidenceIntervals.VCPURange.Low,
		result.Projections.ConfidenceIntervals.VCPURange.High)
	fmt.Fprintf(w, "  Projected memory: %.0f GB (%.0f-%.0f)\n", projected.TotalProvisionedMemoryGB,
		result.Projections.ConfidenceIntervals.MemoryRange.Low,
		result.Projections.ConfidenceIntervals.MemoryRange.High)
	fmt.Fprintf(w, "  Projected storage: %.0f GB (%.0f-%.0f)\n", projected.TotalConsumedStorageGB,
		result.Projections.ConfidenceIntervals.StorageRange.Low,
		result.Projections.ConfidenceIntervals.StorageRange.High)
	fmt.Fprintf(w, "  Projected VMs: %d\n", projected.TotalVMs)
}
