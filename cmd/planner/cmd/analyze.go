// ABOUTME: Analyze command producing capacity, performance, and health reports
// ABOUTME: Runs the analysis engine over an exported environment snapshot

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlasplan/migration-planner/models"
)

var analyzeSnapshotPath string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an environment snapshot",
	Long: `Analyze capacity, performance, and health of a discovered environment.

Exit codes:
  0 - Analysis complete, no critical findings
  1 - Analysis complete with critical capacity warnings or health issues
  2 - Error (unreadable snapshot, invalid input)`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runAnalyze(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeSnapshotPath, "snapshot", "environment.json", "Path to environment snapshot JSON")
}

// runAnalyze executes the analysis and returns exit code
func runAnalyze(w io.Writer) int {
	env, err := loadEnvironment(analyzeSnapshotPath)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	report := planner().AnalyzeEnvironment(env)

	if IsJSONOutput() {
		if err := writeResult(w, report); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	} else {
		printAnalysisSummary(w, report)
	}

	if hasCriticalFindings(report) {
		return 1
	}
	return 0
}

func hasCriticalFindings(report *models.AnalysisReport) bool {
	if report.HealthAnalysis.CriticalIssues > 0 {
		return true
	}
	for _, warning := range report.CapacityAnalysis.CapacityWarnings {
		if warning.Severity == models.SeverityCritical {
			return true
		}
	}
	return false
}

func printAnalysisSummary(w io.Writer, report *models.AnalysisReport) {
	overall := report.CapacityAnalysis.OverallUtilization
	fmt.Fprintf(w, "Environment Analysis\n")
	fmt.Fprintf(w, "  Clusters: %d  Hosts: %d  VMs: %d\n", overall.TotalClusters, overall.TotalHosts, overall.TotalVMs)
	fmt.Fprintf(w, "  Avg CPU: %.1f%%  Avg Memory: %.1f%%  Avg Storage: %.1f%%\n",
		overall.AvgCPUUtilization, overall.AvgMemoryUtilization, overall.AvgStorageUtilization)
	fmt.Fprintf(w, "  Performance score: %.0f  Health score: %.0f\n",
		report.PerformanceAnalysis.OverallPerformanceScore, report.HealthAnalysis.OverallHealthScore)
	fmt.Fprintf(w, "  Growth runway: %d months\n", report.CapacityAnalysis.GrowthPotential.EstimatedGrowthRunwayMonths)

	if len(report.CapacityAnalysis.CapacityWarnings) > 0 {
		fmt.Fprintf(w, "\nCapacity Warnings:\n")
		for _, warning := range report.CapacityAnalysis.CapacityWarnings {
			fmt.Fprintf(w, "  [%s] %s %s at %.1f%% (threshold %.0f%%): %s\n",
				warning.Severity, warning.ClusterName, warning.ResourceType,
				warning.CurrentUtilization, warning.Threshold, warning.Recommendation)
		}
	}

	if len(report.HealthAnalysis.RemediationPlan) > 0 {
		fmt.Fprintf(w, "\nRemediation Plan:\n")
		for _, step := range report.HealthAnalysis.RemediationPlan {
			fmt.Fprintf(w, "  %d. [%s] %s (%.1fh)\n", step.StepID, step.Priority, step.Description, step.EstimatedEffortHours)
		}
	}
}
