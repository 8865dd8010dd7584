// ABOUTME: Place command assigning VMs to target clusters under constraints
// ABOUTME: Runs a feasibility pre-check, then the selected placement strategy

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlasplan/migration-planner/models"
	"github.com/atlasplan/migration-planner/services"
)

var (
	placeVMsPath      string
	placeClustersPath string
	placeStrategy     string
	placeProjectID    string
)

var placeCmd = &cobra.Command{
	Use:   "place",
	Short: "Place VMs onto target clusters",
	Long: `Assign each VM to a target cluster under capacity, affinity, and
anti-affinity constraints.

Inputs are JSON files: a list of VM resource requirements and a list of
target cluster capacity records.

Exit codes:
  0 - All VMs placed
  1 - One or more VMs could not be placed
  2 - Error (unreadable input, unknown strategy)`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runPlace(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(placeCmd)
	placeCmd.Flags().StringVar(&placeVMsPath, "vms", "vms.json", "Path to VM requirements JSON")
	placeCmd.Flags().StringVar(&placeClustersPath, "clusters", "clusters.json", "Path to target cluster capacities JSON")
	placeCmd.Flags().StringVar(&placeStrategy, "strategy", string(models.StrategyFirstFit), "Placement strategy: first_fit, best_fit, balanced, performance")
	placeCmd.Flags().StringVar(&placeProjectID, "project", "default", "Project id stamped on placement records")
}

// runPlace executes the placement and returns exit code
func runPlace(w io.Writer) int {
	strategy, ok := models.ParsePlacementStrategy(placeStrategy)
	if !ok {
		fmt.Fprintf(w, "Error: unknown strategy %q\n", placeStrategy)
		return 2
	}
	if err := services.ValidateIdentifier(placeProjectID); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	var vms []models.VMResourceRequirements
	if err := loadJSON(placeVMsPath, &vms); err != nil {
		fmt.Fprintf(w, "Error: loading VM requirements: %v\n", err)
		return 2
	}
	var clusters []models.ClusterCapacityStatus
	if err := loadJSON(placeClustersPath, &clusters); err != nil {
		fmt.Fprintf(w, "Error: loading cluster capacities: %v\n", err)
		return 2
	}

	engine := services.NewPlacementEngine()

	feasible, shortfalls := engine.ValidatePlacement(vms, clusters)
	if !feasible {
		for _, s := range shortfalls {
			fmt.Fprintf(w, "Warning: %s\n", s)
		}
	}

	result := engine.CalculatePlacements(vms, clusters, strategy, placeProjectID)

	if IsJSONOutput() {
		if err := writeResult(w, result); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	} else {
		printPlacementResult(w, result)
	}

	if result.PlacementSummary.UnplacedVMs > 0 {
		return 1
	}
	return 0
}

func printPlacementResult(w io.Writer, result *models.PlacementResult) {
	summary := result.PlacementSummary
	fmt.Fprintf(w, "Placement Result (%s)\n", summary.PlacementStrategyUsed.DisplayName())
	fmt.Fprintf(w, "  Placed: %d/%d  Clusters used: %d  Avg utilization: %.1f%%\n",
		summary.PlacedVMs, summary.TotalVMs, summary.ClustersUsed, summary.AverageClusterUtilization)

	for _, p := range result.VMPlacements {
		fmt.Fprintf(w, "  %s -> %s (score %.1f)\n", p.VMName, p.ClusterName, p.PlacementScore)
	}
	for _, warning := range result.PlacementWarnings {
		fmt.Fprintf(w, "  Warning: %s\n", warning)
	}
}
