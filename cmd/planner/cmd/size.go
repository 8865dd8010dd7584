// ABOUTME: Size command computing required target host counts via bin packing
// ABOUTME: Supports single-profile sizing and multi-profile comparison

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atlasplan/migration-planner/config"
	"github.com/atlasplan/migration-planner/models"
	"github.com/atlasplan/migration-planner/services"
)

var (
	sizeSnapshotPath string
	sizeProfileName  string
	sizeCompare      bool
	sizeRatio        float64
	sizeHAPolicy     string
	sizeGrowth       float64
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Size target hardware for a workload",
	Long: `Compute how many target hosts the discovered workload requires.

With --compare, sizes against every profile in the hardware basket and
ranks them by efficiency. Otherwise sizes against the named profile.

Exit codes:
  0 - Sizing complete without warnings
  1 - Sizing complete with warnings
  2 - Error (unreadable snapshot, invalid parameters, unusable profile)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runSize(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(sizeCmd)
	sizeCmd.Flags().StringVar(&sizeSnapshotPath, "snapshot", "environment.json", "Path to environment snapshot JSON")
	sizeCmd.Flags().StringVar(&sizeProfileName, "profile", "", "Hardware profile name from the basket (default: first profile)")
	sizeCmd.Flags().BoolVar(&sizeCompare, "compare", false, "Compare all basket profiles and rank by efficiency")
	sizeCmd.Flags().Float64Var(&sizeRatio, "ratio", 0, "Target vCPU:pCPU ratio (overrides config)")
	sizeCmd.Flags().StringVar(&sizeHAPolicy, "ha", "", "HA policy: none, n_plus_1, n_plus_2 (overrides config)")
	sizeCmd.Flags().Float64Var(&sizeGrowth, "growth", -1, "Growth factor percent (overrides config)")
}

// runSize executes the sizing calculation and returns exit code
func runSize(ctx context.Context, w io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	params := cfg.SizingParameters()
	if sizeRatio > 0 {
		params.TargetVCPUPCPURatio = sizeRatio
	}
	if sizeHAPolicy != "" {
		params.HAPolicy = models.HAPolicy(sizeHAPolicy)
	}
	if sizeGrowth >= 0 {
		params.GrowthFactorPercent = sizeGrowth
	}
	if err := services.ValidateSizingParameters(params); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	env, err := loadEnvironment(sizeSnapshotPath)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	basket := models.NewHardwareBasket()

	if sizeCompare {
		comparisons, err := planner().OptimizeConfiguration(ctx, env, basket.Profiles, params)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		if IsJSONOutput() {
			if err := writeResult(w, comparisons); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return 2
			}
		} else {
			printComparisons(w, comparisons)
		}
		return 0
	}

	profile, ok := selectProfile(basket, sizeProfileName)
	if !ok {
		fmt.Fprintf(w, "Error: hardware profile %q not found in basket\n", sizeProfileName)
		return 2
	}

	result, err := planner().CalculateSizing(env, profile, params)
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
		printSizingResult(w, result)
	}

	if len(result.Warnings) > 0 {
		return 1
	}
	return 0
}

func selectProfile(basket *models.HardwareBasket, name string) (models.HardwareProfile, bool) {
	if name == "" {
		if len(basket.Profiles) == 0 {
			return models.HardwareProfile{}, false
		}
		return basket.Profiles[0], true
	}
	for _, p := range basket.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return models.HardwareProfile{}, false
}

func printSizingResult(w io.Writer, result *models.SizingResult) {
	fmt.Fprintf(w, "Sizing Result: %s\n", result.HardwareProfile.Name)
	fmt.Fprintf(w, "  Required hosts: %d\n", result.RequiredHosts)
	if result.TotalCost > 0 {
		fmt.Fprintf(w, "  Estimated cost: $%.0f\n", result.TotalCost)
	}
	fmt.Fprintf(w, "  CPU utilization: %.1f%%  Memory utilization: %.1f%%\n",
		result.UtilizationMetrics.CPUUtilizationPercent,
		result.UtilizationMetrics.MemoryUtilizationPercent)
	fmt.Fprintf(w, "  HA compliant: %t\n", result.UtilizationMetrics.NPlusXCompliance)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  Warning: %s\n", warning)
	}
}

func printComparisons(w io.Writer, comparisons []models.SizingComparison) {
	fmt.Fprintf(w, "Hardware Comparison (%d profiles)\n", len(comparisons))
	for i, c := range comparisons {
		fmt.Fprintf(w, "  %d. %s: %d hosts, efficiency %.1f",
			i+1, c.HardwareProfile.Name, c.SizingResult.RequiredHosts, c.EfficiencyScore)
		if c.CostPerVM > 0 {
			fmt.Fprintf(w, ", $%.0f/VM", c.CostPerVM)
		}
		fmt.Fprintln(w)
	}
}
