// ABOUTME: Root command for the migration planner CLI
// ABOUTME: Handles global flags, env loading, and logging setup

package cmd

import (
	"log/slog"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/atlasplan/migration-planner/config"
	"github.com/atlasplan/migration-planner/logger"
	"github.com/atlasplan/migration-planner/services"
)

var jsonOutput bool

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Migration planning for virtualized workloads",
	Long: `planner analyzes a discovered virtualization environment and produces
migration plans: capacity/performance/health reports, target host sizing,
per-VM placement, and resource demand forecasts.

Snapshots are JSON files produced by 'planner discover' or by an external
inventory exporter.

Environment Variables:
  VSPHERE_HOST, VSPHERE_USERNAME, VSPHERE_PASSWORD, VSPHERE_DATACENTER
                          vCenter connection for 'planner discover'
  TARGET_VCPU_PCPU_RATIO, HA_POLICY, GROWTH_FACTOR_PERCENT
                          Default sizing parameters
  LOG_LEVEL, LOG_FORMAT   Logging configuration`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {
		// A missing .env is fine; explicit env vars still apply
		if err := godotenv.Load(); err == nil {
			slog.Debug("loaded .env file")
		}
		logger.Init()
	})

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

var (
	plannerOnce     sync.Once
	plannerInstance *services.Planner
)

// planner returns the shared planner facade, created on first use with the
// configured cache TTL
func planner() *services.Planner {
	plannerOnce.Do(func() {
		ttl := 300 * time.Second
		if cfg, err := config.Load(); err == nil {
			ttl = time.Duration(cfg.CacheTTL) * time.Second
		}
		plannerInstance = services.NewPlanner(ttl)
	})
	return plannerInstance
}
