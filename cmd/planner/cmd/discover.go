// ABOUTME: Discover command collecting a live inventory snapshot from vCenter
// ABOUTME: Writes the snapshot JSON consumed by analyze, size, and forecast

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlasplan/migration-planner/config"
	"github.com/atlasplan/migration-planner/services"
)

var (
	discoverOutputPath string
	discoverTimeout    time.Duration
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover an environment from vCenter",
	Long: `Connect to vCenter and collect the full cluster/host/VM inventory into
an environment snapshot file.

Requires VSPHERE_HOST, VSPHERE_USERNAME, VSPHERE_PASSWORD, and
VSPHERE_DATACENTER to be set.

Exit codes:
  0 - Snapshot written
  2 - Error (missing credentials, connection failure)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runDiscover(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().StringVar(&discoverOutputPath, "output", "environment.json", "Path to write the snapshot JSON")
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 5*time.Minute, "Overall discovery timeout")
}

// runDiscover collects the inventory and returns exit code
func runDiscover(ctx context.Context, w io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !cfg.VSphereConfigured() {
		fmt.Fprintln(w, "Error: vSphere credentials not configured. Set VSPHERE_HOST, VSPHERE_USERNAME, VSPHERE_PASSWORD, VSPHERE_DATACENTER.")
		return 2
	}

	ctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()

	client := services.VSphereClientFromEnv(cfg.VSphereHost, cfg.VSphereUsername, cfg.VSpherePassword, cfg.VSphereDatacenter, cfg.VSphereInsecure)
	if err := client.Connect(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer client.Disconnect(ctx)

	env, err := client.DiscoverEnvironment(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if err := os.WriteFile(discoverOutputPath, data, 0o644); err != nil {
		fmt.Fprintf(w, "Error: writing snapshot: %v\n", err)
		return 2
	}

	fmt.Fprintf(w, "Snapshot written to %s (%d clusters, %d hosts, %d VMs)\n",
		discoverOutputPath, len(env.Clusters), env.TotalHosts, env.TotalVMs)
	return 0
}
