// ABOUTME: Placement strategies, per-VM placement records, and placement results
// ABOUTME: Serializable output of the placement engine

package models

import "time"

// PlacementStrategy selects how a target cluster is chosen from candidates
type PlacementStrategy string

const (
	// StrategyFirstFit places each VM on the first cluster that fits
	StrategyFirstFit PlacementStrategy = "first_fit"
	// StrategyBestFit packs tightly onto the cluster with least remaining room
	StrategyBestFit PlacementStrategy = "best_fit"
	// StrategyBalanced targets the cluster with the lowest mean utilization
	StrategyBalanced PlacementStrategy = "balanced"
	// StrategyPerformance spreads load onto the cluster with most room
	StrategyPerformance PlacementStrategy = "performance"
)

// DisplayName returns the human-readable strategy name used in reports
func (s PlacementStrategy) DisplayName() string {
	switch s {
	case StrategyFirstFit:
		return "First-Fit"
	case StrategyBestFit:
		return "Best-Fit"
	case StrategyBalanced:
		return "Balanced"
	case StrategyPerformance:
		return "Performance"
	default:
		return string(s)
	}
}

// ParsePlacementStrategy validates a raw strategy name
func ParsePlacementStrategy(s string) (PlacementStrategy, bool) {
	switch PlacementStrategy(s) {
	case StrategyFirstFit, StrategyBestFit, StrategyBalanced, StrategyPerformance:
		return PlacementStrategy(s), true
	}
	return "", false
}

// VMPlacement records one VM-to-cluster assignment
type VMPlacement struct {
	ID                string    `json:"id"`
	ProjectID         string    `json:"project_id"`
	VMID              string    `json:"vm_id"`
	VMName            string    `json:"vm_name"`
	ClusterID         string    `json:"cluster_id"`
	ClusterName       string    `json:"cluster_name"`
	AssignedCPU       float64   `json:"assigned_cpu"`
	AssignedMemoryGB  float64   `json:"assigned_memory_gb"`
	AssignedStorageGB float64   `json:"assigned_storage_gb"`
	PlacementReason   string    `json:"placement_reason"`
	PlacementScore    float64   `json:"placement_score"`
	AffinityGroup     string    `json:"affinity_group,omitempty"`
	AntiAffinityGroup string    `json:"anti_affinity_group,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// PlacementSummary holds placement run statistics
type PlacementSummary struct {
	TotalVMs                  int               `json:"total_vms"`
	PlacedVMs                 int               `json:"placed_vms"`
	UnplacedVMs               int               `json:"unplaced_vms"`
	ClustersUsed              int               `json:"clusters_used"`
	AverageClusterUtilization float64           `json:"average_cluster_utilization"`
	PlacementStrategyUsed     PlacementStrategy `json:"placement_strategy_used"`
}

// PlacementResult is the full output of a placement run. Unplaceable VMs are
// a partial failure surfaced as data, never an error.
type PlacementResult struct {
	VMPlacements       []VMPlacement                    `json:"vm_placements"`
	UnplacedVMs        []VMResourceRequirements         `json:"unplaced_vms"`
	ClusterUtilization map[string]ClusterCapacityStatus `json:"cluster_utilization"`
	PlacementWarnings  []string                         `json:"placement_warnings"`
	PlacementSummary   PlacementSummary                 `json:"placement_summary"`
}
