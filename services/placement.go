// ABOUTME: Constrained VM placement engine assigning VMs to target clusters
// ABOUTME: Honors capacity, affinity, and anti-affinity under a selectable strategy

package services

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/atlasplan/migration-planner/models"
)

// PlacementEngine assigns individual VMs to candidate target clusters
type PlacementEngine struct{}

// NewPlacementEngine creates a new placement engine
func NewPlacementEngine() *PlacementEngine {
	return &PlacementEngine{}
}

// CalculatePlacements places each VM on a target cluster under the given
// strategy. Critical VMs go first, then largest-first by footprint. The
// caller's cluster snapshots are never mutated; reservations happen on
// call-local copies. Unplaceable VMs are surfaced as data, never an error.
func (p *PlacementEngine) CalculatePlacements(vms []models.VMResourceRequirements, clusters []models.ClusterCapacityStatus, strategy models.PlacementStrategy, projectID string) *models.PlacementResult {
	// Work on our own copies so reservations never leak back to the caller
	working := make([]models.ClusterCapacityStatus, len(clusters))
	copy(working, clusters)
	bins := make([]CapacityBin, len(working))
	for i := range working {
		bins[i] = &working[i]
	}

	sorted := sortForPlacement(vms)

	var placements []models.VMPlacement
	var unplaced []models.VMResourceRequirements
	warnings := []string{}

	// Cluster ids already holding members of each group
	affinityPlaced := make(map[string]map[string]bool)
	antiAffinityPlaced := make(map[string]map[string]bool)

	for i := range sorted {
		vm := &sorted[i]
		placement, ok := p.placeVM(vm, working, bins, strategy, affinityPlaced, antiAffinityPlaced, projectID)
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"Unable to place VM '%s' (%gC/%gGB/%gGB) - insufficient cluster capacity",
				vm.VMName, vm.CPUCores, vm.MemoryGB, vm.StorageGB))
			unplaced = append(unplaced, *vm)
			continue
		}

		if vm.AffinityGroup != "" {
			if affinityPlaced[vm.AffinityGroup] == nil {
				affinityPlaced[vm.AffinityGroup] = make(map[string]bool)
			}
			affinityPlaced[vm.AffinityGroup][placement.ClusterID] = true
		}
		if vm.AntiAffinityGroup != "" {
			if antiAffinityPlaced[vm.AntiAffinityGroup] == nil {
				antiAffinityPlaced[vm.AntiAffinityGroup] = make(map[string]bool)
			}
			antiAffinityPlaced[vm.AntiAffinityGroup][placement.ClusterID] = true
		}

		placements = append(placements, placement)
	}

	clustersUsed := 0
	var utilizationSum float64
	clusterUtil := make(map[string]models.ClusterCapacityStatus, len(working))
	for i := range working {
		if working[i].UsedCPU > 0 {
			clustersUsed++
			utilizationSum += working[i].UtilizationScore()
		}
		clusterUtil[working[i].ClusterID] = working[i]
	}

	var avgUtilization float64
	if clustersUsed > 0 {
		avgUtilization = utilizationSum / float64(clustersUsed)
	}

	slog.Info("placement complete",
		"strategy", strategy.DisplayName(),
		"placed", len(placements),
		"unplaced", len(unplaced),
		"clusters_used", clustersUsed)

	return &models.PlacementResult{
		VMPlacements:       placements,
		UnplacedVMs:        unplaced,
		ClusterUtilization: clusterUtil,
		PlacementWarnings:  warnings,
		PlacementSummary: models.PlacementSummary{
			TotalVMs:                  len(vms),
			PlacedVMs:                 len(placements),
			UnplacedVMs:               len(unplaced),
			ClustersUsed:              clustersUsed,
			AverageClusterUtilization: avgUtilization,
			PlacementStrategyUsed:     strategy,
		},
	}
}

// sortForPlacement orders VMs critical-first, then largest footprint first
func sortForPlacement(vms []models.VMResourceRequirements) []models.VMResourceRequirements {
	sorted := make([]models.VMResourceRequirements, len(vms))
	copy(sorted, vms)

	// Stable sort keeps equal VMs in input order for deterministic results
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsCritical != sorted[j].IsCritical {
			return sorted[i].IsCritical
		}
		return sorted[i].SizeScore() > sorted[j].SizeScore()
	})
	return sorted
}

// placeVM filters candidates by capacity, applies affinity preference and
// anti-affinity exclusion, then lets the strategy choose. Affinity is
// best-effort: if narrowing to the group's clusters would leave nothing, the
// preference is dropped. Anti-affinity is a hard constraint.
func (p *PlacementEngine) placeVM(vm *models.VMResourceRequirements, clusters []models.ClusterCapacityStatus, bins []CapacityBin, strategy models.PlacementStrategy, affinityPlaced, antiAffinityPlaced map[string]map[string]bool, projectID string) (models.VMPlacement, bool) {
	var candidates []int
	for i := range clusters {
		if clusters[i].CanFit(vm) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return models.VMPlacement{}, false
	}

	if vm.AffinityGroup != "" {
		if preferred := affinityPlaced[vm.AffinityGroup]; len(preferred) > 0 {
			var narrowed []int
			for _, i := range candidates {
				if preferred[clusters[i].ClusterID] {
					narrowed = append(narrowed, i)
				}
			}
			if len(narrowed) > 0 {
				candidates = narrowed
			}
		}
	}

	if vm.AntiAffinityGroup != "" {
		if excluded := antiAffinityPlaced[vm.AntiAffinityGroup]; len(excluded) > 0 {
			var remaining []int
			for _, i := range candidates {
				if !excluded[clusters[i].ClusterID] {
					remaining = append(remaining, i)
				}
			}
			candidates = remaining
			if len(candidates) == 0 {
				return models.VMPlacement{}, false
			}
		}
	}

	selected := SelectBin(bins, candidates, strategy)
	if selected < 0 {
		return models.VMPlacement{}, false
	}

	cluster := &clusters[selected]
	cluster.Reserve(vm)

	now := time.Now().UTC()
	return models.VMPlacement{
		ID:                fmt.Sprintf("placement:%s:%s", projectID, vm.VMID),
		ProjectID:         projectID,
		VMID:              vm.VMID,
		VMName:            vm.VMName,
		ClusterID:         cluster.ClusterID,
		ClusterName:       cluster.ClusterName,
		AssignedCPU:       vm.CPUCores,
		AssignedMemoryGB:  vm.MemoryGB,
		AssignedStorageGB: vm.StorageGB,
		PlacementReason:   fmt.Sprintf("Placed using %s strategy", strategy.DisplayName()),
		PlacementScore:    100.0 - cluster.UtilizationScore(),
		AffinityGroup:     vm.AffinityGroup,
		AntiAffinityGroup: vm.AntiAffinityGroup,
		CreatedAt:         now,
	}, true
}

// ValidatePlacement pre-checks aggregate feasibility: total requested vs
// total available per resource axis. Returns feasibility plus a shortfall
// warning per constrained resource.
func (p *PlacementEngine) ValidatePlacement(vms []models.VMResourceRequirements, clusters []models.ClusterCapacityStatus) (bool, []string) {
	var vmCPU, vmMemory, vmStorage float64
	for _, vm := range vms {
		vmCPU += vm.CPUCores
		vmMemory += vm.MemoryGB
		vmStorage += vm.StorageGB
	}

	var clusterCPU, clusterMemory, clusterStorage float64
	for _, c := range clusters {
		clusterCPU += c.AvailableCPU
		clusterMemory += c.AvailableMemoryGB
		clusterStorage += c.AvailableStorageGB
	}

	warnings := []string{}
	if vmCPU > clusterCPU {
		warnings = append(warnings, fmt.Sprintf(
			"Insufficient total CPU capacity: VMs require %.1f cores, clusters have %.1f available",
			vmCPU, clusterCPU))
	}
	if vmMemory > clusterMemory {
		warnings = append(warnings, fmt.Sprintf(
			"Insufficient total memory capacity: VMs require %.1f GB, clusters have %.1f GB available",
			vmMemory, clusterMemory))
	}
	if vmStorage > clusterStorage {
		warnings = append(warnings, fmt.Sprintf(
			"Insufficient total storage capacity: VMs require %.1f GB, clusters have %.1f GB available",
			vmStorage, clusterStorage))
	}

	return len(warnings) == 0, warnings
}

// OptimizePlacements recomputes assignments with the Balanced strategy to
// even out utilization across the target clusters
func (p *PlacementEngine) OptimizePlacements(vms []models.VMResourceRequirements, clusters []models.ClusterCapacityStatus, projectID string) *models.PlacementResult {
	return p.CalculatePlacements(vms, clusters, models.StrategyBalanced, projectID)
}
