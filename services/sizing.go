// ABOUTME: First-Fit-Decreasing sizing engine computing required target host counts
// ABOUTME: Applies growth projection, reservations, HA policy, and multi-profile comparison

package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/atlasplan/migration-planner/models"
)

// Memory held back per host for the hypervisor itself, in GB
const hypervisorMemoryReservationGB = 32

// SizingEngine estimates target host counts via bin packing
type SizingEngine struct{}

// NewSizingEngine creates a new sizing engine
func NewSizingEngine() *SizingEngine {
	return &SizingEngine{}
}

// ProjectedVM is a VM's resource demand after growth projection. SourceVM
// carries the originating VM's name so consumers can look the record up in
// the input collection; no back-reference to the original struct is held.
type ProjectedVM struct {
	Name      string  `json:"name"`
	SourceVM  string  `json:"source_vm"`
	VCPU      int     `json:"vcpu"`
	MemoryGB  int     `json:"memory_gb"`
	StorageGB float64 `json:"storage_gb"`
	Critical  bool    `json:"critical"`
}

// UsableCapacity is the per-host capacity left after the overcommit ratio
// and reservations are applied
type UsableCapacity struct {
	VCPU     int `json:"vcpu"`
	MemoryGB int `json:"memory_gb"`
}

// CalculateSizing determines how many hosts of the given profile the workload
// needs. Only powered-on, non-template VMs count. Packing never fails: a
// profile too small for the workload yields a very large host count, and the
// caller reads the warnings.
func (s *SizingEngine) CalculateSizing(vms []models.VirtualMachine, profile models.HardwareProfile, params models.SizingParameters) (*models.SizingResult, error) {
	active := make([]models.VirtualMachine, 0, len(vms))
	for _, vm := range vms {
		if vm.PowerState == models.PoweredOn && !vm.IsTemplate {
			active = append(active, vm)
		}
	}

	projected := ApplyGrowthProjections(active, params)

	capacity, err := CalculateUsableCapacity(profile, params)
	if err != nil {
		return nil, err
	}

	packedHosts, placement := s.packHosts(projected, capacity)

	finalHosts := ApplyHAPolicy(packedHosts, params.HAPolicy)

	metrics := utilizationMetrics(projected, finalHosts, capacity, params.HAPolicy)

	result := &models.SizingResult{
		HardwareProfile:    profile,
		RequiredHosts:      finalHosts,
		UtilizationMetrics: metrics,
		VMPlacement:        placement,
		Warnings:           sizingWarnings(projected, metrics, params),
	}
	if profile.EstimatedCost > 0 {
		result.TotalCost = profile.EstimatedCost * float64(finalHosts)
	}

	slog.Debug("sizing complete",
		"profile", profile.Name,
		"active_vms", len(active),
		"packed_hosts", packedHosts,
		"final_hosts", finalHosts)

	return result, nil
}

// ApplyGrowthProjections scales each VM's demand by the growth factor,
// rounding vCPU and memory up and scaling storage proportionally
func ApplyGrowthProjections(vms []models.VirtualMachine, params models.SizingParameters) []ProjectedVM {
	multiplier := 1.0 + params.GrowthFactorPercent/100.0

	projected := make([]ProjectedVM, 0, len(vms))
	for _, vm := range vms {
		projected = append(projected, ProjectedVM{
			Name:      vm.Name,
			SourceVM:  vm.Name,
			VCPU:      int(math.Ceil(float64(vm.NumVCPU) * multiplier)),
			MemoryGB:  int(math.Ceil(float64(vm.MemoryGB) * multiplier)),
			StorageGB: vm.StorageGB() * multiplier,
			Critical:  vm.SpecialFlags.IsCriticalWorkload,
		})
	}
	return projected
}

// CalculateUsableCapacity derives per-host capacity from the profile:
// usable vCPU = floor(total cores x target ratio) minus the CPU reservation,
// usable memory = max memory minus the hypervisor hold-back minus the memory
// reservation. Values saturate at zero; a profile with no usable capacity on
// either axis is a hard error.
func CalculateUsableCapacity(profile models.HardwareProfile, params models.SizingParameters) (UsableCapacity, error) {
	usableVCPU := int(math.Floor(float64(profile.TotalCores) * params.TargetVCPUPCPURatio))
	reservedVCPU := int(math.Ceil(float64(usableVCPU) * params.CPUReservationPercent / 100.0))
	usableVCPU -= reservedVCPU
	if usableVCPU < 0 {
		usableVCPU = 0
	}

	usableMemory := profile.MaxMemoryGB - hypervisorMemoryReservationGB
	if usableMemory < 0 {
		usableMemory = 0
	}
	reservedMemory := int(math.Ceil(float64(usableMemory) * params.MemoryReservationPercent / 100.0))
	usableMemory -= reservedMemory
	if usableMemory < 0 {
		usableMemory = 0
	}

	if usableVCPU == 0 || usableMemory == 0 {
		return UsableCapacity{}, fmt.Errorf("hardware profile %q has no usable capacity (vcpu=%d, memory_gb=%d)", profile.Name, usableVCPU, usableMemory)
	}

	return UsableCapacity{VCPU: usableVCPU, MemoryGB: usableMemory}, nil
}

// ApplyHAPolicy adds the policy's spare hosts on top of the packed count.
// HA overhead is a fixed redundancy margin, applied after packing so it
// never influences placement decisions.
func ApplyHAPolicy(hosts int, policy models.HAPolicy) int {
	return hosts + policy.Overhead()
}

// hostBin is a target host being filled during packing. It implements
// CapacityBin; storage is tracked but not constrained since target storage
// is shared, not per-host.
type hostBin struct {
	id                 int
	capacity           UsableCapacity
	allocatedVCPU      int
	allocatedMemoryGB  int
	allocatedStorageGB float64
	assignedVMs        []string
}

func (h *hostBin) label() string {
	return fmt.Sprintf("Host-%02d", h.id)
}

func (h *hostBin) CanFit(vm *models.VMResourceRequirements) bool {
	remainingVCPU := h.capacity.VCPU - h.allocatedVCPU
	remainingMemory := h.capacity.MemoryGB - h.allocatedMemoryGB
	return int(vm.CPUCores) <= remainingVCPU && int(vm.MemoryGB) <= remainingMemory
}

func (h *hostBin) Reserve(vm *models.VMResourceRequirements) {
	h.allocatedVCPU += int(vm.CPUCores)
	h.allocatedMemoryGB += int(vm.MemoryGB)
	h.allocatedStorageGB += vm.StorageGB
	h.assignedVMs = append(h.assignedVMs, vm.VMName)
}

func (h *hostBin) RemainingCapacityScore() float64 {
	score := float64(h.capacity.VCPU - h.allocatedVCPU)
	if m := float64(h.capacity.MemoryGB-h.allocatedMemoryGB) / 8.0; m < score {
		score = m
	}
	return score
}

func (h *hostBin) UtilizationScore() float64 {
	var cpu, mem float64
	if h.capacity.VCPU > 0 {
		cpu = float64(h.allocatedVCPU) / float64(h.capacity.VCPU) * 100
	}
	if h.capacity.MemoryGB > 0 {
		mem = float64(h.allocatedMemoryGB) / float64(h.capacity.MemoryGB) * 100
	}
	return (cpu + mem) / 2.0
}

// packHosts runs First-Fit-Decreasing: VMs sorted largest-first by a weight
// where CPU dominates, each placed on the first existing host with room, and
// a new host opened when none fits. A fresh host always accepts the VM even
// if the VM exceeds per-host capacity, so an undersized profile produces a
// large host count instead of an error.
func (s *SizingEngine) packHosts(vms []ProjectedVM, capacity UsableCapacity) (int, map[string]string) {
	sorted := make([]ProjectedVM, len(vms))
	copy(sorted, vms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].VCPU*1000+sorted[i].MemoryGB > sorted[j].VCPU*1000+sorted[j].MemoryGB
	})

	var hosts []*hostBin
	bins := []CapacityBin{}
	placement := make(map[string]string, len(sorted))

	for i := range sorted {
		vm := &sorted[i]
		req := models.VMResourceRequirements{
			VMID:      vm.SourceVM,
			VMName:    vm.Name,
			CPUCores:  float64(vm.VCPU),
			MemoryGB:  float64(vm.MemoryGB),
			StorageGB: vm.StorageGB,
		}

		var candidates []int
		for idx, h := range hosts {
			if h.CanFit(&req) {
				candidates = append(candidates, idx)
			}
		}

		// Scan order is host creation order, so FirstFit selection here
		// is exactly the FFD "first host with room" rule
		chosen := SelectBin(bins, candidates, models.StrategyFirstFit)
		if chosen < 0 {
			fresh := &hostBin{id: len(hosts) + 1, capacity: capacity}
			hosts = append(hosts, fresh)
			bins = append(bins, fresh)
			chosen = len(hosts) - 1
		}

		hosts[chosen].Reserve(&req)
		placement[vm.Name] = hosts[chosen].label()
	}

	return len(hosts), placement
}

// utilizationMetrics scores the packed workload against the final
// (HA-inflated) host count and checks N+x compliance: utilization must stay
// within effective_hosts/final_hosts of capacity on both axes
func utilizationMetrics(vms []ProjectedVM, hostCount int, capacity UsableCapacity, policy models.HAPolicy) models.UtilizationMetrics {
	var totalVCPU, totalMemory int
	for _, vm := range vms {
		totalVCPU += vm.VCPU
		totalMemory += vm.MemoryGB
	}

	clusterVCPU := capacity.VCPU * hostCount
	clusterMemory := capacity.MemoryGB * hostCount

	var cpuUtil, memUtil float64
	if clusterVCPU > 0 {
		cpuUtil = float64(totalVCPU) / float64(clusterVCPU) * 100
	}
	if clusterMemory > 0 {
		memUtil = float64(totalMemory) / float64(clusterMemory) * 100
	}

	effectiveHosts := hostCount - policy.Overhead()
	if effectiveHosts < 0 {
		effectiveHosts = 0
	}

	var maxThreshold float64
	if effectiveHosts > 0 && hostCount > 0 {
		maxThreshold = float64(effectiveHosts) / float64(hostCount) * 100
	}

	return models.UtilizationMetrics{
		CPUUtilizationPercent:    cpuUtil,
		MemoryUtilizationPercent: memUtil,
		// Target storage is shared; no per-host capacity figure exists yet
		StorageUtilizationPercent: 75.0,
		NPlusXCompliance:          cpuUtil <= maxThreshold && memUtil <= maxThreshold,
	}
}

func sizingWarnings(vms []ProjectedVM, metrics models.UtilizationMetrics, params models.SizingParameters) []string {
	warnings := []string{}

	if metrics.CPUUtilizationPercent > 80.0 {
		warnings = append(warnings, "High CPU utilization - consider additional capacity")
	}
	if metrics.MemoryUtilizationPercent > 85.0 {
		warnings = append(warnings, "High memory utilization - consider additional memory")
	}
	if !metrics.NPlusXCompliance {
		warnings = append(warnings, "Configuration may not support selected HA policy")
	}

	oversized := 0
	for _, vm := range vms {
		if vm.VCPU > 16 || vm.MemoryGB > 128 {
			oversized++
		}
	}
	if oversized > 0 {
		warnings = append(warnings, fmt.Sprintf("%d VMs may be oversized for the selected hardware", oversized))
	}

	if params.GrowthFactorPercent > 50.0 {
		warnings = append(warnings, "High growth factor may result in over-provisioning")
	}

	return warnings
}

// OptimizeConfiguration sizes the workload against every candidate profile
// concurrently and ranks the survivors by efficiency. Profiles that cannot
// derive usable capacity are skipped, not fatal.
func (s *SizingEngine) OptimizeConfiguration(ctx context.Context, vms []models.VirtualMachine, profiles []models.HardwareProfile, params models.SizingParameters) ([]models.SizingComparison, error) {
	results := make([]*models.SizingComparison, len(profiles))

	g, ctx := errgroup.WithContext(ctx)
	for i, profile := range profiles {
		i, profile := i, profile
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			sizing, err := s.CalculateSizing(vms, profile, params)
			if err != nil {
				slog.Warn("skipping hardware profile", "profile", profile.Name, "error", err)
				return nil
			}

			comparison := models.SizingComparison{
				HardwareProfile: profile,
				SizingResult:    *sizing,
				EfficiencyScore: efficiencyScore(sizing, profile),
			}
			if sizing.TotalCost > 0 && len(vms) > 0 {
				comparison.CostPerVM = sizing.TotalCost / float64(len(vms))
			}
			results[i] = &comparison
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	comparisons := make([]models.SizingComparison, 0, len(profiles))
	for _, r := range results {
		if r != nil {
			comparisons = append(comparisons, *r)
		}
	}

	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].EfficiencyScore > comparisons[j].EfficiencyScore
	})

	return comparisons, nil
}

// efficiencyScore weighs utilization, HA compliance, and cost per vCPU,
// then penalizes each warning
func efficiencyScore(result *models.SizingResult, profile models.HardwareProfile) float64 {
	score := result.UtilizationMetrics.CPUUtilizationPercent*0.4 +
		result.UtilizationMetrics.MemoryUtilizationPercent*0.4

	if result.UtilizationMetrics.NPlusXCompliance {
		score += 10.0
	}

	if result.TotalCost > 0 {
		totalVCPU := profile.TotalCores * result.RequiredHosts
		if totalVCPU > 0 {
			costPerVCPU := result.TotalCost / float64(totalVCPU)
			score += (1000.0 / costPerVCPU) * 0.2
		}
	}

	score -= float64(len(result.Warnings)) * 2.0

	if score < 0 {
		score = 0
	}
	return score
}
