// ABOUTME: Tests for the sizing engine
// ABOUTME: Validates usable capacity, FFD packing, HA policy, and comparison

package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/atlasplan/migration-planner/models"
)

func testProfile(cores, memoryGB int) models.HardwareProfile {
	return models.HardwareProfile{
		ID:             uuid.New(),
		Name:           "Test Server",
		Manufacturer:   "Test",
		Model:          "Model",
		CPUSockets:     2,
		CoresPerSocket: cores / 2,
		TotalCores:     cores,
		MaxMemoryGB:    memoryGB,
		StorageSlots:   8,
		NetworkPorts:   4,
		IsHCICertified: true,
		EstimatedCost:  20000,
		RackUnits:      2,
	}
}

func testVM(name string, vcpu, memoryGB int) models.VirtualMachine {
	return models.VirtualMachine{
		Name:       name,
		PowerState: models.PoweredOn,
		NumVCPU:    vcpu,
		MemoryGB:   memoryGB,
		Disks: []models.VirtualDisk{
			{DiskLabel: "Hard disk 1", ProvisionedGB: 100, ConsumedInGuestGB: 50},
		},
	}
}

func TestCalculateUsableCapacity(t *testing.T) {
	// Scenario: 32 cores, ratio 4.0, 10% CPU reservation
	// Usable vCPU: floor(32 × 4.0) = 128, reserved ceil(128 × 0.10) = 13
	// Result: 128 − 13 = 115
	// Memory: 256 − 32 hypervisor = 224, reserved ceil(224 × 0.10) = 23
	// Result: 224 − 23 = 201

	profile := testProfile(32, 256)
	params := models.DefaultSizingParameters()

	capacity, err := CalculateUsableCapacity(profile, params)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if capacity.VCPU != 115 {
		t.Errorf("Expected usable vCPU 115, got %d", capacity.VCPU)
	}
	if capacity.MemoryGB != 201 {
		t.Errorf("Expected usable memory 201, got %d", capacity.MemoryGB)
	}
}

func TestCalculateUsableCapacity_ZeroCapacity(t *testing.T) {
	// A profile whose memory is fully eaten by the hypervisor reservation
	// cannot host anything and must be a hard error
	profile := testProfile(32, 16)
	params := models.DefaultSizingParameters()

	if _, err := CalculateUsableCapacity(profile, params); err == nil {
		t.Error("Expected error for zero-capacity profile, got nil")
	}
}

func TestApplyHAPolicy(t *testing.T) {
	for _, tc := range []struct {
		policy   models.HAPolicy
		hosts    int
		expected int
	}{
		{models.HANone, 4, 4},
		{models.HANPlusOne, 4, 5},
		{models.HANPlusTwo, 4, 6},
		{models.HANone, 0, 0},
		{models.HANPlusTwo, 1, 3},
	} {
		if got := ApplyHAPolicy(tc.hosts, tc.policy); got != tc.expected {
			t.Errorf("ApplyHAPolicy(%d, %s): expected %d, got %d", tc.hosts, tc.policy, tc.expected, got)
		}
	}
}

func TestApplyGrowthProjections(t *testing.T) {
	// Scenario: 20% growth on a 3 vCPU / 10 GB VM
	// vCPU: ceil(3 × 1.2) = 4, memory: ceil(10 × 1.2) = 12
	// Storage: 50 × 1.2 = 60
	vms := []models.VirtualMachine{testVM("app-01", 3, 10)}
	params := models.DefaultSizingParameters()

	projected := ApplyGrowthProjections(vms, params)
	if len(projected) != 1 {
		t.Fatalf("Expected 1 projected VM, got %d", len(projected))
	}

	p := projected[0]
	if p.VCPU != 4 {
		t.Errorf("Expected projected vCPU 4, got %d", p.VCPU)
	}
	if p.MemoryGB != 12 {
		t.Errorf("Expected projected memory 12, got %d", p.MemoryGB)
	}
	if p.StorageGB != 60 {
		t.Errorf("Expected projected storage 60, got %g", p.StorageGB)
	}
	if p.SourceVM != "app-01" {
		t.Errorf("Expected source VM 'app-01', got '%s'", p.SourceVM)
	}
}

func TestCalculateSizing_FiltersInactiveVMs(t *testing.T) {
	template := testVM("template-01", 4, 16)
	template.IsTemplate = true
	poweredOff := testVM("off-01", 4, 16)
	poweredOff.PowerState = models.PoweredOff

	vms := []models.VirtualMachine{testVM("app-01", 4, 16), template, poweredOff}

	engine := NewSizingEngine()
	result, err := engine.CalculateSizing(vms, testProfile(64, 512), models.DefaultSizingParameters())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.VMPlacement) != 1 {
		t.Errorf("Expected 1 placed VM, got %d", len(result.VMPlacement))
	}
	if _, ok := result.VMPlacement["app-01"]; !ok {
		t.Error("Expected app-01 to be placed")
	}
}

func TestCalculateSizing_HostCountMonotonic(t *testing.T) {
	// Adding a VM never reduces the required host count
	engine := NewSizingEngine()
	profile := testProfile(32, 256)
	params := models.DefaultSizingParameters()

	var vms []models.VirtualMachine
	previous := 0
	for i := 0; i < 40; i++ {
		vms = append(vms, testVM(fmt.Sprintf("vm-%02d", i), 8, 32))
		result, err := engine.CalculateSizing(vms, profile, params)
		if err != nil {
			t.Fatalf("Unexpected error at %d VMs: %v", len(vms), err)
		}
		if result.RequiredHosts < previous {
			t.Errorf("Host count decreased from %d to %d when adding VM %d", previous, result.RequiredHosts, i)
		}
		previous = result.RequiredHosts
	}
}

func TestCalculateSizing_OversizedVMOpensNewHost(t *testing.T) {
	// A VM bigger than a whole host still lands on a fresh host; sizing
	// reports a large host count and a warning instead of failing
	vms := []models.VirtualMachine{
		testVM("huge-01", 200, 400),
		testVM("huge-02", 200, 400),
	}

	engine := NewSizingEngine()
	result, err := engine.CalculateSizing(vms, testProfile(32, 256), models.DefaultSizingParameters())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Two oversized VMs on two hosts, plus one N+1 spare
	if result.RequiredHosts != 3 {
		t.Errorf("Expected 3 required hosts, got %d", result.RequiredHosts)
	}
	if len(result.Warnings) == 0 {
		t.Error("Expected oversized-VM warnings, got none")
	}
}

func TestCalculateSizing_FFDPacksLargestFirst(t *testing.T) {
	// Scenario: usable capacity 115 vCPU / 201 GB per host (32 cores, 256 GB)
	// Growth 0 keeps demand as declared. VMs: 60C/100GB, 60C/100GB, 50C/90GB
	// FFD order: the two 60C VMs first on separate hosts, the 50C VM fits
	// beside the first (60+50=110 ≤ 115, 100+90=190 ≤ 201) -> 2 hosts packed
	params := models.DefaultSizingParameters()
	params.GrowthFactorPercent = 0
	params.HAPolicy = models.HANone

	vms := []models.VirtualMachine{
		testVM("small", 50, 90),
		testVM("big-a", 60, 100),
		testVM("big-b", 60, 100),
	}

	engine := NewSizingEngine()
	result, err := engine.CalculateSizing(vms, testProfile(32, 256), params)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.RequiredHosts != 2 {
		t.Errorf("Expected 2 required hosts, got %d", result.RequiredHosts)
	}
	if result.VMPlacement["big-a"] != "Host-01" {
		t.Errorf("Expected big-a on Host-01, got %s", result.VMPlacement["big-a"])
	}
	if result.VMPlacement["small"] != "Host-01" {
		t.Errorf("Expected small packed beside big-a on Host-01, got %s", result.VMPlacement["small"])
	}
}

func TestCalculateSizing_GrowthFactorWarning(t *testing.T) {
	params := models.DefaultSizingParameters()
	params.GrowthFactorPercent = 60

	engine := NewSizingEngine()
	result, err := engine.CalculateSizing([]models.VirtualMachine{testVM("app-01", 2, 8)}, testProfile(64, 512), params)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	found := false
	for _, w := range result.Warnings {
		if w == "High growth factor may result in over-provisioning" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected growth factor warning, got %v", result.Warnings)
	}
}

func TestOptimizeConfiguration_SkipsUnusableProfiles(t *testing.T) {
	vms := []models.VirtualMachine{testVM("app-01", 4, 16)}
	profiles := []models.HardwareProfile{
		testProfile(64, 512),
		testProfile(32, 16), // memory fully consumed by hypervisor reservation
	}

	engine := NewSizingEngine()
	comparisons, err := engine.OptimizeConfiguration(context.Background(), vms, profiles, models.DefaultSizingParameters())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(comparisons) != 1 {
		t.Fatalf("Expected 1 comparison (unusable profile skipped), got %d", len(comparisons))
	}
	// One VM, one packed host plus the N+1 spare at $20000 each
	if comparisons[0].CostPerVM != 40000 {
		t.Errorf("Expected cost per VM 40000, got %g", comparisons[0].CostPerVM)
	}
}

func TestOptimizeConfiguration_RanksByEfficiency(t *testing.T) {
	vms := []models.VirtualMachine{
		testVM("app-01", 8, 32),
		testVM("app-02", 8, 32),
		testVM("app-03", 8, 32),
	}
	basket := models.NewHardwareBasket()

	engine := NewSizingEngine()
	comparisons, err := engine.OptimizeConfiguration(context.Background(), vms, basket.Profiles, models.DefaultSizingParameters())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i := 1; i < len(comparisons); i++ {
		if comparisons[i].EfficiencyScore > comparisons[i-1].EfficiencyScore {
			t.Errorf("Comparisons not sorted by efficiency: %g after %g",
				comparisons[i].EfficiencyScore, comparisons[i-1].EfficiencyScore)
		}
	}
}
