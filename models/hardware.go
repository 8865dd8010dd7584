// ABOUTME: Target hardware profiles, sizing parameters, and sizing results
// ABOUTME: Includes the default hardware basket used for multi-profile comparison

package models

import "github.com/google/uuid"

// HAPolicy is the high-availability overhead policy applied after packing
type HAPolicy string

const (
	HANone     HAPolicy = "none"
	HANPlusOne HAPolicy = "n_plus_1"
	HANPlusTwo HAPolicy = "n_plus_2"
)

// Overhead returns the number of spare hosts the policy reserves
func (p HAPolicy) Overhead() int {
	switch p {
	case HANPlusOne:
		return 1
	case HANPlusTwo:
		return 2
	default:
		return 0
	}
}

// HardwareProfile describes a candidate target host model
type HardwareProfile struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Manufacturer          string    `json:"manufacturer"`
	Model                 string    `json:"model"`
	CPUSockets            int       `json:"cpu_sockets"`
	CoresPerSocket        int       `json:"cores_per_socket"`
	TotalCores            int       `json:"total_cores"`
	MaxMemoryGB           int       `json:"max_memory_gb"`
	StorageSlots          int       `json:"storage_slots"`
	NetworkPorts          int       `json:"network_ports"`
	IsHCICertified        bool      `json:"is_hci_certified"`
	EstimatedCost         float64   `json:"estimated_cost,omitempty"`
	PowerConsumptionWatts int       `json:"power_consumption_watts,omitempty"`
	RackUnits             int       `json:"rack_units"`
	Notes                 string    `json:"notes,omitempty"`
}

// SizingParameters is the caller-supplied sizing configuration
type SizingParameters struct {
	TargetVCPUPCPURatio      float64  `json:"target_vcpu_pcpu_ratio"`
	HAPolicy                 HAPolicy `json:"ha_policy"`
	GrowthFactorPercent      float64  `json:"growth_factor_percent"`
	CPUReservationPercent    float64  `json:"cpu_reservation_percent"`
	MemoryReservationPercent float64  `json:"memory_reservation_percent"`
}

// DefaultSizingParameters returns conservative defaults for a first sizing pass
func DefaultSizingParameters() SizingParameters {
	return SizingParameters{
		TargetVCPUPCPURatio:      4.0,
		HAPolicy:                 HANPlusOne,
		GrowthFactorPercent:      20.0,
		CPUReservationPercent:    10.0,
		MemoryReservationPercent: 10.0,
	}
}

// UtilizationMetrics describes the packed solution's resource utilization
type UtilizationMetrics struct {
	CPUUtilizationPercent     float64 `json:"cpu_utilization_percent"`
	MemoryUtilizationPercent  float64 `json:"memory_utilization_percent"`
	StorageUtilizationPercent float64 `json:"storage_utilization_percent"`
	NPlusXCompliance          bool    `json:"n_plus_x_compliance"`
}

// SizingResult is the outcome of a single-profile sizing calculation
type SizingResult struct {
	HardwareProfile    HardwareProfile    `json:"hardware_profile"`
	RequiredHosts      int                `json:"required_hosts"`
	TotalCost          float64            `json:"total_cost,omitempty"`
	UtilizationMetrics UtilizationMetrics `json:"utilization_metrics"`
	VMPlacement        map[string]string  `json:"vm_placement"` // VM name -> host label
	Warnings           []string           `json:"warnings"`
}

// SizingComparison ranks one hardware profile within a multi-profile comparison
type SizingComparison struct {
	HardwareProfile HardwareProfile `json:"hardware_profile"`
	SizingResult    SizingResult    `json:"sizing_result"`
	EfficiencyScore float64         `json:"efficiency_score"`
	CostPerVM       float64         `json:"cost_per_vm,omitempty"`
}

// HardwareBasket is the in-memory set of candidate hardware profiles
type HardwareBasket struct {
	Profiles []HardwareProfile `json:"profiles"`
}

// NewHardwareBasket returns a basket seeded with the default profiles
func NewHardwareBasket() *HardwareBasket {
	return &HardwareBasket{Profiles: defaultProfiles()}
}

// AddProfile appends a profile to the basket
func (b *HardwareBasket) AddProfile(p HardwareProfile) {
	b.Profiles = append(b.Profiles, p)
}

// RemoveProfile removes a profile by id, returning true if found
func (b *HardwareBasket) RemoveProfile(id uuid.UUID) bool {
	for i, p := range b.Profiles {
		if p.ID == id {
			b.Profiles = append(b.Profiles[:i], b.Profiles[i+1:]...)
			return true
		}
	}
	return false
}

// GetProfile looks up a profile by id
func (b *HardwareBasket) GetProfile(id uuid.UUID) (HardwareProfile, bool) {
	for _, p := range b.Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return HardwareProfile{}, false
}

// HCICertifiedProfiles filters the basket to HCI-certified models
func (b *HardwareBasket) HCICertifiedProfiles() []HardwareProfile {
	var out []HardwareProfile
	for _, p := range b.Profiles {
		if p.IsHCICertified {
			out = append(out, p)
		}
	}
	return out
}

func defaultProfiles() []HardwareProfile {
	return []HardwareProfile{
		{
			ID:                    uuid.New(),
			Name:                  "Dell PowerEdge R760",
			Manufacturer:          "Dell",
			Model:                 "PowerEdge R760",
			CPUSockets:            2,
			CoresPerSocket:        32,
			TotalCores:            64,
			MaxMemoryGB:           512,
			StorageSlots:          8,
			NetworkPorts:          4,
			IsHCICertified:        true,
			EstimatedCost:         25000,
			PowerConsumptionWatts: 800,
			RackUnits:             2,
			Notes:                 "Optimized for Azure Stack HCI",
		},
		{
			ID:                    uuid.New(),
			Name:                  "HPE ProLiant DL380 Gen11",
			Manufacturer:          "HPE",
			Model:                 "ProLiant DL380 Gen11",
			CPUSockets:            2,
			CoresPerSocket:        28,
			TotalCores:            56,
			MaxMemoryGB:           768,
			StorageSlots:          12,
			NetworkPorts:          4,
			IsHCICertified:        true,
			EstimatedCost:         28000,
			PowerConsumptionWatts: 750,
			RackUnits:             2,
			Notes:                 "High memory capacity option",
		},
		{
			ID:                    uuid.New(),
			Name:                  "Lenovo ThinkSystem SR650 V3",
			Manufacturer:          "Lenovo",
			Model:                 "ThinkSystem SR650 V3",
			CPUSockets:            2,
			CoresPerSocket:        24,
			TotalCores:            48,
			MaxMemoryGB:           512,
			StorageSlots:          10,
			NetworkPorts:          4,
			IsHCICertified:        true,
			EstimatedCost:         22000,
			PowerConsumptionWatts: 700,
			RackUnits:             1,
			Notes:                 "Compact 1U form factor",
		},
	}
}
