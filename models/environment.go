// ABOUTME: Data models for the discovered virtualization environment
// ABOUTME: Clusters, hosts, VMs, and rollup metrics consumed by the planning engines

package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PowerState is a VM power state
type PowerState string

const (
	PoweredOn         PowerState = "powered_on"
	PoweredOff        PowerState = "powered_off"
	Suspended         PowerState = "suspended"
	PowerStateUnknown PowerState = "unknown"
)

// ParsePowerState normalizes a raw power state string from discovery
func ParsePowerState(s string) PowerState {
	switch s {
	case "poweredOn", "powered on", "powered_on":
		return PoweredOn
	case "poweredOff", "powered off", "powered_off":
		return PoweredOff
	case "suspended":
		return Suspended
	default:
		return PowerStateUnknown
	}
}

// ProvisioningType is a virtual disk provisioning mode
type ProvisioningType string

const (
	ProvisioningThick            ProvisioningType = "thick"
	ProvisioningThickEagerZeroed ProvisioningType = "thick_eager_zeroed"
	ProvisioningThin             ProvisioningType = "thin"
	ProvisioningUnknown          ProvisioningType = "unknown"
)

// Severity classifies health issues and capacity warnings
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Priority ranks remediation and optimization work
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Environment is a point-in-time snapshot of a discovered virtualization estate
type Environment struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	ParsedAt       time.Time          `json:"parsed_at"`
	Clusters       []Cluster          `json:"clusters"`
	TotalVMs       int                `json:"total_vms"`
	TotalHosts     int                `json:"total_hosts"`
	SummaryMetrics EnvironmentSummary `json:"summary_metrics"`
}

// EnvironmentSummary holds estate-wide rollup metrics
type EnvironmentSummary struct {
	TotalVCPUs                int           `json:"total_vcpus"`
	TotalPCores               int           `json:"total_pcores"`
	TotalProvisionedMemoryGB  float64       `json:"total_provisioned_memory_gb"`
	TotalConsumedMemoryGB     float64       `json:"total_consumed_memory_gb"`
	TotalProvisionedStorageGB float64       `json:"total_provisioned_storage_gb"`
	TotalConsumedStorageGB    float64       `json:"total_consumed_storage_gb"`
	OverallVCPUPCPURatio      float64       `json:"overall_vcpu_pcpu_ratio"`
	HealthIssues              []HealthIssue `json:"health_issues"`
}

// Cluster is a discovered compute cluster with its hosts and VMs
type Cluster struct {
	Name         string          `json:"name"`
	Hosts        []Host          `json:"hosts"`
	VMs          []VirtualMachine `json:"vms"`
	Metrics      ClusterMetrics  `json:"metrics"`
	HealthStatus ClusterHealth   `json:"health_status"`
}

// ClusterMetrics holds cluster-level rollup metrics
type ClusterMetrics struct {
	TotalHosts            int     `json:"total_hosts"`
	TotalVMs              int     `json:"total_vms"`
	TotalPCPUCores        int     `json:"total_pcpu_cores"`
	TotalVCPUs            int     `json:"total_vcpus"`
	CurrentVCPUPCPURatio  float64 `json:"current_vcpu_pcpu_ratio"`
	TotalMemoryGB         int     `json:"total_memory_gb"`
	ProvisionedMemoryGB   float64 `json:"provisioned_memory_gb"`
	MemoryOvercommitRatio float64 `json:"memory_overcommit_ratio"`
	TotalStorageGB        float64 `json:"total_storage_gb"`
	ConsumedStorageGB     float64 `json:"consumed_storage_gb"`
}

// ClusterHealth lists per-cluster issue indicators found during discovery
type ClusterHealth struct {
	ZombieVMs     []string `json:"zombie_vms"`
	OutdatedTools []string `json:"outdated_tools"`
	RDMVMs        []string `json:"rdm_vms"`
	Warnings      []string `json:"warnings"`
}

// Host is a discovered physical hypervisor host
type Host struct {
	Name           string     `json:"name"`
	ClusterName    string     `json:"cluster_name,omitempty"`
	CPUModel       string     `json:"cpu_model,omitempty"`
	NumCPUSockets  int        `json:"num_cpu_sockets"`
	CoresPerSocket int        `json:"cores_per_socket"`
	NumCPUCores    int        `json:"num_cpu_cores"`
	TotalMemoryGB  int        `json:"total_memory_gb"`
	Vendor         string     `json:"vendor,omitempty"`
	Model          string     `json:"model,omitempty"`
	PowerState     PowerState `json:"power_state"`
	InMaintenance  bool       `json:"in_maintenance"`
}

// VirtualMachine is a discovered VM; immutable input to the planning engines
type VirtualMachine struct {
	Name         string         `json:"name"`
	ClusterName  string         `json:"cluster_name"`
	HostName     string         `json:"host_name"`
	PowerState   PowerState     `json:"power_state"`
	NumVCPU      int            `json:"num_vcpu"`
	MemoryGB     int            `json:"memory_gb"`
	GuestOS      string         `json:"guest_os,omitempty"`
	ToolsStatus  string         `json:"tools_status,omitempty"`
	IsTemplate   bool           `json:"is_template"`
	Disks        []VirtualDisk  `json:"disks"`
	SpecialFlags VMSpecialFlags `json:"special_flags"`
}

// VirtualDisk is a VM disk with consumption and provisioning data
type VirtualDisk struct {
	DiskLabel         string           `json:"disk_label"`
	ProvisionedGB     float64          `json:"provisioned_gb"`
	ConsumedInGuestGB float64          `json:"consumed_in_guest_gb"`
	IsRDM             bool             `json:"is_rdm"`
	ProvisioningType  ProvisioningType `json:"provisioning_type"`
}

// VMSpecialFlags marks VM traits that affect migration planning
type VMSpecialFlags struct {
	HasRDM               bool `json:"has_rdm"`
	IsZombie             bool `json:"is_zombie"`
	NeedsManualAttention bool `json:"needs_manual_attention"`
	IsCriticalWorkload   bool `json:"is_critical_workload"`
}

// HealthIssue is a single issue surfaced by discovery or analysis
type HealthIssue struct {
	Severity       Severity `json:"severity"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	AffectedVM     string   `json:"affected_vm,omitempty"`
	AffectedHost   string   `json:"affected_host,omitempty"`
	Recommendation string   `json:"recommendation"`
}

// Health issue categories recognized by the remediation planner
const (
	CategoryRawDeviceMapping = "Raw Device Mapping"
	CategoryOutdatedTools    = "Outdated VMware Tools"
	CategoryZombieVM         = "Zombie VM"
)

// StorageGB sums in-guest consumed disk space across all VM disks
func (vm *VirtualMachine) StorageGB() float64 {
	var total float64
	for _, d := range vm.Disks {
		total += d.ConsumedInGuestGB
	}
	return total
}

// PoweredOnVMCount counts VMs in powered-on state across all clusters
func (e *Environment) PoweredOnVMCount() int {
	count := 0
	for _, c := range e.Clusters {
		for _, vm := range c.VMs {
			if vm.PowerState == PoweredOn {
				count++
			}
		}
	}
	return count
}

// PoweredOffVMCount counts VMs not in powered-on state
func (e *Environment) PoweredOffVMCount() int {
	return e.TotalVMs - e.PoweredOnVMCount()
}

// AllVMs flattens cluster VM membership into a single list
func (e *Environment) AllVMs() []VirtualMachine {
	var vms []VirtualMachine
	for _, c := range e.Clusters {
		vms = append(vms, c.VMs...)
	}
	return vms
}

// Fingerprint returns a stable content hash of the snapshot, used as an
// advisory cache key alongside profile id and parameters
func (e *Environment) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%d", e.Name, e.ParsedAt.UnixNano(), e.TotalVMs, e.TotalHosts)
	fmt.Fprintf(h, "|%d|%d|%.3f|%.3f",
		e.SummaryMetrics.TotalVCPUs,
		e.SummaryMetrics.TotalPCores,
		e.SummaryMetrics.TotalProvisionedMemoryGB,
		e.SummaryMetrics.TotalConsumedStorageGB)
	for _, c := range e.Clusters {
		fmt.Fprintf(h, "|%s:%d:%d", c.Name, c.Metrics.TotalVMs, c.Metrics.TotalVCPUs)
	}
	return hex.EncodeToString(h.Sum(nil))
}
