// ABOUTME: Target cluster capacity tracking and VM resource requirements
// ABOUTME: ClusterCapacityStatus implements the shared can-fit/reserve/score bin surface

package models

// VMResourceRequirements describes one VM awaiting placement
type VMResourceRequirements struct {
	VMID              string  `json:"vm_id"`
	VMName            string  `json:"vm_name"`
	CPUCores          float64 `json:"cpu_cores"`
	MemoryGB          float64 `json:"memory_gb"`
	StorageGB         float64 `json:"storage_gb"`
	NetworkVLAN       int     `json:"network_vlan,omitempty"`
	IsCritical        bool    `json:"is_critical"`
	AffinityGroup     string  `json:"affinity_group,omitempty"`
	AntiAffinityGroup string  `json:"anti_affinity_group,omitempty"`
}

// SizeScore is a weighted footprint mixing the three resource axes onto a
// comparable scale; used to order VMs largest-first during placement
func (v *VMResourceRequirements) SizeScore() float64 {
	return v.CPUCores + v.MemoryGB/8.0 + v.StorageGB/100.0
}

// ClusterCapacityStatus tracks a candidate target cluster's capacity.
// Invariant: available = total - used for every resource axis. Utilization
// percentages are not capped at 100; CPU in particular may exceed 100 under
// overcommit since used reflects allocated vCPU against physical cores.
type ClusterCapacityStatus struct {
	ClusterID                 string  `json:"cluster_id"`
	ClusterName               string  `json:"cluster_name"`
	TotalCPU                  float64 `json:"total_cpu"`
	TotalMemoryGB             float64 `json:"total_memory_gb"`
	TotalStorageGB            float64 `json:"total_storage_gb"`
	UsedCPU                   float64 `json:"used_cpu"`
	UsedMemoryGB              float64 `json:"used_memory_gb"`
	UsedStorageGB             float64 `json:"used_storage_gb"`
	AvailableCPU              float64 `json:"available_cpu"`
	AvailableMemoryGB         float64 `json:"available_memory_gb"`
	AvailableStorageGB        float64 `json:"available_storage_gb"`
	CPUUtilizationPercent     float64 `json:"cpu_utilization_percent"`
	MemoryUtilizationPercent  float64 `json:"memory_utilization_percent"`
	StorageUtilizationPercent float64 `json:"storage_utilization_percent"`
}

// NewClusterCapacityStatus builds an empty-capacity record from totals
func NewClusterCapacityStatus(id, name string, cpu, memoryGB, storageGB float64) ClusterCapacityStatus {
	return ClusterCapacityStatus{
		ClusterID:          id,
		ClusterName:        name,
		TotalCPU:           cpu,
		TotalMemoryGB:      memoryGB,
		TotalStorageGB:     storageGB,
		AvailableCPU:       cpu,
		AvailableMemoryGB:  memoryGB,
		AvailableStorageGB: storageGB,
	}
}

// CanFit reports whether the cluster has capacity for the VM on all three axes
func (c *ClusterCapacityStatus) CanFit(vm *VMResourceRequirements) bool {
	return c.AvailableCPU >= vm.CPUCores &&
		c.AvailableMemoryGB >= vm.MemoryGB &&
		c.AvailableStorageGB >= vm.StorageGB
}

// RemainingCapacityScore collapses remaining capacity onto one scale.
// Lower means less room left; BestFit minimizes it, Performance maximizes it.
func (c *ClusterCapacityStatus) RemainingCapacityScore() float64 {
	score := c.AvailableCPU
	if m := c.AvailableMemoryGB / 8.0; m < score {
		score = m
	}
	if s := c.AvailableStorageGB / 100.0; s < score {
		score = s
	}
	return score
}

// UtilizationScore is the mean utilization across the three resource axes
func (c *ClusterCapacityStatus) UtilizationScore() float64 {
	return (c.CPUUtilizationPercent + c.MemoryUtilizationPercent + c.StorageUtilizationPercent) / 3.0
}

// Reserve books the VM's resources against this cluster and recomputes
// utilization. Callers must operate on a call-local copy, never on the
// caller's snapshot.
func (c *ClusterCapacityStatus) Reserve(vm *VMResourceRequirements) {
	c.UsedCPU += vm.CPUCores
	c.UsedMemoryGB += vm.MemoryGB
	c.UsedStorageGB += vm.StorageGB

	c.AvailableCPU -= vm.CPUCores
	c.AvailableMemoryGB -= vm.MemoryGB
	c.AvailableStorageGB -= vm.StorageGB

	c.recomputeUtilization()
}

func (c *ClusterCapacityStatus) recomputeUtilization() {
	if c.TotalCPU > 0 {
		c.CPUUtilizationPercent = c.UsedCPU / c.TotalCPU * 100
	}
	if c.TotalMemoryGB > 0 {
		c.MemoryUtilizationPercent = c.UsedMemoryGB / c.TotalMemoryGB * 100
	}
	if c.TotalStorageGB > 0 {
		c.StorageUtilizationPercent = c.UsedStorageGB / c.TotalStorageGB * 100
	}
}
