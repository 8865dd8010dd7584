// ABOUTME: Analysis report structures for capacity, performance, and health
// ABOUTME: Serializable output of the environment analyzers

package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisReport aggregates the three analyzer results for one snapshot
type AnalysisReport struct {
	EnvironmentID               uuid.UUID                    `json:"environment_id"`
	CapacityAnalysis            CapacityAnalysis             `json:"capacity_analysis"`
	PerformanceAnalysis         PerformanceAnalysis          `json:"performance_analysis"`
	HealthAnalysis              HealthAnalysis               `json:"health_analysis"`
	OptimizationRecommendations []OptimizationRecommendation `json:"optimization_recommendations"`
	GeneratedAt                 time.Time                    `json:"generated_at"`
}

// CapacityAnalysis is the capacity analyzer's output
type CapacityAnalysis struct {
	OverallUtilization OverallUtilization   `json:"overall_utilization"`
	ClusterUtilization []ClusterUtilization `json:"cluster_utilization"`
	CapacityWarnings   []CapacityWarning    `json:"capacity_warnings"`
	GrowthPotential    GrowthPotential      `json:"growth_potential"`
}

// OverallUtilization averages utilization across clusters
type OverallUtilization struct {
	AvgCPUUtilization     float64 `json:"avg_cpu_utilization"`
	AvgMemoryUtilization  float64 `json:"avg_memory_utilization"`
	AvgStorageUtilization float64 `json:"avg_storage_utilization"`
	AvgVCPUPCPURatio      float64 `json:"avg_vcpu_pcpu_ratio"`
	TotalClusters         int     `json:"total_clusters"`
	TotalHosts            int     `json:"total_hosts"`
	TotalVMs              int     `json:"total_vms"`
}

// ClusterUtilization holds one cluster's utilization figures
type ClusterUtilization struct {
	ClusterName               string  `json:"cluster_name"`
	CPUUtilizationPercent     float64 `json:"cpu_utilization_percent"`
	MemoryUtilizationPercent  float64 `json:"memory_utilization_percent"`
	StorageUtilizationPercent float64 `json:"storage_utilization_percent"`
	VCPUPCPURatio             float64 `json:"vcpu_pcpu_ratio"`
	MemoryOvercommitRatio     float64 `json:"memory_overcommit_ratio"`
	HostCount                 int     `json:"host_count"`
	VMCount                   int     `json:"vm_count"`
}

// CapacityWarning flags a cluster crossing a utilization threshold
type CapacityWarning struct {
	Severity           Severity `json:"severity"`
	ClusterName        string   `json:"cluster_name"`
	ResourceType       string   `json:"resource_type"`
	CurrentUtilization float64  `json:"current_utilization"`
	Threshold          float64  `json:"threshold"`
	Recommendation     string   `json:"recommendation"`
}

// GrowthPotential estimates remaining runway before capacity is exhausted
type GrowthPotential struct {
	CPUHeadroomPercent          float64  `json:"cpu_headroom_percent"`
	MemoryHeadroomPercent       float64  `json:"memory_headroom_percent"`
	EstimatedGrowthRunwayMonths int      `json:"estimated_growth_runway_months"`
	Constraints                 []string `json:"constraints"`
}

// PerformanceAnalysis is the performance analyzer's output
type PerformanceAnalysis struct {
	ClusterPerformance         []ClusterPerformance `json:"cluster_performance"`
	OverallPerformanceScore    float64              `json:"overall_performance_score"`
	PerformanceRecommendations []string             `json:"performance_recommendations"`
}

// ClusterPerformance holds one cluster's performance score and bottlenecks
type ClusterPerformance struct {
	ClusterName           string   `json:"cluster_name"`
	AvgVCPUPerVM          float64  `json:"avg_vcpu_per_vm"`
	AvgMemoryPerVMGB      float64  `json:"avg_memory_per_vm_gb"`
	VCPUPCPURatio         float64  `json:"vcpu_pcpu_ratio"`
	MemoryOvercommitRatio float64  `json:"memory_overcommit_ratio"`
	PerformanceScore      float64  `json:"performance_score"`
	Bottlenecks           []string `json:"bottlenecks"`
}

// HealthAnalysis is the health analyzer's output
type HealthAnalysis struct {
	OverallHealthScore float64           `json:"overall_health_score"`
	CriticalIssues     int               `json:"critical_issues"`
	WarningIssues      int               `json:"warning_issues"`
	InfoIssues         int               `json:"info_issues"`
	HealthIssues       []HealthIssue     `json:"health_issues"`
	RemediationPlan    []RemediationStep `json:"remediation_plan"`
}

// RemediationStep is one ordered step in the remediation plan
type RemediationStep struct {
	StepID               int      `json:"step_id"`
	Priority             Priority `json:"priority"`
	Category             string   `json:"category"`
	Description          string   `json:"description"`
	AffectedItems        []string `json:"affected_items"`
	EstimatedEffortHours float64  `json:"estimated_effort_hours"`
	Prerequisites        []string `json:"prerequisites"`
}

// OptimizationRecommendation suggests an environment improvement
type OptimizationRecommendation struct {
	Category             string   `json:"category"`
	Priority             Priority `json:"priority"`
	Description          string   `json:"description"`
	Recommendation       string   `json:"recommendation"`
	EstimatedSavings     float64  `json:"estimated_savings,omitempty"`
	ImplementationEffort string   `json:"implementation_effort"`
}
