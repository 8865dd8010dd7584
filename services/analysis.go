// ABOUTME: Environment analysis engine producing capacity, performance, and health reports
// ABOUTME: Pure computation over an immutable snapshot; emits warnings, never errors

package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/atlasplan/migration-planner/models"
)

// Assumed theoretical ceiling for vCPU:pCPU overcommit when scoring CPU
// utilization without live performance counters
const maxVCPUPCPURatio = 8.0

// AnalysisEngine assesses the as-is environment before migration planning
type AnalysisEngine struct{}

// NewAnalysisEngine creates a new analysis engine
func NewAnalysisEngine() *AnalysisEngine {
	return &AnalysisEngine{}
}

// AnalyzeEnvironment runs all three analyzers plus optimization scanning
// against one snapshot and aggregates the results
func (e *AnalysisEngine) AnalyzeEnvironment(env *models.Environment) *models.AnalysisReport {
	report := &models.AnalysisReport{
		EnvironmentID:               env.ID,
		CapacityAnalysis:            e.AnalyzeCapacity(env),
		PerformanceAnalysis:         e.AnalyzePerformance(env),
		HealthAnalysis:              e.AnalyzeHealth(env),
		OptimizationRecommendations: e.optimizationRecommendations(env),
		GeneratedAt:                 time.Now().UTC(),
	}

	slog.Info("environment analysis complete",
		"environment", env.Name,
		"capacity_warnings", len(report.CapacityAnalysis.CapacityWarnings),
		"health_score", report.HealthAnalysis.OverallHealthScore,
		"performance_score", report.PerformanceAnalysis.OverallPerformanceScore)

	return report
}

// AnalyzeCapacity computes per-cluster and overall utilization, capacity
// warnings, and a growth-runway estimate
func (e *AnalysisEngine) AnalyzeCapacity(env *models.Environment) models.CapacityAnalysis {
	clusterUtil := make([]models.ClusterUtilization, 0, len(env.Clusters))

	for _, cluster := range env.Clusters {
		clusterUtil = append(clusterUtil, models.ClusterUtilization{
			ClusterName:               cluster.Name,
			CPUUtilizationPercent:     cpuUtilization(&cluster),
			MemoryUtilizationPercent:  memoryUtilization(&cluster),
			StorageUtilizationPercent: storageUtilization(&cluster),
			VCPUPCPURatio:             cluster.Metrics.CurrentVCPUPCPURatio,
			MemoryOvercommitRatio:     cluster.Metrics.MemoryOvercommitRatio,
			HostCount:                 len(cluster.Hosts),
			VMCount:                   len(cluster.VMs),
		})
	}

	return models.CapacityAnalysis{
		OverallUtilization: overallUtilization(clusterUtil),
		ClusterUtilization: clusterUtil,
		CapacityWarnings:   capacityWarnings(clusterUtil),
		GrowthPotential:    growthPotential(clusterUtil),
	}
}

// cpuUtilization scores provisioned vCPU against a theoretical 8:1 ceiling.
// Without live performance counters this is the best proxy available.
func cpuUtilization(cluster *models.Cluster) float64 {
	if cluster.Metrics.TotalPCPUCores == 0 {
		return 0
	}
	theoreticalMax := float64(cluster.Metrics.TotalPCPUCores) * maxVCPUPCPURatio
	return float64(cluster.Metrics.TotalVCPUs) / theoreticalMax * 100
}

func memoryUtilization(cluster *models.Cluster) float64 {
	if cluster.Metrics.TotalMemoryGB == 0 {
		return 0
	}
	return cluster.Metrics.ProvisionedMemoryGB / float64(cluster.Metrics.TotalMemoryGB) * 100
}

func storageUtilization(cluster *models.Cluster) float64 {
	if cluster.Metrics.TotalStorageGB == 0 {
		return 0
	}
	return cluster.Metrics.ConsumedStorageGB / cluster.Metrics.TotalStorageGB * 100
}

// overallUtilization averages cluster figures into environment totals
func overallUtilization(clusters []models.ClusterUtilization) models.OverallUtilization {
	if len(clusters) == 0 {
		return models.OverallUtilization{}
	}

	out := models.OverallUtilization{TotalClusters: len(clusters)}
	for _, c := range clusters {
		out.AvgCPUUtilization += c.CPUUtilizationPercent
		out.AvgMemoryUtilization += c.MemoryUtilizationPercent
		out.AvgStorageUtilization += c.StorageUtilizationPercent
		out.AvgVCPUPCPURatio += c.VCPUPCPURatio
		out.TotalHosts += c.HostCount
		out.TotalVMs += c.VMCount
	}

	n := float64(len(clusters))
	out.AvgCPUUtilization /= n
	out.AvgMemoryUtilization /= n
	out.AvgStorageUtilization /= n
	out.AvgVCPUPCPURatio /= n
	return out
}

// capacityWarnings flags clusters crossing utilization thresholds.
// CPU warns above 80 (critical above 90), memory above 85 (critical above 95),
// and vCPU:pCPU ratio above 6.0 (critical above 8.0).
func capacityWarnings(clusters []models.ClusterUtilization) []models.CapacityWarning {
	warnings := []models.CapacityWarning{}

	for _, c := range clusters {
		if c.CPUUtilizationPercent > 80.0 {
			severity := models.SeverityWarning
			if c.CPUUtilizationPercent > 90.0 {
				severity = models.SeverityCritical
			}
			warnings = append(warnings, models.CapacityWarning{
				Severity:           severity,
				ClusterName:        c.ClusterName,
				ResourceType:       "CPU",
				CurrentUtilization: c.CPUUtilizationPercent,
				Threshold:          80.0,
				Recommendation:     "Consider adding CPU capacity or optimizing workloads",
			})
		}

		if c.MemoryUtilizationPercent > 85.0 {
			severity := models.SeverityWarning
			if c.MemoryUtilizationPercent > 95.0 {
				severity = models.SeverityCritical
			}
			warnings = append(warnings, models.CapacityWarning{
				Severity:           severity,
				ClusterName:        c.ClusterName,
				ResourceType:       "Memory",
				CurrentUtilization: c.MemoryUtilizationPercent,
				Threshold:          85.0,
				Recommendation:     "Consider adding memory or reducing memory allocation",
			})
		}

		if c.VCPUPCPURatio > 6.0 {
			severity := models.SeverityWarning
			if c.VCPUPCPURatio > 8.0 {
				severity = models.SeverityCritical
			}
			warnings = append(warnings, models.CapacityWarning{
				Severity:           severity,
				ClusterName:        c.ClusterName,
				ResourceType:       "vCPU:pCPU Ratio",
				// Normalized to a percentage of the 8.0 ceiling for comparison
				CurrentUtilization: c.VCPUPCPURatio * 100.0 / maxVCPUPCPURatio,
				Threshold:          75.0,
				Recommendation:     "High overcommitment ratio may impact performance",
			})
		}
	}

	return warnings
}

// growthPotential estimates how many months of organic growth remain before
// the binding resource runs out, assuming 2% of capacity consumed per month
func growthPotential(clusters []models.ClusterUtilization) models.GrowthPotential {
	if len(clusters) == 0 {
		return models.GrowthPotential{Constraints: []string{}}
	}

	var cpuHeadroom, memHeadroom float64
	for _, c := range clusters {
		cpuHeadroom += 100.0 - c.CPUUtilizationPercent
		memHeadroom += 100.0 - c.MemoryUtilizationPercent
	}
	cpuHeadroom /= float64(len(clusters))
	memHeadroom /= float64(len(clusters))

	runway := memHeadroom / 2.0
	if cpuHeadroom < memHeadroom {
		runway = cpuHeadroom / 2.0
	}
	if runway < 0 {
		runway = 0
	}

	constraints := []string{}
	for _, c := range clusters {
		if c.CPUUtilizationPercent > 70.0 {
			constraints = append(constraints, fmt.Sprintf("Cluster '%s' is CPU constrained", c.ClusterName))
		}
		if c.MemoryUtilizationPercent > 75.0 {
			constraints = append(constraints, fmt.Sprintf("Cluster '%s' is memory constrained", c.ClusterName))
		}
		if c.VCPUPCPURatio > 5.0 {
			constraints = append(constraints, fmt.Sprintf("Cluster '%s' has high CPU overcommitment", c.ClusterName))
		}
	}

	return models.GrowthPotential{
		CPUHeadroomPercent:          cpuHeadroom,
		MemoryHeadroomPercent:       memHeadroom,
		EstimatedGrowthRunwayMonths: int(runway),
		Constraints:                 constraints,
	}
}

// optimizationRecommendations scans clusters for structural improvements that
// are worth making before a migration: undersized clusters, oversized VMs,
// and thick-provisioned disks
func (e *AnalysisEngine) optimizationRecommendations(env *models.Environment) []models.OptimizationRecommendation {
	recs := []models.OptimizationRecommendation{}

	for _, cluster := range env.Clusters {
		if len(cluster.Hosts) == 2 {
			recs = append(recs, models.OptimizationRecommendation{
				Category:             "High Availability",
				Priority:             models.PriorityMedium,
				Description:          fmt.Sprintf("Cluster '%s' has only 2 hosts, limiting HA capabilities", cluster.Name),
				Recommendation:       "Consider adding a third host for N+1 HA protection",
				ImplementationEffort: "Medium",
			})
		}

		oversized := 0
		thickDisks := 0
		for _, vm := range cluster.VMs {
			if vm.NumVCPU > 8 || vm.MemoryGB > 64 {
				oversized++
			}
			for _, d := range vm.Disks {
				if d.ProvisioningType == models.ProvisioningThick {
					thickDisks++
				}
			}
		}

		if oversized > 0 {
			recs = append(recs, models.OptimizationRecommendation{
				Category:             "Resource Optimization",
				Priority:             models.PriorityLow,
				Description:          fmt.Sprintf("Found %d oversized VMs in cluster '%s'", oversized, cluster.Name),
				Recommendation:       "Review VM sizing and right-size if possible",
				EstimatedSavings:     float64(oversized) * 500.0,
				ImplementationEffort: "Low",
			})
		}

		if thickDisks > 0 {
			recs = append(recs, models.OptimizationRecommendation{
				Category:             "Storage Optimization",
				Priority:             models.PriorityLow,
				Description:          fmt.Sprintf("Found %d thick-provisioned disks in cluster '%s'", thickDisks, cluster.Name),
				Recommendation:       "Consider converting to thin provisioning to reduce storage usage",
				EstimatedSavings:     float64(thickDisks) * 100.0,
				ImplementationEffort: "Medium",
			})
		}
	}

	return recs
}
