// ABOUTME: Performance analyzer scoring clusters on overcommit pressure
// ABOUTME: Emits per-cluster bottlenecks and environment-wide recommendations

package services

import (
	"fmt"

	"github.com/atlasplan/migration-planner/models"
)

// AnalyzePerformance scores each cluster and collects bottlenecks plus
// environment-wide recommendations
func (e *AnalysisEngine) AnalyzePerformance(env *models.Environment) models.PerformanceAnalysis {
	clusterPerf := make([]models.ClusterPerformance, 0, len(env.Clusters))

	for _, cluster := range env.Clusters {
		perf := models.ClusterPerformance{
			ClusterName:           cluster.Name,
			VCPUPCPURatio:         cluster.Metrics.CurrentVCPUPCPURatio,
			MemoryOvercommitRatio: cluster.Metrics.MemoryOvercommitRatio,
			PerformanceScore:      performanceScore(&cluster),
			Bottlenecks:           identifyBottlenecks(&cluster),
		}
		if cluster.Metrics.TotalVMs > 0 {
			perf.AvgVCPUPerVM = float64(cluster.Metrics.TotalVCPUs) / float64(cluster.Metrics.TotalVMs)
			perf.AvgMemoryPerVMGB = cluster.Metrics.ProvisionedMemoryGB / float64(cluster.Metrics.TotalVMs)
		}
		clusterPerf = append(clusterPerf, perf)
	}

	return models.PerformanceAnalysis{
		ClusterPerformance:         clusterPerf,
		OverallPerformanceScore:    overallPerformanceScore(clusterPerf),
		PerformanceRecommendations: performanceRecommendations(clusterPerf),
	}
}

// performanceScore starts each cluster at 100 and penalizes overcommit:
// 10 points per unit of vCPU:pCPU ratio above 4.0 and 20 points per unit of
// memory overcommit above 1.0, clamped to [0,100]
func performanceScore(cluster *models.Cluster) float64 {
	score := 100.0

	if ratio := cluster.Metrics.CurrentVCPUPCPURatio; ratio > 4.0 {
		score -= (ratio - 4.0) * 10.0
	}
	if overcommit := cluster.Metrics.MemoryOvercommitRatio; overcommit > 1.0 {
		score -= (overcommit - 1.0) * 20.0
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func overallPerformanceScore(clusters []models.ClusterPerformance) float64 {
	if len(clusters) == 0 {
		return 0
	}
	var sum float64
	for _, c := range clusters {
		sum += c.PerformanceScore
	}
	return sum / float64(len(clusters))
}

func identifyBottlenecks(cluster *models.Cluster) []string {
	bottlenecks := []string{}

	if cluster.Metrics.CurrentVCPUPCPURatio > 6.0 {
		bottlenecks = append(bottlenecks, "High CPU overcommitment may cause CPU contention")
	}
	if cluster.Metrics.MemoryOvercommitRatio > 1.2 {
		bottlenecks = append(bottlenecks, "Memory overcommitment may trigger ballooning or swapping")
	}
	if len(cluster.Hosts) < 3 {
		bottlenecks = append(bottlenecks, "Small cluster size limits HA capabilities")
	}

	return bottlenecks
}

func performanceRecommendations(clusters []models.ClusterPerformance) []string {
	recommendations := []string{}

	for _, c := range clusters {
		if c.PerformanceScore < 70.0 {
			recommendations = append(recommendations, fmt.Sprintf(
				"Cluster '%s' has poor performance score (%d%%) - consider resource optimization",
				c.ClusterName, int(c.PerformanceScore)))
		}
		if c.VCPUPCPURatio > 5.0 {
			recommendations = append(recommendations, fmt.Sprintf(
				"Reduce vCPU:pCPU ratio in cluster '%s' from %.1f:1 to improve performance",
				c.ClusterName, c.VCPUPCPURatio))
		}
	}

	return recommendations
}
