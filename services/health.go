// ABOUTME: Health analyzer aggregating discovered issues into a score
// ABOUTME: Builds a prioritized remediation plan grouped by issue category

package services

import (
	"fmt"

	"github.com/atlasplan/migration-planner/models"
)

// AnalyzeHealth merges environment-level health issues with cluster-detected
// zombie VMs, scores the result, and derives a remediation plan
func (e *AnalysisEngine) AnalyzeHealth(env *models.Environment) models.HealthAnalysis {
	allIssues := append([]models.HealthIssue{}, env.SummaryMetrics.HealthIssues...)

	for _, cluster := range env.Clusters {
		for _, vmName := range cluster.HealthStatus.ZombieVMs {
			allIssues = append(allIssues, models.HealthIssue{
				Severity:       models.SeverityWarning,
				Category:       "Resource Optimization",
				Description:    fmt.Sprintf("Zombie VM '%s' consuming resources unnecessarily", vmName),
				AffectedVM:     vmName,
				Recommendation: "Remove or power on if needed",
			})
		}
	}

	var critical, warning, info int
	for _, issue := range allIssues {
		switch issue.Severity {
		case models.SeverityCritical:
			critical++
		case models.SeverityWarning:
			warning++
		case models.SeverityInfo:
			info++
		}
	}

	return models.HealthAnalysis{
		OverallHealthScore: healthScore(critical, warning),
		CriticalIssues:     critical,
		WarningIssues:      warning,
		InfoIssues:         info,
		HealthIssues:       allIssues,
		RemediationPlan:    remediationPlan(env.SummaryMetrics.HealthIssues),
	}
}

// healthScore charges 20 points per critical issue and 5 per warning,
// floored at 0
func healthScore(critical, warning int) float64 {
	score := 100.0 - float64(critical)*20.0 - float64(warning)*5.0
	if score < 0 {
		score = 0
	}
	return score
}

// remediationPlan groups affected VMs by issue category into ordered steps.
// RDM dependencies block migration so they come first at High priority;
// tooling updates and zombie cleanup follow with smaller per-item effort.
func remediationPlan(issues []models.HealthIssue) []models.RemediationStep {
	var rdmVMs, toolsVMs, zombieVMs []string

	for _, issue := range issues {
		if issue.AffectedVM == "" {
			continue
		}
		switch issue.Category {
		case models.CategoryRawDeviceMapping:
			rdmVMs = append(rdmVMs, issue.AffectedVM)
		case models.CategoryOutdatedTools:
			toolsVMs = append(toolsVMs, issue.AffectedVM)
		case models.CategoryZombieVM:
			zombieVMs = append(zombieVMs, issue.AffectedVM)
		}
	}

	steps := []models.RemediationStep{}
	stepID := 1

	if len(rdmVMs) > 0 {
		steps = append(steps, models.RemediationStep{
			StepID:               stepID,
			Priority:             models.PriorityHigh,
			Category:             "Pre-Migration",
			Description:          fmt.Sprintf("Address %d VMs with Raw Device Mappings", len(rdmVMs)),
			AffectedItems:        rdmVMs,
			EstimatedEffortHours: float64(len(rdmVMs)) * 4.0,
			Prerequisites:        []string{"Storage team involvement"},
		})
		stepID++
	}

	if len(toolsVMs) > 0 {
		steps = append(steps, models.RemediationStep{
			StepID:               stepID,
			Priority:             models.PriorityMedium,
			Category:             "Preparation",
			Description:          fmt.Sprintf("Update VMware Tools on %d VMs", len(toolsVMs)),
			AffectedItems:        toolsVMs,
			EstimatedEffortHours: float64(len(toolsVMs)) * 0.5,
			Prerequisites:        []string{"Maintenance windows"},
		})
		stepID++
	}

	if len(zombieVMs) > 0 {
		steps = append(steps, models.RemediationStep{
			StepID:               stepID,
			Priority:             models.PriorityLow,
			Category:             "Cleanup",
			Description:          fmt.Sprintf("Review and remove %d zombie VMs", len(zombieVMs)),
			AffectedItems:        zombieVMs,
			EstimatedEffortHours: float64(len(zombieVMs)) * 0.25,
			Prerequisites:        []string{"Business approval"},
		})
	}

	return steps
}
