// ABOUTME: Input validation for planner parameters and identifiers
// ABOUTME: Keeps user-supplied names out of logs unsanitized

package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/atlasplan/migration-planner/models"
)

// identifierPattern matches safe cluster/VM/project identifiers
// (alphanumeric, dots, hyphens, underscores)
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// sanitizeForLog removes control characters from strings to prevent log
// injection when including user input in error messages
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1 // Remove control characters
		}
		return r
	}, s)
}

// ValidateIdentifier validates that a cluster, VM, or project identifier has
// a safe format before it is embedded in placement ids or log lines.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier format: %s", sanitizeForLog(name))
	}
	return nil
}

// ValidateSizingParameters rejects parameter combinations the sizing engine
// cannot produce a meaningful result for
func ValidateSizingParameters(params models.SizingParameters) error {
	if params.TargetVCPUPCPURatio <= 0 {
		return fmt.Errorf("target vCPU:pCPU ratio must be positive, got %g", params.TargetVCPUPCPURatio)
	}
	if params.GrowthFactorPercent < 0 {
		return fmt.Errorf("growth factor cannot be negative, got %g", params.GrowthFactorPercent)
	}
	if params.CPUReservationPercent < 0 || params.CPUReservationPercent >= 100 {
		return fmt.Errorf("CPU reservation must be in [0,100), got %g", params.CPUReservationPercent)
	}
	if params.MemoryReservationPercent < 0 || params.MemoryReservationPercent >= 100 {
		return fmt.Errorf("memory reservation must be in [0,100), got %g", params.MemoryReservationPercent)
	}
	switch params.HAPolicy {
	case models.HANone, models.HANPlusOne, models.HANPlusTwo:
	default:
		return fmt.Errorf("unknown HA policy: %s", sanitizeForLog(string(params.HAPolicy)))
	}
	return nil
}

// ValidateForecastParameters rejects horizons and growth rates outside the
// range the projection math stays meaningful in
func ValidateForecastParameters(params models.ForecastParameters) error {
	if params.ForecastHorizonMonths < 1 {
		return fmt.Errorf("forecast horizon must be at least 1 month, got %d", params.ForecastHorizonMonths)
	}
	if params.AnnualGrowthPercent < -100 {
		return fmt.Errorf("annual growth cannot be below -100%%, got %g", params.AnnualGrowthPercent)
	}
	return nil
}
