// ABOUTME: Shared capacity-bin abstraction used by the sizing and placement engines
// ABOUTME: One can-fit/reserve/score surface with strategy-driven bin selection

package services

import (
	"github.com/atlasplan/migration-planner/models"
)

// CapacityBin is the common surface over anything workloads get packed into:
// a candidate target cluster during placement, or a target host during sizing.
// Reserve must only ever be called on a call-local copy.
type CapacityBin interface {
	CanFit(vm *models.VMResourceRequirements) bool
	Reserve(vm *models.VMResourceRequirements)
	RemainingCapacityScore() float64
	UtilizationScore() float64
}

// SelectBin picks the winning bin index out of candidates according to the
// strategy. Candidates hold indexes into bins and are assumed pre-filtered by
// CanFit. Returns -1 when there are no candidates. Ties go to the earlier
// candidate, which keeps selection deterministic for a given input order.
func SelectBin(bins []CapacityBin, candidates []int, strategy models.PlacementStrategy) int {
	if len(candidates) == 0 {
		return -1
	}

	switch strategy {
	case models.StrategyFirstFit:
		return candidates[0]

	case models.StrategyBestFit:
		// Tightest fit: least remaining room after the current load
		best := candidates[0]
		bestScore := bins[best].RemainingCapacityScore()
		for _, i := range candidates[1:] {
			if s := bins[i].RemainingCapacityScore(); s < bestScore {
				best, bestScore = i, s
			}
		}
		return best

	case models.StrategyBalanced:
		// Lowest mean utilization across the resource axes
		best := candidates[0]
		bestScore := bins[best].UtilizationScore()
		for _, i := range candidates[1:] {
			if s := bins[i].UtilizationScore(); s < bestScore {
				best, bestScore = i, s
			}
		}
		return best

	case models.StrategyPerformance:
		// Most remaining room: spreads load instead of packing
		best := candidates[0]
		bestScore := bins[best].RemainingCapacityScore()
		for _, i := range candidates[1:] {
			if s := bins[i].RemainingCapacityScore(); s > bestScore {
				best, bestScore = i, s
			}
		}
		return best

	default:
		return candidates[0]
	}
}
