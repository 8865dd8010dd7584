// ABOUTME: Planner facade composing the analysis and sizing engines with a result cache
// ABOUTME: Repeated requests against an unchanged snapshot return cached results

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atlasplan/migration-planner/cache"
	"github.com/atlasplan/migration-planner/models"
)

// Planner fronts the planning engines with an advisory result cache keyed on
// the environment fingerprint. Computation is deterministic for a given
// snapshot and parameter set, so cached results never go stale before the
// snapshot itself changes.
type Planner struct {
	analysis *AnalysisEngine
	sizing   *SizingEngine
	cache    *cache.Cache
}

// NewPlanner creates a planner with the given cache TTL
func NewPlanner(cacheTTL time.Duration) *Planner {
	return &Planner{
		analysis: NewAnalysisEngine(),
		sizing:   NewSizingEngine(),
		cache:    cache.New(cacheTTL),
	}
}

// AnalyzeEnvironment returns the analysis report for the snapshot, computing
// it at most once per fingerprint within the cache TTL
func (p *Planner) AnalyzeEnvironment(env *models.Environment) *models.AnalysisReport {
	key := cache.AnalysisKey(env.Fingerprint())
	if cached, ok := p.cache.Get(key); ok {
		return cached.(*models.AnalysisReport)
	}

	report := p.analysis.AnalyzeEnvironment(env)
	p.cache.Set(key, report)
	return report
}

// CalculateSizing sizes the snapshot's workload against one profile, reusing
// a cached result when the snapshot, profile, and parameters all match
func (p *Planner) CalculateSizing(env *models.Environment, profile models.HardwareProfile, params models.SizingParameters) (*models.SizingResult, error) {
	key := cache.SizingKey(profile.ID.String(), paramsDigest(params), env.Fingerprint())
	if cached, ok := p.cache.Get(key); ok {
		return cached.(*models.SizingResult), nil
	}

	result, err := p.sizing.CalculateSizing(env.AllVMs(), profile, params)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, result)
	return result, nil
}

// OptimizeConfiguration compares profiles for the snapshot's workload.
// Comparison runs are not cached whole; each underlying sizing call is cheap
// and profile baskets change between invocations.
func (p *Planner) OptimizeConfiguration(ctx context.Context, env *models.Environment, profiles []models.HardwareProfile, params models.SizingParameters) ([]models.SizingComparison, error) {
	return p.sizing.OptimizeConfiguration(ctx, env.AllVMs(), profiles, params)
}

// InvalidateEnvironment drops cached results for one snapshot
func (p *Planner) InvalidateEnvironment(env *models.Environment) {
	p.cache.Clear(cache.AnalysisKey(env.Fingerprint()))
	slog.Debug("planner cache invalidated", "environment", env.Name)
}

// paramsDigest folds the sizing parameters into a stable cache key fragment
func paramsDigest(params models.SizingParameters) string {
	return fmt.Sprintf("%g:%s:%g:%g:%g",
		params.TargetVCPUPCPURatio,
		params.HAPolicy,
		params.GrowthFactorPercent,
		params.CPUReservationPercent,
		params.MemoryReservationPercent)
}
