// ABOUTME: Configuration loader for the migration planner
// ABOUTME: Loads settings from environment variables with defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atlasplan/migration-planner/models"
)

type Config struct {
	// Caching
	CacheTTL int // seconds, for analysis/sizing result cache (default 300)

	// Sizing defaults, overridable per invocation
	TargetVCPUPCPURatio      float64
	HAPolicy                 string // none, n_plus_1, n_plus_2
	GrowthFactorPercent      float64
	CPUReservationPercent    float64
	MemoryReservationPercent float64

	// Forecast defaults
	ForecastHorizonMonths int
	AnnualGrowthPercent   float64

	// vSphere discovery (optional)
	VSphereHost       string
	VSphereUsername   string
	VSpherePassword   string
	VSphereDatacenter string
	VSphereInsecure   bool
}

// VSphereConfigured returns true if vSphere credentials are set
func (c *Config) VSphereConfigured() bool {
	return c.VSphereHost != "" && c.VSphereUsername != "" && c.VSpherePassword != "" && c.VSphereDatacenter != ""
}

// SizingParameters builds sizing parameters from the configured defaults
func (c *Config) SizingParameters() models.SizingParameters {
	return models.SizingParameters{
		TargetVCPUPCPURatio:      c.TargetVCPUPCPURatio,
		HAPolicy:                 models.HAPolicy(c.HAPolicy),
		GrowthFactorPercent:      c.GrowthFactorPercent,
		CPUReservationPercent:    c.CPUReservationPercent,
		MemoryReservationPercent: c.MemoryReservationPercent,
	}
}

// ForecastParameters builds forecast parameters from the configured defaults
func (c *Config) ForecastParameters() models.ForecastParameters {
	return models.ForecastParameters{
		ForecastHorizonMonths: c.ForecastHorizonMonths,
		AnnualGrowthPercent:   c.AnnualGrowthPercent,
		ConfidenceLevel:       80.0,
	}
}

func Load() (*Config, error) {
	defaults := models.DefaultSizingParameters()
	forecastDefaults := models.DefaultForecastParameters()

	cfg := &Config{
		CacheTTL: getEnvInt("CACHE_TTL", 300),

		TargetVCPUPCPURatio:      getEnvFloat("TARGET_VCPU_PCPU_RATIO", defaults.TargetVCPUPCPURatio),
		HAPolicy:                 getEnv("HA_POLICY", string(defaults.HAPolicy)),
		GrowthFactorPercent:      getEnvFloat("GROWTH_FACTOR_PERCENT", defaults.GrowthFactorPercent),
		CPUReservationPercent:    getEnvFloat("CPU_RESERVATION_PERCENT", defaults.CPUReservationPercent),
		MemoryReservationPercent: getEnvFloat("MEMORY_RESERVATION_PERCENT", defaults.MemoryReservationPercent),

		ForecastHorizonMonths: getEnvInt("FORECAST_HORIZON_MONTHS", forecastDefaults.ForecastHorizonMonths),
		AnnualGrowthPercent:   getEnvFloat("ANNUAL_GROWTH_PERCENT", forecastDefaults.AnnualGrowthPercent),

		VSphereHost:       os.Getenv("VSPHERE_HOST"),
		VSphereUsername:   os.Getenv("VSPHERE_USERNAME"),
		VSpherePassword:   os.Getenv("VSPHERE_PASSWORD"),
		VSphereDatacenter: os.Getenv("VSPHERE_DATACENTER"),
		VSphereInsecure:   getEnvBool("VSPHERE_INSECURE", false),
	}

	switch cfg.HAPolicy {
	case string(models.HANone), string(models.HANPlusOne), string(models.HANPlusTwo):
	default:
		return nil, fmt.Errorf("HA_POLICY must be one of none, n_plus_1, n_plus_2, got %q", cfg.HAPolicy)
	}

	if cfg.TargetVCPUPCPURatio <= 0 || cfg.TargetVCPUPCPURatio > 16 {
		return nil, fmt.Errorf("TARGET_VCPU_PCPU_RATIO must be between 0 and 16, got %g", cfg.TargetVCPUPCPURatio)
	}
	for _, pct := range []struct {
		name  string
		value float64
	}{
		{"GROWTH_FACTOR_PERCENT", cfg.GrowthFactorPercent},
		{"CPU_RESERVATION_PERCENT", cfg.CPUReservationPercent},
		{"MEMORY_RESERVATION_PERCENT", cfg.MemoryReservationPercent},
	} {
		if pct.value < 0 || pct.value > 100 {
			return nil, fmt.Errorf("%s must be between 0 and 100, got %g", pct.name, pct.value)
		}
	}
	if cfg.ForecastHorizonMonths < 1 || cfg.ForecastHorizonMonths > 120 {
		return nil, fmt.Errorf("FORECAST_HORIZON_MONTHS must be between 1 and 120, got %d", cfg.ForecastHorizonMonths)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
