// ABOUTME: Tests for input validation functions
// ABOUTME: Verifies identifier validation prevents injection into ids and logs

package services

import (
	"strings"
	"testing"

	"github.com/atlasplan/migration-planner/models"
)

func TestValidateIdentifier_ValidNames(t *testing.T) {
	validNames := []string{
		"prod-cluster-01",
		"my_project",
		"vm.example.com",
		"simple",
		"a",
		"0abc",
	}

	for _, name := range validNames {
		t.Run(name, func(t *testing.T) {
			if err := ValidateIdentifier(name); err != nil {
				t.Errorf("ValidateIdentifier(%q) returned error: %v, expected nil", name, err)
			}
		})
	}
}

func TestValidateIdentifier_InvalidNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"path traversal", "../../../etc/passwd"},
		{"leading dot", ".hidden"},
		{"leading dash", "-flag"},
		{"spaces", "cluster name"},
		{"forward slash", "cluster/name"},
		{"newline injection", "cluster\nmalicious"},
		{"null byte", "cluster\x00"},
		{"colon", "cluster:name"},
		{"semicolon", "cluster;name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateIdentifier(tt.input); err == nil {
				t.Errorf("ValidateIdentifier(%q) returned nil, expected error", tt.input)
			}
		})
	}
}

// containsControlChar checks if a string contains any ASCII control characters
func containsControlChar(s string) bool {
	for _, r := range s {
		if r < 32 || r == 127 {
			return true
		}
	}
	return false
}

func TestValidateIdentifier_ErrorMessageSanitized(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"newline injection", "bad\nFAKE LOG: attack"},
		{"carriage return", "bad\rFAKE LOG: attack"},
		{"null byte", "bad\x00hidden"},
		{"tab character", "bad\tattack"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			errMsg := err.Error()
			if containsControlChar(errMsg) {
				t.Errorf("Error message contains control characters: %q", errMsg)
			}
			if !strings.Contains(errMsg, "bad") {
				t.Errorf("Error message should contain sanitized input, got: %q", errMsg)
			}
		})
	}
}

func TestValidateSizingParameters(t *testing.T) {
	if err := ValidateSizingParameters(models.DefaultSizingParameters()); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*models.SizingParameters)
	}{
		{"zero ratio", func(p *models.SizingParameters) { p.TargetVCPUPCPURatio = 0 }},
		{"negative ratio", func(p *models.SizingParameters) { p.TargetVCPUPCPURatio = -1 }},
		{"negative growth", func(p *models.SizingParameters) { p.GrowthFactorPercent = -5 }},
		{"cpu reservation 100", func(p *models.SizingParameters) { p.CPUReservationPercent = 100 }},
		{"negative memory reservation", func(p *models.SizingParameters) { p.MemoryReservationPercent = -1 }},
		{"unknown ha policy", func(p *models.SizingParameters) { p.HAPolicy = "n_plus_9" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := models.DefaultSizingParameters()
			tt.mutate(&params)
			if err := ValidateSizingParameters(params); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestValidateSizingParameters_UnknownPolicySanitized(t *testing.T) {
	params := models.DefaultSizingParameters()
	params.HAPolicy = models.HAPolicy("bad\npolicy")

	err := ValidateSizingParameters(params)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if containsControlChar(err.Error()) {
		t.Errorf("Error message contains control characters: %q", err.Error())
	}
}

func TestValidateForecastParameters(t *testing.T) {
	if err := ValidateForecastParameters(models.DefaultForecastParameters()); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}

	if err := ValidateForecastParameters(models.ForecastParameters{ForecastHorizonMonths: 0}); err == nil {
		t.Error("Expected error for zero horizon, got nil")
	}
	if err := ValidateForecastParameters(models.ForecastParameters{ForecastHorizonMonths: 12, AnnualGrowthPercent: -150}); err == nil {
		t.Error("Expected error for growth below -100%, got nil")
	}
	if err := ValidateForecastParameters(models.ForecastParameters{ForecastHorizonMonths: 12, AnnualGrowthPercent: -20}); err != nil {
		t.Errorf("Expected negative growth above -100%% to validate, got %v", err)
	}
}
