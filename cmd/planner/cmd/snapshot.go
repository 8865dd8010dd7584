// ABOUTME: Shared JSON snapshot loading and result output helpers
// ABOUTME: Used by all planner subcommands reading exported inventory files

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/atlasplan/migration-planner/models"
)

// loadEnvironment reads one environment snapshot from a JSON file
func loadEnvironment(path string) (*models.Environment, error) {
	var env models.Environment
	if err := loadJSON(path, &env); err != nil {
		return nil, fmt.Errorf("loading environment snapshot: %w", err)
	}
	return &env, nil
}

// loadEnvironments reads a JSON array of historical snapshots
func loadEnvironments(path string) ([]models.Environment, error) {
	var envs []models.Environment
	if err := loadJSON(path, &envs); err != nil {
		return nil, fmt.Errorf("loading environment history: %w", err)
	}
	return envs, nil
}

func loadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// writeResult emits a result as indented JSON
func writeResult(w io.Writer, result interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
