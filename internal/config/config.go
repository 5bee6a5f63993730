// Package config loads the solver's engine parameters from a YAML file,
// falling back to hard-coded defaults for anything the file omits.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Engine holds the tunables that shape how Input is built and how the
// construction driver runs.
type Engine struct {
	AmountDimension           int    `yaml:"amount_dimension"`
	IncludeActionTimeInBudget bool   `yaml:"include_action_time_in_budget"`
	BudgetDensifyCandidatesK  int    `yaml:"budget_densify_candidates_k"`
	SolveTimeBudgetSeconds    int    `yaml:"solve_time_budget_seconds"`
	MatrixCacheTTLSeconds     int    `yaml:"matrix_cache_ttl_seconds"`
	MatrixProviderURL         string `yaml:"matrix_provider_url"`
	MatrixProviderRPS         int    `yaml:"matrix_provider_rps"`
}

// Default returns the engine configuration used when no file is supplied
// or a field is left unset in the file.
func Default() Engine {
	return Engine{
		AmountDimension:          1,
		BudgetDensifyCandidatesK: 20,
		SolveTimeBudgetSeconds:   30,
		MatrixCacheTTLSeconds:    3600,
		MatrixProviderRPS:        5,
	}
}

// Load reads path and overlays it onto Default(). A missing file is not an
// error: it simply yields the defaults.
func Load(path string) (Engine, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Engine{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}
