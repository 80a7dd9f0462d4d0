// Package config provides centralized configuration management for the
// panelfit pipeline. It loads run parameters from a YAML file, applies
// environment overrides, validates the result, and exposes the shared
// path and artifact-name constants used across the application.
//
// # Configuration Sources
//
// Configuration is resolved from the following sources in order of
// precedence:
//
//	1. Environment variables (highest priority)
//	2. The YAML parameter file
//	3. Default values (logging block only)
//
// The four run keys (seed, n_rows, model.formula, model.cov_type) must
// be present in the parameter file; a missing key is a fatal error, not
// a silent default.
//
// # Environment Variables
//
// All environment variables follow the pattern PANELFIT_* for
// namespacing:
//
//	PANELFIT_SEED=42
//	PANELFIT_N_ROWS=5000
//	PANELFIT_MODEL_FORMULA="y ~ treat + x"
//	PANELFIT_MODEL_COV_TYPE=cluster
//	PANELFIT_LOGGING_LEVEL=debug
//
// # Parameter File
//
// The default location is config/params.yaml:
//
//	seed: 42
//	n_rows: 5000
//	model:
//	  formula: "y ~ treat + x"
//	  cov_type: "cluster"
//	logging:
//	  level: info
//	  format: json
//
// # Validation
//
// All configuration is validated at load time: n_rows must be at least
// one, the formula must be non-empty, and cov_type must be one of
// nonrobust, ordinary, HC0, HC1, HC2, HC3 or cluster. Violations are
// aggregated into a single error naming every offending key.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load("config/params.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
