package pipeline

import (
	"time"

	"panelfit/internal/config"
	"panelfit/internal/dataset"
	"panelfit/internal/estimate"
)

// State carries the run's data between stages. Each stage reads the
// fields of the stages before it and fills in its own.
type State struct {
	// Inputs, set before the run starts.
	ConfigPath string
	DataPath   string // optional external dataset CSV
	Outdir     string
	RunID      string
	StartedAt  time.Time

	// Filled by load_config.
	Config *config.Config

	// Filled by acquire_data.
	Table *dataset.Table

	// Filled by validate_data.
	Panel *dataset.Panel

	// Filled by estimate_write.
	Result *estimate.Result
}
