package report

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	git "github.com/go-git/go-git/v5"
)

// RunMetadata is the provenance record written at the end of a run.
type RunMetadata struct {
	TimestampUTC string `json:"timestamp_utc"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
	GitCommit    string `json:"git_commit"`
	NObs         int    `json:"n_obs"`
	RunID        string `json:"run_id"`
	Formula      string `json:"formula"`
	CovType      string `json:"cov_type"`
	DurationMS   int64  `json:"duration_ms"`
}

// NewRunMetadata assembles the provenance record for a finished run.
func NewRunMetadata(runID, formula, covType string, nObs int, startedAt time.Time) RunMetadata {
	return RunMetadata{
		TimestampUTC: time.Now().UTC().Format(time.RFC3339),
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		GitCommit:    gitCommit(),
		NObs:         nObs,
		RunID:        runID,
		Formula:      formula,
		CovType:      covType,
		DurationMS:   time.Since(startedAt).Milliseconds(),
	}
}

// Write writes the record to path as indented JSON.
func (m RunMetadata) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run metadata: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write run metadata: %w", err)
	}
	return nil
}

// gitCommit returns the HEAD commit hash of the repository enclosing
// the working directory, or "unknown" when there is none. Provenance is
// best effort; a missing repository never fails the run.
func gitCommit() string {
	repo, err := git.PlainOpenWithOptions(".", &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "unknown"
	}
	head, err := repo.Head()
	if err != nil {
		return "unknown"
	}
	return head.Hash().String()
}
