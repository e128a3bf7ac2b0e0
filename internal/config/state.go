package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// RunState records the last run so that retry can find its workbooks.
type RunState struct {
	RunID       string            `json:"run_id"`
	Date        string            `json:"date"`
	Sheet       string            `json:"sheet"`
	Workbooks   map[string]string `json:"workbooks"`
	ProblemFile string            `json:"problem_file"`
	Problems    int               `json:"problems"`
	FinishedAt  time.Time         `json:"finished_at"`
}

// StatePath returns the path to last_run.json.
func StatePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "last_run.json")
}

// ReadState reads the last run state.
// Returns nil if no run has been recorded.
func ReadState(homeDir string) (*RunState, error) {
	data, err := os.ReadFile(StatePath(homeDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var st RunState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// WriteState writes the run state, creating the directory if needed.
func WriteState(homeDir string, st *RunState) error {
	if err := os.MkdirAll(ConfigDir(homeDir), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(StatePath(homeDir), data, 0644)
}
