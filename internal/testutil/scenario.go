package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Scenario represents a conformance scenario loaded from scenario.json.
type Scenario struct {
	Program string         `json:"program"`
	Replies []string       `json:"replies,omitempty"`
	Expect  ExpectedResult `json:"expect"`
}

// ExpectedResult describes the expected outcome of running a scenario.
// Exactly one of Value or ErrorCode is set.
type ExpectedResult struct {
	Value     json.RawMessage `json:"value,omitempty"`
	ErrorCode string          `json:"errorCode,omitempty"`
	Syscalls  []RecordedCall  `json:"syscalls,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.json.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.json"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Program == "" {
		s.Program = "program.lisp"
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), "scenario.json")
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	return dirs, nil
}

// ReadProgram reads the scenario's program source.
func ReadProgram(dir string, s *Scenario) (string, string, error) {
	source, err := os.ReadFile(filepath.Join(dir, s.Program))
	if err != nil {
		return "", "", err
	}
	return string(source), s.Program, nil
}
