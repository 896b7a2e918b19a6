// Package capabilities implements driver-side system call policy loading
// and enforcement. The policy is consulted by the runtime before it
// performs a pending call; the core evaluator never sees it.
package capabilities

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Policy defines which system call kinds a program run may perform.
// A nil Allowed map means allow-all.
type Policy struct {
	Allowed map[string]bool
}

// PolicyFile represents the JSON structure of a policy file.
type PolicyFile struct {
	Allow []string `json:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty"`
}

// IsAllowed checks whether a system call kind is permitted by this policy.
func (p *Policy) IsAllowed(kind string) bool {
	if p == nil || p.Allowed == nil {
		return true
	}
	return p.Allowed[kind]
}

// LoadPolicy loads a syscall policy from project and user config files.
// Precedence: project (.alisppolicy.json), then user
// (~/.agentlisp/policy.json), then allow-all. An interpreter with every
// call denied can run nothing useful, so unlike a tool sandbox the default
// here is permissive; restriction is opt-in.
func LoadPolicy(projectDir string) (*Policy, *PolicyFile) {
	projectPath := filepath.Join(projectDir, ".alisppolicy.json")
	if pf, err := loadPolicyFile(projectPath); err == nil {
		return buildPolicy(pf), pf
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(homeDir, ".agentlisp", "policy.json")
		if pf, err := loadPolicyFile(userPath); err == nil {
			return buildPolicy(pf), pf
		}
	}

	return AllowAll(), nil
}

func loadPolicyFile(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf PolicyFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, err
	}
	return &pf, nil
}

func buildPolicy(pf *PolicyFile) *Policy {
	allowed := make(map[string]bool)

	for _, kind := range pf.Allow {
		allowed[kind] = true
	}

	// Deny overrides allow
	for _, kind := range pf.Deny {
		delete(allowed, kind)
	}

	return &Policy{Allowed: allowed}
}

// AllowAll returns a policy that permits every system call kind.
func AllowAll() *Policy {
	return &Policy{Allowed: nil}
}

// DenyAll returns a policy that denies every system call kind.
func DenyAll() *Policy {
	return &Policy{Allowed: make(map[string]bool)}
}

// Allow returns a policy permitting exactly the given kinds.
func Allow(kinds ...string) *Policy {
	allowed := make(map[string]bool, len(kinds))
	for _, kind := range kinds {
		allowed[kind] = true
	}
	return &Policy{Allowed: allowed}
}
