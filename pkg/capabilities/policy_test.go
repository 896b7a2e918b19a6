package capabilities_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/t0yv0/agentlisp/pkg/capabilities"
)

func TestAllowAll(t *testing.T) {
	p := capabilities.AllowAll()
	for _, kind := range []string{"read", "write", "tell", "ask"} {
		if !p.IsAllowed(kind) {
			t.Errorf("%s should be allowed", kind)
		}
	}
}

func TestDenyAll(t *testing.T) {
	p := capabilities.DenyAll()
	for _, kind := range []string{"read", "write", "tell", "ask"} {
		if p.IsAllowed(kind) {
			t.Errorf("%s should be denied", kind)
		}
	}
}

func TestAllowSpecific(t *testing.T) {
	p := capabilities.Allow("write", "tell")
	if !p.IsAllowed("write") || !p.IsAllowed("tell") {
		t.Error("listed kinds should be allowed")
	}
	if p.IsAllowed("read") || p.IsAllowed("ask") {
		t.Error("unlisted kinds should be denied")
	}
}

func TestNilPolicyAllowsEverything(t *testing.T) {
	var p *capabilities.Policy
	if !p.IsAllowed("ask") {
		t.Error("nil policy should allow everything")
	}
}

func TestLoadPolicyProjectFile(t *testing.T) {
	dir := t.TempDir()
	content := `{"allow": ["write", "read"], "deny": ["read"]}`
	if err := os.WriteFile(filepath.Join(dir, ".alisppolicy.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, pf := capabilities.LoadPolicy(dir)
	if pf == nil {
		t.Fatal("expected a policy file to be loaded")
	}
	if !p.IsAllowed("write") {
		t.Error("write should be allowed")
	}
	// Deny overrides allow.
	if p.IsAllowed("read") {
		t.Error("read should be denied")
	}
	if p.IsAllowed("ask") {
		t.Error("ask is unlisted and should be denied")
	}
}

func TestLoadPolicyDefaultsToAllowAll(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "no-such-home"))

	p, pf := capabilities.LoadPolicy(dir)
	if pf != nil {
		t.Error("no policy file should have been found")
	}
	if !p.IsAllowed("ask") {
		t.Error("default policy should allow everything")
	}
}

func TestLoadPolicyMalformedFileIgnored(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "no-such-home"))
	if err := os.WriteFile(filepath.Join(dir, ".alisppolicy.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, pf := capabilities.LoadPolicy(dir)
	if pf != nil {
		t.Error("malformed file should not load")
	}
	if !p.IsAllowed("write") {
		t.Error("fallback policy should allow everything")
	}
}
