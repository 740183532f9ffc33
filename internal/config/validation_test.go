package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func levels(results []ValidationResult, level string) []ValidationResult {
	var out []ValidationResult
	for _, r := range results {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

func TestValidateStrict_DefaultIsClean(t *testing.T) {
	results := Default().ValidateStrict()
	if len(results) != 0 {
		t.Fatalf("expected no findings, got %v", results)
	}
}

func TestValidateStrict_UnknownStrategy(t *testing.T) {
	cfg := Default()
	cfg.Strategy = "download"
	errs := levels(cfg.ValidateStrict(), "error")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if !strings.Contains(errs[0].Message, "strategy") {
		t.Errorf("message %q does not name the field", errs[0].Message)
	}
}

func TestValidateStrict_FeatureDependency(t *testing.T) {
	cfg := Default()
	cfg.Features = []string{"live-attributes"}
	errs := levels(cfg.ValidateStrict(), "error")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if Errors(cfg.ValidateStrict()) == nil {
		t.Fatal("Errors returned nil for a failing config")
	}
}

func TestValidateStrict_BadPackageName(t *testing.T) {
	cfg := Default()
	cfg.Bindings.Package = "func"
	if len(levels(cfg.ValidateStrict(), "error")) != 1 {
		t.Fatalf("expected keyword package name to be rejected")
	}
}

func TestValidateStrict_CgoOutsideBindingsPackage(t *testing.T) {
	cfg := Default()
	cfg.Cgo.Output = filepath.Join("internal", "cgo_flags_gen.go")
	if len(levels(cfg.ValidateStrict(), "error")) != 1 {
		t.Fatal("expected cgo output in another directory to be rejected")
	}

	off := false
	cfg.Cgo.Emit = &off
	if len(levels(cfg.ValidateStrict(), "error")) != 0 {
		t.Fatal("cgo output should not be checked when emission is off")
	}
}

func TestValidateStrict_Warnings(t *testing.T) {
	cfg := Default()
	prefix := "libelec"
	cfg.Bindings.StripPrefix = &prefix
	cfg.Bindings.Blocklist = nil
	warnings := levels(cfg.ValidateStrict(), "warning")
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
	if Errors(cfg.ValidateStrict()) != nil {
		t.Fatal("warnings must not produce an error")
	}
}

func TestValidateStrict_NegativeJobs(t *testing.T) {
	cfg := Default()
	cfg.Build.Jobs = -1
	if len(levels(cfg.ValidateStrict(), "error")) != 1 {
		t.Fatal("expected negative jobs to be rejected")
	}
}
