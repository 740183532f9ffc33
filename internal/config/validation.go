package config

import (
	"errors"
	"fmt"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"elecbind/internal/features"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStrict runs all strict validations against the config and returns
// structured results.
func (c Config) ValidateStrict() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateFields()...)
	results = append(results, c.validateFeatures()...)
	results = append(results, c.validateBindings()...)
	results = append(results, c.validateCgo()...)
	return results
}

// Errors returns only the error-level findings joined into one error, or nil.
func Errors(results []ValidationResult) error {
	var errs []error
	for _, r := range results {
		if r.Level == "error" {
			errs = append(errs, errors.New(r.Message))
		}
	}
	return errors.Join(errs...)
}

func (c Config) validateFields() []ValidationResult {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationResult{{Level: "error", Message: err.Error()}}
	}
	results := make([]ValidationResult, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("%s fails %q check (value %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value()),
		})
	}
	return results
}

// fieldPath turns "Config.Bindings.Output" into "bindings.output".
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	return strings.ToLower(ns)
}

func (c Config) validateFeatures() []ValidationResult {
	if _, err := features.Parse(c.Features...); err != nil {
		return []ValidationResult{{Level: "error", Message: err.Error()}}
	}
	return nil
}

func (c Config) validateBindings() []ValidationResult {
	var results []ValidationResult
	b := c.Bindings
	if b.Output != "" && filepath.Ext(b.Output) != ".go" {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("bindings output %q must be a .go file", b.Output),
		})
	}
	if b.Package != "" && (!token.IsIdentifier(b.Package) || token.IsKeyword(b.Package)) {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("bindings package %q is not a valid Go package name", b.Package),
		})
	}
	if b.BuildTag != "" && !token.IsIdentifier(b.BuildTag) {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("bindings build tag %q is not a valid identifier", b.BuildTag),
		})
	}
	if prefix := b.StripPrefixValue(); prefix != "" && !strings.HasSuffix(prefix, "_") {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("strip prefix %q does not end in '_'; stripped names may run together", prefix),
		})
	}
	if len(b.Blocklist) == 0 {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: "bindings blocklist is empty; variadic declarations will fail generation",
		})
	}
	seen := map[string]bool{}
	for _, name := range b.Blocklist {
		if seen[name] {
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("blocklist entry %q listed more than once", name),
			})
		}
		seen[name] = true
	}
	return results
}

func (c Config) validateCgo() []ValidationResult {
	if !c.EmitCgo() {
		return nil
	}
	var results []ValidationResult
	if filepath.Ext(c.Cgo.Output) != ".go" {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("cgo output %q must be a .go file", c.Cgo.Output),
		})
	}
	if filepath.Clean(filepath.Dir(c.Cgo.Output)) != filepath.Clean(filepath.Dir(c.Bindings.Output)) {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("cgo output %q must live in the bindings package directory %q", c.Cgo.Output, filepath.Dir(c.Bindings.Output)),
		})
	}
	if filepath.Clean(c.Cgo.Output) == filepath.Clean(c.Bindings.Output) {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: "cgo output and bindings output must be different files",
		})
	}
	return results
}
