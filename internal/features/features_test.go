package features

import (
	"reflect"
	"testing"

	"elecbind/internal/cfgerr"
)

func TestParseValid(t *testing.T) {
	s, err := Parse("host-integration", "LIVE-ATTRIBUTES", " regenerate-bindings ", "host-integration")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"host-integration", "live-attributes", "regenerate-bindings"}
	if !reflect.DeepEqual(s.Strings(), want) {
		t.Fatalf("Strings = %v, want %v", s.Strings(), want)
	}
	if !s.LiveAttributesEnabled() {
		t.Error("expected live attributes enabled")
	}
}

func TestParseRejectsLiveWithoutHost(t *testing.T) {
	_, err := Parse("live-attributes")
	if err == nil {
		t.Fatal("expected live-attributes without host-integration to be rejected")
	}
	if !cfgerr.Is(err) {
		t.Fatalf("expected configuration error, got %T", err)
	}
}

func TestParseRejectsVisualizationWithoutDrawing(t *testing.T) {
	if _, err := Parse("visualization", "host-integration"); err == nil {
		t.Fatal("expected visualization without drawing to be rejected")
	}
	if _, err := Parse("visualization", "host-integration", "drawing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	if _, err := Parse("turbo"); err == nil {
		t.Fatal("expected unknown feature to be rejected")
	}
}

func TestEmptySet(t *testing.T) {
	s, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Has(HostIntegration) || s.LiveAttributesEnabled() {
		t.Error("empty set reports features")
	}
	if s.String() != "(none)" {
		t.Errorf("String = %q", s.String())
	}
}
