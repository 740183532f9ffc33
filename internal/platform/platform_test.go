package platform

import (
	"testing"

	"elecbind/internal/cfgerr"
)

func TestResolveTable(t *testing.T) {
	tests := []struct {
		signal string
		id     Identity
		libDir string
		define string
	}{
		{"windows", Windows, "mingw64", "IBM"},
		{"macos", MacOS, "mac64", "APL"},
		{"linux", Linux, "lin64", "LIN"},
	}

	for _, tt := range tests {
		info, err := Resolve(tt.signal)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.signal, err)
		}
		if info.Identity != tt.id {
			t.Errorf("%s: identity = %v, want %v", tt.signal, info.Identity, tt.id)
		}
		if info.LibDir != tt.libDir {
			t.Errorf("%s: lib dir = %q, want %q", tt.signal, info.LibDir, tt.libDir)
		}
		if info.Define != tt.define {
			t.Errorf("%s: define = %q, want %q", tt.signal, info.Define, tt.define)
		}
	}
}

func TestResolveRejectsUnknown(t *testing.T) {
	for _, signal := range []string{"", "freebsd", "darwin", "Linux", " linux"} {
		_, err := Resolve(signal)
		if err == nil {
			t.Fatalf("Resolve(%q) succeeded, want error", signal)
		}
		if !cfgerr.Is(err) {
			t.Errorf("Resolve(%q) error %v is not a configuration error", signal, err)
		}
	}
}

func TestSignalForGOOS(t *testing.T) {
	got, err := SignalForGOOS("darwin")
	if err != nil {
		t.Fatalf("SignalForGOOS: %v", err)
	}
	if got != "macos" {
		t.Fatalf("got %q, want macos", got)
	}
	if _, err := SignalForGOOS("plan9"); !cfgerr.Is(err) {
		t.Fatalf("expected configuration error for plan9, got %v", err)
	}
}

func TestIsCross(t *testing.T) {
	win, _ := Resolve("windows")
	if !win.IsCross("linux") {
		t.Error("windows from linux should be a cross build")
	}
	if win.IsCross("windows") {
		t.Error("windows from windows should not be a cross build")
	}
	lin, _ := Resolve("linux")
	if lin.IsCross("darwin") {
		t.Error("linux has no cross prefix configured")
	}
}

func TestArchiveName(t *testing.T) {
	info, _ := Resolve("linux")
	if got := info.ArchiveName("elec"); got != "libelec.a" {
		t.Fatalf("ArchiveName = %q", got)
	}
}
