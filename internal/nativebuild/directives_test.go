package nativebuild

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"elecbind/internal/flags"
)

func TestCgoFileRender(t *testing.T) {
	f := CgoFile{
		Package:     "libelec",
		BuildTag:    "libelec",
		Fingerprint: "sha256:abc",
		Flags:       flags.New("-std=c99", "-I/opt/my sdk/CHeaders/XPLM", "-DLIN"),
		Link:        LinkDirectives{SearchDirs: []string{"/build/lin64/lib"}, StaticLibs: []string{"elec"}},
	}
	out := string(f.Render())

	for _, want := range []string{
		"// Code generated by elecbind. DO NOT EDIT.\n",
		"// Manifest: sha256:abc\n",
		"//go:build libelec\n\npackage libelec\n",
		"#cgo CFLAGS: -std=c99 '-I/opt/my sdk/CHeaders/XPLM' -DLIN\n",
		"#cgo LDFLAGS: -L/build/lin64/lib -lelec\n",
		"import \"C\"\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered file missing %q:\n%s", want, out)
		}
	}
}

func TestCgoFileWriteIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg", "libelec", "cgo_flags_gen.go")
	f := CgoFile{Path: path, Package: "libelec", Flags: flags.New("-DLIN"), Link: LinkDirectives{StaticLibs: []string{"elec"}}}
	if err := f.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(f.Render()) {
		t.Fatal("written file differs from Render")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temporary file left behind")
	}
}

func TestLinkDirectivesExtra(t *testing.T) {
	base := LinkDirectives{SearchDirs: []string{"/a"}, StaticLibs: []string{"elec"}}
	ext := base.WithExtra("-lm")
	if len(base.Extra) != 0 {
		t.Fatal("WithExtra mutated the receiver")
	}
	if got := strings.Join(ext.LDFlags(), " "); got != "-L/a -lelec -lm" {
		t.Fatalf("LDFlags = %s", got)
	}
}
