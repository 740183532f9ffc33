// Package platform maps the target operating-system signal to the platform
// identity and the path fragments and defines derived from it.
package platform

import (
	"sort"
	"strings"

	"elecbind/internal/cfgerr"
)

// Identity enumerates the supported target operating systems.
type Identity int

const (
	Unknown Identity = iota
	Windows
	MacOS
	Linux
)

func (id Identity) String() string {
	switch id {
	case Windows:
		return "Windows"
	case MacOS:
		return "macOS"
	case Linux:
		return "Linux"
	default:
		return "unknown"
	}
}

// MarshalText encodes the identity by name.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// Info is one row of the platform table.
type Info struct {
	Identity Identity `json:"identity"`
	Signal   string   `json:"signal"`
	GOOS     string   `json:"goos"`
	// LibDir is the per-platform subdirectory holding prebuilt archives in a
	// libelec redistribution tree.
	LibDir string `json:"lib_dir"`
	// Define is the platform macro the native headers switch on.
	Define string `json:"define"`
	// AcfutilsLibDir is the matching subdirectory of libacfutils-redist.
	AcfutilsLibDir string `json:"acfutils_lib_dir"`
	// CrossPrefix names the cross toolchain used when the host differs.
	CrossPrefix string `json:"cross_prefix,omitempty"`
}

var table = map[string]Info{
	"windows": {
		Identity:       Windows,
		Signal:         "windows",
		GOOS:           "windows",
		LibDir:         "mingw64",
		Define:         "IBM",
		AcfutilsLibDir: "win64",
		CrossPrefix:    "x86_64-w64-mingw32-",
	},
	"macos": {
		Identity:       MacOS,
		Signal:         "macos",
		GOOS:           "darwin",
		LibDir:         "mac64",
		Define:         "APL",
		AcfutilsLibDir: "mac64",
	},
	"linux": {
		Identity:       Linux,
		Signal:         "linux",
		GOOS:           "linux",
		LibDir:         "lin64",
		Define:         "LIN",
		AcfutilsLibDir: "lin64",
	},
}

// Resolve returns the platform row for signal. An empty or unrecognised
// signal is a configuration error; there is no fallback platform.
func Resolve(signal string) (Info, error) {
	if signal == "" {
		return Info{}, cfgerr.New("target OS", "no target operating system given (set ELECBIND_TARGET_OS or --target)")
	}
	info, ok := table[signal]
	if !ok {
		return Info{}, cfgerr.New("target OS", "unsupported target %q (supported: %s)", signal, strings.Join(Supported(), ", "))
	}
	return info, nil
}

// Supported lists the recognised signals in sorted order.
func Supported() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SignalForGOOS translates a Go GOOS value into the target signal.
func SignalForGOOS(goos string) (string, error) {
	for signal, info := range table {
		if info.GOOS == goos {
			return signal, nil
		}
	}
	return "", cfgerr.New("target OS", "host GOOS %q has no matching target (supported: %s)", goos, strings.Join(Supported(), ", "))
}

// ArchiveName returns the static archive file name for lib.
func (i Info) ArchiveName(lib string) string {
	return "lib" + lib + ".a"
}

// IsCross reports whether building for i from hostGOOS needs a cross
// toolchain.
func (i Info) IsCross(hostGOOS string) bool {
	return i.GOOS != hostGOOS && i.CrossPrefix != ""
}
