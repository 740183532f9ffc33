package toolchain

import (
	"runtime"

	"elecbind/internal/platform"
)

func installHints(role Role, target platform.Info) []string {
	if target.IsCross(runtime.GOOS) {
		return []string{
			"Install the MinGW-w64 cross toolchain, e.g. sudo apt install gcc-mingw-w64-x86-64",
			"or point CC and AR at an existing " + target.CrossPrefix + "* toolchain",
		}
	}

	switch runtime.GOOS {
	case "darwin":
		return []string{"Install the Xcode command line tools: xcode-select --install"}
	case "linux":
		if role == RoleArchiver {
			return []string{"Install binutils with your distro package manager, e.g. sudo apt install binutils"}
		}
		return []string{"Install a C compiler with your distro package manager, e.g. sudo apt install build-essential"}
	case "windows":
		return []string{"Install MSYS2 and its mingw-w64-x86_64-toolchain package"}
	default:
		return []string{"Install a C99 compiler and archiver using your platform's package manager"}
	}
}
