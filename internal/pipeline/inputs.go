// Package pipeline resolves the build inputs once and runs the native build
// and the binding generator against them.
package pipeline

import (
	"runtime"
	"strings"

	"elecbind/internal/config"
	"elecbind/internal/envconfig"
	"elecbind/internal/features"
	"elecbind/internal/platform"
)

// HostTarget asks for the platform of the running binary.
const HostTarget = "host"

// ResolveTarget picks the target signal from the flag, falling back to the
// environment. There is no implicit default: an empty signal is an error
// unless the caller asked for the host explicitly.
func ResolveTarget(flagValue string, env envconfig.Env, hostGOOS string) (platform.Info, error) {
	signal := strings.TrimSpace(flagValue)
	if signal == "" {
		signal = env.TargetOS
	}
	if strings.EqualFold(signal, HostTarget) {
		if hostGOOS == "" {
			hostGOOS = runtime.GOOS
		}
		s, err := platform.SignalForGOOS(hostGOOS)
		if err != nil {
			return platform.Info{}, err
		}
		signal = s
	}
	return platform.Resolve(signal)
}

// MergeFeatures unions the config, environment and command-line selections
// and validates the result.
func MergeFeatures(cfg config.Config, env envconfig.Env, extra []string) (features.Set, error) {
	var names []string
	names = append(names, cfg.Features...)
	names = append(names, env.Features...)
	for _, e := range extra {
		for _, part := range strings.Split(e, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
	}
	return features.Parse(names...)
}
