// Package nativebuild prepares the native libelec archive and the link
// directives that point cgo at it.
package nativebuild

import (
	"runtime"

	"elecbind/internal/config"
)

// Strategy is either LinkOnly or Compile.
type Strategy interface {
	Name() config.Strategy
	strategy()
}

// LinkOnly links against a prebuilt libelec redistribution.
type LinkOnly struct{}

func (LinkOnly) Name() config.Strategy { return config.StrategyLink }
func (LinkOnly) strategy() {}

// Compile builds libelec from source into a static archive.
type Compile struct {
	// Jobs bounds concurrent compiler processes. Zero means runtime.NumCPU.
	Jobs int
	// Force recompiles every unit regardless of recorded state.
	Force bool
}

func (Compile) Name() config.Strategy { return config.StrategyCompile }
func (Compile) strategy() {}

func (c Compile) jobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.NumCPU()
}

// StrategyFor selects the strategy named by cfg.
func StrategyFor(cfg config.Config, force bool) Strategy {
	if cfg.Strategy == config.StrategyCompile {
		return Compile{Jobs: cfg.Build.Jobs, Force: force}
	}
	return LinkOnly{}
}
