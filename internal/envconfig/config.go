// Package envconfig reads the environment-provided build inputs once and
// returns them as an immutable value.
package envconfig

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

const (
	KeyTargetOS = "ELECBIND_TARGET_OS"
	KeyLibelec  = "LIBELEC"
	KeyAcfutils = "LIBACFUTILS"
	KeySDK      = "XPLANE_SDK"
	KeyFeatures = "ELECBIND_FEATURES"
	KeyCC       = "CC"
	KeyAR       = "AR"
	KeyDebug    = "ELECBIND_DEBUG"
)

// Env holds every environment input the pipeline consumes.
type Env struct {
	TargetOS string
	Libelec  string
	Acfutils string
	SDK      string
	Features []string
	CC       string
	AR       string
	Debug    bool
}

// EnvVar documents a single variable.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(string) (string, bool)

// FromOS loads the process environment.
func FromOS() Env {
	return Load(os.LookupEnv)
}

// Load builds an Env from lookup. Values are trimmed of quotes and spaces.
func Load(lookup LookupFunc) Env {
	get := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			return ""
		}
		return clean(v)
	}

	env := Env{
		TargetOS: get(KeyTargetOS),
		Libelec:  get(KeyLibelec),
		Acfutils: get(KeyAcfutils),
		SDK:      get(KeySDK),
		Features: splitList(get(KeyFeatures)),
		CC:       get(KeyCC),
		AR:       get(KeyAR),
	}

	if debug := get(KeyDebug); debug != "" {
		d, err := strconv.ParseBool(debug)
		if err == nil {
			env.Debug = d
		} else {
			env.Debug = true
		}
	}
	return env
}

// AsMap describes each variable along with its resolved value.
func (e Env) AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		KeyTargetOS: {KeyTargetOS, e.TargetOS, "Target operating system: windows, macos or linux"},
		KeyLibelec:  {KeyLibelec, e.Libelec, "libelec root (source tree or redistribution)"},
		KeyAcfutils: {KeyAcfutils, e.Acfutils, "libacfutils root (source tree or redistribution)"},
		KeySDK:      {KeySDK, e.SDK, "X-Plane SDK root providing CHeaders/XPLM"},
		KeyFeatures: {KeyFeatures, strings.Join(e.Features, ","), "Comma separated features merged with the project config"},
		KeyCC:       {KeyCC, e.CC, "C compiler override"},
		KeyAR:       {KeyAR, e.AR, "Archiver override"},
		KeyDebug:    {KeyDebug, e.Debug, "Mirror build logs to stderr (e.g. ELECBIND_DEBUG=1)"},
	}
}

// Values renders AsMap as strings.
func (e Env) Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range e.AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Keys returns the documented variable names in sorted order.
func Keys() []string {
	keys := []string{KeyTargetOS, KeyLibelec, KeyAcfutils, KeySDK, KeyFeatures, KeyCC, KeyAR, KeyDebug}
	sort.Strings(keys)
	return keys
}

// Clean quotes and spaces from the value
func clean(v string) string {
	return strings.Trim(v, "\"' ")
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
