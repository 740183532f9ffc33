package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up in the project root.
const FileName = "elecbind.yaml"

// Strategy selects how the native archive is obtained.
type Strategy string

const (
	StrategyLink    Strategy = "link"
	StrategyCompile Strategy = "compile"
)

// Config captures the build and binding configuration for a project.
type Config struct {
	Version   int             `yaml:"version" validate:"gte=1"`
	Strategy  Strategy        `yaml:"strategy" validate:"oneof=link compile"`
	Features  []string        `yaml:"features,omitempty"`
	Bindings  BindingsConfig  `yaml:"bindings"`
	Cgo       CgoConfig       `yaml:"cgo"`
	Build     BuildConfig     `yaml:"build"`
	Toolchain ToolchainConfig `yaml:"toolchain,omitempty"`
}

// BindingsConfig controls the binding generator.
type BindingsConfig struct {
	Output         string   `yaml:"output" validate:"required"`
	Package        string   `yaml:"package" validate:"required"`
	BuildTag       string   `yaml:"build_tag,omitempty"`
	StripPrefix    *string  `yaml:"strip_prefix,omitempty"`
	Blocklist      []string `yaml:"blocklist,omitempty"`
	BlocklistFiles []string `yaml:"blocklist_files,omitempty"`
}

// CgoConfig controls emission of the cgo directive file.
type CgoConfig struct {
	Emit         *bool    `yaml:"emit,omitempty"`
	Output       string   `yaml:"output" validate:"required"`
	ExtraLDFlags []string `yaml:"extra_ldflags,omitempty"`
}

// BuildConfig holds native build settings.
type BuildConfig struct {
	Dir  string `yaml:"dir" validate:"required"`
	Jobs int    `yaml:"jobs,omitempty" validate:"gte=0"`
}

// ToolchainConfig pins compiler and archiver executables.
type ToolchainConfig struct {
	CC string `yaml:"cc,omitempty"`
	AR string `yaml:"ar,omitempty"`
}

// DefaultBlocklist names the declarations withheld from the generated
// surface. The tie getter/setter pairs take variadic or va_list arguments;
// callers use the _list variants instead.
var DefaultBlocklist = []string{
	"libelec_tie_set",
	"libelec_tie_get",
	"libelec_tie_set_v",
	"libelec_tie_get_v",
	"va_list",
	"__gnuc_va_list",
	"__builtin_va_list",
}

// DefaultStripPrefix is removed from generated declaration names.
const DefaultStripPrefix = "libelec_"

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version:  1,
		Strategy: StrategyLink,
		Bindings: BindingsConfig{
			Output:      filepath.Join("pkg", "libelec", "bindings_gen.go"),
			Package:     "libelec",
			BuildTag:    "libelec",
			StripPrefix: stringPtr(DefaultStripPrefix),
			Blocklist:   append([]string(nil), DefaultBlocklist...),
		},
		Cgo: CgoConfig{
			Emit:   boolPtr(true),
			Output: filepath.Join("pkg", "libelec", "cgo_flags_gen.go"),
		},
		Build: BuildConfig{
			Dir: "build",
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration. Blocklist files are resolved relative to the
// directory holding path.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.loadBlocklistFiles(filepath.Dir(path)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when the
// YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Strategy == "" {
		c.Strategy = defaults.Strategy
	}
	if c.Bindings.Output == "" {
		c.Bindings.Output = defaults.Bindings.Output
	}
	if c.Bindings.Package == "" {
		c.Bindings.Package = defaults.Bindings.Package
	}
	if c.Bindings.StripPrefix == nil {
		c.Bindings.StripPrefix = defaults.Bindings.StripPrefix
	}
	if c.Bindings.Blocklist == nil {
		c.Bindings.Blocklist = defaults.Bindings.Blocklist
	}
	if c.Cgo.Emit == nil {
		c.Cgo.Emit = boolPtr(true)
	}
	if c.Cgo.Output == "" {
		c.Cgo.Output = defaults.Cgo.Output
	}
	if c.Build.Dir == "" {
		c.Build.Dir = defaults.Build.Dir
	}
}

// StripPrefixValue returns the effective prefix; an explicit empty string
// disables stripping.
func (b BindingsConfig) StripPrefixValue() string {
	if b.StripPrefix == nil {
		return DefaultStripPrefix
	}
	return *b.StripPrefix
}

// EmitCgo reports whether the cgo directive file should be written.
func (c Config) EmitCgo() bool {
	if c.Cgo.Emit == nil {
		return true
	}
	return *c.Cgo.Emit
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

func boolPtr(v bool) *bool {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
