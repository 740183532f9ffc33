package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// resolveExternalPath returns path as-is if absolute, otherwise joins it with projectRoot.
func resolveExternalPath(projectRoot, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}

// loadBlocklistFiles reads each file in BlocklistFiles, unmarshals it as a
// YAML list of declaration names, and appends them to Bindings.Blocklist.
// A name listed twice is an error so that stale entries surface.
func (c *Config) loadBlocklistFiles(projectRoot string) error {
	if len(c.Bindings.BlocklistFiles) == 0 {
		return nil
	}

	// Track where each name was declared for duplicate detection.
	sources := make(map[string]string, len(c.Bindings.Blocklist))
	for _, name := range c.Bindings.Blocklist {
		sources[name] = "inline config"
	}

	for _, relPath := range c.Bindings.BlocklistFiles {
		absPath := resolveExternalPath(projectRoot, relPath)
		data, err := os.ReadFile(absPath)
		if err != nil {
			return fmt.Errorf("load blocklist file %q: %w", relPath, err)
		}

		var names []string
		if err := yaml.Unmarshal(data, &names); err != nil {
			return fmt.Errorf("parse blocklist file %q: %w", relPath, err)
		}

		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if existing, ok := sources[name]; ok {
				return fmt.Errorf("blocklist entry %q listed in both %s and %q", name, existing, relPath)
			}
			sources[name] = relPath
			c.Bindings.Blocklist = append(c.Bindings.Blocklist, name)
		}
	}

	return nil
}
