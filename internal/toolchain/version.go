package toolchain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

func readVersion(ctx context.Context, runner Runner, tool Tool) (string, error) {
	def, ok := DefinitionFor(tool.Role)
	if !ok {
		return "", fmt.Errorf("unsupported tool role: %s", tool.Role)
	}

	res, err := runner.Run(ctx, tool.Path, []string{def.VersionSwitch}, RunOptions{})
	if err != nil {
		return "", fmt.Errorf("%s version: %w", tool.Role, err)
	}

	out := strings.TrimSpace(string(res.Stdout))
	if out == "" {
		out = strings.TrimSpace(string(res.Stderr))
	}
	return normalizeVersionLine(firstLine(out)), nil
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

var versionRegex = regexp.MustCompile(`([0-9]+)\.([0-9]+)(?:\.([0-9]+))?`)

// normalizeVersionLine keeps the first dotted version number of a banner
// like "gcc (Ubuntu 13.2.0-23ubuntu4) 13.2.0", falling back to the line.
func normalizeVersionLine(line string) string {
	if idx := strings.LastIndexByte(line, ')'); idx >= 0 {
		if match := versionRegex.FindString(line[idx:]); match != "" {
			return match
		}
	}
	if match := versionRegex.FindString(line); match != "" {
		return match
	}
	return line
}
