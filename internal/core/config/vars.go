package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// resolveVars layers the vars files in order and the inline vars last.
// Relative paths are taken from configDir; environment variables in paths
// are expanded.
func resolveVars(configDir string, files []string, inline map[string]any) (map[string]any, error) {
	out := map[string]any{}
	for _, file := range files {
		layer, err := readVarsFile(varsPath(configDir, file))
		if err != nil {
			return nil, fmt.Errorf("vars file %q: %w", file, err)
		}
		out = overlay(out, layer)
	}
	return overlay(out, inline), nil
}

func varsPath(configDir, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(configDir, file)
}

func readVarsFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var vars map[string]any
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return vars, nil
}

// overlay returns base with top laid over it. Maps present on both sides
// merge key by key; any other value in top replaces the one in base.
// Neither argument is modified.
func overlay(base, top map[string]any) map[string]any {
	out := maps.Clone(base)
	if out == nil {
		out = map[string]any{}
	}
	for k, v := range top {
		sub, ok := v.(map[string]any)
		if prev, prevOK := out[k].(map[string]any); ok && prevOK {
			out[k] = overlay(prev, sub)
			continue
		}
		out[k] = v
	}
	return out
}
