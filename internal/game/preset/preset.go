// Package preset provides named dice expressions loaded from YAML.
package preset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is a named expression, e.g. {Name: "fireball", Expression: "8d6"}.
//
// Precondition: Name and Expression must be non-empty after loading.
type Preset struct {
	Name        string `yaml:"name"`
	Expression  string `yaml:"expression"`
	Description string `yaml:"description"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// Defaults returns the single-die presets d4 through d100.
func Defaults() []Preset {
	sides := []int{4, 6, 8, 10, 12, 20, 100}
	out := make([]Preset, 0, len(sides))
	for _, n := range sides {
		out = append(out, Preset{
			Name:       fmt.Sprintf("d%d", n),
			Expression: fmt.Sprintf("1d%d", n),
		})
	}
	return out
}

// Load reads presets from the YAML file at path. A missing file yields Defaults().
//
// Postcondition: Returns presets with unique, non-empty names, or a non-nil error.
func Load(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading presets %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a presets document.
//
// Postcondition: Returns presets with unique, non-empty names, or a non-nil error.
func Parse(data []byte) ([]Preset, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}
	seen := make(map[string]bool, len(f.Presets))
	for i, p := range f.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d: name must not be empty", i)
		}
		if p.Expression == "" {
			return nil, fmt.Errorf("preset %q: expression must not be empty", p.Name)
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate preset name %q", p.Name)
		}
		seen[key] = true
	}
	return f.Presets, nil
}

// Find returns the preset whose name matches name case-insensitively.
func Find(presets []Preset, name string) (Preset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
