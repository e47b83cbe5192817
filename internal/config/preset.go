package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a named analysis profile from presets.yaml.
type Preset struct {
	Commits int      `yaml:"commits"`
	Formats []string `yaml:"formats"`
	GapHrs  int      `yaml:"session_gap_hours"`
}

// presetFile mirrors the presets.yaml layout:
//
//	profiles:
//	  quick:
//	    commits: 10
//	    formats: [standup]
type presetFile struct {
	Profiles map[string]Preset `yaml:"profiles"`
}

// LoadPreset reads a named preset from the given YAML file.
func LoadPreset(path, name string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}

	preset, ok := file.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("preset %q not found", name)
	}
	return &preset, nil
}

// ApplyPreset overlays a preset onto the configuration. Zero values in the
// preset leave the existing setting untouched.
func (c *Config) ApplyPreset(preset *Preset) {
	if preset.Commits > 0 {
		c.Analysis.CommitLimit = preset.Commits
	}
	if len(preset.Formats) > 0 {
		c.Analysis.Formats = preset.Formats
	}
	if preset.GapHrs > 0 {
		c.Analysis.SessionGapHours = preset.GapHrs
	}
}
