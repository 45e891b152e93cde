package protocol

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML or JSON overrides file and applies it on top of Default.
// Keys absent from the file keep their default values; unknown keys are an error.
// The result is validated.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	var raw map[string]any
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return Settings{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Settings{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	s, err := Apply(Default(), raw)
	if err != nil {
		return Settings{}, err
	}
	if err := Validate(s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Apply decodes overrides onto a copy of base. Lists replace, they do not merge.
func Apply(base Settings, overrides map[string]any) (Settings, error) {
	out := base.Clone()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &out,
		TagName:     "mapstructure",
		ZeroFields:  true,
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return Settings{}, err
	}
	if err := dec.Decode(overrides); err != nil {
		return Settings{}, fmt.Errorf("invalid settings overrides: %w", err)
	}
	return out, nil
}
