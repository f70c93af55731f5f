// Package settings persists user preferences between runs.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings are the knobs worth remembering across sessions. Zero
// values are never written back as-is; Load normalizes them.
type Settings struct {
	Gain     float32 `yaml:"gain"`
	Volume   float32 `yaml:"volume"`
	Loop     bool    `yaml:"loop"`
	LastFile string  `yaml:"last_file"`
}

// Defaults returns the settings used when no file exists yet.
func Defaults() Settings {
	return Settings{
		Gain:   1.0,
		Volume: 1.0,
	}
}

// Load reads settings from path. A missing file yields Defaults with
// no error; a malformed one is an error so a typo does not silently
// wipe the user's preferences on the next save.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}

		return Defaults(), fmt.Errorf("failed to read settings: %w", err)
	}

	s := Defaults()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("failed to parse settings: %w", err)
	}

	s.normalize()

	return s, nil
}

// Save writes settings to path, creating parent directories as needed.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// normalize clamps values a hand-edited file may have pushed out of
// range.
func (s *Settings) normalize() {
	if s.Gain <= 0 || s.Gain > 10 {
		s.Gain = 1.0
	}
	if s.Volume < 0 || s.Volume > 2 {
		s.Volume = 1.0
	}
}
