package shadowrp

import (
	"errors"
	"fmt"
	"os"

	"github.com/gekko3d/shadowrp/shadowrt/rt/shadow"

	"gopkg.in/yaml.v3"
)

var ErrInvalidSettings = errors.New("shadowrp: invalid settings")

// Settings configures a Pipeline. The zero value is not usable; start from
// DefaultSettings.
type Settings struct {
	Shadows shadow.Settings `yaml:"shadows"`
	// PerObjectLights builds the visible-to-other light index map so the
	// host can restrict lights per object.
	PerObjectLights bool `yaml:"per_object_lights"`
	// ReversedZ selects a near=1, far=0 depth convention for shadow maps.
	ReversedZ bool `yaml:"reversed_z"`
	Debug     bool `yaml:"debug"`
}

func DefaultSettings() Settings {
	return Settings{
		Shadows: shadow.DefaultSettings(),
	}
}

func (s Settings) Validate() error {
	if err := s.Shadows.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}

func (s Settings) ClipConvention() shadow.ClipConvention {
	return shadow.ClipConvention{ReversedZ: s.ReversedZ}
}

// ParseSettings decodes YAML over DefaultSettings, so omitted keys keep
// their defaults.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("shadowrp: parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("shadowrp: read %s: %w", path, err)
	}
	return ParseSettings(data)
}
