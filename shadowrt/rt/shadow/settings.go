package shadow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// FilterMode selects the PCF kernel the shaders sample with.
type FilterMode int

const (
	FilterPCF2x2 FilterMode = iota
	FilterPCF3x3
	FilterPCF5x5
	FilterPCF7x7
)

var filterModeNames = map[FilterMode]string{
	FilterPCF2x2: "pcf2x2",
	FilterPCF3x3: "pcf3x3",
	FilterPCF5x5: "pcf5x5",
	FilterPCF7x7: "pcf7x7",
}

func (f FilterMode) String() string {
	if name, ok := filterModeNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FilterMode(%d)", int(f))
}

// KernelFactor is how many texels the kernel reaches past the sample
// point: (taps-1)/2 for a taps x taps kernel. That gives 1, 2 and 3 for
// the 3x3, 5x5 and 7x7 kernels and 0.5 for the 2x2 bilinear footprint.
// Cascade shrinking and the spot and point normal bias both scale by it.
func (f FilterMode) KernelFactor() float32 {
	switch f {
	case FilterPCF3x3:
		return 1
	case FilterPCF5x5:
		return 2
	case FilterPCF7x7:
		return 3
	}
	return 0.5
}

// KeywordIndex is the index into the PCF keyword set, -1 for the 2x2 default.
func (f FilterMode) KeywordIndex() int {
	return int(f) - 1
}

func (f *FilterMode) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	for mode, n := range filterModeNames {
		if strings.EqualFold(n, name) {
			*f = mode
			return nil
		}
	}
	return fmt.Errorf("shadow: unknown filter mode %q", name)
}

func (f FilterMode) MarshalYAML() (any, error) {
	return f.String(), nil
}

// MapSize is a shadow atlas resolution in texels.
type MapSize int

const (
	MapSize256  MapSize = 256
	MapSize512  MapSize = 512
	MapSize1024 MapSize = 1024
	MapSize2048 MapSize = 2048
	MapSize4096 MapSize = 4096
	MapSize8192 MapSize = 8192
)

func (s MapSize) Valid() bool {
	switch s {
	case MapSize256, MapSize512, MapSize1024, MapSize2048, MapSize4096, MapSize8192:
		return true
	}
	return false
}

// ShadowMaskMode picks how baked shadow-mask occlusion mixes with realtime shadows.
type ShadowMaskMode int

const (
	// ShadowMaskDistance uses baked occlusion beyond the realtime shadow distance.
	ShadowMaskDistance ShadowMaskMode = iota
	// ShadowMaskAlways replaces realtime shadows of static casters with baked occlusion.
	ShadowMaskAlways
)

func (m *ShadowMaskMode) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	switch strings.ToLower(name) {
	case "distance":
		*m = ShadowMaskDistance
	case "always":
		*m = ShadowMaskAlways
	default:
		return fmt.Errorf("shadow: unknown shadow mask mode %q", name)
	}
	return nil
}

type DirectionalSettings struct {
	Filter        FilterMode `yaml:"filter"`
	AtlasSize     MapSize    `yaml:"atlas_size"`
	CascadeCount  int        `yaml:"cascade_count"`
	CascadeRatio1 float32    `yaml:"cascade_ratio_1"`
	CascadeRatio2 float32    `yaml:"cascade_ratio_2"`
	CascadeRatio3 float32    `yaml:"cascade_ratio_3"`
	CascadeFade   float32    `yaml:"cascade_fade"`
}

func (d DirectionalSettings) CascadeRatios() mgl32.Vec3 {
	return mgl32.Vec3{d.CascadeRatio1, d.CascadeRatio2, d.CascadeRatio3}
}

type OtherSettings struct {
	Filter    FilterMode `yaml:"filter"`
	AtlasSize MapSize    `yaml:"atlas_size"`
}

type Settings struct {
	MaxDistance           float32             `yaml:"max_distance"`
	DistanceFade          float32             `yaml:"distance_fade"`
	UseShadowMask         bool                `yaml:"use_shadow_mask"`
	ShadowMaskMode        ShadowMaskMode      `yaml:"shadow_mask_mode"`
	UseRenderingLayerMask bool                `yaml:"use_rendering_layer_mask"`
	Directional           DirectionalSettings `yaml:"directional"`
	Other                 OtherSettings       `yaml:"other"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxDistance:   100,
		DistanceFade:  0.1,
		UseShadowMask: true,
		Directional: DirectionalSettings{
			Filter:        FilterPCF2x2,
			AtlasSize:     MapSize1024,
			CascadeCount:  4,
			CascadeRatio1: 0.1,
			CascadeRatio2: 0.25,
			CascadeRatio3: 0.5,
			CascadeFade:   0.1,
		},
		Other: OtherSettings{
			Filter:    FilterPCF2x2,
			AtlasSize: MapSize1024,
		},
	}
}

var ErrInvalidSettings = errors.New("shadow: invalid settings")

func (s Settings) Validate() error {
	var errs []error
	if s.MaxDistance < 0.01 {
		errs = append(errs, fmt.Errorf("max_distance %v below 0.01", s.MaxDistance))
	}
	if s.DistanceFade < 0.001 || s.DistanceFade > 1 {
		errs = append(errs, fmt.Errorf("distance_fade %v outside [0.001, 1]", s.DistanceFade))
	}
	d := s.Directional
	if d.CascadeCount < 1 || d.CascadeCount > MaxCascades {
		errs = append(errs, fmt.Errorf("cascade_count %d outside [1, %d]", d.CascadeCount, MaxCascades))
	}
	for i, r := range []float32{d.CascadeRatio1, d.CascadeRatio2, d.CascadeRatio3} {
		if r < 0 || r > 1 {
			errs = append(errs, fmt.Errorf("cascade_ratio_%d %v outside [0, 1]", i+1, r))
		}
	}
	if d.CascadeFade < 0.001 || d.CascadeFade > 1 {
		errs = append(errs, fmt.Errorf("cascade_fade %v outside [0.001, 1]", d.CascadeFade))
	}
	if !d.AtlasSize.Valid() {
		errs = append(errs, fmt.Errorf("directional atlas_size %d", d.AtlasSize))
	}
	if !s.Other.AtlasSize.Valid() {
		errs = append(errs, fmt.Errorf("other atlas_size %d", s.Other.AtlasSize))
	}
	for _, f := range []FilterMode{d.Filter, s.Other.Filter} {
		if f < FilterPCF2x2 || f > FilterPCF7x7 {
			errs = append(errs, fmt.Errorf("filter %v", f))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// DistanceFadeVector packs the shadow distance and fade ranges for the shaders:
// (1/maxDistance, 1/distanceFade, 1/(1-f²)) with f = 1 - cascadeFade.
func (s Settings) DistanceFadeVector() mgl32.Vec4 {
	f := 1 - s.Directional.CascadeFade
	return mgl32.Vec4{
		1 / s.MaxDistance,
		1 / s.DistanceFade,
		1 / (1 - f*f),
		0,
	}
}
