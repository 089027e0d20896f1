package core

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

type LightKind uint32

const (
	LightKindDirectional LightKind = 0
	LightKindPoint       LightKind = 1
	LightKindSpot        LightKind = 2
	// Area lights are baked only; the realtime path drops them.
	LightKindArea LightKind = 3
)

func (k LightKind) String() string {
	switch k {
	case LightKindDirectional:
		return "directional"
	case LightKindPoint:
		return "point"
	case LightKindSpot:
		return "spot"
	case LightKindArea:
		return "area"
	}
	return "unknown"
}

func (k *LightKind) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	for _, kind := range []LightKind{LightKindDirectional, LightKindPoint, LightKindSpot, LightKindArea} {
		if strings.EqualFold(kind.String(), name) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("core: unknown light kind %q", name)
}

type ShadowMode uint8

const (
	ShadowsNone ShadowMode = iota
	ShadowsHard
	ShadowsSoft
)

func (m *ShadowMode) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	switch strings.ToLower(name) {
	case "none", "off":
		*m = ShadowsNone
	case "hard":
		*m = ShadowsHard
	case "soft":
		*m = ShadowsSoft
	default:
		return fmt.Errorf("core: unknown shadow mode %q", name)
	}
	return nil
}

type BakeType uint8

const (
	BakeRealtime BakeType = iota
	BakeMixed
	BakeBaked
)

type MixedLightingMode uint8

const (
	MixedIndirectOnly MixedLightingMode = iota
	MixedShadowmask
	MixedSubtractive
)

// BakingOutput describes what the lightmapper produced for a light.
type BakingOutput struct {
	Type                 BakeType
	MixedMode            MixedLightingMode
	OcclusionMaskChannel int
}

// UsesShadowMask reports whether baked occlusion is stored in a shadow-mask channel.
func (b BakingOutput) UsesShadowMask() bool {
	return b.Type == BakeMixed && b.MixedMode == MixedShadowmask
}

// VisibleLight is a read-only snapshot of a light handed over by the
// visibility pass. It is valid for one render only.
type VisibleLight struct {
	ID   string
	Name string
	Kind LightKind

	Color     mgl32.Vec3 // linear, intensity applied
	Position  mgl32.Vec3 // point/spot
	Direction mgl32.Vec3 // unit forward axis, directional/spot
	Range     float32

	InnerSpotAngle float32 // degrees, full cone
	SpotAngle      float32 // degrees, full cone

	Shadows          ShadowMode
	ShadowStrength   float32
	ShadowBias       float32
	ShadowNormalBias float32
	ShadowNearPlane  float32

	RenderingLayerMask RenderingLayerMask
	Baking             BakingOutput
}

// CastsShadows reports whether the light wants a realtime shadow at all.
func (l *VisibleLight) CastsShadows() bool {
	return l.Shadows != ShadowsNone && l.ShadowStrength > 0
}

// ShadowMaskChannel returns the baked occlusion channel or -1.
func (l *VisibleLight) ShadowMaskChannel() int {
	if l.Baking.UsesShadowMask() {
		return l.Baking.OcclusionMaskChannel
	}
	return -1
}
