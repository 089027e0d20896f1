package shadowrp

import (
	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type LightType = core.LightKind

const (
	LightTypeDirectional = core.LightKindDirectional
	LightTypePoint       = core.LightKindPoint
	LightTypeSpot        = core.LightKindSpot
	LightTypeArea        = core.LightKindArea
)

// NewLightID returns a fresh identifier for a light.
func NewLightID() string {
	return uuid.NewString()
}

// LightComponent is the authoring side of a light. Snapshot turns it into
// the per-render core.VisibleLight.
type LightComponent struct {
	Type      LightType  `yaml:"type"`
	Color     [3]float32 `yaml:"color"` // linear RGB
	Intensity float32    `yaml:"intensity"`
	Range     float32    `yaml:"range"`
	// Full cone angles in degrees (spot)
	InnerConeAngle float32 `yaml:"inner_cone_angle"`
	ConeAngle      float32 `yaml:"cone_angle"`

	Shadows          core.ShadowMode         `yaml:"shadows"`
	ShadowStrength   float32                 `yaml:"shadow_strength"`
	ShadowBias       float32                 `yaml:"shadow_bias"`
	ShadowNormalBias float32                 `yaml:"shadow_normal_bias"`
	ShadowNearPlane  float32                 `yaml:"shadow_near_plane"`
	LayerMask        core.RenderingLayerMask `yaml:"rendering_layer_mask"`

	// ShadowMaskChannel >= 0 marks a mixed light whose static shadows are
	// baked into that shadow-mask channel.
	ShadowMaskChannel *int `yaml:"shadow_mask_channel"`
}

// DefaultLightComponent mirrors the usual editor defaults for a new light.
func DefaultLightComponent(t LightType) LightComponent {
	return LightComponent{
		Type:             t,
		Color:            [3]float32{1, 1, 1},
		Intensity:        1,
		Range:            10,
		InnerConeAngle:   21.8,
		ConeAngle:        30,
		Shadows:          core.ShadowsSoft,
		ShadowStrength:   1,
		ShadowBias:       0.05,
		ShadowNormalBias: 0.4,
		ShadowNearPlane:  0.2,
		LayerMask:        core.AllRenderingLayers,
	}
}

// Transform places a light in the world. Lights shine down their local -Z.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func (t Transform) Forward() mgl32.Vec3 {
	q := t.Rotation
	if q.W == 0 && q.V == (mgl32.Vec3{}) {
		q = mgl32.QuatIdent()
	}
	return q.Rotate(mgl32.Vec3{0, 0, -1}).Normalize()
}

func (l LightComponent) Snapshot(id, name string, tr Transform) core.VisibleLight {
	v := core.VisibleLight{
		ID:                 id,
		Name:               name,
		Kind:               l.Type,
		Color:              mgl32.Vec3(l.Color).Mul(l.Intensity),
		Position:           tr.Position,
		Direction:          tr.Forward(),
		Range:              l.Range,
		InnerSpotAngle:     l.InnerConeAngle,
		SpotAngle:          l.ConeAngle,
		Shadows:            l.Shadows,
		ShadowStrength:     l.ShadowStrength,
		ShadowBias:         l.ShadowBias,
		ShadowNormalBias:   l.ShadowNormalBias,
		ShadowNearPlane:    l.ShadowNearPlane,
		RenderingLayerMask: l.LayerMask,
	}
	if l.ShadowMaskChannel != nil && *l.ShadowMaskChannel >= 0 {
		v.Baking = core.BakingOutput{
			Type:                 core.BakeMixed,
			MixedMode:            core.MixedShadowmask,
			OcclusionMaskChannel: *l.ShadowMaskChannel,
		}
	}
	return v
}
