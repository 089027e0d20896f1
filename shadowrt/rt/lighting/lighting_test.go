package lighting

import (
	"math"
	"testing"

	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/gekko3d/shadowrp/shadowrt/rt/shadow"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct{}

func (stubSource) ShadowCasterBounds(int) (core.Bounds, bool) {
	return core.Bounds{Max: mgl32.Vec3{1, 1, 1}}, true
}

func (stubSource) DirectionalShadowMatrices(i, cascade, count int, ratios mgl32.Vec3, tileSize int, near float32) shadow.ShadowSplit {
	return shadow.ShadowSplit{
		View:          mgl32.Ident4(),
		Proj:          mgl32.Ortho(-1, 1, -1, 1, 0, 10),
		CullingSphere: core.Sphere{Radius: float32(cascade + 1)},
	}
}

func (stubSource) SpotShadowMatrices(int) shadow.ShadowSplit {
	return shadow.ShadowSplit{View: mgl32.Ident4(), Proj: mgl32.Perspective(1, 1, 0.1, 10)}
}

func (stubSource) PointShadowMatrices(int, shadow.CubeFace, float32) shadow.ShadowSplit {
	return shadow.ShadowSplit{View: mgl32.Ident4(), Proj: mgl32.Perspective(math.Pi/2, 1, 0.1, 10)}
}

func TestSpotAngles(t *testing.T) {
	a := SpotAngles(30, 60)
	inner := math.Cos(15 * math.Pi / 180)
	outer := math.Cos(30 * math.Pi / 180)
	inv := 1 / (inner - outer)
	assert.InDelta(t, inv, a.X(), 1e-3)
	assert.InDelta(t, -outer*inv, a.Y(), 1e-3)

	// spot falloff reaches 0 at the outer cone and 1 at the inner cone
	assert.InDelta(t, 0, float32(outer)*a.X()+a.Y(), 1e-4)
	assert.InDelta(t, 1, float32(inner)*a.X()+a.Y(), 1e-4)

	// equal cones are clamped instead of dividing by zero
	a = SpotAngles(45, 45)
	assert.InDelta(t, 1000, a.X(), 1e-2)
}

func TestInverseRangeSq(t *testing.T) {
	assert.InDelta(t, 0.01, InverseRangeSq(10), 1e-7)
	assert.InDelta(t, 100000, InverseRangeSq(0), 1)
}

func TestSetup_PacksLights(t *testing.T) {
	sun := core.VisibleLight{
		Name:               "sun",
		Kind:               core.LightKindDirectional,
		Color:              mgl32.Vec3{1, 0.9, 0.8},
		Direction:          mgl32.Vec3{0, -1, 0},
		Shadows:            core.ShadowsSoft,
		ShadowStrength:     1,
		ShadowNormalBias:   0.5,
		RenderingLayerMask: 0b11,
	}
	lamp := core.VisibleLight{
		Name:               "lamp",
		Kind:               core.LightKindPoint,
		Color:              mgl32.Vec3{2, 2, 2},
		Position:           mgl32.Vec3{1, 2, 3},
		Range:              4,
		Shadows:            core.ShadowsHard,
		ShadowStrength:     0.5,
		RenderingLayerMask: 1,
	}
	torch := core.VisibleLight{
		Name:               "torch",
		Kind:               core.LightKindSpot,
		Position:           mgl32.Vec3{0, 5, 0},
		Direction:          mgl32.Vec3{0, 0, 1},
		Range:              10,
		InnerSpotAngle:     20,
		SpotAngle:          40,
		RenderingLayerMask: core.AllRenderingLayers,
	}
	lights := []core.VisibleLight{sun, lamp, torch}

	l := New(shadow.DefaultSettings(), shadow.ClipConvention{})
	frame, err := l.Setup(lights, stubSource{}, ClassifyOptions{CameraMask: core.AllRenderingLayers, PerObjectLights: true})
	require.NoError(t, err)

	b := frame.Lights
	assert.Equal(t, 1, b.DirectionalCount)
	assert.Equal(t, 2, b.OtherCount)
	assert.True(t, frame.PerObjectLights)
	assert.Equal(t, []int{-1, 0, 1}, frame.Classification.IndexMap)

	assert.Equal(t, mgl32.Vec4{1, 0.9, 0.8, 1}, b.DirectionalColors[0])
	dir := b.DirectionalDirectionsAndMasks[0]
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, dir.Vec3())
	assert.Equal(t, uint32(3), math.Float32bits(dir.W()))
	assert.Equal(t, mgl32.Vec4{1, 0, 0.5, -1}, b.DirectionalShadowData[0])

	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1.0 / 16}, b.OtherPositions[0])
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 0}, b.OtherSpotAngles[0])
	assert.Equal(t, uint32(1), math.Float32bits(b.OtherDirectionsAndMasks[0].W()))
	assert.Equal(t, mgl32.Vec4{0.5, 0, 1, -1}, b.OtherShadowData[0])

	assert.Equal(t, mgl32.Vec3{0, 0, -1}, b.OtherDirectionsAndMasks[1].Vec3())
	assert.Equal(t, uint32(0xffffffff), math.Float32bits(b.OtherDirectionsAndMasks[1].W()))
	angles := SpotAngles(20, 40)
	assert.Equal(t, mgl32.Vec4{angles.X(), angles.Y(), 0, 0}, b.OtherSpotAngles[1])
	assert.Equal(t, mgl32.Vec4{0, 0, 0, -1}, b.OtherShadowData[1], "torch casts no shadow")

	require.Len(t, frame.Reservations, 3)
	assert.IsType(t, shadow.DirectionalShadow{}, frame.Reservations[0])
	assert.IsType(t, shadow.OtherShadow{}, frame.Reservations[1])
	assert.Equal(t, shadow.NoShadow{}, frame.Reservations[2])

	assert.True(t, frame.Shadows.DirectionalAtlas.Active)
	assert.True(t, frame.Shadows.OtherAtlas.Active)
	assert.Len(t, frame.Shadows.Draws, 4+6)
}

func TestSetup_OverwritesPreviousFrame(t *testing.T) {
	l := New(shadow.DefaultSettings(), shadow.ClipConvention{})
	lights := []core.VisibleLight{
		{Kind: core.LightKindPoint, Range: 1, RenderingLayerMask: core.AllRenderingLayers},
		{Kind: core.LightKindPoint, Range: 2, RenderingLayerMask: core.AllRenderingLayers},
	}
	_, err := l.Setup(lights, stubSource{}, ClassifyOptions{CameraMask: core.AllRenderingLayers})
	require.NoError(t, err)

	frame, err := l.Setup(lights[:1], nil, ClassifyOptions{CameraMask: core.AllRenderingLayers})
	require.NoError(t, err)
	assert.Equal(t, 1, frame.Lights.OtherCount)
	assert.Equal(t, mgl32.Vec4{}, frame.Lights.OtherPositions[1])
	assert.Nil(t, frame.Classification.IndexMap)
	assert.Len(t, frame.Reservations, 1)
}
