package lighting

import (
	"math"

	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/gekko3d/shadowrp/shadowrt/rt/shadow"
	"github.com/go-gl/mathgl/mgl32"
)

// Buffers are the light uniform arrays the lit shaders read. Only the
// first DirectionalCount / OtherCount entries are meaningful.
type Buffers struct {
	DirectionalCount              int
	DirectionalColors             [MaxDirectionalLights]mgl32.Vec4
	DirectionalDirectionsAndMasks [MaxDirectionalLights]mgl32.Vec4
	DirectionalShadowData         [MaxDirectionalLights]mgl32.Vec4

	OtherCount              int
	OtherColors             [MaxOtherLights]mgl32.Vec4
	OtherPositions          [MaxOtherLights]mgl32.Vec4
	OtherDirectionsAndMasks [MaxOtherLights]mgl32.Vec4
	OtherSpotAngles         [MaxOtherLights]mgl32.Vec4
	OtherShadowData         [MaxOtherLights]mgl32.Vec4
}

// SetDirectional packs a directional light. The direction points towards
// the light; w carries the light's layer mask bits.
func (b *Buffers) SetDirectional(index int, light *core.VisibleLight, data shadow.ShadowData) {
	b.DirectionalColors[index] = light.Color.Vec4(1)
	b.DirectionalDirectionsAndMasks[index] = light.Direction.Mul(-1).Vec4(light.RenderingLayerMask.AsFloat())
	b.DirectionalShadowData[index] = data.Vec4()
}

// SetPoint packs a point light. Spot angles (0, 1) make the spot falloff
// evaluate to 1 in the shared other-light shader path.
func (b *Buffers) SetPoint(index int, light *core.VisibleLight, data shadow.ShadowData) {
	b.OtherColors[index] = light.Color.Vec4(1)
	b.OtherPositions[index] = light.Position.Vec4(InverseRangeSq(light.Range))
	b.OtherSpotAngles[index] = mgl32.Vec4{0, 1, 0, 0}
	b.OtherDirectionsAndMasks[index] = mgl32.Vec4{0, 0, 0, light.RenderingLayerMask.AsFloat()}
	b.OtherShadowData[index] = data.Vec4()
}

func (b *Buffers) SetSpot(index int, light *core.VisibleLight, data shadow.ShadowData) {
	b.OtherColors[index] = light.Color.Vec4(1)
	b.OtherPositions[index] = light.Position.Vec4(InverseRangeSq(light.Range))
	b.OtherDirectionsAndMasks[index] = light.Direction.Mul(-1).Vec4(light.RenderingLayerMask.AsFloat())
	angles := SpotAngles(light.InnerSpotAngle, light.SpotAngle)
	b.OtherSpotAngles[index] = mgl32.Vec4{angles.X(), angles.Y(), 0, 0}
	b.OtherShadowData[index] = data.Vec4()
}

// InverseRangeSq is the range attenuation factor 1/range², guarded against
// zero ranges.
func InverseRangeSq(r float32) float32 {
	return 1 / max(r*r, 0.00001)
}

// SpotAngles returns (a, b) such that saturate(dot(spotDir, lightDir)*a + b)
// is 0 at the outer cone and 1 inside the inner cone. Angles are full cone
// angles in degrees.
func SpotAngles(innerDeg, outerDeg float32) mgl32.Vec2 {
	innerCos := float32(math.Cos(float64(mgl32.DegToRad(0.5 * innerDeg))))
	outerCos := float32(math.Cos(float64(mgl32.DegToRad(0.5 * outerDeg))))
	rangeInv := 1 / max(innerCos-outerCos, 0.001)
	return mgl32.Vec2{rangeInv, -outerCos * rangeInv}
}
