package shadowrp

import (
	"testing"

	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_Forward(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, Transform{}.Forward())

	down := Transform{Rotation: mgl32.QuatRotate(mgl32.DegToRad(-90), mgl32.Vec3{1, 0, 0})}
	f := down.Forward()
	assert.InDelta(t, 0, f.X(), 1e-5)
	assert.InDelta(t, -1, f.Y(), 1e-5)
	assert.InDelta(t, 0, f.Z(), 1e-5)
}

func TestNewLightID(t *testing.T) {
	a, b := NewLightID(), NewLightID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}

func TestLightComponent_Snapshot(t *testing.T) {
	c := DefaultLightComponent(LightTypeSpot)
	c.Color = [3]float32{1, 0.5, 0}
	c.Intensity = 4
	c.LayerMask = 6

	v := c.Snapshot("id-1", "torch", Transform{Position: mgl32.Vec3{1, 2, 3}})
	assert.Equal(t, "id-1", v.ID)
	assert.Equal(t, "torch", v.Name)
	assert.Equal(t, core.LightKindSpot, v.Kind)
	assert.Equal(t, mgl32.Vec3{4, 2, 0}, v.Color)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, v.Position)
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, v.Direction)
	assert.Equal(t, float32(30), v.SpotAngle)
	assert.Equal(t, core.RenderingLayerMask(6), v.RenderingLayerMask)
	assert.True(t, v.CastsShadows())
	assert.False(t, v.Baking.UsesShadowMask())
}

func TestLightComponent_SnapshotShadowMask(t *testing.T) {
	c := DefaultLightComponent(LightTypePoint)
	channel := 2
	c.ShadowMaskChannel = &channel

	v := c.Snapshot("id", "lamp", Transform{})
	assert.True(t, v.Baking.UsesShadowMask())
	assert.Equal(t, 2, v.Baking.OcclusionMaskChannel)

	channel = -1
	v = c.Snapshot("id", "lamp", Transform{})
	assert.False(t, v.Baking.UsesShadowMask())
}
