package shadowrp

import (
	"cmp"
	"slices"

	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/gekko3d/shadowrp/shadowrt/rt/lighting"
)

type CameraSettings struct {
	RenderShadows bool
	// MaskLights applies RenderingLayerMask to lights as well as objects.
	MaskLights         bool
	RenderingLayerMask core.RenderingLayerMask
}

func DefaultCameraSettings() CameraSettings {
	return CameraSettings{
		RenderShadows:      true,
		RenderingLayerMask: core.AllRenderingLayers,
	}
}

type Camera struct {
	Name     string
	Depth    float32
	State    core.CameraState
	Settings CameraSettings
}

// SortCameras orders cameras by ascending depth. Cameras with equal depth
// keep their relative order.
func SortCameras(cameras []*Camera) {
	slices.SortStableFunc(cameras, func(a, b *Camera) int {
		return cmp.Compare(a.Depth, b.Depth)
	})
}

// ShadowDistance is how far from the camera shadows are rendered: the
// configured maximum clamped to the far plane, or 0 for cameras that skip
// shadows.
func (c *Camera) ShadowDistance(maxDistance float32) float32 {
	if !c.Settings.RenderShadows {
		return 0
	}
	return min(maxDistance, c.State.Far)
}

// LightMask is the rendering layer mask lights are tested against.
func (c *Camera) LightMask() core.RenderingLayerMask {
	return lighting.EffectiveCameraMask(c.Settings.RenderingLayerMask, c.Settings.MaskLights)
}
