package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFrustumCulling(t *testing.T) {
	// Camera at origin looking down -Z, 90 deg FOV, Near 1, Far 100
	cam := &CameraState{FovY: 90, Aspect: 1, Near: 1, Far: 100}
	viewProj := cam.GetProjectionMatrix().Mul4(cam.GetViewMatrix())
	planes := cam.ExtractFrustum(viewProj)

	tests := []struct {
		name     string
		bounds   Bounds
		expected bool
	}{
		{"Inside (center)", Bounds{mgl32.Vec3{-1, -1, -10}, mgl32.Vec3{1, 1, -5}}, true},
		{"Outside (Left)", Bounds{mgl32.Vec3{-20, -1, -10}, mgl32.Vec3{-15, 1, -5}}, false},
		{"Outside (Behind)", Bounds{mgl32.Vec3{-1, -1, 2}, mgl32.Vec3{1, 1, 5}}, false},
		{"Outside (Far)", Bounds{mgl32.Vec3{-1, -1, -200}, mgl32.Vec3{1, 1, -150}}, false},
		{"Intersecting (Left Plane)", Bounds{mgl32.Vec3{-15, -1, -10}, mgl32.Vec3{-5, 1, -5}}, true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, AABBInFrustum(tc.bounds, planes), tc.name)
	}

	assert.True(t, SphereInFrustum(Sphere{Center: mgl32.Vec3{0, 0, -50}, Radius: 1}, planes))
	assert.True(t, SphereInFrustum(Sphere{Center: mgl32.Vec3{0, 0, 3}, Radius: 5}, planes), "sphere straddling the near plane")
	assert.False(t, SphereInFrustum(Sphere{Center: mgl32.Vec3{0, 0, 10}, Radius: 2}, planes))
}

func TestFrustumCorners(t *testing.T) {
	cam := &CameraState{FovY: 90, Aspect: 2, Near: 1, Far: 100}
	corners := cam.FrustumCorners(1, 10)

	// near quad at z=-1, half height tan(45)=1, half width 2
	assert.InDelta(t, -2, corners[0].X(), 1e-5)
	assert.InDelta(t, -1, corners[0].Y(), 1e-5)
	assert.InDelta(t, -1, corners[0].Z(), 1e-5)
	// far quad at z=-10
	assert.InDelta(t, 20, corners[6].X(), 1e-4)
	assert.InDelta(t, 10, corners[6].Y(), 1e-4)
	assert.InDelta(t, -10, corners[6].Z(), 1e-4)
}

func TestBoundsAndSphere(t *testing.T) {
	acc := EmptyBounds()
	assert.True(t, acc.IsEmpty())

	acc = acc.Encapsulate(Bounds{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}})
	acc = acc.Encapsulate(Bounds{mgl32.Vec3{-1, 2, 0}, mgl32.Vec3{0, 3, 1}})
	assert.False(t, acc.IsEmpty())
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, acc.Min)
	assert.Equal(t, mgl32.Vec3{1, 3, 1}, acc.Max)

	s := Sphere{Center: mgl32.Vec3{3, 0.5, 0.5}, Radius: 2.1}
	assert.True(t, s.IntersectsBounds(acc))
	s.Radius = 1.9
	assert.False(t, s.IntersectsBounds(acc))
	assert.False(t, s.IntersectsBounds(EmptyBounds()))
}

func TestRenderingLayerMask(t *testing.T) {
	assert.True(t, AllRenderingLayers.Overlaps(RenderingLayerMask(4)))
	assert.False(t, RenderingLayerMask(2).Overlaps(RenderingLayerMask(4)))

	// -1 has all bits set, which is a NaN pattern; compare bits rather than values
	f := AllRenderingLayers.AsFloat()
	assert.Equal(t, uint32(0xFFFFFFFF), math.Float32bits(f))
	assert.Equal(t, uint32(1), math.Float32bits(RenderingLayerMask(1).AsFloat()))
}
