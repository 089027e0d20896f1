package culling

import (
	"math"

	"github.com/gekko3d/shadowrp/shadowrt/rt/shadow"
	"github.com/go-gl/mathgl/mgl32"
)

// minShadowNearPlane keeps perspective shadow cameras from degenerating.
const minShadowNearPlane = 0.05

// CascadeRange returns the camera-space depth interval of one cascade.
// Cascade i ends at ratios[i] of the shadow distance; the last cascade
// always ends at the shadow distance.
func (r *Results) CascadeRange(cascade, cascadeCount int, ratios mgl32.Vec3) (near, far float32) {
	end := func(i int) float32 {
		if i >= cascadeCount-1 || i >= 3 {
			return r.ShadowDistance
		}
		return ratios[i] * r.ShadowDistance
	}
	near = r.Camera.Near
	if cascade > 0 {
		near = max(end(cascade-1), r.Camera.Near)
	}
	return near, max(end(cascade), near)
}

func (r *Results) DirectionalShadowMatrices(visibleIndex, cascade, cascadeCount int, ratios mgl32.Vec3, tileSize int, nearPlaneOffset float32) shadow.ShadowSplit {
	light := &r.VisibleLights[visibleIndex]
	near, far := r.CascadeRange(cascade, cascadeCount, ratios)
	corners := r.Camera.FrustumCorners(near, far)
	sphere := BoundingSphere(corners[:])

	dir := light.Direction.Normalize()
	up := stableUp(dir)

	// Snap the centre to whole texels in light space so a moving camera
	// does not make shadow edges crawl. The radius grows by the largest
	// snap offset so the sphere still holds the whole slice.
	sphere.Radius /= 1 - 2*math.Sqrt2/float32(max(tileSize, 4))
	rotation := mgl32.LookAtV(mgl32.Vec3{}, dir, up)
	texel := 2 * sphere.Radius / float32(tileSize)
	ls := rotation.Mul4x1(sphere.Center.Vec4(1))
	ls[0] = float32(math.Floor(float64(ls[0]/texel))) * texel
	ls[1] = float32(math.Floor(float64(ls[1]/texel))) * texel
	sphere.Center = rotation.Inv().Mul4x1(ls).Vec3()

	backoff := sphere.Radius + max(nearPlaneOffset, 0)
	eye := sphere.Center.Sub(dir.Mul(backoff))
	return shadow.ShadowSplit{
		View:          mgl32.LookAtV(eye, sphere.Center, up),
		Proj:          mgl32.Ortho(-sphere.Radius, sphere.Radius, -sphere.Radius, sphere.Radius, 0, backoff+sphere.Radius),
		CullingSphere: sphere,
	}
}

func (r *Results) SpotShadowMatrices(visibleIndex int) shadow.ShadowSplit {
	light := &r.VisibleLights[visibleIndex]
	dir := light.Direction.Normalize()
	near := max(light.ShadowNearPlane, minShadowNearPlane)
	return shadow.ShadowSplit{
		View: mgl32.LookAtV(light.Position, light.Position.Add(dir), stableUp(dir)),
		Proj: mgl32.Perspective(mgl32.DegToRad(light.SpotAngle), 1, near, max(light.Range, near+minShadowNearPlane)),
	}
}

var cubeFaces = [...]struct {
	forward, up mgl32.Vec3
}{
	shadow.CubeFacePositiveX: {mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	shadow.CubeFaceNegativeX: {mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	shadow.CubeFacePositiveY: {mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	shadow.CubeFaceNegativeY: {mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
	shadow.CubeFacePositiveZ: {mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
	shadow.CubeFaceNegativeZ: {mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
}

func (r *Results) PointShadowMatrices(visibleIndex int, face shadow.CubeFace, fovBias float32) shadow.ShadowSplit {
	light := &r.VisibleLights[visibleIndex]
	f := cubeFaces[face]
	near := max(light.ShadowNearPlane, minShadowNearPlane)
	return shadow.ShadowSplit{
		View: mgl32.LookAtV(light.Position, light.Position.Add(f.forward), f.up),
		Proj: mgl32.Perspective(mgl32.DegToRad(90+fovBias), 1, near, max(light.Range, near+minShadowNearPlane)),
	}
}

func stableUp(dir mgl32.Vec3) mgl32.Vec3 {
	if float32(math.Abs(float64(dir.Y()))) > 0.99 {
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{0, 1, 0}
}
