// Package culling is a small reference visibility pass. It finds the lights
// and shadow casters a camera can see and frames shadow cameras for them.
// Hosts with their own visibility system implement shadow.CasterSource
// directly instead.
package culling

import (
	"math"

	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/gekko3d/shadowrp/shadowrt/rt/shadow"
	"github.com/go-gl/mathgl/mgl32"
)

// Object is a renderable with world-space bounds.
type Object struct {
	Name               string
	Bounds             core.Bounds
	CastShadows        bool
	RenderingLayerMask core.RenderingLayerMask
}

// Results is the visibility of one camera. It implements
// shadow.CasterSource over VisibleLights.
type Results struct {
	Camera         core.CameraState
	ShadowDistance float32
	VisibleLights  []core.VisibleLight
	VisibleObjects []int

	objects      []Object
	casterBounds []core.Bounds
	// shadowSphere encloses the camera frustum up to the shadow distance.
	shadowSphere core.Sphere
}

var _ shadow.CasterSource = (*Results)(nil)

// Cull tests lights and objects against the camera frustum. shadowDistance
// limits how far from the camera directional shadows reach; 0 disables
// shadow casters entirely.
func Cull(camera *core.CameraState, lights []core.VisibleLight, objects []Object, shadowDistance float32) *Results {
	r := &Results{
		Camera:         *camera,
		ShadowDistance: shadowDistance,
		objects:        objects,
	}

	vp := camera.GetProjectionMatrix().Mul4(camera.GetViewMatrix())
	planes := camera.ExtractFrustum(vp)

	for i := range lights {
		if lightVisible(&lights[i], planes) {
			r.VisibleLights = append(r.VisibleLights, lights[i])
		}
	}
	for i := range objects {
		if core.AABBInFrustum(objects[i].Bounds, planes) {
			r.VisibleObjects = append(r.VisibleObjects, i)
		}
	}

	if shadowDistance > 0 {
		corners := camera.FrustumCorners(camera.Near, min(shadowDistance, camera.Far))
		r.shadowSphere = BoundingSphere(corners[:])
	}
	r.casterBounds = make([]core.Bounds, len(r.VisibleLights))
	for i := range r.VisibleLights {
		r.casterBounds[i] = r.computeCasterBounds(&r.VisibleLights[i])
	}
	return r
}

func lightVisible(light *core.VisibleLight, planes [6]mgl32.Vec4) bool {
	switch light.Kind {
	case core.LightKindPoint, core.LightKindSpot:
		return core.SphereInFrustum(core.Sphere{Center: light.Position, Radius: light.Range}, planes)
	}
	return true
}

// influence is the region a light's shadow casters must overlap.
func (r *Results) influence(light *core.VisibleLight) (core.Sphere, bool) {
	if r.ShadowDistance <= 0 {
		return core.Sphere{}, false
	}
	if light.Kind == core.LightKindDirectional {
		return r.shadowSphere, true
	}
	return core.Sphere{Center: light.Position, Radius: light.Range}, true
}

func (r *Results) computeCasterBounds(light *core.VisibleLight) core.Bounds {
	bounds := core.EmptyBounds()
	region, ok := r.influence(light)
	if !ok || !light.CastsShadows() {
		return bounds
	}
	for _, obj := range r.objects {
		if obj.CastShadows && region.IntersectsBounds(obj.Bounds) {
			bounds = bounds.Encapsulate(obj.Bounds)
		}
	}
	return bounds
}

func (r *Results) ShadowCasterBounds(visibleIndex int) (core.Bounds, bool) {
	if visibleIndex < 0 || visibleIndex >= len(r.casterBounds) {
		return core.EmptyBounds(), false
	}
	b := r.casterBounds[visibleIndex]
	return b, !b.IsEmpty()
}

// Casters returns the indices of objects a shadow draw renders: shadow
// casters overlapping the draw's split sphere (or the light range for
// spot and point lights) and, when requested, sharing a layer with the
// light.
func (r *Results) Casters(draw shadow.DrawCall) []int {
	light := &r.VisibleLights[draw.VisibleIndex]
	region := draw.Split
	if light.Kind != core.LightKindDirectional {
		region = core.Sphere{Center: light.Position, Radius: light.Range}
	}

	var out []int
	for i, obj := range r.objects {
		if !obj.CastShadows || !region.IntersectsBounds(obj.Bounds) {
			continue
		}
		if draw.UseRenderingLayerMask && !obj.RenderingLayerMask.Overlaps(light.RenderingLayerMask) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// BoundingSphere returns a sphere centred on the centroid of points that
// contains all of them.
func BoundingSphere(points []mgl32.Vec3) core.Sphere {
	if len(points) == 0 {
		return core.Sphere{}
	}
	var center mgl32.Vec3
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Mul(1 / float32(len(points)))

	var radiusSq float32
	for _, p := range points {
		d := p.Sub(center)
		radiusSq = max(radiusSq, d.Dot(d))
	}
	return core.Sphere{Center: center, Radius: float32(math.Sqrt(float64(radiusSq)))}
}
