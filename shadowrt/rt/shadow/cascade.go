package shadow

import (
	"fmt"
	"math"

	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Cascade is the per-cascade data shaders use to pick a cascade. A fragment
// belongs to the first cascade whose sphere contains it. Spheres do not
// change with camera rotation, so a turning camera does not make the
// shadow map swim.
type Cascade struct {
	// Sphere is (center.xyz, radius²) after shrinking by the filter size.
	Sphere mgl32.Vec4
	// Data is (1/radius², filterSize·√2, 0, 0).
	Data mgl32.Vec4
}

// ComputeCascade shrinks the culling sphere by the PCF filter footprint so
// filtering never samples outside the cascade, and packs it for the shader.
// It panics when tileSize or the shrunk radius is not positive.
func ComputeCascade(cullingSphere core.Sphere, tileSize int, filter FilterMode) Cascade {
	if tileSize <= 0 {
		panic(fmt.Sprintf("shadow: cascade tile size %d must be positive", tileSize))
	}
	texelSize := 2 * cullingSphere.Radius / float32(tileSize)
	filterSize := texelSize * filter.KernelFactor()

	radius := cullingSphere.Radius - filterSize
	if !(radius > 0) {
		panic(fmt.Sprintf("shadow: cascade radius %v shrinks to %v with %v filter on %d texel tile",
			cullingSphere.Radius, radius, filter, tileSize))
	}
	radiusSq := radius * radius
	return Cascade{
		Sphere: cullingSphere.Center.Vec4(radiusSq),
		Data:   mgl32.Vec4{1 / radiusSq, filterSize * math.Sqrt2, 0, 0},
	}
}

// CascadeIndex returns the cascade a world position falls into, or -1 when
// it lies outside every sphere. It mirrors the shader-side selection.
func CascadeIndex(cascades []Cascade, p mgl32.Vec3) int {
	for i, c := range cascades {
		d := p.Sub(c.Sphere.Vec3())
		if d.Dot(d) < c.Sphere.W() {
			return i
		}
	}
	return -1
}
