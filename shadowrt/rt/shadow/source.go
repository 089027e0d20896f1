package shadow

import (
	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// CubeFace indexes the six faces of a point light shadow cubemap.
type CubeFace int

const (
	CubeFacePositiveX CubeFace = iota
	CubeFaceNegativeX
	CubeFacePositiveY
	CubeFaceNegativeY
	CubeFacePositiveZ
	CubeFaceNegativeZ
	cubeFaceCount
)

// PointLightTiles is the number of atlas tiles a point light occupies.
const PointLightTiles = int(cubeFaceCount)

// ShadowSplit is the camera the shadow casters are rendered with for one
// cascade, spot light or cube face.
type ShadowSplit struct {
	View          mgl32.Mat4
	Proj          mgl32.Mat4
	CullingSphere core.Sphere
}

// CasterSource is the visibility collaborator. It knows where shadow
// casters are and how to frame them for each light. Light indices refer to
// the visible light list of the current camera.
type CasterSource interface {
	// ShadowCasterBounds returns the bounds of everything that can cast into
	// the light's range. ok is false when nothing does.
	ShadowCasterBounds(visibleIndex int) (bounds core.Bounds, ok bool)

	// DirectionalShadowMatrices frames one cascade of a directional light.
	// ratios are the cascade split distances as fractions of the shadow distance.
	DirectionalShadowMatrices(visibleIndex, cascade, cascadeCount int, ratios mgl32.Vec3, tileSize int, nearPlaneOffset float32) ShadowSplit

	SpotShadowMatrices(visibleIndex int) ShadowSplit

	// PointShadowMatrices frames one cube face. fovBias widens the 90 degree
	// face frustum so filtering near the face edges stays inside the tile.
	PointShadowMatrices(visibleIndex int, face CubeFace, fovBias float32) ShadowSplit
}
