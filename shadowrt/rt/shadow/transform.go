package shadow

import "github.com/go-gl/mathgl/mgl32"

// ClipConvention describes the target graphics API's clip space.
type ClipConvention struct {
	// ReversedZ is set when the depth buffer maps near to 1 and far to 0.
	ReversedZ bool
}

// WorldToShadow returns proj*view. With reversed Z the third row of proj is
// negated first. proj is passed by value so the caller's matrix is never
// flipped twice.
func WorldToShadow(proj, view mgl32.Mat4, clip ClipConvention) mgl32.Mat4 {
	if clip.ReversedZ {
		for col := 0; col < 4; col++ {
			proj.Set(2, col, -proj.At(2, col))
		}
	}
	return proj.Mul4(view)
}

// TextureScaleBias maps the [-1,1] clip cube to [0,1] texture space.
func TextureScaleBias() mgl32.Mat4 {
	return mgl32.Mat4{
		0.5, 0, 0, 0,
		0, 0.5, 0, 0,
		0, 0, 0.5, 0,
		0.5, 0.5, 0.5, 1,
	}
}

// SliceTransform scales [0,1] texture space into one atlas tile at offset
// (col,row) where scale is 1/countPerLine.
func SliceTransform(offset mgl32.Vec2, scale float32) mgl32.Mat4 {
	m := mgl32.Ident4()
	m.Set(0, 0, scale)
	m.Set(1, 1, scale)
	m.Set(0, 3, offset.X()*scale)
	m.Set(1, 3, offset.Y()*scale)
	return m
}

// ShadowTransform maps world space into the [0,1] shadow texture of one
// light without any atlas placement.
func ShadowTransform(proj, view mgl32.Mat4, clip ClipConvention) mgl32.Mat4 {
	return TextureScaleBias().Mul4(WorldToShadow(proj, view, clip))
}

// AtlasMatrix maps a world-space position into normalized coordinates of
// its atlas tile: slice * textureScaleBias * worldToShadow.
func AtlasMatrix(proj, view mgl32.Mat4, offset mgl32.Vec2, scale float32, clip ClipConvention) mgl32.Mat4 {
	return SliceTransform(offset, scale).Mul4(ShadowTransform(proj, view, clip))
}

// FlipCubeFaceView negates m11, m12 and m13 of a cube face view matrix.
// Cube faces are rendered upside down relative to the 2D atlas, which
// flips triangle winding; flipping the view's Y row restores it. m10 is
// left alone. This matches the existing shadow sampling and is a
// compatibility behavior, not something derived for every graphics API.
func FlipCubeFaceView(view mgl32.Mat4) mgl32.Mat4 {
	for col := 1; col < 4; col++ {
		view.Set(1, col, -view.At(1, col))
	}
	return view
}
