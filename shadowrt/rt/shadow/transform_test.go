package shadow

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func testLightMatrices() (proj, view mgl32.Mat4) {
	proj = mgl32.Ortho(-1, 1, -1, 1, 0.1, 10)
	view = mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	return proj, view
}

func TestAtlasMatrix_SingleTileIsShadowTransform(t *testing.T) {
	proj, view := testLightMatrices()
	clip := ClipConvention{}

	got := AtlasMatrix(proj, view, mgl32.Vec2{0, 0}, 1, clip)
	want := TextureScaleBias().Mul4(proj.Mul4(view))
	assert.Equal(t, want, got)
	assert.Equal(t, mgl32.Ident4(), SliceTransform(mgl32.Vec2{0, 0}, 1))
}

func TestWorldToShadow_ReversedZFlipsOnce(t *testing.T) {
	proj, view := testLightMatrices()
	original := proj

	flipped := proj
	for col := 0; col < 4; col++ {
		flipped.Set(2, col, -flipped.At(2, col))
	}

	got := WorldToShadow(proj, view, ClipConvention{ReversedZ: true})
	assert.Equal(t, flipped.Mul4(view), got)
	assert.Equal(t, original, proj, "caller's projection must not be modified")

	// calling twice must give the same answer, not flip back
	again := WorldToShadow(proj, view, ClipConvention{ReversedZ: true})
	assert.Equal(t, got, again)
}

func TestAtlasMatrix_LandsInTile(t *testing.T) {
	proj, view := testLightMatrices()

	// 2x2 grid, bottom-right tile (col 1, row 1)
	m := AtlasMatrix(proj, view, mgl32.Vec2{1, 1}, 0.5, ClipConvention{})
	p := m.Mul4x1(mgl32.Vec4{0.5, -0.5, -5, 1})

	// clip (0.5, -0.5) -> texture (0.75, 0.25) -> tile (0.875, 0.625)
	assert.InDelta(t, 0.875, p.X()/p.W(), 1e-6)
	assert.InDelta(t, 0.625, p.Y()/p.W(), 1e-6)
	assert.GreaterOrEqual(t, p.Z()/p.W(), float32(0))
	assert.LessOrEqual(t, p.Z()/p.W(), float32(1))
}

func TestTextureScaleBias(t *testing.T) {
	m := TextureScaleBias()
	corner := m.Mul4x1(mgl32.Vec4{-1, -1, -1, 1})
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, corner)
	corner = m.Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, corner)
}

func TestFlipCubeFaceView(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{2, 2, 3}, mgl32.Vec3{0, -1, 0})
	flipped := FlipCubeFaceView(view)

	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if row == 1 && col > 0 {
				assert.Equal(t, -view.At(row, col), flipped.At(row, col), "m%d%d", row, col)
			} else {
				assert.Equal(t, view.At(row, col), flipped.At(row, col), "m%d%d", row, col)
			}
		}
	}
}
