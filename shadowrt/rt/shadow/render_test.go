package shadow

import (
	"math"
	"testing"

	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Empty(t *testing.T) {
	table := newTestTable(nil)

	var frame Frame
	require.NoError(t, table.Render(&frame))

	assert.False(t, frame.DirectionalAtlas.Active)
	assert.Equal(t, 1, frame.DirectionalAtlas.Size)
	assert.False(t, frame.OtherAtlas.Active)
	assert.True(t, frame.OtherAtlas.AliasDirectional)
	assert.Zero(t, frame.CascadeCount)
	assert.Empty(t, frame.Draws)
	assert.Equal(t, Keywords{DirectionalFilter: -1, OtherFilter: -1, ShadowMask: -1}, frame.Keywords)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, frame.AtlasSizes)
	assert.Equal(t, DefaultSettings().DistanceFadeVector(), frame.DistanceFade)
}

func TestRender_Directional(t *testing.T) {
	source := &fakeSource{}
	table := newTestTable(source)
	light := shadowLight(core.LightKindDirectional)
	table.ReserveDirectional(light, 0)
	table.ReserveDirectional(light, 3)

	var frame Frame
	require.NoError(t, table.Render(&frame))

	// 2 lights x 4 cascades = 8 tiles -> 4x4 grid of 256 texel tiles
	atlasLayout := frame.DirectionalAtlas.Layout
	assert.True(t, frame.DirectionalAtlas.Active)
	assert.Equal(t, 4, atlasLayout.CountPerLine)
	assert.Equal(t, 256, atlasLayout.TileSize)
	assert.Equal(t, 4, frame.CascadeCount)
	assert.Equal(t, -1, frame.Keywords.DirectionalFilter)
	// the inactive other atlas aliases the directional one
	assert.True(t, frame.OtherAtlas.AliasDirectional)
	assert.Equal(t, mgl32.Vec4{1024, 1.0 / 1024, 1024, 1.0 / 1024}, frame.AtlasSizes)

	require.Len(t, frame.Draws, 8)
	for i, draw := range frame.Draws {
		assert.Equal(t, AtlasDirectional, draw.Atlas)
		assert.Equal(t, i, draw.TileIndex)
		assert.True(t, draw.Pancaking)
		assert.Equal(t, float32(0.05), draw.SlopeScaleBias)
	}
	assert.Equal(t, 3, frame.Draws[5].VisibleIndex)
	assert.Equal(t, core.Rect{X: 256, Y: 256, Width: 256, Height: 256}, frame.Draws[5].Viewport)

	// second light, cascade 1 sits in tile 5 = (col 1, row 1)
	split := source.DirectionalShadowMatrices(3, 1, 4, mgl32.Vec3{}, 256, 0.2)
	want := AtlasMatrix(split.Proj, split.View, mgl32.Vec2{1, 1}, 0.25, ClipConvention{})
	assert.Equal(t, want, frame.DirectionalMatrices[5])

	// cascade spheres come from the first light only
	for c := 0; c < 4; c++ {
		split := source.DirectionalShadowMatrices(0, c, 4, mgl32.Vec3{}, 256, 0.2)
		assert.Equal(t, ComputeCascade(split.CullingSphere, 256, FilterPCF2x2), frame.Cascades[c])
	}
}

func TestRender_Other(t *testing.T) {
	source := &fakeSource{}
	settings := DefaultSettings()
	settings.Other.Filter = FilterPCF3x3
	table := NewTable(settings, ClipConvention{ReversedZ: true})
	table.Setup(source)

	spot := shadowLight(core.LightKindSpot)
	point := shadowLight(core.LightKindPoint)
	require.IsType(t, OtherShadow{}, table.ReserveOther(spot, 0))
	require.IsType(t, OtherShadow{}, table.ReserveOther(point, 1))

	var frame Frame
	require.NoError(t, table.Render(&frame))

	assert.False(t, frame.DirectionalAtlas.Active)
	assert.True(t, frame.OtherAtlas.Active)
	assert.Equal(t, 0, frame.Keywords.OtherFilter)
	assert.Equal(t, 4, frame.OtherAtlas.Layout.CountPerLine)
	assert.Equal(t, mgl32.Vec4{1, 1, 1024, 1.0 / 1024}, frame.AtlasSizes)
	require.Len(t, frame.Draws, 7)

	// spot tile
	spotSplit := source.SpotShadowMatrices(0)
	texel := 2 / (256 * spotSplit.Proj.At(0, 0))
	spotBias := 0.4 * texel * math.Sqrt2
	assert.InDelta(t, spotBias, frame.OtherTiles[0].W(), 1e-7)
	assert.Equal(t, OtherTileData(mgl32.Vec2{0, 0}, 0.25, frame.OtherTiles[0].W(), 1024), frame.OtherTiles[0])
	assert.False(t, frame.Draws[0].Pancaking)

	// point light faces occupy tiles 1..6, views flipped for winding
	pointTexel := float32(2.0 / 256)
	pointBias := 0.4 * pointTexel * math.Sqrt2
	fovBias := PointFovBias(pointBias, pointTexel)
	for face := CubeFace(0); face < cubeFaceCount; face++ {
		tile := 1 + int(face)
		draw := frame.Draws[tile]
		split := source.PointShadowMatrices(1, face, fovBias)

		assert.Equal(t, tile, draw.TileIndex)
		assert.Equal(t, FlipCubeFaceView(split.View), draw.View)
		offset := mgl32.Vec2{float32(tile % 4), float32(tile / 4)}
		assert.Equal(t, AtlasMatrix(split.Proj, FlipCubeFaceView(split.View), offset, 0.25, ClipConvention{ReversedZ: true}), frame.OtherMatrices[tile])
		assert.InDelta(t, pointBias, frame.OtherTiles[tile].W(), 1e-7)
	}
}

func TestRender_ReusesFrame(t *testing.T) {
	table := newTestTable(&fakeSource{})
	table.ReserveOther(shadowLight(core.LightKindPoint), 0)

	var frame Frame
	require.NoError(t, table.Render(&frame))
	require.Len(t, frame.Draws, 6)

	table.Setup(&fakeSource{})
	table.ReserveOther(shadowLight(core.LightKindSpot), 0)
	require.NoError(t, table.Render(&frame))
	assert.Len(t, frame.Draws, 1)
	assert.Equal(t, mgl32.Vec4{}, frame.OtherTiles[3])
}

func TestOtherTileData(t *testing.T) {
	// tile (col 2, row 1) of a 4x4 grid in a 512 atlas
	v := OtherTileData(mgl32.Vec2{2, 1}, 0.25, 0.3, 512)
	border := float32(0.5 / 512)
	assert.InDelta(t, 0.5+border, v.X(), 1e-7)
	assert.InDelta(t, 0.25+border, v.Y(), 1e-7)
	assert.InDelta(t, 0.25-2*border, v.Z(), 1e-7)
	assert.Equal(t, float32(0.3), v.W())
}

func TestPointFovBias(t *testing.T) {
	assert.InDelta(t, 0, PointFovBias(0, 0), 1e-4)
	assert.Greater(t, PointFovBias(0.01, 0.01), float32(0))
}

func TestRender_RejectsDegenerateSpotProjection(t *testing.T) {
	nan := float32(math.NaN())
	cases := map[string]mgl32.Mat4{
		"zero cone":    mgl32.Perspective(0, 1, 0.1, 10),
		"flipped":      mgl32.Perspective(mgl32.DegToRad(-20), 1, 0.1, 10),
		"zero":         {},
		"not a number": {nan, 0, 0, 0, 0, nan, 0, 0, 0, 0, 1, -1, 0, 0, 1, 0},
	}
	for name, proj := range cases {
		t.Run(name, func(t *testing.T) {
			source := &fakeSource{spotProj: &proj}
			table := newTestTable(source)
			require.IsType(t, OtherShadow{}, table.ReserveOther(shadowLight(core.LightKindSpot), 0))

			var frame Frame
			err := table.Render(&frame)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDegenerateProjection)
			assert.ErrorContains(t, err, "spot")
		})
	}
}
