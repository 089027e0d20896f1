package shadow

import (
	"errors"
	"fmt"
	"math"

	"github.com/gekko3d/shadowrp/shadowrt/rt/atlas"
	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrDegenerateProjection is returned when a caster source hands back a
// spot projection that cannot be mapped into an atlas tile.
var ErrDegenerateProjection = errors.New("shadow: degenerate projection")

type AtlasKind int

const (
	AtlasDirectional AtlasKind = iota
	AtlasOther
)

func (k AtlasKind) String() string {
	if k == AtlasDirectional {
		return "directional"
	}
	return "other"
}

// AtlasTarget describes one shadow atlas texture for the frame.
type AtlasTarget struct {
	Kind AtlasKind
	// Size is the texture edge in texels. An inactive directional atlas is
	// a 1x1 placeholder so shaders always have something bound.
	Size   int
	Layout atlas.Layout
	Active bool
	// AliasDirectional is set on an inactive other atlas: bind the
	// directional atlas in its place.
	AliasDirectional bool
}

// DrawCall is one shadow caster pass for the draw-submission collaborator.
type DrawCall struct {
	Atlas        AtlasKind
	LightName    string
	VisibleIndex int
	TileIndex    int
	Viewport     core.Rect
	View         mgl32.Mat4
	Proj         mgl32.Mat4
	Split        core.Sphere

	SlopeScaleBias float32
	// Pancaking clamps casters behind the near plane onto it; only valid
	// for orthographic directional cascades.
	Pancaking             bool
	UseRenderingLayerMask bool
}

// Keywords are the shader variant toggles. Each is an index into its
// keyword set, -1 meaning all off.
type Keywords struct {
	DirectionalFilter int
	OtherFilter       int
	ShadowMask        int
}

// Frame holds every shadow uniform for one camera render. It is overwritten
// in full by Table.Render.
type Frame struct {
	DirectionalAtlas AtlasTarget
	OtherAtlas       AtlasTarget

	CascadeCount        int
	DirectionalMatrices [MaxDirectionalTiles]mgl32.Mat4
	Cascades            [MaxCascades]Cascade

	OtherMatrices [MaxOtherTiles]mgl32.Mat4
	OtherTiles    [MaxOtherTiles]mgl32.Vec4

	DistanceFade mgl32.Vec4
	// AtlasSizes is (dirSize, 1/dirSize, otherSize, 1/otherSize).
	AtlasSizes mgl32.Vec4
	Keywords   Keywords

	Draws []DrawCall
}

func (f *Frame) reset() {
	draws := f.Draws[:0]
	*f = Frame{
		Keywords: Keywords{DirectionalFilter: -1, OtherFilter: -1, ShadowMask: -1},
		Draws:    draws,
	}
}

// Render lays out both atlases for the current reservations and fills frame.
func (t *Table) Render(frame *Frame) error {
	frame.reset()
	s := t.settings

	if t.directionalCount > 0 {
		if err := t.renderDirectional(frame); err != nil {
			return err
		}
	} else {
		frame.DirectionalAtlas = AtlasTarget{Kind: AtlasDirectional, Size: 1}
	}

	if t.otherTileCount > 0 {
		if err := t.renderOther(frame); err != nil {
			return err
		}
	} else {
		frame.OtherAtlas = AtlasTarget{Kind: AtlasOther, Size: frame.DirectionalAtlas.Size, AliasDirectional: true}
	}

	if t.directionalCount > 0 {
		frame.CascadeCount = s.Directional.CascadeCount
	}
	frame.DistanceFade = s.DistanceFadeVector()
	frame.Keywords.ShadowMask = t.ShadowMaskKeyword()

	dirSize := float32(frame.DirectionalAtlas.Size)
	otherSize := float32(frame.OtherAtlas.Size)
	frame.AtlasSizes = mgl32.Vec4{dirSize, 1 / dirSize, otherSize, 1 / otherSize}
	return nil
}

func (t *Table) renderDirectional(frame *Frame) error {
	d := t.settings.Directional
	layout, err := atlas.NewLayout(int(d.AtlasSize), t.directionalCount*d.CascadeCount)
	if err != nil {
		return fmt.Errorf("shadow: directional atlas: %w", err)
	}
	frame.DirectionalAtlas = AtlasTarget{Kind: AtlasDirectional, Size: layout.AtlasSize, Layout: layout, Active: true}
	frame.Keywords.DirectionalFilter = d.Filter.KeywordIndex()

	ratios := d.CascadeRatios()
	scale := layout.Scale()
	for i := 0; i < t.directionalCount; i++ {
		light := t.directional[i]
		start := i * d.CascadeCount
		for c := 0; c < d.CascadeCount; c++ {
			split := t.source.DirectionalShadowMatrices(light.visibleIndex, c, d.CascadeCount, ratios, layout.TileSize, light.nearPlaneOffset)
			// every directional light shares the first light's cascade spheres
			if i == 0 {
				frame.Cascades[c] = ComputeCascade(split.CullingSphere, layout.TileSize, d.Filter)
			}

			tile := layout.Tile(start + c)
			frame.DirectionalMatrices[tile.Index] = AtlasMatrix(split.Proj, split.View, tile.Offset, scale, t.clip)
			frame.Draws = append(frame.Draws, DrawCall{
				Atlas:                 AtlasDirectional,
				LightName:             light.name,
				VisibleIndex:          light.visibleIndex,
				TileIndex:             tile.Index,
				Viewport:              tile.Viewport,
				View:                  split.View,
				Proj:                  split.Proj,
				Split:                 split.CullingSphere,
				SlopeScaleBias:        light.slopeScaleBias,
				Pancaking:             true,
				UseRenderingLayerMask: t.settings.UseRenderingLayerMask,
			})
		}
	}
	return nil
}

func (t *Table) renderOther(frame *Frame) error {
	o := t.settings.Other
	layout, err := atlas.NewLayout(int(o.AtlasSize), t.otherTileCount)
	if err != nil {
		return fmt.Errorf("shadow: other atlas: %w", err)
	}
	frame.OtherAtlas = AtlasTarget{Kind: AtlasOther, Size: layout.AtlasSize, Layout: layout, Active: true}
	frame.Keywords.OtherFilter = o.Filter.KeywordIndex()

	for i := 0; i < t.otherTileCount; {
		if t.other[i].isPoint {
			t.renderPoint(frame, i, layout)
			i += PointLightTiles
		} else {
			if err := t.renderSpot(frame, i, layout); err != nil {
				return err
			}
			i++
		}
	}
	return nil
}

func (t *Table) renderSpot(frame *Frame, index int, layout atlas.Layout) error {
	light := t.other[index]
	split := t.source.SpotShadowMatrices(light.visibleIndex)

	// m00 is cot(fov/2); a cone outside (0, 180) degrees leaves it
	// non-positive or infinite
	m00 := float64(split.Proj.At(0, 0))
	if math.IsNaN(m00) || math.IsInf(m00, 0) || m00 <= 0 {
		return fmt.Errorf("%w: spot light %s has m00 %v", ErrDegenerateProjection, light.name, m00)
	}

	// texel footprint at unit distance from the light
	texelSize := 2 / (float32(layout.TileSize) * split.Proj.At(0, 0))
	filterSize := texelSize * t.settings.Other.Filter.KernelFactor()
	bias := light.normalBias * filterSize * math.Sqrt2

	tile := layout.Tile(index)
	t.storeOtherTile(frame, tile, layout, bias, split.Proj, split.View)
	frame.Draws = append(frame.Draws, t.otherDraw(light, tile, split.View, split))
	return nil
}

func (t *Table) renderPoint(frame *Frame, index int, layout atlas.Layout) {
	light := t.other[index]

	texelSize := 2 / float32(layout.TileSize)
	filterSize := texelSize * t.settings.Other.Filter.KernelFactor()
	bias := light.normalBias * filterSize * math.Sqrt2
	fovBias := PointFovBias(bias, filterSize)

	for face := CubeFace(0); face < cubeFaceCount; face++ {
		split := t.source.PointShadowMatrices(light.visibleIndex, face, fovBias)
		view := FlipCubeFaceView(split.View)

		tile := layout.Tile(index + int(face))
		t.storeOtherTile(frame, tile, layout, bias, split.Proj, view)
		frame.Draws = append(frame.Draws, t.otherDraw(light, tile, view, split))
	}
}

// PointFovBias is how many degrees a cube face frustum must widen so the
// normal bias and filter footprint near its edges stay inside the tile.
func PointFovBias(bias, filterSize float32) float32 {
	halfAngle := float32(math.Atan(float64(1 + bias + filterSize)))
	return mgl32.RadToDeg(2*halfAngle) - 90
}

func (t *Table) storeOtherTile(frame *Frame, tile atlas.Tile, layout atlas.Layout, bias float32, proj, view mgl32.Mat4) {
	scale := layout.Scale()
	frame.OtherTiles[tile.Index] = OtherTileData(tile.Offset, scale, bias, layout.AtlasSize)
	frame.OtherMatrices[tile.Index] = AtlasMatrix(proj, view, tile.Offset, scale, t.clip)
}

func (t *Table) otherDraw(light shadowedOther, tile atlas.Tile, view mgl32.Mat4, split ShadowSplit) DrawCall {
	return DrawCall{
		Atlas:                 AtlasOther,
		LightName:             light.name,
		VisibleIndex:          light.visibleIndex,
		TileIndex:             tile.Index,
		Viewport:              tile.Viewport,
		View:                  view,
		Proj:                  split.Proj,
		Split:                 split.CullingSphere,
		SlopeScaleBias:        light.slopeScaleBias,
		UseRenderingLayerMask: t.settings.UseRenderingLayerMask,
	}
}

// OtherTileData packs the tile's normalized bounds, shrunk by half a texel
// so sampling never bleeds into a neighbour: (minX, minY, size, normalBias).
func OtherTileData(offset mgl32.Vec2, scale, bias float32, atlasSize int) mgl32.Vec4 {
	border := 0.5 / float32(atlasSize)
	return mgl32.Vec4{
		offset.X()*scale + border,
		offset.Y()*scale + border,
		scale - border - border,
		bias,
	}
}
