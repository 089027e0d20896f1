// Package atlas lays shadow-map tiles out on a square atlas texture.
//
// An atlas holds at most 16 tiles on a 1x1, 2x2 or 4x4 grid. Callers must
// keep the tile count within MaxTiles before asking for a layout; the
// shadow reservation table enforces that.
package atlas

import (
	"errors"
	"fmt"

	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	MaxCountPerLine = 4
	MaxTiles        = MaxCountPerLine * MaxCountPerLine
)

var (
	ErrTooManyTiles   = errors.New("atlas: tile count exceeds capacity")
	ErrInvalidSize    = errors.New("atlas: atlas size must be positive")
	ErrDegenerateTile = errors.New("atlas: tile size is zero")
)

// CountPerLine picks the grid width for tileCount tiles.
func CountPerLine(tileCount int) int {
	switch {
	case tileCount <= 1:
		return 1
	case tileCount <= 4:
		return 2
	default:
		return MaxCountPerLine
	}
}

// Layout is the grid used for one atlas in one frame.
type Layout struct {
	AtlasSize    int
	TileCount    int
	CountPerLine int
	TileSize     int
}

func NewLayout(atlasSize, tileCount int) (Layout, error) {
	if tileCount < 0 || tileCount > MaxTiles {
		return Layout{}, fmt.Errorf("%w: %d tiles, max %d", ErrTooManyTiles, tileCount, MaxTiles)
	}
	if atlasSize <= 0 {
		return Layout{}, fmt.Errorf("%w: got %d", ErrInvalidSize, atlasSize)
	}
	perLine := CountPerLine(tileCount)
	tileSize := atlasSize / perLine
	if tileSize == 0 {
		return Layout{}, fmt.Errorf("%w: atlas %d split %d per line", ErrDegenerateTile, atlasSize, perLine)
	}
	return Layout{
		AtlasSize:    atlasSize,
		TileCount:    tileCount,
		CountPerLine: perLine,
		TileSize:     tileSize,
	}, nil
}

// Capacity is the number of tiles the grid can hold.
func (l Layout) Capacity() int {
	return l.CountPerLine * l.CountPerLine
}

// Scale is the fraction of the atlas covered by one tile along each axis.
func (l Layout) Scale() float32 {
	return 1.0 / float32(l.CountPerLine)
}

// Tile is one cell of the atlas grid.
type Tile struct {
	Index    int
	Row      int
	Col      int
	Offset   mgl32.Vec2 // (col, row) in tile units
	Viewport core.Rect  // pixels
}

// Tile returns the cell for index. Indices outside the grid are a caller bug.
func (l Layout) Tile(index int) Tile {
	if l.CountPerLine <= 0 || l.TileSize <= 0 {
		panic("atlas: Tile called on a zero Layout")
	}
	if index < 0 || index >= l.Capacity() {
		panic(fmt.Sprintf("atlas: tile index %d outside %dx%d grid", index, l.CountPerLine, l.CountPerLine))
	}
	row := index / l.CountPerLine
	col := index % l.CountPerLine
	size := float32(l.TileSize)
	return Tile{
		Index:  index,
		Row:    row,
		Col:    col,
		Offset: mgl32.Vec2{float32(col), float32(row)},
		Viewport: core.Rect{
			X:      float32(col) * size,
			Y:      float32(row) * size,
			Width:  size,
			Height: size,
		},
	}
}

// Tiles returns the first TileCount cells in index order.
func (l Layout) Tiles() []Tile {
	tiles := make([]Tile, 0, l.TileCount)
	for i := 0; i < l.TileCount; i++ {
		tiles = append(tiles, l.Tile(i))
	}
	return tiles
}
