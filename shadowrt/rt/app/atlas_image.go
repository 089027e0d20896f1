package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/gekko3d/shadowrp/shadowrt/rt/shadow"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	panelHeader = 16
	panelGap    = 8
)

var tilePalette = []color.RGBA{
	colornames.Steelblue,
	colornames.Darkorange,
	colornames.Seagreen,
	colornames.Orchid,
	colornames.Goldenrod,
	colornames.Indianred,
	colornames.Teal,
	colornames.Slateblue,
}

// AtlasDebugImage draws the tile usage of both shadow atlases side by side,
// each scaled to panel pixels. Tiles are coloured by light and labelled
// with the light name and tile index.
func AtlasDebugImage(frame *shadow.Frame, panel int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2*panel+panelGap, panel+panelHeader))
	draw.Draw(img, img.Bounds(), image.NewUniform(colornames.Black), image.Point{}, draw.Src)

	drawAtlasPanel(img, image.Pt(0, 0), panel, frame.DirectionalAtlas, frame.Draws)
	drawAtlasPanel(img, image.Pt(panel+panelGap, 0), panel, frame.OtherAtlas, frame.Draws)
	return img
}

func drawAtlasPanel(img *image.RGBA, origin image.Point, panel int, target shadow.AtlasTarget, draws []shadow.DrawCall) {
	header := fmt.Sprintf("%s %d", target.Kind, target.Size)
	switch {
	case target.AliasDirectional:
		header = fmt.Sprintf("%s (aliased)", target.Kind)
	case target.Active:
		header = fmt.Sprintf("%s %d %dx%d", target.Kind, target.Size, target.Layout.CountPerLine, target.Layout.CountPerLine)
	}
	drawLabel(img, origin.X+2, origin.Y+12, header, colornames.White)

	area := image.Rect(origin.X, origin.Y+panelHeader, origin.X+panel, origin.Y+panelHeader+panel)
	draw.Draw(img, area, image.NewUniform(colornames.Dimgray), image.Point{}, draw.Src)
	if !target.Active {
		return
	}

	scale := float32(panel) / float32(target.Size)
	for _, d := range draws {
		if d.Atlas != target.Kind {
			continue
		}
		vp := d.Viewport
		r := image.Rect(
			area.Min.X+int(vp.X*scale),
			area.Min.Y+int(vp.Y*scale),
			area.Min.X+int((vp.X+vp.Width)*scale),
			area.Min.Y+int((vp.Y+vp.Height)*scale),
		)
		fill := tilePalette[d.VisibleIndex%len(tilePalette)]
		draw.Draw(img, r.Inset(1), image.NewUniform(fill), image.Point{}, draw.Src)
		drawLabel(img, r.Min.X+3, r.Min.Y+13, fmt.Sprintf("#%d", d.TileIndex), colornames.White)
		if d.LightName != "" {
			drawLabel(img, r.Min.X+3, r.Min.Y+26, d.LightName, colornames.White)
		}
	}
}

func drawLabel(img *image.RGBA, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// WriteAtlasPNG renders AtlasDebugImage to path.
func WriteAtlasPNG(path string, frame *shadow.Frame, panel int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("app: create %s: %w", path, err)
	}
	if err := png.Encode(f, AtlasDebugImage(frame, panel)); err != nil {
		f.Close()
		return fmt.Errorf("app: encode %s: %w", path, err)
	}
	return f.Close()
}
