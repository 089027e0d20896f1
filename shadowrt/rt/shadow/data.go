package shadow

import "github.com/go-gl/mathgl/mgl32"

// ShadowData is the outcome of a shadow reservation for one light.
// It is one of DirectionalShadow, OtherShadow, Unshadowed or NoShadow.
// Vec4 flattens it into the layout the lit shaders read.
type ShadowData interface {
	Vec4() mgl32.Vec4
	// Strength is the shadow strength the light was configured with, 0 when
	// it casts no shadow.
	Strength() float32
	isShadowData()
}

// DirectionalShadow is a directional light that owns cascade tiles this frame.
type DirectionalShadow struct {
	ShadowStrength float32
	CascadeStart   int
	NormalBias     float32
	MaskChannel    int
}

// OtherShadow is a point or spot light that owns atlas tiles this frame.
// Point lights own six consecutive tiles starting at TileIndex.
type OtherShadow struct {
	ShadowStrength float32
	TileIndex      int
	IsPoint        bool
	MaskChannel    int
}

// Unshadowed is a light that wants shadows but got no realtime map, either
// because the atlas is full or nothing casts into its range. Shaders fall
// back to baked shadow-mask occlusion when MaskChannel >= 0.
type Unshadowed struct {
	ShadowStrength float32
	MaskChannel    int
}

// NoShadow is a light that casts no shadow at all.
type NoShadow struct{}

func (d DirectionalShadow) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{d.ShadowStrength, float32(d.CascadeStart), d.NormalBias, float32(d.MaskChannel)}
}

func (d OtherShadow) Vec4() mgl32.Vec4 {
	point := float32(0)
	if d.IsPoint {
		point = 1
	}
	return mgl32.Vec4{d.ShadowStrength, float32(d.TileIndex), point, float32(d.MaskChannel)}
}

// Vec4 negates the strength; shaders read a negative strength as
// "no realtime map".
func (d Unshadowed) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{-d.ShadowStrength, 0, 0, float32(d.MaskChannel)}
}

func (NoShadow) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{0, 0, 0, -1}
}

func (d DirectionalShadow) Strength() float32 { return d.ShadowStrength }
func (d OtherShadow) Strength() float32       { return d.ShadowStrength }
func (d Unshadowed) Strength() float32        { return d.ShadowStrength }
func (NoShadow) Strength() float32            { return 0 }

func (DirectionalShadow) isShadowData() {}
func (OtherShadow) isShadowData()       {}
func (Unshadowed) isShadowData()        {}
func (NoShadow) isShadowData()          {}

// HasShadowMap reports whether d owns realtime atlas tiles.
func HasShadowMap(d ShadowData) bool {
	switch d.(type) {
	case DirectionalShadow, OtherShadow:
		return true
	}
	return false
}
