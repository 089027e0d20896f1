package shadow

import (
	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
)

const (
	MaxDirectionalLights = 4
	MaxCascades          = 4
	MaxDirectionalTiles  = MaxDirectionalLights * MaxCascades
	MaxOtherTiles        = 16
)

type shadowedDirectional struct {
	name            string
	visibleIndex    int
	slopeScaleBias  float32
	nearPlaneOffset float32
}

type shadowedOther struct {
	name           string
	visibleIndex   int
	slopeScaleBias float32
	normalBias     float32
	isPoint        bool
}

// Table hands out shadow atlas tiles for one camera render. Call Setup at
// the start of every render; reservations never carry over between frames.
type Table struct {
	settings Settings
	clip     ClipConvention
	source   CasterSource

	directional      [MaxDirectionalLights]shadowedDirectional
	directionalCount int

	// other is indexed by first tile; a point light leaves the next five
	// entries unused.
	other          [MaxOtherTiles]shadowedOther
	otherTileCount int

	useShadowMask bool
}

func NewTable(settings Settings, clip ClipConvention) *Table {
	return &Table{
		settings: settings,
		clip:     clip,
	}
}

func (t *Table) Settings() Settings {
	return t.settings
}

// Setup clears all reservations and binds the visibility results of the
// camera about to render. A nil source means nothing casts shadows.
func (t *Table) Setup(source CasterSource) {
	t.source = source
	t.directionalCount = 0
	t.otherTileCount = 0
	t.useShadowMask = false
}

func (t *Table) DirectionalCount() int { return t.directionalCount }
func (t *Table) OtherTileCount() int   { return t.otherTileCount }

// UsesShadowMask reports whether any light seen this frame bakes its
// occlusion into a shadow mask.
func (t *Table) UsesShadowMask() bool { return t.useShadowMask }

func (t *Table) casterBounds(visibleIndex int) bool {
	if t.source == nil {
		return false
	}
	_, ok := t.source.ShadowCasterBounds(visibleIndex)
	return ok
}

func (t *Table) maskChannel(light *core.VisibleLight) int {
	channel := light.ShadowMaskChannel()
	if channel >= 0 {
		t.useShadowMask = true
	}
	return channel
}

// ReserveDirectional claims CascadeCount tiles of the directional atlas.
func (t *Table) ReserveDirectional(light *core.VisibleLight, visibleIndex int) ShadowData {
	if !light.CastsShadows() {
		return NoShadow{}
	}
	channel := t.maskChannel(light)
	if t.directionalCount >= MaxDirectionalLights || !t.casterBounds(visibleIndex) {
		return Unshadowed{ShadowStrength: light.ShadowStrength, MaskChannel: channel}
	}

	index := t.directionalCount
	t.directional[index] = shadowedDirectional{
		name:            light.Name,
		visibleIndex:    visibleIndex,
		slopeScaleBias:  light.ShadowBias,
		nearPlaneOffset: light.ShadowNearPlane,
	}
	t.directionalCount++

	return DirectionalShadow{
		ShadowStrength: light.ShadowStrength,
		CascadeStart:   t.settings.Directional.CascadeCount * index,
		NormalBias:     light.ShadowNormalBias,
		MaskChannel:    channel,
	}
}

// ReserveOther claims one tile for a spot light or six for a point light.
func (t *Table) ReserveOther(light *core.VisibleLight, visibleIndex int) ShadowData {
	if !light.CastsShadows() {
		return NoShadow{}
	}
	channel := t.maskChannel(light)

	isPoint := light.Kind == core.LightKindPoint
	cost := 1
	if isPoint {
		cost = PointLightTiles
	}
	if t.otherTileCount+cost > MaxOtherTiles || !t.casterBounds(visibleIndex) {
		return Unshadowed{ShadowStrength: light.ShadowStrength, MaskChannel: channel}
	}

	index := t.otherTileCount
	t.other[index] = shadowedOther{
		name:           light.Name,
		visibleIndex:   visibleIndex,
		slopeScaleBias: light.ShadowBias,
		normalBias:     light.ShadowNormalBias,
		isPoint:        isPoint,
	}
	t.otherTileCount += cost

	return OtherShadow{
		ShadowStrength: light.ShadowStrength,
		TileIndex:      index,
		IsPoint:        isPoint,
		MaskChannel:    channel,
	}
}

// ShadowMaskKeyword returns the shadow-mask variant to enable: -1 for none,
// 0 for always, 1 for distance.
func (t *Table) ShadowMaskKeyword() int {
	if !t.useShadowMask || !t.settings.UseShadowMask {
		return -1
	}
	if t.settings.ShadowMaskMode == ShadowMaskAlways {
		return 0
	}
	return 1
}
