package lighting

import (
	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/gekko3d/shadowrp/shadowrt/rt/shadow"
)

const (
	MaxDirectionalLights = shadow.MaxDirectionalLights
	MaxOtherLights       = 64
)

type SlotKind uint8

const (
	// SlotDropped lights are ignored for this camera: masked out, over
	// capacity or of a kind the realtime path does not shade.
	SlotDropped SlotKind = iota
	SlotDirectional
	SlotOther
)

func (k SlotKind) String() string {
	switch k {
	case SlotDirectional:
		return "directional"
	case SlotOther:
		return "other"
	}
	return "dropped"
}

// Slot is where a visible light ended up. Index is the dense index into
// the directional or other arrays, -1 when dropped.
type Slot struct {
	Kind  SlotKind
	Index int
}

type ClassifyOptions struct {
	// CameraMask is ANDed with each light's rendering layer mask.
	CameraMask core.RenderingLayerMask
	// PerObjectLights requests the visible-to-other index map.
	PerObjectLights bool
	// IndexMapLength is the length of the host's light index map. It can
	// exceed the visible light count when the host also tracks lights that
	// are off screen; those entries map to -1.
	IndexMapLength int
}

type Classification struct {
	Slots            []Slot
	DirectionalCount int
	OtherCount       int
	Masked           int
	Dropped          int
	// IndexMap maps a visible light index to its other slot or -1. Nil
	// unless per-object lights were requested.
	IndexMap []int
}

// EffectiveCameraMask is the mask lights are tested against. Cameras that
// do not mask lights see every layer.
func EffectiveCameraMask(cameraMask core.RenderingLayerMask, maskLights bool) core.RenderingLayerMask {
	if maskLights {
		return cameraMask
	}
	return core.AllRenderingLayers
}

// Classify assigns every visible light a slot. Lights past the capacity of
// their kind are dropped silently.
func Classify(lights []core.VisibleLight, opts ClassifyOptions) Classification {
	c := Classification{Slots: make([]Slot, len(lights))}
	if opts.PerObjectLights {
		c.IndexMap = make([]int, max(opts.IndexMapLength, len(lights)))
		for i := range c.IndexMap {
			c.IndexMap[i] = -1
		}
	}

	for i := range lights {
		light := &lights[i]
		slot := Slot{Kind: SlotDropped, Index: -1}

		if !light.RenderingLayerMask.Overlaps(opts.CameraMask) {
			c.Masked++
			c.Slots[i] = slot
			continue
		}

		switch light.Kind {
		case core.LightKindDirectional:
			if c.DirectionalCount < MaxDirectionalLights {
				slot = Slot{Kind: SlotDirectional, Index: c.DirectionalCount}
				c.DirectionalCount++
			}
		case core.LightKindPoint, core.LightKindSpot:
			if c.OtherCount < MaxOtherLights {
				slot = Slot{Kind: SlotOther, Index: c.OtherCount}
				c.OtherCount++
				if c.IndexMap != nil {
					c.IndexMap[i] = slot.Index
				}
			}
		}
		if slot.Kind == SlotDropped {
			c.Dropped++
		}
		c.Slots[i] = slot
	}
	return c
}
