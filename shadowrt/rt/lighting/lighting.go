// Package lighting turns the visible lights of one camera into the light
// and shadow uniforms of a forward renderer.
package lighting

import (
	"fmt"

	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/gekko3d/shadowrp/shadowrt/rt/shadow"
)

// FrameData is everything one camera render uploads. It is owned by the
// Lighting that produced it and overwritten by the next Setup.
type FrameData struct {
	Lights  Buffers
	Shadows shadow.Frame

	Classification Classification
	// Reservations holds the shadow outcome per visible light, nil for
	// dropped lights.
	Reservations []shadow.ShadowData
	// PerObjectLights mirrors the option the frame was set up with; shaders
	// switch to the per-object light index path when it is set.
	PerObjectLights bool
}

type Lighting struct {
	table *shadow.Table
	frame FrameData
}

func New(settings shadow.Settings, clip shadow.ClipConvention) *Lighting {
	return &Lighting{table: shadow.NewTable(settings, clip)}
}

func (l *Lighting) Settings() shadow.Settings {
	return l.table.Settings()
}

// Setup classifies lights, reserves their shadows against source and lays
// out both shadow atlases. The returned frame stays valid until the next
// call.
func (l *Lighting) Setup(lights []core.VisibleLight, source shadow.CasterSource, opts ClassifyOptions) (*FrameData, error) {
	f := &l.frame
	f.Lights = Buffers{}
	f.PerObjectLights = opts.PerObjectLights
	f.Reservations = f.Reservations[:0]

	l.table.Setup(source)
	f.Classification = Classify(lights, opts)

	for i := range lights {
		light := &lights[i]
		slot := f.Classification.Slots[i]
		var data shadow.ShadowData

		switch slot.Kind {
		case SlotDirectional:
			data = l.table.ReserveDirectional(light, i)
			f.Lights.SetDirectional(slot.Index, light, data)
		case SlotOther:
			data = l.table.ReserveOther(light, i)
			if light.Kind == core.LightKindPoint {
				f.Lights.SetPoint(slot.Index, light, data)
			} else {
				f.Lights.SetSpot(slot.Index, light, data)
			}
		}
		f.Reservations = append(f.Reservations, data)
	}
	f.Lights.DirectionalCount = f.Classification.DirectionalCount
	f.Lights.OtherCount = f.Classification.OtherCount

	if err := l.table.Render(&f.Shadows); err != nil {
		return nil, fmt.Errorf("lighting: render shadows: %w", err)
	}
	return f, nil
}
