package core

import "math"

// RenderingLayerMask selects which rendering layers an object or light belongs to.
type RenderingLayerMask int32

// AllRenderingLayers is the "everything" mask.
const AllRenderingLayers RenderingLayerMask = -1

func (m RenderingLayerMask) Overlaps(other RenderingLayerMask) bool {
	return m&other != 0
}

// AsFloat reinterprets the mask bits as a float32 so it can ride in the w
// lane of a vec4 uniform. Shaders recover it with asuint().
func (m RenderingLayerMask) AsFloat() float32 {
	return math.Float32frombits(uint32(m))
}
