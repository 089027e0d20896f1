package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gekko3d/shadowrp/shadowrt/rt/lighting"
	"github.com/gekko3d/shadowrp/shadowrt/rt/shadow"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// LightsUniformSize is the byte size of the Lights uniform block.
	LightsUniformSize = 5328
	// ShadowsUniformSize is the byte size of the Shadows uniform block.
	ShadowsUniformSize = 2480
)

// Byte offsets of the Lights uniform block.
const (
	offDirectionalColors     = 16
	offDirectionalDirections = offDirectionalColors + lighting.MaxDirectionalLights*16
	offDirectionalShadowData = offDirectionalDirections + lighting.MaxDirectionalLights*16
	offOtherColors           = offDirectionalShadowData + lighting.MaxDirectionalLights*16
	offOtherPositions        = offOtherColors + lighting.MaxOtherLights*16
	offOtherDirections       = offOtherPositions + lighting.MaxOtherLights*16
	offOtherSpotAngles       = offOtherDirections + lighting.MaxOtherLights*16
	offOtherShadowData       = offOtherSpotAngles + lighting.MaxOtherLights*16
)

// Byte offsets of the Shadows uniform block.
const (
	offDirectionalMatrices = 0
	offOtherMatrices       = offDirectionalMatrices + shadow.MaxDirectionalTiles*64
	offOtherTiles          = offOtherMatrices + shadow.MaxOtherTiles*64
	offCascadeSpheres      = offOtherTiles + shadow.MaxOtherTiles*16
	offCascadeData         = offCascadeSpheres + shadow.MaxCascades*16
	offDistanceFade        = offCascadeData + shadow.MaxCascades*16
	offAtlasSizes          = offDistanceFade + 16
	offShadowCounts        = offAtlasSizes + 16
)

// MarshalLights packs b as the std140 block
//
//	struct Lights {
//	  directional_count: i32;                          -- 0
//	  other_count: i32;                                -- 4
//	  per_object_lights: u32;                          -- 8
//	  _pad: u32;                                       -- 12
//	  directional_colors: array<vec4<f32>, 4>;         -- 16
//	  directional_dirs_and_masks: array<vec4<f32>, 4>; -- 80
//	  directional_shadow_data: array<vec4<f32>, 4>;    -- 144
//	  other_colors: array<vec4<f32>, 64>;              -- 208
//	  other_positions: array<vec4<f32>, 64>;           -- 1232
//	  other_dirs_and_masks: array<vec4<f32>, 64>;      -- 2256
//	  other_spot_angles: array<vec4<f32>, 64>;         -- 3280
//	  other_shadow_data: array<vec4<f32>, 64>;         -- 4304
//	} -> 5328 bytes
//
// Mask lanes are raw bits and must be read with bitcast<u32>.
func MarshalLights(b *lighting.Buffers, perObjectLights bool) []byte {
	buf := make([]byte, LightsUniformSize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(int32(b.DirectionalCount)))
	binary.LittleEndian.PutUint32(buf[4:], uint32(int32(b.OtherCount)))
	if perObjectLights {
		binary.LittleEndian.PutUint32(buf[8:], 1)
	}

	putVec4s(buf[offDirectionalColors:], b.DirectionalColors[:])
	putVec4s(buf[offDirectionalDirections:], b.DirectionalDirectionsAndMasks[:])
	putVec4s(buf[offDirectionalShadowData:], b.DirectionalShadowData[:])
	putVec4s(buf[offOtherColors:], b.OtherColors[:])
	putVec4s(buf[offOtherPositions:], b.OtherPositions[:])
	putVec4s(buf[offOtherDirections:], b.OtherDirectionsAndMasks[:])
	putVec4s(buf[offOtherSpotAngles:], b.OtherSpotAngles[:])
	putVec4s(buf[offOtherShadowData:], b.OtherShadowData[:])
	return buf
}

// MarshalShadows packs f as the std140 block
//
//	struct Shadows {
//	  directional_matrices: array<mat4x4<f32>, 16>; -- 0
//	  other_matrices: array<mat4x4<f32>, 16>;       -- 1024
//	  other_tiles: array<vec4<f32>, 16>;            -- 2048
//	  cascade_spheres: array<vec4<f32>, 4>;         -- 2304
//	  cascade_data: array<vec4<f32>, 4>;            -- 2368
//	  distance_fade: vec4<f32>;                     -- 2432
//	  atlas_sizes: vec4<f32>;                       -- 2448
//	  cascade_count: i32;                           -- 2464
//	  directional_filter: i32;                      -- 2468
//	  other_filter: i32;                            -- 2472
//	  shadow_mask: i32;                             -- 2476
//	} -> 2480 bytes
//
// The three keyword lanes mirror Frame.Keywords for hosts that branch on
// uniforms instead of compiling shader variants.
func MarshalShadows(f *shadow.Frame) []byte {
	buf := make([]byte, ShadowsUniformSize)
	for i := range f.DirectionalMatrices {
		putMat4(buf[offDirectionalMatrices+i*64:], f.DirectionalMatrices[i])
	}
	for i := range f.OtherMatrices {
		putMat4(buf[offOtherMatrices+i*64:], f.OtherMatrices[i])
	}
	putVec4s(buf[offOtherTiles:], f.OtherTiles[:])
	for i, c := range f.Cascades {
		putVec4(buf[offCascadeSpheres+i*16:], c.Sphere)
		putVec4(buf[offCascadeData+i*16:], c.Data)
	}
	putVec4(buf[offDistanceFade:], f.DistanceFade)
	putVec4(buf[offAtlasSizes:], f.AtlasSizes)

	counts := [4]int{f.CascadeCount, f.Keywords.DirectionalFilter, f.Keywords.OtherFilter, f.Keywords.ShadowMask}
	for i, v := range counts {
		binary.LittleEndian.PutUint32(buf[offShadowCounts+i*4:], uint32(int32(v)))
	}
	return buf
}

func putVec4(buf []byte, v mgl32.Vec4) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}

func putVec4s(buf []byte, vs []mgl32.Vec4) {
	for i, v := range vs {
		putVec4(buf[i*16:], v)
	}
}

// putMat4 writes m column by column, which is both mgl32's storage order
// and the WGSL mat4x4 layout.
func putMat4(buf []byte, m mgl32.Mat4) {
	for i, f := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}
