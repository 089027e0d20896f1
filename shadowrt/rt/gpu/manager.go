package gpu

import (
	"fmt"

	"github.com/gekko3d/shadowrp/shadowrt/rt/lighting"
	"github.com/gekko3d/shadowrp/shadowrt/rt/shadow"

	"github.com/cogentcore/webgpu/wgpu"
)

// Atlas is one shadow atlas depth texture.
type Atlas struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Size    int
}

func (a *Atlas) release() {
	if a.View != nil {
		a.View.Release()
	}
	if a.Texture != nil {
		a.Texture.Release()
	}
	*a = Atlas{}
}

// Manager owns the GPU side of the light and shadow uniforms: two uniform
// buffers, the two shadow atlases and a comparison sampler for PCF.
type Manager struct {
	Device *wgpu.Device

	LightsBuf  *wgpu.Buffer
	ShadowsBuf *wgpu.Buffer

	DirectionalAtlas Atlas
	OtherAtlas       Atlas
	ShadowSampler    *wgpu.Sampler

	// ReversedZ clears atlases to 0 instead of 1.
	ReversedZ bool
}

func NewManager(device *wgpu.Device) *Manager {
	return &Manager{Device: device}
}

func (m *Manager) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage) (bool, error) {
	neededSize := uint64(len(data))
	if neededSize%16 != 0 {
		neededSize += 16 - (neededSize % 16)
	}

	created := false
	current := *buf
	if current == nil || current.GetSize() < neededSize {
		if current != nil {
			current.Release()
		}
		newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name,
			Size:  neededSize,
			Usage: usage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return false, fmt.Errorf("gpu: create %s: %w", name, err)
		}
		*buf = newBuf
		created = true
	}
	if len(data) > 0 {
		m.Device.GetQueue().WriteBuffer(*buf, 0, data)
	}
	return created, nil
}

func (m *Manager) ensureAtlas(name string, atlas *Atlas, size int) (bool, error) {
	if atlas.Texture != nil && atlas.Size == size {
		return false, nil
	}
	atlas.release()

	tex, err := m.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: name,
		Size: wgpu.Extent3D{
			Width:              uint32(size),
			Height:             uint32(size),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return false, fmt.Errorf("gpu: create %s: %w", name, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return false, fmt.Errorf("gpu: create %s view: %w", name, err)
	}
	*atlas = Atlas{Texture: tex, View: view, Size: size}
	return true, nil
}

func (m *Manager) ensureSampler() error {
	if m.ShadowSampler != nil {
		return nil
	}
	compare := wgpu.CompareFunctionLess
	if m.ReversedZ {
		compare = wgpu.CompareFunctionGreater
	}
	samp, err := m.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       compare,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("gpu: create shadow sampler: %w", err)
	}
	m.ShadowSampler = samp
	return nil
}

// Upload writes both uniform blocks and makes sure the atlas textures match
// the frame's atlas sizes. An aliased other atlas gets no texture of its
// own; bind DirectionalAtlas in its place.
func (m *Manager) Upload(frame *lighting.FrameData) error {
	if _, err := m.ensureBuffer("LightsUB", &m.LightsBuf, MarshalLights(&frame.Lights, frame.PerObjectLights), wgpu.BufferUsageUniform); err != nil {
		return err
	}
	if _, err := m.ensureBuffer("ShadowsUB", &m.ShadowsBuf, MarshalShadows(&frame.Shadows), wgpu.BufferUsageUniform); err != nil {
		return err
	}
	dirSize, otherSize, err := atlasSizes(&frame.Shadows)
	if err != nil {
		return err
	}
	if _, err := m.ensureAtlas("Directional Shadow Atlas", &m.DirectionalAtlas, dirSize); err != nil {
		return err
	}
	if otherSize == 0 {
		m.OtherAtlas.release()
	} else if _, err := m.ensureAtlas("Other Shadow Atlas", &m.OtherAtlas, otherSize); err != nil {
		return err
	}
	return m.ensureSampler()
}

// atlasSizes returns the texture edge each atlas needs for frame. otherSize
// is 0 when the other atlas aliases the directional one and needs no
// texture.
func atlasSizes(frame *shadow.Frame) (dirSize, otherSize int, err error) {
	dirSize = frame.DirectionalAtlas.Size
	if dirSize <= 0 {
		return 0, 0, fmt.Errorf("gpu: directional atlas size %d", dirSize)
	}
	if frame.OtherAtlas.AliasDirectional {
		return dirSize, 0, nil
	}
	otherSize = frame.OtherAtlas.Size
	if otherSize <= 0 {
		return 0, 0, fmt.Errorf("gpu: other atlas size %d", otherSize)
	}
	return dirSize, otherSize, nil
}

// OtherAtlasView is the view shaders should sample for spot and point
// shadows this frame.
func (m *Manager) OtherAtlasView() *wgpu.TextureView {
	if m.OtherAtlas.View == nil {
		return m.DirectionalAtlas.View
	}
	return m.OtherAtlas.View
}

// DrawFunc records the caster draws of one shadow tile. The viewport and
// scissor are already set.
type DrawFunc func(pass *wgpu.RenderPassEncoder, draw shadow.DrawCall)

// EncodeShadowPasses records one depth-only pass per active atlas, clearing
// it and then visiting each draw with its tile viewport set.
func (m *Manager) EncodeShadowPasses(encoder *wgpu.CommandEncoder, frame *shadow.Frame, draw DrawFunc) error {
	targets := []struct {
		kind   shadow.AtlasKind
		active bool
		view   *wgpu.TextureView
	}{
		{shadow.AtlasDirectional, frame.DirectionalAtlas.Active, m.DirectionalAtlas.View},
		{shadow.AtlasOther, frame.OtherAtlas.Active, m.OtherAtlas.View},
	}

	clearDepth := float32(1)
	if m.ReversedZ {
		clearDepth = 0
	}

	for _, target := range targets {
		if !target.active {
			continue
		}
		if target.view == nil {
			return fmt.Errorf("gpu: %s atlas not uploaded", target.kind)
		}

		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			// depth only
			ColorAttachments: nil,
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            target.view,
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: clearDepth,
			},
		})
		for _, d := range frame.Draws {
			if d.Atlas != target.kind {
				continue
			}
			vp := d.Viewport
			pass.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, 0, 1)
			pass.SetScissorRect(uint32(vp.X), uint32(vp.Y), uint32(vp.Width), uint32(vp.Height))
			draw(pass, d)
		}
		err := pass.End()
		pass.Release()
		if err != nil {
			return fmt.Errorf("gpu: end %s shadow pass: %w", target.kind, err)
		}
	}
	return nil
}

func (m *Manager) Release() {
	if m.LightsBuf != nil {
		m.LightsBuf.Release()
		m.LightsBuf = nil
	}
	if m.ShadowsBuf != nil {
		m.ShadowsBuf.Release()
		m.ShadowsBuf = nil
	}
	m.DirectionalAtlas.release()
	m.OtherAtlas.release()
	if m.ShadowSampler != nil {
		m.ShadowSampler.Release()
		m.ShadowSampler = nil
	}
}
