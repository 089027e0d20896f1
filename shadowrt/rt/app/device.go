package app

import (
	"fmt"

	"github.com/gekko3d/shadowrp/shadowrt/rt/gpu"
	"github.com/gekko3d/shadowrp/shadowrt/rt/lighting"
	"github.com/gekko3d/shadowrp/shadowrt/rt/shadow"

	"github.com/cogentcore/webgpu/wgpu"
)

// Device is a headless WebGPU device that owns the shadow resources. There
// is no surface; shadow atlases are render targets only.
type Device struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue

	Shadows *gpu.Manager
}

func NewDevice(reversedZ bool) (*Device, error) {
	d := &Device{}
	if err := d.Init(reversedZ); err != nil {
		d.Release()
		return nil, err
	}
	return d, nil
}

func (d *Device) Init(reversedZ bool) error {
	d.Instance = wgpu.CreateInstance(nil)

	adapter, err := d.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("app: request adapter: %w", err)
	}
	d.Adapter = adapter

	d.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("app: request device: %w", err)
	}
	d.Queue = d.Device.GetQueue()

	d.Shadows = gpu.NewManager(d.Device)
	d.Shadows.ReversedZ = reversedZ
	return nil
}

// Upload writes the frame's uniforms and (re)creates the atlases, then
// records and submits the shadow passes. draw may be nil to only clear the
// atlas tiles.
func (d *Device) Upload(frame *lighting.FrameData) error {
	return d.UploadAndDraw(frame, nil)
}

func (d *Device) UploadAndDraw(frame *lighting.FrameData, draw gpu.DrawFunc) error {
	if err := d.Shadows.Upload(frame); err != nil {
		return err
	}
	if len(frame.Shadows.Draws) == 0 {
		return nil
	}
	if draw == nil {
		draw = func(*wgpu.RenderPassEncoder, shadow.DrawCall) {}
	}

	encoder, err := d.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("app: create command encoder: %w", err)
	}
	defer encoder.Release()

	if err := d.Shadows.EncodeShadowPasses(encoder, &frame.Shadows, draw); err != nil {
		return err
	}
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("app: finish shadow commands: %w", err)
	}
	defer cmd.Release()
	d.Queue.Submit(cmd)
	return nil
}

func (d *Device) Release() {
	if d.Shadows != nil {
		d.Shadows.Release()
		d.Shadows = nil
	}
	if d.Queue != nil {
		d.Queue.Release()
		d.Queue = nil
	}
	if d.Device != nil {
		d.Device.Release()
		d.Device = nil
	}
	if d.Adapter != nil {
		d.Adapter.Release()
		d.Adapter = nil
	}
	if d.Instance != nil {
		d.Instance.Release()
		d.Instance = nil
	}
}
