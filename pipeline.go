package shadowrp

import (
	"fmt"
	"slices"

	"github.com/gekko3d/shadowrp/shadowrt/rt/app"
	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/gekko3d/shadowrp/shadowrt/rt/culling"
	"github.com/gekko3d/shadowrp/shadowrt/rt/lighting"
	"github.com/gekko3d/shadowrp/shadowrt/rt/shadow"
)

// Uploader receives each camera's frame data, normally a gpu.Manager.
type Uploader interface {
	Upload(frame *lighting.FrameData) error
}

// CameraFrame is the per-camera outcome of a Render. Unlike the
// lighting.FrameData it is built from, it is not overwritten by later
// cameras.
type CameraFrame struct {
	Camera         *Camera
	ShadowDistance float32
	VisibleLights  []core.VisibleLight
	VisibleObjects []int

	DirectionalLights int
	OtherLights       int
	MaskedLights      int
	DroppedLights     int
	Unshadowed        []string

	Shadows shadow.Frame
	// Casters lists the object indices drawn by each shadow draw.
	Casters [][]int
}

type Pipeline struct {
	settings Settings
	lighting *lighting.Lighting
	uploader Uploader
	logger   Logger
	profiler *app.Profiler
}

// NewPipeline validates settings. uploader may be nil for CPU-only runs and
// logger may be nil to discard log output.
func NewPipeline(settings Settings, uploader Uploader, logger Logger) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	logger.SetDebug(settings.Debug || logger.DebugEnabled())
	return &Pipeline{
		settings: settings,
		lighting: lighting.New(settings.Shadows, settings.ClipConvention()),
		uploader: uploader,
		logger:   logger,
		profiler: app.NewProfiler(),
	}, nil
}

func (p *Pipeline) Settings() Settings      { return p.settings }
func (p *Pipeline) Profiler() *app.Profiler { return p.profiler }

// Render culls, lights and shadows every camera in depth order. The cameras
// slice is sorted in place.
func (p *Pipeline) Render(cameras []*Camera, lights []core.VisibleLight, objects []culling.Object) ([]CameraFrame, error) {
	p.profiler.Reset()
	defer p.profiler.Scope("Render")()

	SortCameras(cameras)
	frames := make([]CameraFrame, 0, len(cameras))
	for _, cam := range cameras {
		f, err := p.renderCamera(cam, lights, objects)
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
	p.profiler.SetCount("Cameras", len(cameras))
	return frames, nil
}

func (p *Pipeline) renderCamera(cam *Camera, lights []core.VisibleLight, objects []culling.Object) (CameraFrame, error) {
	dist := cam.ShadowDistance(p.settings.Shadows.MaxDistance)

	endCull := p.profiler.Scope("Cull")
	results := culling.Cull(&cam.State, lights, objects, dist)
	endCull()

	endSetup := p.profiler.Scope("Lighting")
	data, err := p.lighting.Setup(results.VisibleLights, results, lighting.ClassifyOptions{
		CameraMask:      cam.LightMask(),
		PerObjectLights: p.settings.PerObjectLights,
		IndexMapLength:  len(results.VisibleLights),
	})
	endSetup()
	if err != nil {
		return CameraFrame{}, fmt.Errorf("shadowrp: camera %s: %w", cam.Name, err)
	}

	if p.uploader != nil {
		endUpload := p.profiler.Scope("Upload")
		err := p.uploader.Upload(data)
		endUpload()
		if err != nil {
			return CameraFrame{}, fmt.Errorf("shadowrp: upload camera %s: %w", cam.Name, err)
		}
	}

	c := data.Classification
	f := CameraFrame{
		Camera:            cam,
		ShadowDistance:    dist,
		VisibleLights:     results.VisibleLights,
		VisibleObjects:    results.VisibleObjects,
		DirectionalLights: c.DirectionalCount,
		OtherLights:       c.OtherCount,
		MaskedLights:      c.Masked,
		DroppedLights:     c.Dropped,
		Shadows:           data.Shadows,
	}
	f.Shadows.Draws = slices.Clone(data.Shadows.Draws)
	for i, r := range data.Reservations {
		if _, ok := r.(shadow.Unshadowed); ok {
			f.Unshadowed = append(f.Unshadowed, results.VisibleLights[i].Name)
		}
	}

	casters := 0
	f.Casters = make([][]int, len(f.Shadows.Draws))
	for i, d := range f.Shadows.Draws {
		f.Casters[i] = results.Casters(d)
		casters += len(f.Casters[i])
	}

	p.profiler.AddCount("Visible Lights", len(results.VisibleLights))
	p.profiler.AddCount("Visible Objects", len(results.VisibleObjects))
	p.profiler.AddCount("Shadow Draws", len(f.Shadows.Draws))
	p.profiler.AddCount("Caster Draws", casters)

	if p.logger.DebugEnabled() {
		p.logger.Debugf("camera %s: %d directional, %d other, %d masked, %d dropped, %d shadow draws",
			cam.Name, f.DirectionalLights, f.OtherLights, f.MaskedLights, f.DroppedLights, len(f.Shadows.Draws))
		if len(f.Unshadowed) > 0 {
			p.logger.Debugf("camera %s: shadowed without a map: %v", cam.Name, f.Unshadowed)
		}
	}
	return f, nil
}
