package shadowrp

import (
	"errors"
	"fmt"
	"os"

	"github.com/gekko3d/shadowrp/shadowrt/rt/core"
	"github.com/gekko3d/shadowrp/shadowrt/rt/culling"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScene = errors.New("shadowrp: invalid scene")

// SceneDef is the YAML scene description the command line tool renders.
type SceneDef struct {
	Lights  []LightDef  `yaml:"lights"`
	Objects []ObjectDef `yaml:"objects"`
	Cameras []CameraDef `yaml:"cameras"`
}

// LightDef is a light component plus its placement. Rotation is Euler
// angles in degrees applied X, Y, Z; a zero rotation shines down -Z.
type LightDef struct {
	ID             string     `yaml:"id"`
	Name           string     `yaml:"name"`
	Position       mgl32.Vec3 `yaml:"position"`
	Rotation       mgl32.Vec3 `yaml:"rotation"`
	LightComponent `yaml:",inline"`
}

func (d *LightDef) UnmarshalYAML(value *yaml.Node) error {
	type plain LightDef
	p := plain{LightComponent: DefaultLightComponent(LightTypePoint)}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = LightDef(p)
	return nil
}

func (d *LightDef) Transform() Transform {
	return Transform{
		Position: d.Position,
		Rotation: mgl32.AnglesToQuat(
			mgl32.DegToRad(d.Rotation.X()),
			mgl32.DegToRad(d.Rotation.Y()),
			mgl32.DegToRad(d.Rotation.Z()),
			mgl32.XYZ,
		),
	}
}

// ObjectDef is an axis-aligned shadow caster or receiver.
type ObjectDef struct {
	Name        string                  `yaml:"name"`
	Min         mgl32.Vec3              `yaml:"min"`
	Max         mgl32.Vec3              `yaml:"max"`
	CastShadows bool                    `yaml:"cast_shadows"`
	LayerMask   core.RenderingLayerMask `yaml:"rendering_layer_mask"`
}

func (d *ObjectDef) UnmarshalYAML(value *yaml.Node) error {
	type plain ObjectDef
	p := plain{CastShadows: true, LayerMask: core.AllRenderingLayers}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = ObjectDef(p)
	return nil
}

// CameraDef angles are in degrees.
type CameraDef struct {
	Name          string                  `yaml:"name"`
	Depth         float32                 `yaml:"depth"`
	Position      mgl32.Vec3              `yaml:"position"`
	Yaw           float32                 `yaml:"yaw"`
	Pitch         float32                 `yaml:"pitch"`
	FovY          float32                 `yaml:"fov"`
	Aspect        float32                 `yaml:"aspect"`
	Near          float32                 `yaml:"near"`
	Far           float32                 `yaml:"far"`
	RenderShadows bool                    `yaml:"render_shadows"`
	MaskLights    bool                    `yaml:"mask_lights"`
	LayerMask     core.RenderingLayerMask `yaml:"rendering_layer_mask"`
}

func (d *CameraDef) UnmarshalYAML(value *yaml.Node) error {
	type plain CameraDef
	state := core.NewCameraState()
	settings := DefaultCameraSettings()
	p := plain{
		Position:      state.Position,
		FovY:          state.FovY,
		Aspect:        state.Aspect,
		Near:          state.Near,
		Far:           state.Far,
		RenderShadows: settings.RenderShadows,
		LayerMask:     settings.RenderingLayerMask,
	}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = CameraDef(p)
	return nil
}

func (d *CameraDef) Camera() *Camera {
	return &Camera{
		Name:  d.Name,
		Depth: d.Depth,
		State: core.CameraState{
			Position: d.Position,
			Yaw:      mgl32.DegToRad(d.Yaw),
			Pitch:    mgl32.DegToRad(d.Pitch),
			FovY:     d.FovY,
			Aspect:   d.Aspect,
			Near:     d.Near,
			Far:      d.Far,
		},
		Settings: CameraSettings{
			RenderShadows:      d.RenderShadows,
			MaskLights:         d.MaskLights,
			RenderingLayerMask: d.LayerMask,
		},
	}
}

func (s *SceneDef) Validate() error {
	var errs []error
	for i, c := range s.Cameras {
		if c.Near <= 0 || c.Far <= c.Near {
			errs = append(errs, fmt.Errorf("camera %d (%s): near %v far %v", i, c.Name, c.Near, c.Far))
		}
		if c.Aspect <= 0 || c.FovY <= 0 || c.FovY >= 180 {
			errs = append(errs, fmt.Errorf("camera %d (%s): fov %v aspect %v", i, c.Name, c.FovY, c.Aspect))
		}
	}
	for i, o := range s.Objects {
		if o.Min.X() > o.Max.X() || o.Min.Y() > o.Max.Y() || o.Min.Z() > o.Max.Z() {
			errs = append(errs, fmt.Errorf("object %d (%s): min %v above max %v", i, o.Name, o.Min, o.Max))
		}
	}
	for i, l := range s.Lights {
		if l.Type != LightTypeDirectional && l.Range <= 0 {
			errs = append(errs, fmt.Errorf("light %d (%s): range %v", i, l.Name, l.Range))
		}
		if l.Type == LightTypeSpot {
			if l.ConeAngle <= 0 || l.ConeAngle >= 180 {
				errs = append(errs, fmt.Errorf("light %d (%s): cone_angle %v outside (0, 180)", i, l.Name, l.ConeAngle))
			}
			if l.InnerConeAngle < 0 || l.InnerConeAngle > l.ConeAngle {
				errs = append(errs, fmt.Errorf("light %d (%s): inner_cone_angle %v outside [0, %v]", i, l.Name, l.InnerConeAngle, l.ConeAngle))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScene, errors.Join(errs...))
	}
	return nil
}

// VisibleLights snapshots every light for one render. Lights without an ID
// get a fresh one that sticks for later renders.
func (s *SceneDef) VisibleLights() []core.VisibleLight {
	out := make([]core.VisibleLight, 0, len(s.Lights))
	for i := range s.Lights {
		d := &s.Lights[i]
		if d.ID == "" {
			d.ID = NewLightID()
		}
		out = append(out, d.Snapshot(d.ID, d.Name, d.Transform()))
	}
	return out
}

func (s *SceneDef) CullingObjects() []culling.Object {
	out := make([]culling.Object, 0, len(s.Objects))
	for _, d := range s.Objects {
		out = append(out, culling.Object{
			Name:               d.Name,
			Bounds:             core.Bounds{Min: d.Min, Max: d.Max},
			CastShadows:        d.CastShadows,
			RenderingLayerMask: d.LayerMask,
		})
	}
	return out
}

// BuildCameras returns the scene cameras sorted by depth.
func (s *SceneDef) BuildCameras() []*Camera {
	cams := make([]*Camera, 0, len(s.Cameras))
	for i := range s.Cameras {
		cams = append(cams, s.Cameras[i].Camera())
	}
	SortCameras(cams)
	return cams
}

func ParseScene(data []byte) (*SceneDef, error) {
	var s SceneDef
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("shadowrp: parse scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadScene(path string) (*SceneDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shadowrp: read %s: %w", path, err)
	}
	return ParseScene(data)
}
