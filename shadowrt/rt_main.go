package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gekko3d/shadowrp"
	"github.com/gekko3d/shadowrp/shadowrt/rt/app"
)

func main() {
	configPath := flag.String("config", "", "Settings YAML (defaults when empty)")
	scenePath := flag.String("scene", "testdata/scene.yaml", "Scene YAML to render")
	atlasPNG := flag.String("atlas-png", "", "Write the last camera's shadow atlas layout to this PNG")
	panel := flag.Int("panel", 512, "Atlas panel size in the PNG, in pixels")
	debug := flag.Bool("debug", false, "Enable debug logging")
	useGPU := flag.Bool("gpu", false, "Upload and draw shadow passes on a headless WebGPU device")
	flag.Parse()

	logger := shadowrp.NewDefaultLogger("shadowrt", *debug)
	if err := run(logger, *configPath, *scenePath, *atlasPNG, *panel, *useGPU); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(logger shadowrp.Logger, configPath, scenePath, atlasPNG string, panel int, useGPU bool) error {
	settings := shadowrp.DefaultSettings()
	if configPath != "" {
		var err error
		if settings, err = shadowrp.LoadSettings(configPath); err != nil {
			return err
		}
	}

	scene, err := shadowrp.LoadScene(scenePath)
	if err != nil {
		return err
	}

	var uploader shadowrp.Uploader
	if useGPU {
		device, err := app.NewDevice(settings.ReversedZ)
		if err != nil {
			return err
		}
		defer device.Release()
		uploader = device
	}

	pipeline, err := shadowrp.NewPipeline(settings, uploader, logger)
	if err != nil {
		return err
	}

	frames, err := pipeline.Render(scene.BuildCameras(), scene.VisibleLights(), scene.CullingObjects())
	if err != nil {
		return err
	}
	for _, f := range frames {
		logger.Infof("camera %s: %d lights, %d objects, %d shadow draws, shadow distance %.1f",
			f.Camera.Name, len(f.VisibleLights), len(f.VisibleObjects), len(f.Shadows.Draws), f.ShadowDistance)
	}
	fmt.Print(pipeline.Profiler().GetStatsString())

	if atlasPNG != "" && len(frames) > 0 {
		last := frames[len(frames)-1]
		if err := app.WriteAtlasPNG(atlasPNG, &last.Shadows, panel); err != nil {
			return err
		}
		logger.Infof("wrote %s", atlasPNG)
	}
	return nil
}
