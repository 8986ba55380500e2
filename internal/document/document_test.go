package document

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inamate/overlay3d/internal/camera"
	"github.com/inamate/overlay3d/internal/config"
	"github.com/inamate/overlay3d/internal/drag"
)

func TestDefaultIsValid(t *testing.T) {
	doc := Default(nil)
	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if doc.Drag.Mode != "ray-plane" || doc.Camera.Mode != "perspective" {
		t.Fatalf("modes: drag %q camera %q", doc.Drag.Mode, doc.Camera.Mode)
	}
	if doc.Clock.Speed != 1 || !doc.Clock.Running {
		t.Fatalf("clock %+v", doc.Clock)
	}
}

func TestDefaultFromConfig(t *testing.T) {
	t.Setenv("OVERLAY_DRAG_MODE", "screen-delta")
	t.Setenv("OVERLAY_CAMERA_Z", "8")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	doc := Default(cfg)
	if doc.Drag.Mode != "screen-delta" || doc.Camera.Position.Z != 8 {
		t.Fatalf("unexpected %+v", doc)
	}
	s, err := doc.DragStrategy()
	if err != nil {
		t.Fatal(err)
	}
	if s.Mode() != drag.ModeScreenDelta {
		t.Fatalf("strategy mode %v", s.Mode())
	}
}

func TestDecodeTOMLOverDefaults(t *testing.T) {
	src := `
[transform]
position = { x = 1, y = 2, z = 3 }
rotation_degrees = { x = 0, y = 90, z = 0 }
scale = 2

[clock]
speed = 0.5
start_time = 3
`
	doc, err := Decode(strings.NewReader(src), FormatTOML, Default(nil))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.Container.Width != 1280 || !doc.Clock.Running {
		t.Fatal("defaults not kept")
	}
	tr := doc.StateTransform()
	if tr.Position.X() != 1 || tr.Position.Z() != 3 || tr.Scale != 2 {
		t.Fatalf("transform %+v", tr)
	}
	if math.Abs(tr.Rotation.Y-math.Pi/2) > 1e-12 {
		t.Fatalf("rotation y %v want pi/2", tr.Rotation.Y)
	}
	c := doc.AnimationClock()
	if c.Speed != 0.5 || c.StartTime != 3 || c.ExternalTime != 0 {
		t.Fatalf("clock %+v", c)
	}
}

func TestDecodeJSON(t *testing.T) {
	src := `{"camera": {"mode": "orthographic", "halfHeight": 2}, "container": {"width": 400, "height": 200}}`
	doc, err := Decode(strings.NewReader(src), FormatJSON, Default(nil))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	cam, err := doc.NewCamera()
	if err != nil {
		t.Fatal(err)
	}
	if cam.Mode() != camera.Orthographic {
		t.Fatalf("camera mode %v", cam.Mode())
	}
	if got := doc.Size().Aspect(); got != 2 {
		t.Fatalf("aspect %v want 2", got)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
		is     error
	}{
		{name: "drag mode", mutate: func(d *Document) { d.Drag.Mode = "fling" }, is: ErrUnknownDragMode},
		{name: "camera mode", mutate: func(d *Document) { d.Camera.Mode = "fisheye" }, is: ErrUnknownCameraMode},
		{name: "fov", mutate: func(d *Document) { d.Camera.FOV = 180 }},
		{name: "half height", mutate: func(d *Document) { d.Camera.Mode = "orthographic"; d.Camera.HalfHeight = 0 }},
		{name: "export format", mutate: func(d *Document) { d.Export.Format = "svg" }},
		{name: "scale", mutate: func(d *Document) { d.Transform.Scale = 0 }},
		{name: "speed", mutate: func(d *Document) { d.Clock.Speed = -1 }},
		{name: "start time", mutate: func(d *Document) { d.Clock.StartTime = -1 }},
		{name: "clip planes", mutate: func(d *Document) { d.Camera.Far = d.Camera.Near }},
		{name: "container", mutate: func(d *Document) { d.Container.Width = -1 }},
		{name: "no model", mutate: func(d *Document) { d.Model.BoxSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Default(nil)
			tt.mutate(&doc)
			err := doc.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("got %v want %v", err, tt.is)
			}
		})
	}
}

func TestLoadResolvesModelPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	if err := os.WriteFile(path, []byte("[model]\npath = \"assets/duck.glb\"\n"), 0o644); err != nil {
		t.Fatalf("write scene: %v", err)
	}
	doc, err := Load(path, Default(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(dir, "assets", "duck.glb"); doc.Model.Path != want {
		t.Fatalf("model path %q want %q", doc.Model.Path, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml"), Default(nil)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v want ErrNotExist", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, f := range []Format{FormatTOML, FormatJSON} {
		var buf bytes.Buffer
		want := Default(nil)
		want.Transform.Position = Vec3{X: 1.5}
		if err := Encode(&buf, f, want); err != nil {
			t.Fatalf("%s Encode: %v", f, err)
		}
		got, err := Decode(&buf, f, Default(nil))
		if err != nil {
			t.Fatalf("%s Decode: %v", f, err)
		}
		if got != want {
			t.Fatalf("%s: got %+v want %+v", f, got, want)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	if FormatForPath("a/b.JSON") != FormatJSON || FormatForPath("scene.toml") != FormatTOML || FormatForPath("scene") != FormatTOML {
		t.Fatal("format detection mismatch")
	}
}
