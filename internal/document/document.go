package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"

	"github.com/inamate/overlay3d/internal/camera"
	"github.com/inamate/overlay3d/internal/clock"
	"github.com/inamate/overlay3d/internal/config"
	"github.com/inamate/overlay3d/internal/drag"
	"github.com/inamate/overlay3d/internal/export"
	"github.com/inamate/overlay3d/internal/geom"
	"github.com/inamate/overlay3d/internal/projector"
	"github.com/inamate/overlay3d/internal/state"
)

var (
	ErrUnknownDragMode   = errors.New("unknown drag mode")
	ErrUnknownCameraMode = errors.New("unknown camera mode")
)

// Format selects the document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatForPath picks the encoding from the file extension.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatTOML
}

type Vec3 struct {
	X float64 `toml:"x" json:"x"`
	Y float64 `toml:"y" json:"y"`
	Z float64 `toml:"z" json:"z"`
}

func (v Vec3) Vec() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func FromVec(v mgl64.Vec3) Vec3 { return Vec3{X: v[0], Y: v[1], Z: v[2]} }

// Document describes one overlay scene: the model, its placement and timing,
// the camera, the container it is drawn into and where exports go.
type Document struct {
	Model     Model     `toml:"model" json:"model"`
	Transform Transform `toml:"transform" json:"transform"`
	Clock     Clock     `toml:"clock" json:"clock"`
	Camera    Camera    `toml:"camera" json:"camera"`
	Container Container `toml:"container" json:"container"`
	Drag      Drag      `toml:"drag" json:"drag"`
	Video     Video     `toml:"video" json:"video"`
	Export    Export    `toml:"export" json:"export"`
}

type Model struct {
	Path     string  `toml:"path" json:"path"`
	BoxSize  float64 `toml:"box_size" json:"boxSize"`
	Recenter bool    `toml:"recenter" json:"recenter"`
	MaxBytes int64   `toml:"max_bytes" json:"maxBytes"`
}

type Transform struct {
	Position        Vec3    `toml:"position" json:"position"`
	RotationDegrees Vec3    `toml:"rotation_degrees" json:"rotationDegrees"`
	Scale           float64 `toml:"scale" json:"scale"`
}

type Clock struct {
	Speed     float64 `toml:"speed" json:"speed"`
	StartTime float64 `toml:"start_time" json:"startTime"`
	Running   bool    `toml:"running" json:"running"`
}

type Camera struct {
	Mode       string  `toml:"mode" json:"mode"`
	FOV        float64 `toml:"fov" json:"fov"`
	Position   Vec3    `toml:"position" json:"position"`
	Target     Vec3    `toml:"target" json:"target"`
	Near       float64 `toml:"near" json:"near"`
	Far        float64 `toml:"far" json:"far"`
	HalfHeight float64 `toml:"half_height" json:"halfHeight"`
}

type Container struct {
	Width  float64 `toml:"width" json:"width"`
	Height float64 `toml:"height" json:"height"`
}

type Drag struct {
	Mode        string  `toml:"mode" json:"mode"`
	Sensitivity float64 `toml:"sensitivity" json:"sensitivity"`
}

// Video describes the simulated player used by headless timeline runs.
type Video struct {
	Duration float64 `toml:"duration" json:"duration"`
	FPS      float64 `toml:"fps" json:"fps"`
}

type Export struct {
	Path   string `toml:"path" json:"path"`
	Format string `toml:"format" json:"format"`
}

// Default returns a document populated from process configuration.
func Default(cfg *config.Config) Document {
	if cfg == nil {
		cfg = &config.Config{
			DragMode:        drag.ModeRayPlane.String(),
			DragSensitivity: drag.DefaultSensitivity,
			CameraMode:      camera.Perspective.String(),
			CameraFOV:       camera.DefaultFOV,
			CameraZ:         camera.DefaultDistance,
			CameraNear:      camera.DefaultNear,
			CameraFar:       camera.DefaultFar,
			OrthoHalfHeight: camera.DefaultHalfHeight,
			ModelRecenter:   true,
			ExportPath:      export.DefaultFileName,
		}
	}
	return Document{
		Model:     Model{BoxSize: 1, Recenter: cfg.ModelRecenter, MaxBytes: cfg.MaxModelBytes},
		Transform: Transform{Scale: 1},
		Clock:     Clock{Speed: 1, Running: true},
		Camera: Camera{
			Mode:       cfg.CameraMode,
			FOV:        cfg.CameraFOV,
			Position:   Vec3{Z: cfg.CameraZ},
			Near:       cfg.CameraNear,
			Far:        cfg.CameraFar,
			HalfHeight: cfg.OrthoHalfHeight,
		},
		Container: Container{Width: 1280, Height: 720},
		Drag:      Drag{Mode: cfg.DragMode, Sensitivity: cfg.DragSensitivity},
		Video:     Video{Duration: 10, FPS: 30},
		Export:    Export{Path: cfg.ExportPath, Format: "box3"},
	}
}

// Load decodes the document at path over base. Relative model paths are
// resolved against the document's directory.
func Load(path string, base Document) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f, FormatForPath(path), base)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Model.Path != "" && !filepath.IsAbs(doc.Model.Path) {
		doc.Model.Path = filepath.Join(filepath.Dir(path), doc.Model.Path)
	}
	return doc, nil
}

// Decode reads a document in the given format over base and validates it.
func Decode(r io.Reader, format Format, base Document) (Document, error) {
	doc := base
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("decode json: %w", err)
		}
	case FormatTOML, "":
		if err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("unsupported scene format %q", format)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Encode writes the document in the given format.
func Encode(w io.Writer, format Format, doc Document) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	return toml.NewEncoder(w).Encode(doc)
}

// Validate checks everything the core would otherwise have to clamp.
func (d Document) Validate() error {
	if _, err := drag.ParseMode(d.Drag.Mode); err != nil {
		return fmt.Errorf("drag.mode %q: %w", d.Drag.Mode, ErrUnknownDragMode)
	}
	mode, err := camera.ParseMode(d.Camera.Mode)
	if err != nil {
		return fmt.Errorf("camera.mode %q: %w", d.Camera.Mode, ErrUnknownCameraMode)
	}
	if mode == camera.Perspective && (d.Camera.FOV <= 0 || d.Camera.FOV >= 180) {
		return fmt.Errorf("camera.fov must be in (0, 180), got %v", d.Camera.FOV)
	}
	if mode == camera.Orthographic && d.Camera.HalfHeight <= 0 {
		return fmt.Errorf("camera.half_height must be positive, got %v", d.Camera.HalfHeight)
	}
	if _, err := export.ParseFormat(d.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if d.Transform.Scale <= 0 {
		return fmt.Errorf("transform.scale must be positive, got %v", d.Transform.Scale)
	}
	if d.Clock.Speed < 0 {
		return fmt.Errorf("clock.speed must not be negative, got %v", d.Clock.Speed)
	}
	if d.Clock.StartTime < 0 {
		return fmt.Errorf("clock.start_time must not be negative, got %v", d.Clock.StartTime)
	}
	if d.Camera.Near <= 0 || d.Camera.Far <= d.Camera.Near {
		return fmt.Errorf("camera clip planes invalid: near %v far %v", d.Camera.Near, d.Camera.Far)
	}
	if d.Container.Width < 0 || d.Container.Height < 0 {
		return fmt.Errorf("container size must not be negative, got %vx%v", d.Container.Width, d.Container.Height)
	}
	if d.Model.Path == "" && d.Model.BoxSize <= 0 {
		return errors.New("model.path or a positive model.box_size is required")
	}
	return nil
}

// StateTransform converts the placement to the store's radians form.
func (d Document) StateTransform() state.Transform {
	r := d.Transform.RotationDegrees
	return state.Transform{
		Position: d.Transform.Position.Vec(),
		Rotation: geom.EulerDegrees(r.X, r.Y, r.Z),
		Scale:    d.Transform.Scale,
	}
}

// AnimationClock returns the clock parameters with the video at time zero.
func (d Document) AnimationClock() clock.Clock {
	return clock.Clock{Speed: d.Clock.Speed, StartTime: d.Clock.StartTime, Running: d.Clock.Running}
}

// Size returns the container size.
func (d Document) Size() projector.Size {
	return projector.Size{Width: d.Container.Width, Height: d.Container.Height}
}

// NewCamera builds the camera described by the document.
func (d Document) NewCamera() (*camera.Camera, error) {
	mode, err := camera.ParseMode(d.Camera.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCameraMode, err)
	}
	c := d.Camera
	aspect := d.Size().Aspect()
	if mode == camera.Orthographic {
		return camera.NewOrthographic(c.Position.Vec(), c.Target.Vec(), c.HalfHeight, aspect, c.Near, c.Far), nil
	}
	return camera.NewPerspective(c.Position.Vec(), c.Target.Vec(), c.FOV, aspect, c.Near, c.Far), nil
}

// DragStrategy returns the configured drag strategy.
func (d Document) DragStrategy() (drag.Strategy, error) {
	mode, err := drag.ParseMode(d.Drag.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownDragMode, err)
	}
	return drag.NewStrategy(mode, d.Drag.Sensitivity), nil
}
