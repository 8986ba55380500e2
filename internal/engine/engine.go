package engine

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/inamate/overlay3d/internal/camera"
	"github.com/inamate/overlay3d/internal/clock"
	"github.com/inamate/overlay3d/internal/drag"
	"github.com/inamate/overlay3d/internal/export"
	"github.com/inamate/overlay3d/internal/geom"
	"github.com/inamate/overlay3d/internal/model"
	"github.com/inamate/overlay3d/internal/projector"
	"github.com/inamate/overlay3d/internal/state"
)

// Options configure a new Engine. Zero values pick defaults.
type Options struct {
	Store    *state.Store
	Camera   *camera.Camera
	Strategy drag.Strategy
	Capturer drag.Capturer
	Model    *model.Model
	Size     projector.Size
	Style    *Style
}

// projectionKey identifies the inputs a cached projection was computed from.
type projectionKey struct {
	transformSeq uint64
	cam          *camera.Camera
	camVersion   uint64
	size         projector.Size
	model        *model.Model
}

// Engine owns the overlay state: the transform store, the animation
// timeline, the drag state machine, the camera and the container. It is
// driven from one goroutine; the host calls OnFrame once per rendered frame
// and forwards pointer events between frames.
type Engine struct {
	id  string
	log *slog.Logger

	store    *state.Store
	timeline clock.Timeline
	mapper   *drag.Mapper
	cam      *camera.Camera
	model    *model.Model
	style    Style

	size        projector.Size
	viewport    drag.Viewport
	hasViewport bool

	// Cached projection
	proj    projector.Projection
	projErr error
	projKey projectionKey
	valid   bool

	// Pixel region touched by recomputed projections since TakeDirtyRect
	drawn geom.Rect
	dirty geom.Rect
}

// NewEngine creates a new engine instance.
func NewEngine(opts Options) *Engine {
	id := uuid.NewString()
	e := &Engine{
		id:     id,
		log:    slog.Default().With("engine", id),
		store:  opts.Store,
		cam:    opts.Camera,
		model:  opts.Model,
		style:  DefaultStyle,
		mapper: drag.NewMapper(opts.Strategy, opts.Capturer),
	}
	if e.store == nil {
		e.store = state.NewStore(state.DefaultTransform(), clock.Default())
	}
	if e.cam == nil {
		e.cam = camera.Default()
	}
	if opts.Style != nil {
		e.style = *opts.Style
	}
	e.SetContainerSize(opts.Size.Width, opts.Size.Height)
	return e
}

// ID returns the engine session id.
func (e *Engine) ID() string { return e.id }

// Store returns the transform state store.
func (e *Engine) Store() *state.Store { return e.store }

// Camera returns the active camera.
func (e *Engine) Camera() *camera.Camera { return e.cam }

// Model returns the loaded model, or nil.
func (e *Engine) Model() *model.Model { return e.model }

// --- Commands (host → engine) ---

// OnFrame advances the animation by the gated delta for this frame and
// brings the projection up to date. It returns the applied animation delta.
func (e *Engine) OnFrame(deltaSeconds float64) float64 {
	applied := e.timeline.Step(deltaSeconds, e.store.Clock())
	e.refresh()
	return applied
}

// Tick runs OnFrame and returns the overlay draw commands as JSON.
func (e *Engine) Tick(deltaSeconds float64) string {
	e.OnFrame(deltaSeconds)
	return e.Render()
}

// SetVideoTime records the video player's current position.
func (e *Engine) SetVideoTime(seconds float64) error {
	return e.store.SetExternalTime(seconds)
}

// SetModel replaces the model and rewinds its animation.
func (e *Engine) SetModel(m *model.Model) {
	if e.model == m {
		return
	}
	e.model = m
	e.timeline.Reset()
	if m != nil {
		e.log.Info("model attached", "model", m.ID, "name", m.Name, "clips", len(m.Clips))
	}
}

// SetContainerSize records the container's laid-out size in pixels and keeps
// the camera aspect in step. A zero size marks the container as not laid out.
func (e *Engine) SetContainerSize(width, height float64) {
	e.size = projector.Size{Width: width, Height: height}
	if e.size.Valid() {
		e.cam.SetAspect(e.size.Aspect())
	}
}

// SetViewport sets the client rect pointer coordinates are measured in. Until
// it is set, the container at the client origin is used.
func (e *Engine) SetViewport(vp drag.Viewport) {
	e.viewport = vp
	e.hasViewport = true
}

func (e *Engine) currentViewport() drag.Viewport {
	if e.hasViewport {
		return e.viewport
	}
	return drag.Viewport{Width: e.size.Width, Height: e.size.Height}
}

// SetCamera replaces the camera.
func (e *Engine) SetCamera(c *camera.Camera) {
	if c == nil {
		return
	}
	e.cam = c
	if e.size.Valid() {
		e.cam.SetAspect(e.size.Aspect())
	}
}

// SetDragMode selects the strategy for the next gesture.
func (e *Engine) SetDragMode(mode drag.Mode, sensitivity float64) {
	e.mapper.SetStrategy(drag.NewStrategy(mode, sensitivity))
}

// SetCapturer replaces the pointer capture primitive.
func (e *Engine) SetCapturer(c drag.Capturer) { e.mapper.SetCapturer(c) }

// PointerDown starts a drag when the pointer is over the model's projected
// rect. It reports whether a gesture started.
func (e *Engine) PointerDown(p drag.Pointer) (bool, error) {
	if e.mapper.Dragging() {
		return false, nil
	}
	vp := e.currentViewport()
	if !e.HitTest(p.ClientX-vp.Left, p.ClientY-vp.Top) {
		return false, nil
	}
	if err := e.mapper.PointerDown(p, e.store.Transform().Position, e.cam, vp); err != nil {
		return false, err
	}
	return true, nil
}

// PointerMove forwards a move to the active gesture.
func (e *Engine) PointerMove(p drag.Pointer) (bool, error) {
	moved, err := e.mapper.PointerMove(p, e.store, e.cam, e.currentViewport())
	if moved {
		e.refresh()
	}
	return moved, err
}

// PointerUp ends the active gesture.
func (e *Engine) PointerUp(p drag.Pointer) { e.mapper.PointerUp(p) }

// PointerCaptureLost ends the active gesture after the platform revoked capture.
func (e *Engine) PointerCaptureLost(pointerID int) { e.mapper.PointerCaptureLost(pointerID) }

// DragMode returns the mode the next gesture will use.
func (e *Engine) DragMode() drag.Mode { return e.mapper.Strategy().Mode() }

// Dragging reports whether a gesture is in progress.
func (e *Engine) Dragging() bool { return e.mapper.Dragging() }

// refresh recomputes the projection when any input changed since the last
// computation.
func (e *Engine) refresh() {
	snap := e.store.Snapshot()
	key := projectionKey{
		transformSeq: snap.TransformSeq,
		cam:          e.cam,
		camVersion:   e.cam.Version(),
		size:         e.size,
		model:        e.model,
	}
	if e.valid && key == e.projKey {
		return
	}
	e.projKey = key
	e.valid = true

	if e.model == nil {
		e.proj, e.projErr = projector.Projection{}, projector.ErrNoObject
	} else {
		obj := &projector.Object{
			LocalBounds: e.model.LocalBounds,
			World:       snap.Transform.Matrix(),
		}
		e.proj, e.projErr = projector.Project(obj, e.cam, e.size)
	}

	var r geom.Rect
	if e.projErr != nil {
		e.log.Debug("projection unavailable", "error", e.projErr)
	} else {
		r = e.proj.Rect()
	}
	e.dirty = e.dirty.Union(e.drawn).Union(r)
	e.drawn = r
}

// TakeDirtyRect returns the pixel region covered by the old and new rects
// of every projection recomputed since the previous call, and resets it.
// It is empty when nothing moved.
func (e *Engine) TakeDirtyRect() geom.Rect {
	e.refresh()
	r := e.dirty
	e.dirty = geom.Rect{}
	return r
}

// --- Queries (host ← engine) ---

// Projection returns the current projection.
func (e *Engine) Projection() (projector.Projection, error) {
	e.refresh()
	return e.proj, e.projErr
}

// Corners returns the projected corners in container pixels.
func (e *Engine) Corners() (projector.Corners, error) {
	p, err := e.Projection()
	if err != nil {
		return projector.Corners{}, err
	}
	return p.Corners, nil
}

// Rect returns the 2D bounding rect of the projected corners.
func (e *Engine) Rect() (geom.Rect, error) {
	p, err := e.Projection()
	if err != nil {
		return geom.Rect{}, err
	}
	return p.Rect(), nil
}

// WorldBounds returns the world-space axis-aligned box of the model. It does
// not depend on the camera or container.
func (e *Engine) WorldBounds() (geom.Box3, error) {
	if e.model == nil {
		return geom.Box3{}, projector.ErrNoObject
	}
	return projector.WorldBounds(&projector.Object{
		LocalBounds: e.model.LocalBounds,
		World:       e.store.Transform().Matrix(),
	})
}

// HitTest reports whether a container-relative point is over the model.
func (e *Engine) HitTest(x, y float64) bool {
	r, err := e.Rect()
	if err != nil {
		return false
	}
	return r.Contains(x, y)
}

// AnimationTime returns the total animation time applied.
func (e *Engine) AnimationTime() float64 { return e.timeline.Elapsed() }

// ClipState is the playback position of one clip.
type ClipState struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
	Time     float64 `json:"time"`
}

// Clips returns the looping time of every clip of the model.
func (e *Engine) Clips() []ClipState {
	if e.model == nil {
		return nil
	}
	out := make([]ClipState, 0, len(e.model.Clips))
	for _, c := range e.model.Clips {
		out = append(out, ClipState{Name: c.Name, Duration: c.Duration, Time: e.timeline.ClipTime(c)})
	}
	return out
}

// Export serializes the current bounds in format f.
func (e *Engine) Export(f export.Format) ([]byte, error) {
	v, err := export.Build(e, f)
	if err != nil {
		return nil, err
	}
	return export.Marshal(v)
}

// Render returns the overlay draw commands as JSON.
func (e *Engine) Render() string {
	p, err := e.Projection()
	if err != nil {
		return "[]"
	}
	result, err := DrawCommandsToJSON(CompileDrawCommands(p, e.style))
	if err != nil {
		e.log.Debug("render commands", "error", err)
	}
	return result
}

// GetCorners returns the projected corners as JSON, or null when unavailable.
func (e *Engine) GetCorners() string {
	c, err := e.Corners()
	if err != nil {
		return "null"
	}
	data, _ := json.Marshal(export.NewCorners2D(c))
	return string(data)
}

// GetBoundingBox returns the world-space box as JSON, or null when
// unavailable.
func (e *Engine) GetBoundingBox() string {
	b, err := e.WorldBounds()
	if err != nil {
		return "null"
	}
	data, _ := json.Marshal(export.NewBounds3D(b))
	return string(data)
}

// GetRect returns the projected 2D rect as JSON.
func (e *Engine) GetRect() string {
	r, err := e.Rect()
	if err != nil {
		return RectToJSON(geom.Rect{})
	}
	return RectToJSON(r)
}

// GetClockState returns the clock and timeline as JSON.
func (e *Engine) GetClockState() string {
	c := e.store.Clock()
	data, _ := json.Marshal(map[string]interface{}{
		"speed":         c.Speed,
		"startTime":     c.StartTime,
		"running":       c.Running,
		"externalTime":  c.ExternalTime,
		"gateOpen":      c.GateOpen(),
		"playing":       c.Playing(),
		"animationTime": e.timeline.Elapsed(),
		"frames":        e.timeline.Frames(),
		"clips":         e.Clips(),
	})
	return string(data)
}

// GetTransform returns the transform as JSON with rotation in both radians
// and display degrees.
func (e *Engine) GetTransform() string {
	t := e.store.Transform()
	deg := t.Rotation.Degrees()
	data, _ := json.Marshal(map[string]interface{}{
		"position":        vecJSON(t.Position),
		"rotation":        t.Rotation,
		"rotationDegrees": vecJSON(deg),
		"scale":           t.Scale,
	})
	return string(data)
}

// GetDragState returns the active gesture as JSON.
func (e *Engine) GetDragState() string {
	s := e.mapper.Session()
	ds := map[string]interface{}{
		"active": s != nil,
		"mode":   e.mapper.Strategy().Mode().String(),
	}
	if s != nil {
		ds["id"] = s.ID
		ds["pointerId"] = s.PointerID
		ds["mode"] = s.Mode.String()
		ds["moves"] = s.Moves
	}
	data, _ := json.Marshal(ds)
	return string(data)
}

// Unavailable reports whether err means the projection is not ready yet
// as opposed to a fault.
func Unavailable(err error) bool {
	return errors.Is(err, projector.ErrNoObject) ||
		errors.Is(err, projector.ErrNoCamera) ||
		errors.Is(err, projector.ErrNoContainer) ||
		errors.Is(err, projector.ErrBehindCamera) ||
		errors.Is(err, export.ErrUnavailable)
}

func vecJSON(v mgl64.Vec3) map[string]float64 {
	return map[string]float64{"x": v[0], "y": v[1], "z": v[2]}
}
