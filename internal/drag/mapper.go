// Package drag maps pointer gestures on the overlay surface to world-space
// positions of the model.
package drag

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/overlay3d/internal/geom"
	"github.com/inamate/overlay3d/internal/typeid"
)

// Pointer is a single pointer event in client (CSS pixel) coordinates.
type Pointer struct {
	ID        int     `json:"pointerId"`
	ClientX   float64 `json:"clientX"`
	ClientY   float64 `json:"clientY"`
	MovementX float64 `json:"movementX"`
	MovementY float64 `json:"movementY"`
}

// Viewport is the interactive surface's client rect.
type Viewport struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NDC converts client coordinates to normalized device coordinates. It
// reports false for a viewport that has not been laid out.
func (v Viewport) NDC(clientX, clientY float64) (float64, float64, bool) {
	if v.Width <= 0 || v.Height <= 0 {
		return 0, 0, false
	}
	x := (clientX-v.Left)/v.Width*2 - 1
	y := -(clientY-v.Top)/v.Height*2 + 1
	return x, y, true
}

// Capturer routes all events of a pointer to the drag surface while held.
type Capturer interface {
	SetPointerCapture(pointerID int) error
	ReleasePointerCapture(pointerID int) error
}

// Target is the position the drag writes to.
type Target interface {
	UpdatePosition(fn func(cur mgl64.Vec3) (mgl64.Vec3, error)) error
}

// Session is the state of one gesture. It exists between pointer down and
// pointer up or capture loss.
type Session struct {
	ID        string
	PointerID int
	Mode      Mode
	Anchor    mgl64.Vec3
	Ray       *geom.Ray
	Plane     *geom.Plane
	Moves     int

	strategy Strategy
}

// Mapper is the Idle/Dragging state machine. It is not safe for concurrent
// use; pointer events are delivered on one goroutine.
type Mapper struct {
	strategy Strategy
	capturer Capturer
	session  *Session
}

// NewMapper creates an idle mapper. capturer may be nil.
func NewMapper(s Strategy, capturer Capturer) *Mapper {
	if s == nil {
		s = RayPlane{}
	}
	return &Mapper{strategy: s, capturer: capturer}
}

// SetStrategy changes the strategy. A gesture in progress keeps the one it
// started with.
func (m *Mapper) SetStrategy(s Strategy) {
	if s != nil {
		m.strategy = s
	}
}

// Strategy returns the strategy used by the next gesture.
func (m *Mapper) Strategy() Strategy { return m.strategy }

// SetCapturer replaces the pointer capture primitive.
func (m *Mapper) SetCapturer(c Capturer) { m.capturer = c }

// Dragging reports whether a gesture is in progress.
func (m *Mapper) Dragging() bool { return m.session != nil }

// Session returns the active gesture, or nil when idle.
func (m *Mapper) Session() *Session { return m.session }

// PointerDown starts a gesture with the object at pos. A pointer down while
// already dragging is ignored.
func (m *Mapper) PointerDown(p Pointer, pos mgl64.Vec3, cam Camera, vp Viewport) error {
	if m.session != nil {
		return nil
	}
	if m.capturer != nil {
		if err := m.capturer.SetPointerCapture(p.ID); err != nil {
			return fmt.Errorf("capture pointer %d: %w", p.ID, err)
		}
	}

	s := &Session{
		ID:        typeid.NewDragID(),
		PointerID: p.ID,
		Mode:      m.strategy.Mode(),
		Anchor:    pos,
		strategy:  m.strategy,
	}
	if err := s.strategy.Begin(s, cam, vp, p, pos); err != nil {
		m.release(p.ID)
		return fmt.Errorf("begin drag: %w", err)
	}
	m.session = s
	slog.Debug("drag begin", "drag", s.ID, "mode", s.Mode, "pointer", p.ID)
	return nil
}

// PointerMove writes one new position to target for the active gesture. It
// reports whether the position changed. A move whose ray misses the drag
// plane leaves the position as it was.
func (m *Mapper) PointerMove(p Pointer, target Target, cam Camera, vp Viewport) (bool, error) {
	s := m.session
	if s == nil || p.ID != s.PointerID {
		return false, nil
	}
	err := target.UpdatePosition(func(cur mgl64.Vec3) (mgl64.Vec3, error) {
		return s.strategy.Move(s, cam, vp, p, cur)
	})
	if errors.Is(err, ErrNoIntersection) {
		slog.Debug("drag move missed plane", "drag", s.ID)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.Moves++
	return true, nil
}

// PointerUp ends the gesture and releases pointer capture.
func (m *Mapper) PointerUp(p Pointer) {
	s := m.session
	if s == nil || p.ID != s.PointerID {
		return
	}
	m.release(p.ID)
	m.end("pointerup")
}

// PointerCaptureLost ends the gesture without releasing capture, which the
// platform has already taken away.
func (m *Mapper) PointerCaptureLost(pointerID int) {
	s := m.session
	if s == nil || pointerID != s.PointerID {
		return
	}
	m.end("capturelost")
}

// Cancel ends any gesture in progress.
func (m *Mapper) Cancel() {
	if s := m.session; s != nil {
		m.release(s.PointerID)
		m.end("cancel")
	}
}

func (m *Mapper) release(pointerID int) {
	if m.capturer == nil {
		return
	}
	if err := m.capturer.ReleasePointerCapture(pointerID); err != nil {
		slog.Debug("release pointer capture", "pointer", pointerID, "error", err)
	}
}

func (m *Mapper) end(reason string) {
	slog.Debug("drag end", "drag", m.session.ID, "reason", reason, "moves", m.session.Moves)
	m.session = nil
}
