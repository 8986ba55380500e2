// Package state holds the canonical transform and animation clock of the
// overlay model.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/overlay3d/internal/clock"
	"github.com/inamate/overlay3d/internal/geom"
)

var (
	ErrNonFinite  = errors.New("value is not finite")
	ErrOutOfRange = errors.New("value is out of range")
)

// Transform is the object's placement in world space. Rotation is stored in
// radians; scale is uniform.
type Transform struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation geom.Euler `json:"rotation"`
	Scale    float64    `json:"scale"`
}

// DefaultTransform places the object at the origin with unit scale and no
// rotation.
func DefaultTransform() Transform {
	return Transform{Scale: 1}
}

// Matrix returns the object's world matrix.
func (t Transform) Matrix() mgl64.Mat4 {
	return geom.Compose(t.Position, t.Rotation, t.Scale)
}

// Snapshot is a consistent copy of the store contents.
type Snapshot struct {
	Transform    Transform   `json:"transform"`
	Clock        clock.Clock `json:"clock"`
	Seq          uint64      `json:"seq"`
	TransformSeq uint64      `json:"transformSeq"`
}

// Store is the single owner of the current Transform and Clock. Every setter
// replaces a whole value under the write lock, so readers never observe a
// half-updated triple.
type Store struct {
	mu           sync.RWMutex
	transform    Transform
	clock        clock.Clock
	seq          uint64
	transformSeq uint64
}

// NewStore creates a store with the given initial values.
func NewStore(t Transform, c clock.Clock) *Store {
	return &Store{transform: t, clock: c}
}

// Transform returns the current transform.
func (s *Store) Transform() Transform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transform
}

// Clock returns the current clock.
func (s *Store) Clock() clock.Clock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock
}

// Snapshot returns the transform and clock read under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Transform: s.transform, Clock: s.clock, Seq: s.seq, TransformSeq: s.transformSeq}
}

// Seq increases on every committed change.
func (s *Store) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// TransformSeq increases on every committed transform change.
func (s *Store) TransformSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transformSeq
}

// SetPosition replaces the position.
func (s *Store) SetPosition(p mgl64.Vec3) error {
	return s.UpdatePosition(func(mgl64.Vec3) (mgl64.Vec3, error) { return p, nil })
}

// UpdatePosition reads the current position, lets fn derive the new one and
// commits it, all under the write lock. If fn fails the position is left
// unchanged.
func (s *Store) UpdatePosition(fn func(cur mgl64.Vec3) (mgl64.Vec3, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.transform.Position)
	if err != nil {
		return err
	}
	if !geom.IsFinite(next) {
		return fmt.Errorf("position %v: %w", next, ErrNonFinite)
	}
	s.transform.Position = next
	s.commitTransformLocked()
	return nil
}

// SetRotation replaces the rotation (radians).
func (s *Store) SetRotation(r geom.Euler) error {
	return s.UpdateRotation(func(geom.Euler) (geom.Euler, error) { return r, nil })
}

// UpdateRotation is the rotation counterpart of UpdatePosition.
func (s *Store) UpdateRotation(fn func(cur geom.Euler) (geom.Euler, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.transform.Rotation)
	if err != nil {
		return err
	}
	if !geom.IsFinite(next.Vec3()) {
		return fmt.Errorf("rotation %v: %w", next, ErrNonFinite)
	}
	s.transform.Rotation = next
	s.commitTransformLocked()
	return nil
}

// SetScale replaces the uniform scale. Scale must be positive.
func (s *Store) SetScale(v float64) error {
	if !geom.IsFiniteScalar(v) {
		return fmt.Errorf("scale %v: %w", v, ErrNonFinite)
	}
	if v <= 0 {
		return fmt.Errorf("scale %v: %w", v, ErrOutOfRange)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transform.Scale = v
	s.commitTransformLocked()
	return nil
}

// SetTransform replaces the whole transform.
func (s *Store) SetTransform(t Transform) error {
	if !geom.IsFinite(t.Position) || !geom.IsFinite(t.Rotation.Vec3()) || !geom.IsFiniteScalar(t.Scale) {
		return fmt.Errorf("transform %+v: %w", t, ErrNonFinite)
	}
	if t.Scale <= 0 {
		return fmt.Errorf("scale %v: %w", t.Scale, ErrOutOfRange)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transform = t
	s.commitTransformLocked()
	return nil
}

// SetSpeed sets the animation speed. Negative speeds are rejected.
func (s *Store) SetSpeed(v float64) error {
	if !geom.IsFiniteScalar(v) {
		return fmt.Errorf("speed %v: %w", v, ErrNonFinite)
	}
	if v < 0 {
		return fmt.Errorf("speed %v: %w", v, ErrOutOfRange)
	}
	s.updateClock(func(c *clock.Clock) { c.Speed = v })
	return nil
}

// SetStartTime sets the video time at which animation begins.
func (s *Store) SetStartTime(v float64) error {
	if !geom.IsFiniteScalar(v) {
		return fmt.Errorf("start time %v: %w", v, ErrNonFinite)
	}
	if v < 0 {
		return fmt.Errorf("start time %v: %w", v, ErrOutOfRange)
	}
	s.updateClock(func(c *clock.Clock) { c.StartTime = v })
	return nil
}

// SetRunning starts or stops the animation.
func (s *Store) SetRunning(running bool) {
	s.updateClock(func(c *clock.Clock) { c.Running = running })
}

// ToggleRunning flips the running flag and returns the new value.
func (s *Store) ToggleRunning() bool {
	var running bool
	s.updateClock(func(c *clock.Clock) {
		c.Running = !c.Running
		running = c.Running
	})
	return running
}

// SetExternalTime records the video player's current position.
func (s *Store) SetExternalTime(v float64) error {
	if !geom.IsFiniteScalar(v) {
		return fmt.Errorf("external time %v: %w", v, ErrNonFinite)
	}
	s.updateClock(func(c *clock.Clock) { c.ExternalTime = v })
	return nil
}

func (s *Store) updateClock(fn func(c *clock.Clock)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.clock)
	s.seq++
}

// commitTransformLocked bumps sequence numbers (caller must hold lock).
func (s *Store) commitTransformLocked() {
	s.seq++
	s.transformSeq++
}
