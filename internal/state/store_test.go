package state

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/overlay3d/internal/clock"
	"github.com/inamate/overlay3d/internal/geom"
)

func newTestStore() *Store {
	return NewStore(DefaultTransform(), clock.Default())
}

func TestDefaults(t *testing.T) {
	s := newTestStore()
	tr := s.Transform()
	if tr.Position != (mgl64.Vec3{}) || tr.Rotation != (geom.Euler{}) || tr.Scale != 1 {
		t.Fatalf("unexpected default transform %+v", tr)
	}
	m, id := tr.Matrix(), mgl64.Ident4()
	for i := range m {
		if math.Abs(m[i]-id[i]) > 1e-12 {
			t.Fatalf("default matrix is not identity: %v", m)
		}
	}
}

func TestNonFiniteRejected(t *testing.T) {
	s := newTestStore()
	if err := s.SetPosition(mgl64.Vec3{1, 2, 3}); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	seq := s.Seq()

	err := s.SetPosition(mgl64.Vec3{math.NaN(), 0, 0})
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("got %v want ErrNonFinite", err)
	}
	if err := s.SetRotation(geom.Euler{Y: math.Inf(1)}); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("rotation: got %v want ErrNonFinite", err)
	}
	if got := s.Transform().Position; got != (mgl64.Vec3{1, 2, 3}) {
		t.Fatalf("position changed after rejected write: %v", got)
	}
	if s.Seq() != seq {
		t.Fatal("rejected writes must not bump seq")
	}
}

func TestRangeChecks(t *testing.T) {
	s := newTestStore()
	tests := []struct {
		name string
		fn   func() error
	}{
		{"zero scale", func() error { return s.SetScale(0) }},
		{"negative speed", func() error { return s.SetSpeed(-1) }},
		{"negative start", func() error { return s.SetStartTime(-0.5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("got %v want ErrOutOfRange", err)
			}
		})
	}
	if got := s.Clock(); got != clock.Default() {
		t.Fatalf("clock changed: %+v", got)
	}
}

func TestUpdatePositionFailureLeavesValue(t *testing.T) {
	s := newTestStore()
	boom := errors.New("boom")
	if err := s.UpdatePosition(func(cur mgl64.Vec3) (mgl64.Vec3, error) {
		return mgl64.Vec3{9, 9, 9}, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("got %v want boom", err)
	}
	if got := s.Transform().Position; got != (mgl64.Vec3{}) {
		t.Fatalf("position changed: %v", got)
	}
	if s.TransformSeq() != 0 {
		t.Fatalf("transform seq: got %d want 0", s.TransformSeq())
	}
}

func TestConcurrentAxisUpdatesAreNotLost(t *testing.T) {
	s := newTestStore()
	const n = 200
	var wg sync.WaitGroup
	for axis := 0; axis < 3; axis++ {
		wg.Add(1)
		go func(axis int) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				_ = s.UpdatePosition(func(cur mgl64.Vec3) (mgl64.Vec3, error) {
					cur[axis]++
					return cur, nil
				})
			}
		}(axis)
	}
	wg.Wait()
	if got := s.Transform().Position; got != (mgl64.Vec3{n, n, n}) {
		t.Fatalf("got %v want all axes %d", got, n)
	}
	if s.TransformSeq() != 3*n {
		t.Fatalf("transform seq: got %d want %d", s.TransformSeq(), 3*n)
	}
}

func TestClockSetters(t *testing.T) {
	s := newTestStore()
	if err := s.SetSpeed(2); err != nil {
		t.Fatal(err)
	}
	if err := s.SetStartTime(5); err != nil {
		t.Fatal(err)
	}
	if err := s.SetExternalTime(4); err != nil {
		t.Fatal(err)
	}
	if s.ToggleRunning() {
		t.Fatal("toggle from running should stop")
	}
	s.SetRunning(true)
	snap := s.Snapshot()
	want := clock.Clock{Speed: 2, StartTime: 5, Running: true, ExternalTime: 4}
	if snap.Clock != want {
		t.Fatalf("got %+v want %+v", snap.Clock, want)
	}
	if s.TransformSeq() != 0 {
		t.Fatal("clock writes must not bump transform seq")
	}
}

func TestSnapshotSequences(t *testing.T) {
	s := newTestStore()
	if err := s.SetPosition(mgl64.Vec3{1, 0, 0}); err != nil {
		t.Fatal(err)
	}
	s.SetRunning(false)
	snap := s.Snapshot()
	if snap.TransformSeq != 1 || snap.Seq != 2 {
		t.Fatalf("seq %d transformSeq %d want 2 and 1", snap.Seq, snap.TransformSeq)
	}
	if snap.Transform.Position != (mgl64.Vec3{1, 0, 0}) || snap.Clock.Running {
		t.Fatalf("snapshot %+v", snap)
	}
}
