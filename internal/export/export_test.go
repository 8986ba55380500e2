package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/overlay3d/internal/geom"
	"github.com/inamate/overlay3d/internal/projector"
)

type fakeSource struct {
	box     geom.Box3
	corners projector.Corners
	err     error
}

func (f fakeSource) WorldBounds() (geom.Box3, error) { return f.box, f.err }
func (f fakeSource) Corners() (projector.Corners, error) { return f.corners, f.err }

func readySource() fakeSource {
	var c projector.Corners
	for i := range c {
		c[i] = geom.Point{X: float64(i), Y: float64(i * 2)}
	}
	return fakeSource{
		box:     geom.NewBox(mgl64.Vec3{-1, -2, -3}, mgl64.Vec3{1, 2, 3}),
		corners: c,
	}
}

func TestEncodeBox3Shape(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, readySource(), FormatBox3); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{
  "min": {
    "x": -1,
    "y": -2,
    "z": -3
  },
  "max": {
    "x": 1,
    "y": 2,
    "z": 3
  }
}`
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeCorners(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, readySource(), FormatCorners); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var got []geom.Point
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != geom.NumCorners {
		t.Fatalf("got %d corners want %d", len(got), geom.NumCorners)
	}
	if got[7] != (geom.Point{X: 7, Y: 14}) {
		t.Fatalf("corner 7: got %+v", got[7])
	}
	if !strings.Contains(buf.String(), "\n  {") {
		t.Fatalf("expected two-space indent, got %q", buf.String())
	}
}

func TestUnavailable(t *testing.T) {
	src := fakeSource{err: projector.ErrNoContainer}
	for _, f := range []Format{FormatBox3, FormatCorners} {
		if err := Encode(&bytes.Buffer{}, src, f); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("%s: got %v want ErrUnavailable", f, err)
		}
	}
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if _, err := WriteFile(path, src, FormatBox3); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("WriteFile: got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("unavailable export created a file: %v", err)
	}
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := WriteFile(path, readySource(), FormatBox3)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !strings.HasPrefix(res.ID, "bbox_") || res.Format != FormatBox3 || res.Path != path {
		t.Fatalf("unexpected result %+v", res)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Bounds3D
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Max != (Vector3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("max: got %+v", got.Max)
	}
	if res.Bytes != len(data) {
		t.Fatalf("bytes: got %d want %d", res.Bytes, len(data))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatBox3, "box3": FormatBox3, "Corners": FormatCorners, "2d": FormatCorners} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("svg"); err == nil {
		t.Fatal("expected error")
	}
}
