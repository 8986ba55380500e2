package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inamate/overlay3d/internal/document"
	"github.com/inamate/overlay3d/internal/export"
	"github.com/inamate/overlay3d/internal/geom"
	"github.com/inamate/overlay3d/internal/state"
)

const orthoScene = `
[camera]
mode = "orthographic"
half_height = 5

[container]
width = 200
height = 100
`

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeScene(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scene: %v", err)
	}
	return path
}

func TestSampleRoundTrips(t *testing.T) {
	out, _, err := runCLI(t, "sample")
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	doc, err := document.Decode(strings.NewReader(out), document.FormatTOML, document.Default(nil))
	if err != nil {
		t.Fatalf("decode sample: %v\n%s", err, out)
	}
	if doc.Drag.Mode != "ray-plane" || doc.Container.Width != 1280 {
		t.Fatalf("unexpected sample %+v", doc)
	}
}

func TestProjectCornersJSON(t *testing.T) {
	scene := writeScene(t, orthoScene)
	out, _, err := runCLI(t, "--scene", scene, "--json", "project", "--format", "corners")
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	var corners []geom.Point
	if err := json.Unmarshal([]byte(out), &corners); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(corners) != 8 {
		t.Fatalf("corners: got %d want 8", len(corners))
	}
	var cx, cy float64
	for _, c := range corners {
		cx += c.X / 8
		cy += c.Y / 8
	}
	if math.Abs(cx-100) > 1e-9 || math.Abs(cy-50) > 1e-9 {
		t.Fatalf("center (%v,%v) want (100,50)", cx, cy)
	}
}

func TestProjectTable(t *testing.T) {
	scene := writeScene(t, orthoScene)
	out, _, err := runCLI(t, "--scene", scene, "project")
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	for _, want := range []string{"Corner", "Pixel X", "Rect: x=95.000 y=45.000 w=10.000 h=10.000"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProjectWritesExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), export.DefaultFileName)
	if _, _, err := runCLI(t, "project", "--out", path); err != nil {
		t.Fatalf("project --out: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var b export.Bounds3D
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if b.Min != (export.Vector3{X: -0.5, Y: -0.5, Z: -0.5}) || b.Max != (export.Vector3{X: 0.5, Y: 0.5, Z: 0.5}) {
		t.Fatalf("bounds %+v", b)
	}
}

func TestProjectRejectsUnknownFormat(t *testing.T) {
	if _, _, err := runCLI(t, "project", "--format", "svg"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestTimelineFixedSteps(t *testing.T) {
	out, _, err := runCLI(t, "--json", "timeline", "--frames", "3", "--fps", "10")
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	var records []frameRecord
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(records) != 3 {
		t.Fatalf("records: got %d want 3", len(records))
	}
	last := records[2]
	if math.Abs(last.VideoTime-0.3) > 1e-9 || math.Abs(last.AnimationTime-0.3) > 1e-9 {
		t.Fatalf("last frame %+v", last)
	}
	if !last.GateOpen || last.Rect == nil {
		t.Fatalf("last frame %+v", last)
	}
}

func TestTimelineWaitsForStartTime(t *testing.T) {
	scene := writeScene(t, "[clock]\nstart_time = 0.25\n")
	out, _, err := runCLI(t, "--scene", scene, "--json", "timeline", "--frames", "4", "--fps", "10")
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	var records []frameRecord
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if records[1].GateOpen || records[1].AnimationTime != 0 {
		t.Fatalf("frame 1 should be gated: %+v", records[1])
	}
	if !records[2].GateOpen || math.Abs(records[3].AnimationTime-0.2) > 1e-9 {
		t.Fatalf("gate did not open: %+v %+v", records[2], records[3])
	}
}

func TestDragScreenDelta(t *testing.T) {
	out, _, err := runCLI(t, "--json", "drag", "--mode", "screen-delta", "--from", "640,360", "--to", "740,360", "--steps", "10")
	if err != nil {
		t.Fatalf("drag: %v", err)
	}
	var res dragResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if !res.Started || res.Moves != 10 || res.Mode != "screen-delta" {
		t.Fatalf("result %+v", res)
	}
	if math.Abs(res.Position[0]-1) > 1e-9 || res.Position[1] != 0 || res.Position[2] != 0 {
		t.Fatalf("position %v want (1,0,0)", res.Position)
	}
}

func TestDragOffModelDoesNotStart(t *testing.T) {
	out, _, err := runCLI(t, "--json", "drag", "--from", "5,5", "--to", "100,100")
	if err != nil {
		t.Fatalf("drag: %v", err)
	}
	var res dragResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Started || res.Moves != 0 || res.Position != [3]float64{} {
		t.Fatalf("result %+v", res)
	}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    geom.Point
		wantErr bool
	}{
		{in: "1,2", want: geom.Point{X: 1, Y: 2}},
		{in: " 3.5 , -4 ", want: geom.Point{X: 3.5, Y: -4}},
		{in: "1", wantErr: true},
		{in: "a,b", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parsePoint(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parsePoint(%q) err=%v", tt.in, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("parsePoint(%q) = %v want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderTablePlain(t *testing.T) {
	out := renderTable([]string{"Name", "Value"}, [][]string{{"1"}}, []columnAlignment{alignRight}, false)
	if !strings.Contains(out, "Name") || strings.Contains(out, "NAME") || strings.Contains(out, "╭") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if renderTable(nil, nil, nil, true) != "" {
		t.Fatal("empty headers should render nothing")
	}
}

func TestBadLogLevel(t *testing.T) {
	if _, _, err := runCLI(t, "--log-level", "loud", "sample"); err == nil {
		t.Fatal("expected error for bad log level")
	}
}

func TestRunFrameReportsBadVideoTime(t *testing.T) {
	e, err := newEngine(document.Default(nil))
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}
	_, err = runFrame(e, &videoPlayer{time: math.Inf(1)}, 0, 0.1)
	if !errors.Is(err, state.ErrNonFinite) {
		t.Fatalf("got %v want ErrNonFinite", err)
	}
	if e.AnimationTime() != 0 {
		t.Fatalf("animation advanced on a rejected frame: %v", e.AnimationTime())
	}
}
