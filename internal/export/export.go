// Package export writes the overlay's bounding box snapshot.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/inamate/overlay3d/internal/geom"
	"github.com/inamate/overlay3d/internal/projector"
	"github.com/inamate/overlay3d/internal/typeid"
)

// DefaultFileName is the conventional export name.
const DefaultFileName = "boundingBox.json"

// ErrUnavailable is returned when there is no projection to export yet.
var ErrUnavailable = errors.New("bounding box could not be calculated")

// Format selects what is exported.
type Format string

const (
	// FormatBox3 exports the world-space box as {min:{x,y,z}, max:{x,y,z}}.
	FormatBox3 Format = "box3"
	// FormatCorners exports the eight projected pixel corners as [{x,y}].
	FormatCorners Format = "corners"
)

// ParseFormat accepts "box3" (the default) or "corners".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatBox3, "3d":
		return FormatBox3, nil
	case FormatCorners, "2d":
		return FormatCorners, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Vector3 is a world-space point in the export file.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Bounds3D is the box3 export: the world-space axis-aligned box.
type Bounds3D struct {
	Min Vector3 `json:"min"`
	Max Vector3 `json:"max"`
}

// NewBounds3D converts a box to its export form.
func NewBounds3D(b geom.Box3) Bounds3D {
	return Bounds3D{
		Min: Vector3{X: b.Min[0], Y: b.Min[1], Z: b.Min[2]},
		Max: Vector3{X: b.Max[0], Y: b.Max[1], Z: b.Max[2]},
	}
}

// Corners2D is the corners export: eight pixel points in corner order.
type Corners2D []geom.Point

// NewCorners2D copies projected corners into their export form.
func NewCorners2D(c projector.Corners) Corners2D {
	return append(Corners2D(nil), c[:]...)
}

// Source supplies the current bounds. Either method fails when the model,
// camera or container is not ready.
type Source interface {
	WorldBounds() (geom.Box3, error)
	Corners() (projector.Corners, error)
}

// Build returns the value to serialize for format f.
func Build(src Source, f Format) (any, error) {
	switch f {
	case FormatCorners:
		c, err := src.Corners()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return NewCorners2D(c), nil
	case FormatBox3, "":
		b, err := src.WorldBounds()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return NewBounds3D(b), nil
	}
	return nil, fmt.Errorf("unknown export format %q", f)
}

// Marshal encodes v as JSON indented by two spaces.
func Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Encode writes the export for f to w.
func Encode(w io.Writer, src Source, f Format) error {
	v, err := Build(src, f)
	if err != nil {
		return err
	}
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Result describes a written export.
type Result struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Format Format `json:"format"`
	Bytes  int    `json:"bytes"`
}

// WriteFile writes the export to path, replacing any existing file
// atomically. An empty path writes DefaultFileName in the working directory.
func WriteFile(path string, src Source, f Format) (Result, error) {
	if path == "" {
		path = DefaultFileName
	}
	v, err := Build(src, f)
	if err != nil {
		return Result{}, err
	}
	data, err := Marshal(v)
	if err != nil {
		return Result{}, err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".boundingBox-*.json")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return Result{}, fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return Result{}, fmt.Errorf("chmod export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Result{}, fmt.Errorf("rename export: %w", err)
	}

	res := Result{ID: typeid.NewExportID(), Path: path, Format: f, Bytes: len(data)}
	if res.Format == "" {
		res.Format = FormatBox3
	}
	slog.Info("bounding box exported", "export", res.ID, "path", path, "format", res.Format, "bytes", res.Bytes)
	return res, nil
}
