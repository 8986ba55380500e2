// Package model loads glTF/GLB models and measures their object-space bounds
// and animation clips.
package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"github.com/inamate/overlay3d/internal/clock"
	"github.com/inamate/overlay3d/internal/geom"
	"github.com/inamate/overlay3d/internal/typeid"
)

// DefaultMaxBytes caps the size of a model file.
const DefaultMaxBytes = 64 << 20

var (
	ErrTooLarge   = errors.New("model exceeds size limit")
	ErrNoGeometry = errors.New("model has no position data")
)

// Model is a loaded model reduced to what the overlay needs.
type Model struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	LocalBounds geom.Box3    `json:"-"`
	Pivot       mgl64.Vec3   `json:"pivot"`
	Clips       []clock.Clip `json:"clips"`
	Primitives  int          `json:"primitives"`
}

// Options control loading.
type Options struct {
	MaxBytes int64
	Recenter bool
}

func (o Options) maxBytes() int64 {
	if o.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return o.MaxBytes
}

// Box returns a geometry-less model whose bound is a cube of the given edge
// length centered on the origin.
func Box(size float64) *Model {
	return &Model{
		ID:          typeid.NewModelID(),
		Name:        "box",
		LocalBounds: geom.CubeBox(size),
	}
}

// Load reads a .glb or .gltf file. External buffers are resolved relative to
// the file.
func Load(path string, opts Options) (*Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat model: %w", err)
	}
	if info.Size() > opts.maxBytes() {
		return nil, fmt.Errorf("%s is %d bytes: %w", path, info.Size(), ErrTooLarge)
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model %s: %w", path, err)
	}
	name := filepath.Base(path)
	m, err := FromDocument(doc, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Info("model loaded", "model", m.ID, "name", name, "bytes", info.Size(), "clips", len(m.Clips))
	if opts.Recenter {
		m = m.Recentered()
	}
	return m, nil
}

// Decode reads a GLB or glTF JSON stream.
func Decode(r io.Reader, name string, opts Options) (*Model, error) {
	limit := opts.maxBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w", name, ErrTooLarge)
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", name, err)
	}
	m, err := FromDocument(doc, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if opts.Recenter {
		m = m.Recentered()
	}
	return m, nil
}

// FromDocument measures a decoded glTF document.
func FromDocument(doc *gltf.Document, name string) (*Model, error) {
	m := &Model{
		ID:          typeid.NewModelID(),
		Name:        name,
		LocalBounds: geom.EmptyBox(),
	}
	for _, root := range sceneRoots(doc) {
		m.walk(doc, root, mgl64.Ident4(), 0)
	}
	if m.LocalBounds.IsEmpty() {
		return nil, ErrNoGeometry
	}
	m.Clips = clips(doc)
	return m, nil
}

// Recentered returns a copy whose bound is centered on the origin. Pivot
// records the offset applied.
func (m *Model) Recentered() *Model {
	cp := *m
	c := m.LocalBounds.Center()
	cp.LocalBounds = m.LocalBounds.Translate(c.Mul(-1))
	cp.Pivot = m.Pivot.Sub(c)
	cp.Clips = append([]clock.Clip(nil), m.Clips...)
	return &cp
}

// maxDepth bounds node recursion against cyclic documents.
const maxDepth = 64

func (m *Model) walk(doc *gltf.Document, idx int, parent mgl64.Mat4, depth int) {
	if idx < 0 || idx >= len(doc.Nodes) || depth > maxDepth {
		return
	}
	n := doc.Nodes[idx]
	world := parent.Mul4(nodeMatrix(n))
	if n.Mesh != nil {
		mi := int(*n.Mesh)
		if mi >= 0 && mi < len(doc.Meshes) {
			for _, p := range doc.Meshes[mi].Primitives {
				if b, ok := primitiveBounds(doc, p); ok {
					m.LocalBounds = m.LocalBounds.Union(b.Transform(world))
					m.Primitives++
				}
			}
		}
	}
	for _, c := range n.Children {
		m.walk(doc, int(c), world, depth+1)
	}
}

func sceneRoots(doc *gltf.Document) []int {
	var roots []int
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil {
			si = int(*doc.Scene)
		}
		if si >= 0 && si < len(doc.Scenes) {
			for _, n := range doc.Scenes[si].Nodes {
				roots = append(roots, int(n))
			}
			return roots
		}
	}
	// No scene: every node that is nobody's child is a root.
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[int(c)] = true
		}
	}
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeMatrix returns Matrix * T * R * S. A glTF node sets either the matrix or
// TRS, so one side is always identity.
func nodeMatrix(n *gltf.Node) mgl64.Mat4 {
	var mat mgl64.Mat4
	zero := true
	for i, v := range n.Matrix {
		mat[i] = float64(v)
		if v != 0 {
			zero = false
		}
	}
	if zero {
		mat = mgl64.Ident4()
	}

	t := n.Translation
	tm := mgl64.Translate3D(float64(t[0]), float64(t[1]), float64(t[2]))

	r := n.Rotation
	q := mgl64.Quat{W: float64(r[3]), V: mgl64.Vec3{float64(r[0]), float64(r[1]), float64(r[2])}}
	rm := mgl64.Ident4()
	if q.Len() > 0 {
		rm = q.Normalize().Mat4()
	}

	s := n.Scale
	sm := mgl64.Ident4()
	if s[0] != 0 || s[1] != 0 || s[2] != 0 {
		sm = mgl64.Scale3D(float64(s[0]), float64(s[1]), float64(s[2]))
	}
	return mat.Mul4(tm).Mul4(rm).Mul4(sm)
}

func primitiveBounds(doc *gltf.Document, p *gltf.Primitive) (geom.Box3, bool) {
	ai, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return geom.Box3{}, false
	}
	idx := int(ai)
	if idx < 0 || idx >= len(doc.Accessors) {
		return geom.Box3{}, false
	}
	acc := doc.Accessors[idx]
	if len(acc.Min) < 3 || len(acc.Max) < 3 {
		return geom.Box3{}, false
	}
	lo := mgl64.Vec3{float64(acc.Min[0]), float64(acc.Min[1]), float64(acc.Min[2])}
	hi := mgl64.Vec3{float64(acc.Max[0]), float64(acc.Max[1]), float64(acc.Max[2])}
	if !geom.IsFinite(lo) || !geom.IsFinite(hi) {
		return geom.Box3{}, false
	}
	return geom.NewBox(lo, hi), true
}

func clips(doc *gltf.Document) []clock.Clip {
	out := make([]clock.Clip, 0, len(doc.Animations))
	for i, a := range doc.Animations {
		var d float64
		for _, s := range a.Samplers {
			in := int(s.Input)
			if in < 0 || in >= len(doc.Accessors) {
				continue
			}
			if acc := doc.Accessors[in]; len(acc.Max) > 0 {
				d = max(d, float64(acc.Max[0]))
			}
		}
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("animation_%d", i)
		}
		out = append(out, clock.Clip{Name: name, Duration: d})
	}
	return out
}
