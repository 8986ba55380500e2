package engine

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/overlay3d/internal/geom"
	"github.com/inamate/overlay3d/internal/projector"
)

// DrawCommand represents a single drawing operation for the host to execute
// on a 2D canvas layered over the video.
type DrawCommand struct {
	Op          string       `json:"op"`                    // "polyline", "rect", "label"
	Points      []geom.Point `json:"points,omitempty"`      // Pixel points for "polyline" and "label"
	Rect        *geom.Rect   `json:"rect,omitempty"`        // Pixel rect for "rect"
	Text        string       `json:"text,omitempty"`        // Label text
	Stroke      string       `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64      `json:"strokeWidth,omitempty"` // Stroke width
}

// Style controls the overlay's appearance.
type Style struct {
	Box         string
	Rect        string
	StrokeWidth float64
	Labels      bool
}

// DefaultStyle draws the box edges and corner labels.
var DefaultStyle = Style{Box: "#00e5ff", Rect: "#ff4081", StrokeWidth: 1.5, Labels: true}

// boxEdges lists the 12 edges of a box as corner index pairs. Corners joined
// by an edge differ in exactly one bit.
var boxEdges = func() [12][2]int {
	var edges [12][2]int
	n := 0
	for i := 0; i < geom.NumCorners; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				edges[n] = [2]int{i, i | bit}
				n++
			}
		}
	}
	return edges
}()

// CompileDrawCommands generates the overlay commands for a projection: one
// polyline per box edge, the 2D bounding rect, then a label per corner.
func CompileDrawCommands(p projector.Projection, style Style) []DrawCommand {
	commands := make([]DrawCommand, 0, len(boxEdges)+1+geom.NumCorners)
	for _, e := range boxEdges {
		commands = append(commands, DrawCommand{
			Op:          "polyline",
			Points:      []geom.Point{p.Corners[e[0]], p.Corners[e[1]]},
			Stroke:      style.Box,
			StrokeWidth: style.StrokeWidth,
		})
	}

	r := p.Rect()
	commands = append(commands, DrawCommand{
		Op:          "rect",
		Rect:        &r,
		Stroke:      style.Rect,
		StrokeWidth: style.StrokeWidth,
	})

	if style.Labels {
		for i, c := range p.Corners {
			commands = append(commands, DrawCommand{
				Op:     "label",
				Points: []geom.Point{c},
				Text:   fmt.Sprintf("%d (%.0f, %.0f)", i, c.X, c.Y),
			})
		}
	}
	return commands
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geom.Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
