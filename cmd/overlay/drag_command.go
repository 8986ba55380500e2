package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inamate/overlay3d/internal/drag"
	"github.com/inamate/overlay3d/internal/engine"
	"github.com/inamate/overlay3d/internal/geom"
)

// dragResult summarizes a replayed gesture.
type dragResult struct {
	Mode     string     `json:"mode"`
	Started  bool       `json:"started"`
	Moves    int        `json:"moves"`
	Position [3]float64 `json:"position"`
	Rect     *geom.Rect `json:"rect"`
}

func newDragCommand(ctx *commandContext) *cobra.Command {
	var fromFlag string
	var toFlag string
	var modeFlag string
	var steps int

	cmd := &cobra.Command{
		Use:   "drag",
		Short: "Replay a pointer drag and report where the model ends up",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.scene()
			if err != nil {
				return err
			}
			if modeFlag != "" {
				doc.Drag.Mode = modeFlag
			}
			if steps <= 0 {
				return errors.New("steps must be positive")
			}
			to, err := parsePoint(toFlag)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			e, err := newEngine(doc)
			if err != nil {
				return err
			}
			e.OnFrame(0)

			var from geom.Point
			if fromFlag == "" {
				r, err := e.Rect()
				if err != nil {
					return err
				}
				from.X, from.Y = r.Center()
			} else if from, err = parsePoint(fromFlag); err != nil {
				return fmt.Errorf("--from: %w", err)
			}

			res, err := replayDrag(e, from, to, steps)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, res)
			}
			rect := "-"
			if res.Rect != nil {
				rect = fmt.Sprintf("x=%s y=%s w=%s h=%s",
					formatFloat(res.Rect.X), formatFloat(res.Rect.Y), formatFloat(res.Rect.Width), formatFloat(res.Rect.Height))
			}
			return printTable(cmd,
				[]string{"Field", "Value"},
				[][]string{
					{"Mode", res.Mode},
					{"Started", strconv.FormatBool(res.Started)},
					{"Moves", strconv.Itoa(res.Moves)},
					{"Position", fmt.Sprintf("%s, %s, %s", formatFloat(res.Position[0]), formatFloat(res.Position[1]), formatFloat(res.Position[2]))},
					{"Rect", rect},
				},
				nil,
			)
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Pointer down position x,y in pixels (default: box center)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Pointer up position x,y in pixels")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "Drag mode override (ray-plane, screen-delta)")
	cmd.Flags().IntVar(&steps, "steps", 10, "Pointer moves between down and up")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// replayDrag presses at from, moves in a straight line to to and releases.
func replayDrag(e *engine.Engine, from, to geom.Point, steps int) (dragResult, error) {
	const pointerID = 1
	started, err := e.PointerDown(drag.Pointer{ID: pointerID, ClientX: from.X, ClientY: from.Y})
	if err != nil {
		return dragResult{}, err
	}
	res := dragResult{Mode: e.DragMode().String(), Started: started}
	if started {
		last := from
		for i := 1; i <= steps; i++ {
			f := float64(i) / float64(steps)
			p := geom.Point{X: from.X + (to.X-from.X)*f, Y: from.Y + (to.Y-from.Y)*f}
			moved, err := e.PointerMove(drag.Pointer{
				ID:        pointerID,
				ClientX:   p.X,
				ClientY:   p.Y,
				MovementX: p.X - last.X,
				MovementY: p.Y - last.Y,
			})
			if err != nil {
				return dragResult{}, err
			}
			if moved {
				res.Moves++
			}
			last = p
		}
	}
	e.PointerUp(drag.Pointer{ID: pointerID, ClientX: to.X, ClientY: to.Y})

	pos := e.Store().Transform().Position
	res.Position = [3]float64{pos[0], pos[1], pos[2]}
	if r, err := e.Rect(); err == nil {
		res.Rect = &r
	}
	return res, nil
}

func parsePoint(s string) (geom.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geom.Point{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geom.Point{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: x, Y: y}, nil
}
