package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/inamate/overlay3d/internal/engine"
	"github.com/inamate/overlay3d/internal/frame"
	"github.com/inamate/overlay3d/internal/geom"
)

// frameRecord is one row of a timeline run.
type frameRecord struct {
	Frame         int        `json:"frame"`
	VideoTime     float64    `json:"videoTime"`
	AnimationTime float64    `json:"animationTime"`
	GateOpen      bool       `json:"gateOpen"`
	Rect          *geom.Rect `json:"rect"`
}

// videoPlayer stands in for the host's video element: its time advances
// with the frame delta and stops at the end of the video.
type videoPlayer struct {
	duration float64
	time     float64
}

func (v *videoPlayer) advance(dt float64) float64 {
	v.time += dt
	if v.duration > 0 && v.time > v.duration {
		v.time = v.duration
	}
	return v.time
}

func newTimelineCommand(ctx *commandContext) *cobra.Command {
	var frames int
	var fps float64
	var realtime bool

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Step the frame loop against a simulated video clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.scene()
			if err != nil {
				return err
			}
			if fps <= 0 {
				fps = doc.Video.FPS
			}
			if fps <= 0 {
				return errors.New("fps must be positive")
			}
			if frames <= 0 {
				frames = int(math.Ceil(doc.Video.Duration * fps))
			}
			if frames <= 0 {
				return errors.New("frames must be positive")
			}

			e, err := newEngine(doc)
			if err != nil {
				return err
			}
			player := &videoPlayer{duration: doc.Video.Duration}
			records := make([]frameRecord, 0, frames)
			runCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			var frameErr error
			onFrame := func(dt float64) {
				if frameErr != nil {
					return
				}
				rec, err := runFrame(e, player, len(records), dt)
				if err != nil {
					frameErr = err
					cancel()
					return
				}
				records = append(records, rec)
			}

			if realtime {
				sigCtx, stop := signal.NotifyContext(runCtx, os.Interrupt)
				defer stop()
				d := frame.Driver{Interval: time.Duration(float64(time.Second) / fps), MaxFrames: frames}
				if _, err := d.Run(sigCtx, onFrame); err != nil && frameErr == nil {
					return err
				}
			} else {
				frame.Step(frames, 1/fps, onFrame)
			}
			if frameErr != nil {
				return frameErr
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, records)
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rect := "-"
				if r.Rect != nil {
					rect = formatFloat(r.Rect.X) + "," + formatFloat(r.Rect.Y) + " " +
						formatFloat(r.Rect.Width) + "x" + formatFloat(r.Rect.Height)
				}
				rows = append(rows, []string{
					strconv.Itoa(r.Frame),
					formatFloat(r.VideoTime),
					formatFloat(r.AnimationTime),
					strconv.FormatBool(r.GateOpen),
					rect,
				})
			}
			return printTable(cmd,
				[]string{"Frame", "Video", "Animation", "Gate", "Rect"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft},
			)
		},
	}

	cmd.Flags().IntVarP(&frames, "frames", "n", 0, "Number of frames (default: the video's duration)")
	cmd.Flags().Float64Var(&fps, "fps", 0, "Frame rate of the simulated video")
	cmd.Flags().BoolVar(&realtime, "realtime", false, "Tick on a wall-clock timer instead of fixed steps")
	return cmd
}

// runFrame advances the simulated video, then the engine, and records the
// resulting state.
func runFrame(e *engine.Engine, player *videoPlayer, n int, dt float64) (frameRecord, error) {
	if err := e.SetVideoTime(player.advance(dt)); err != nil {
		return frameRecord{}, fmt.Errorf("frame %d: %w", n, err)
	}
	e.OnFrame(dt)
	rec := frameRecord{
		Frame:         n,
		VideoTime:     player.time,
		AnimationTime: e.AnimationTime(),
		GateOpen:      e.Store().Clock().GateOpen(),
	}
	if r, err := e.Rect(); err == nil {
		rec.Rect = &r
	}
	return rec, nil
}
