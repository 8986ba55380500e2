package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/inamate/overlay3d/internal/export"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	var at float64
	var out string
	var format string

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the model's bounding box into container pixels",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.scene()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				format = doc.Export.Format
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			e, err := newEngine(doc)
			if err != nil {
				return err
			}
			if err := e.SetVideoTime(at); err != nil {
				return err
			}
			e.OnFrame(0)

			if out != "" {
				res, err := export.WriteFile(out, e, f)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, res)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d bytes)\n", res.Path, res.Format, res.Bytes)
				return nil
			}

			if ctx.jsonOutput() {
				v, err := export.Build(e, f)
				if err != nil {
					return err
				}
				return writeJSON(cmd, v)
			}

			p, err := e.Projection()
			if err != nil {
				return fmt.Errorf("%w: %v", export.ErrUnavailable, err)
			}
			rows := make([][]string, 0, len(p.Corners))
			for i, c := range p.Corners {
				w := p.World[i]
				rows = append(rows, []string{
					strconv.Itoa(i),
					formatFloat(w[0]), formatFloat(w[1]), formatFloat(w[2]),
					formatFloat(c.X), formatFloat(c.Y),
					formatFloat(p.Depth[i]),
				})
			}
			if err := printTable(cmd,
				[]string{"Corner", "World X", "World Y", "World Z", "Pixel X", "Pixel Y", "Depth"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
			); err != nil {
				return err
			}
			r := p.Rect()
			fmt.Fprintf(cmd.OutOrStdout(), "Rect: x=%s y=%s w=%s h=%s\n",
				formatFloat(r.X), formatFloat(r.Y), formatFloat(r.Width), formatFloat(r.Height))
			return nil
		},
	}

	cmd.Flags().Float64Var(&at, "at", 0, "Video time in seconds")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the export file to this path")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format (box3, corners)")
	return cmd
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
