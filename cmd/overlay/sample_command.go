package main

import (
	"github.com/spf13/cobra"

	"github.com/inamate/overlay3d/internal/document"
)

func newSampleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Print a starter scene built from the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			format := document.FormatTOML
			if ctx.jsonOutput() {
				format = document.FormatJSON
			}
			return document.Encode(cmd.OutOrStdout(), format, document.Default(cfg))
		},
	}
}
