package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var sceneFlag string
	var logLevelFlag string
	var jsonFlag bool

	ctx := newCommandContext(&sceneFlag, &logLevelFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:           "overlay",
		Short:         "Project a 3D model's bounding box over video",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.setupLogging(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&sceneFlag, "scene", "s", "", "Scene file (TOML or JSON); defaults to a unit box")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Write JSON instead of tables")

	rootCmd.AddCommand(newProjectCommand(ctx))
	rootCmd.AddCommand(newTimelineCommand(ctx))
	rootCmd.AddCommand(newDragCommand(ctx))
	rootCmd.AddCommand(newSampleCommand(ctx))

	return rootCmd
}
