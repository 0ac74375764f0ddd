package main

import (
	"fmt"

	"refremote/internal/tui"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdTUI)
}

var cmdTUI = &cobra.Command{
	Use:   "tui",
	Short: "Edit the advanced settings in an interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := tui.Run(controller()); err != nil {
			return fmt.Errorf("tui exited with error: %w", err)
		}
		return nil
	},
}
