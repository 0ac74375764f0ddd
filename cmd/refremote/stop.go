package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopForce bool

func init() {
	rootCmd.AddCommand(cmdStop)
	cmdStop.Flags().BoolVarP(&stopForce, "force", "f", false, "Send SIGKILL if the daemon ignores SIGTERM")
}

var cmdStop = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := controller()
		status, _ := ctrl.Status()
		if !status.Running {
			fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
			return nil
		}
		if err := ctrl.StopDaemon(stopForce); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
		return nil
	},
}
