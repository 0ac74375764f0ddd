package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdPing)
}

var pingTimeoutSeconds int

func init() {
	cmdPing.Flags().IntVarP(&pingTimeoutSeconds, "timeout", "t", 2, "Timeout in seconds for daemon ping")
}

// `refremote ping` is the daemon health check: it fails when the daemon is
// down and prints "pong" otherwise.
var cmdPing = &cobra.Command{
	Use:   "ping",
	Short: "Check daemon availability (expects 'pong')",
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := controller().Ping(cmd.Context(), time.Duration(pingTimeoutSeconds)*time.Second)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}
