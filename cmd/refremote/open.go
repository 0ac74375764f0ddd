package main

import (
	"errors"
	"fmt"
	"time"

	"refremote/internal/app"

	"github.com/spf13/cobra"
)

var openTimeout int

func init() {
	rootCmd.AddCommand(cmdOpen)
	cmdOpen.Flags().IntVar(&openTimeout, "timeout", 2, "Timeout in seconds for the remote listener")
}

var cmdOpen = &cobra.Command{
	Use:   "open <file> [file...]",
	Short: "Hand files to the running instance",
	Long:  "Sends the files to the remote operation listener on the stored port so the running instance opens them.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := controller().Open(cmd.Context(), app.OpenParams{
			Files:   args,
			Timeout: time.Duration(openTimeout) * time.Second,
		})
		if err != nil {
			if errors.Is(err, app.ErrNoRemoteListener) && port != 0 {
				return fmt.Errorf("%w (port %d)", err, port)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent %d file(s) to the instance on port %d\n", len(args), port)
		return nil
	},
}
