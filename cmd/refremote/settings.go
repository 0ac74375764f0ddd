package main

import (
	"fmt"
	"io"
	"time"

	"refremote/internal/settings"

	"github.com/spf13/cobra"
)

var settingsTimeout int

func init() {
	rootCmd.AddCommand(cmdSettings)
	cmdSettings.Flags().IntVar(&settingsTimeout, "timeout", 3, "Timeout in seconds for daemon request")
}

var cmdSettings = &cobra.Command{
	Use:   "settings",
	Short: "Show the advanced settings held by the daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := controller().Settings(cmd.Context(), time.Duration(settingsTimeout)*time.Second)
		if err != nil {
			return err
		}
		printValues(cmd.OutOrStdout(), values)
		return nil
	},
}

func printValues(w io.Writer, v settings.Values) {
	fmt.Fprintf(w, "[%s]\n", settings.TabName)
	fmt.Fprintf(w, "remote operation:       %s (port %s)\n", onOff(v.UseRemoteServer), v.RemoteServerPort)
	fmt.Fprintf(w, "IEEE abbreviations:     %s\n", onOff(v.UseIEEEAbbreviations))
	fmt.Fprintf(w, "case keeper on search:  %s\n", onOff(v.UseCaseKeeperOnSearch))
	fmt.Fprintf(w, "unit formatter on search: %s\n", onOff(v.UseUnitFormatterOnSearch))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
