package main

import (
	"errors"
	"fmt"
	"time"

	"refremote/internal/app"

	"github.com/spf13/cobra"
)

var (
	setRemote        bool
	setNoRemote      bool
	setPort          string
	setIEEE          bool
	setCaseKeeper    bool
	setUnitFormatter bool
	setTimeout       int
)

func init() {
	rootCmd.AddCommand(cmdSet)
	cmdSet.Flags().BoolVar(&setRemote, "remote", false, "Listen for remote operation")
	cmdSet.Flags().BoolVar(&setNoRemote, "no-remote", false, "Stop listening for remote operation")
	cmdSet.MarkFlagsMutuallyExclusive("remote", "no-remote")
	cmdSet.Flags().StringVar(&setPort, "port", "", "Remote server port (1025-65535)")
	cmdSet.Flags().BoolVar(&setIEEE, "ieee", false, "Use IEEE LaTeX abbreviations")
	cmdSet.Flags().BoolVar(&setCaseKeeper, "case-keeper", false, "Protect title word case on search")
	cmdSet.Flags().BoolVar(&setUnitFormatter, "unit-formatter", false, "Format units on search")
	cmdSet.Flags().IntVar(&setTimeout, "timeout", 3, "Timeout in seconds for daemon requests")
}

// settingFlags are the flags that change a setting; --timeout alone changes nothing.
var settingFlags = []string{"remote", "no-remote", "port", "ieee", "case-keeper", "unit-formatter"}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

var cmdSet = &cobra.Command{
	Use:   "set",
	Short: "Change advanced settings and apply them",
	Long:  "Reads the current settings from the daemon, overrides the given flags, validates the port and stores everything. Changing the port of a running listener requires a restart.",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !anyChanged(cmd, settingFlags...) {
			return errors.New("nothing to change (see --help)")
		}
		if setTimeout <= 0 {
			return errors.New("timeout must be greater than 0 seconds")
		}
		timeout := time.Duration(setTimeout) * time.Second

		ctrl := controller()
		values, err := ctrl.Settings(cmd.Context(), timeout)
		if err != nil {
			return err
		}
		if flags.Changed("remote") {
			values.UseRemoteServer = setRemote
		}
		if flags.Changed("no-remote") {
			values.UseRemoteServer = !setNoRemote
		}
		if flags.Changed("port") {
			values.RemoteServerPort = setPort
		}
		if flags.Changed("ieee") {
			values.UseIEEEAbbreviations = setIEEE
		}
		if flags.Changed("case-keeper") {
			values.UseCaseKeeperOnSearch = setCaseKeeper
		}
		if flags.Changed("unit-formatter") {
			values.UseUnitFormatterOnSearch = setUnitFormatter
		}

		res, err := ctrl.StoreSettings(cmd.Context(), app.StoreParams{Values: values, Timeout: timeout})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printValues(out, res.Values)
		for _, n := range res.Notices {
			fmt.Fprintf(out, "%s: %s\n", n.Title, n.Message)
		}
		if res.Values.UseRemoteServer {
			if res.Listening {
				fmt.Fprintln(out, "Remote listener is running")
			}
		} else {
			fmt.Fprintln(out, "Remote listener is stopped")
		}
		return nil
	},
}
