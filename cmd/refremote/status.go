package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdStatus)
}

var cmdStatus = &cobra.Command{
	Use:   "status",
	Short: "Show daemon and remote listener state",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := controller().Status()
		out := cmd.OutOrStdout()
		if !st.Running {
			fmt.Fprintln(out, "Daemon is not running")
			return nil
		}
		fmt.Fprintf(out, "Daemon running (pid %d)\n", st.PID)
		if err != nil {
			return err
		}
		if r := st.Remote; r != nil {
			if r.Listening {
				fmt.Fprintf(out, "Remote listener: on, port %d\n", r.ListenerPort)
			} else {
				fmt.Fprintln(out, "Remote listener: off")
			}
			if r.RemoteEnabled && r.Listening && r.ListenerPort != r.RemotePort {
				fmt.Fprintf(out, "Stored port %d takes effect after a restart\n", r.RemotePort)
			}
			fmt.Fprintf(out, "Preferences: %s\n", r.PrefsPath)
			fmt.Fprintf(out, "Abbreviation list: %s\n", r.AbbreviationList)
			fmt.Fprintf(out, "Inbox: %d request(s)\n", r.InboxSize)
		}
		return nil
	},
}
