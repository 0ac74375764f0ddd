package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var inboxTimeout int

func init() {
	rootCmd.AddCommand(cmdInbox)
	cmdInbox.Flags().IntVar(&inboxTimeout, "timeout", 3, "Timeout in seconds for daemon request")
}

var cmdInbox = &cobra.Command{
	Use:   "inbox",
	Short: "List files other instances handed to the daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := controller().Inbox(cmd.Context(), time.Duration(inboxTimeout)*time.Second)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(msgs) == 0 {
			fmt.Fprintln(out, "No remote requests received")
			return nil
		}
		for _, m := range msgs {
			fmt.Fprintf(out, "[%s] %s %s\n", m.ID, m.ReceivedAt.Local().Format(time.RFC3339), strings.Join(m.Args, " "))
		}
		return nil
	},
}
