package main

import (
	"fmt"
	"strings"

	"refremote/internal/journals"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdAbbrev)
}

var cmdAbbrev = &cobra.Command{
	Use:   "abbrev <journal name>",
	Short: "Abbreviate a journal name with the list selected in the preferences",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adv, err := controller().LocalAdvancedPreferences()
		if err != nil {
			return err
		}
		loader := journals.NewLoader(adv.UseIEEEAbbreviations)
		name := strings.Join(args, " ")
		abbr, ok := loader.Abbreviate(name)
		if !ok {
			return fmt.Errorf("no %s abbreviation for %q", loader.ActiveList(), name)
		}
		fmt.Fprintln(cmd.OutOrStdout(), abbr)
		return nil
	},
}
