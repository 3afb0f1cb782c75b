package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oukeidos/doctran/internal/language"
)

func newLanguagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List commonly used language codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, e := range language.Common() {
				fmt.Fprintf(out, "%-10s %s\n", e.Code, e.Name)
			}
			fmt.Fprintln(out, "\nAny BCP 47 language tag is accepted; use \"auto\" as the source to detect.")
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
