package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/brainassist/internal/modes"
)

func init() {
	rootCmd.AddCommand(modesCmd)
}

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the chat modes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MODE\tLABEL\tMODEL\tTEMPERATURE")
		for _, m := range modes.All() {
			p := modes.Resolve(m)
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\n", m, modes.ThemeFor(m).Prompt.Render(p.Label), p.Model, p.Temperature)
		}
		return w.Flush()
	},
}
