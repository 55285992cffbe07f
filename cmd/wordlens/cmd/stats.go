package cmd

import (
	"fmt"

	"github.com/bastiangx/wordlens/internal/cli"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Load dictionaries and print statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	manager, _, err := loadManager(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, d := range manager.Dictionaries() {
		fmt.Fprintf(out, "%-24s %-7s %6d entries %4d skipped\n", d.ID, d.Kind, d.Entries, d.Skipped)
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.NewRenderer(out, cfg.CLI.Color, false).Stats(manager.Statistics()))
	return nil
}
