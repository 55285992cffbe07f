package cmd

import (
	"os"

	"github.com/bastiangx/wordlens/internal/cli"
	"github.com/spf13/cobra"
)

var replLimit int

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Annotate lines typed on stdin",
	RunE:  runRepl,
}

func init() {
	replCmd.Flags().IntVar(&replLimit, "limit", 10, "Number of completions for '?prefix' lines")
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	manager, _, err := loadManager(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	renderer := cli.NewRenderer(cmd.OutOrStdout(), cfg.CLI.Color, cfg.CLI.ShowRelated)
	return cli.NewInputHandler(manager, renderer, os.Stdin, replLimit).Start()
}
