package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bastiangx/wordlens/internal/cli"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	scanJSON bool
	scanURL  string
)

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Annotate a text or HTML file (stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print annotations as JSON")
	scanCmd.Flags().StringVar(&scanURL, "url", "", "Page URL used to resolve links in HTML input")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	manager, _, err := loadManager(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	var (
		in   io.Reader = os.Stdin
		name string
	)
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in, name = f, args[0]
	}

	var text string
	if cli.IsHTML(name) {
		title, body, err := cli.ExtractText(in, scanURL)
		if err != nil {
			return err
		}
		log.Debugf("Extracted article %q (%d bytes)", title, len(body))
		text = body
	} else {
		data, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		text = string(data)
	}

	anns, err := manager.FindInText(text)
	if err != nil {
		return err
	}
	if scanJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(anns)
	}
	cli.NewRenderer(cmd.OutOrStdout(), cfg.CLI.Color, cfg.CLI.ShowRelated).Print(text, anns)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d annotations\n", len(anns))
	return nil
}
