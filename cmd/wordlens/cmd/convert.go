package cmd

import (
	"fmt"
	"strings"

	"github.com/bastiangx/wordlens/pkg/dictionary"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <src> <dst>",
	Short: "Convert a dictionary file to another format",
	Long: "Reads a dictionary in any supported format and writes it in the format implied by the destination extension.\n" +
		"Supported extensions: " + strings.Join(dictionary.SupportedExtensions(), " ") + " (append .zst to compress).",
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	if _, _, err := setup(); err != nil {
		return err
	}
	n, err := dictionary.ConvertFile(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries to %s\n", n, args[1])
	return nil
}
