package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newExtractCmd(app *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "List the skills mentioned in a document",
		Long:  "Extract the skills mentioned in a text file, or in standard input when no file (or '-') is given. Prints one skill per line in first-seen order.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			text, err := readDocument(path, cmd.InOrStdin())
			if err != nil {
				return err
			}

			eng, err := app.loadEngine(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer eng.Stop()

			result, err := eng.Extract(text)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(app.out, result)
			}
			for _, skill := range result.Surfaces() {
				fmt.Fprintln(app.out, skill)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full extraction result as JSON")
	return cmd
}

// readDocument reads a text file, or stdin for "-"
func readDocument(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
