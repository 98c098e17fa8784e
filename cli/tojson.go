package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robopages/robopages"
	"github.com/robopages/robopages/dialect"
)

// NewToJSONCmd creates the "to-json" subcommand.
func NewToJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "to-json",
		Short: "Print the pages as a tool calling schema",
		Args:  cobra.NoArgs,
		RunE:  runToJSON,
	}

	cmd.Flags().StringP("path", "p", "", "Page file or directory containing pages (default: $ROBOPAGES_PATH or ~/.robopages)")
	cmd.Flags().StringP("filter", "f", "", "Only include pages whose name or categories contain this string")
	cmd.Flags().String("flavor", string(dialect.OpenAI), "Schema flavor: openai, ollama or generic")
	cmd.Flags().StringP("output", "o", "", "Write the schema to a file instead of stdout")

	return cmd
}

func runToJSON(cmd *cobra.Command, _ []string) error {
	filter, _ := cmd.Flags().GetString("filter")
	book, err := loadBookForCommand(cmd, robopages.WithFilter(filter))
	if err != nil {
		return err
	}

	flavor, _ := cmd.Flags().GetString("flavor")
	tools, err := dialect.Render(book, dialect.Flavor(flavor))
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}

	data, err := json.MarshalIndent(tools, "", "  ")
	if err != nil {
		return exitError(exitRuntime, "marshaling schema: %v", err)
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath != "" {
		if err := os.WriteFile(outputPath, append(data, '\n'), 0600); err != nil {
			return exitError(exitRuntime, "writing output file: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved to %s\n", outputPath)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
