package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/robopages/robopages"
)

// NewViewCmd creates the "view" subcommand.
func NewViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "List loaded pages and their functions",
		Args:  cobra.NoArgs,
		RunE:  runView,
	}

	cmd.Flags().StringP("path", "p", "", "Page file or directory containing pages (default: $ROBOPAGES_PATH or ~/.robopages)")
	cmd.Flags().StringP("filter", "f", "", "Only show pages whose name or categories contain this string")

	return cmd
}

func runView(cmd *cobra.Command, _ []string) error {
	filter, _ := cmd.Flags().GetString("filter")
	book, err := loadBookForCommand(cmd, robopages.WithFilter(filter))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PAGE\tFUNCTION\tDESCRIPTION")
	for _, key := range book.Keys() {
		page, ok := book.Page(key)
		if !ok {
			continue
		}
		// The page label is printed once, on its first function's row.
		label := page.Label()
		for i := range page.Functions {
			function := &page.Functions[i]
			fmt.Fprintf(w, "%s\t%s\t%s\n", label, function.Signature(), function.Description)
			label = ""
		}
	}
	return w.Flush()
}
