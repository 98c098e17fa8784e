package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robopages/robopages"
)

// resolvePagesPath picks the page root for a command: the --path flag when
// set, otherwise ROBOPAGES_PATH, otherwise ~/.robopages.
func resolvePagesPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("path")
	if strings.TrimSpace(path) != "" {
		return path, nil
	}
	return robopages.DefaultPath()
}

// loadBookForCommand loads pages for a CLI command, printing one warning per
// skipped manifest.
func loadBookForCommand(cmd *cobra.Command, opts ...robopages.LoadOption) (*robopages.Book, error) {
	path, err := resolvePagesPath(cmd)
	if err != nil {
		return nil, exitError(exitLoad, "resolving pages path: %v", err)
	}

	book, warnings, err := robopages.Load(path, opts...)
	if err != nil {
		return nil, exitError(exitLoad, "loading pages from %s: %v", path, err)
	}
	for _, warning := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", warning.Path, warning.Err)
	}
	return book, nil
}

// parseDefines turns repeated name=value flags into an argument map.
func parseDefines(defines []string) (map[string]string, error) {
	arguments := make(map[string]string, len(defines))
	for _, define := range defines {
		parts := strings.SplitN(define, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid define %q, expected name=value", define)
		}
		arguments[strings.TrimSpace(parts[0])] = parts[1]
	}
	return arguments, nil
}
