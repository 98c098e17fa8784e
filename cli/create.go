package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const examplePage = `description: You can use this for a description.

functions:
  - name: example_function_name
    description: This is an example function describing a command line.
    parameters:
      - name: foo
        type: string
        description: An example parameter named foo.
        examples:
          - bar
          - baz
    cmdline:
      - echo
      - ${foo}
`

// NewCreateCmd creates the "create" subcommand.
func NewCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [file]",
		Short: "Create a new page with example fields",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCreate,
	}

	cmd.Flags().Bool("force", false, "Overwrite the file if it already exists")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	path := "robopage.yml"
	if len(args) == 1 {
		path = args[0]
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return exitError(exitValidation, "%s already exists, pass --force to overwrite", path)
	}

	if err := writeFileAtomic(path, []byte(examplePage)); err != nil {
		return exitError(exitRuntime, "writing %s: %v", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so a crash never leaves a half written page behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".robopage-*.yml")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
