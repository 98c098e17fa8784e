package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robopages/robopages"
	"github.com/robopages/robopages/dispatch"
)

// NewRunCmd creates the "run" subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <function>",
		Short: "Execute a function from the loaded pages",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}

	cmd.Flags().StringP("path", "p", "", "Page file or directory containing pages (default: $ROBOPAGES_PATH or ~/.robopages)")
	cmd.Flags().StringArrayP("define", "D", nil, "Predefine a function argument as name=value (repeatable)")
	cmd.Flags().Bool("auto", false, "Execute without asking for confirmation")
	cmd.Flags().Duration("timeout", dispatch.DefaultCallTimeout, "Execution timeout")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	functionName := args[0]

	book, err := loadBookForCommand(cmd)
	if err != nil {
		return err
	}

	function, _, found := book.Find(functionName)
	if !found {
		return exitError(exitNotFound, "function %q not found", functionName)
	}

	defines, _ := cmd.Flags().GetStringArray("define")
	arguments, err := parseDefines(defines)
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}

	// One buffered reader shared between the prompt loop and the
	// confirmation gate, so buffered input is not lost between them.
	in := bufio.NewReader(cmd.InOrStdin())
	if err := promptForArguments(cmd, in, function, arguments); err != nil {
		return err
	}

	auto, _ := cmd.Flags().GetBool("auto")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	disp := dispatch.New(book,
		dispatch.WithTimeout(timeout),
		dispatch.WithConfirmer(dispatch.NewTerminalConfirmer(in, cmd.ErrOrStderr())),
	)

	calls := []dispatch.Call{{Function: dispatch.FunctionCall{Name: functionName, Arguments: arguments}}}
	results := disp.Process(cmd.Context(), calls, !auto)

	result := results[0]
	if result.Failed() {
		return exitError(resultExitCode(result.Code), "%s", result.Content)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Content)
	return nil
}

// promptForArguments asks for each parameter not supplied via --define, in
// declaration order. Empty input skips optional parameters; required ones
// are asked again until a value is given.
func promptForArguments(cmd *cobra.Command, in *bufio.Reader, function *robopages.Function, arguments map[string]string) error {
	for _, parameter := range function.Parameters {
		if _, supplied := arguments[parameter.Name]; supplied {
			continue
		}
		for {
			fmt.Fprintf(cmd.ErrOrStderr(), "enter value for ${%s}: ", parameter.Name)
			line, err := in.ReadString('\n')
			value := strings.TrimSpace(line)
			if value != "" {
				arguments[parameter.Name] = value
				break
			}
			if !parameter.Required {
				break
			}
			if err != nil {
				return exitError(exitValidation, "no value supplied for required parameter %q", parameter.Name)
			}
		}
	}
	return nil
}

func resultExitCode(code string) int {
	switch code {
	case dispatch.CodeTimeout:
		return exitTimeout
	case dispatch.CodeValidation:
		return exitValidation
	case dispatch.CodeNotFound:
		return exitNotFound
	default:
		return exitRuntime
	}
}
