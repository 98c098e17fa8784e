package cli

import "fmt"

// Process exit codes. Scripts driving robopages branch on these, so they
// are part of the CLI contract.
const (
	exitSuccess    = 0
	exitValidation = 1  // bad flags, malformed defines, refused overwrites
	exitRuntime    = 2  // execution or I/O failure
	exitNotFound   = 3  // unknown function name
	exitLoad       = 4  // pages could not be loaded
	exitTimeout    = 10 // call exceeded its execution timeout
)

// ExitError carries the process exit code a failed command wants. RunE
// funcs return it and main translates it into os.Exit.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func exitError(code int, format string, args ...any) *ExitError {
	return &ExitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
