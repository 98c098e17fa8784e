package robopages

import "fmt"

// LoadError reports one manifest that could not be parsed. The default
// load policy skips the file and accumulates these.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// DuplicateFunctionError reports a function name registered by two pages.
// Duplicate names make call dispatch ambiguous, so the load fails.
type DuplicateFunctionError struct {
	Name      string
	Path      string
	PriorPath string
}

func (e *DuplicateFunctionError) Error() string {
	return fmt.Sprintf("function %q in %s already defined in %s", e.Name, e.Path, e.PriorPath)
}
