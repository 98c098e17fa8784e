package dispatch

import (
	"fmt"
	"strings"
)

const (
	// CodeNotFound is returned when a call names an unknown function.
	CodeNotFound = "NOT_FOUND"
	// CodeValidation is returned when required arguments are missing or the
	// call shape is invalid. No process is started.
	CodeValidation = "VALIDATION"
	// CodeExecution is returned when the external process cannot be started
	// or its command line cannot be resolved.
	CodeExecution = "EXECUTION"
	// CodeTimeout is returned when execution exceeds the per-call bound.
	CodeTimeout = "TIMEOUT"
)

// CallError is a structured per-call failure. It is encoded into the
// call's Result rather than raised, so a batch always yields one Result
// per input call.
type CallError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *CallError) Error() string {
	if e == nil {
		return ""
	}
	code := strings.TrimSpace(e.Code)
	msg := strings.TrimSpace(e.Message)
	switch {
	case code == "" && msg == "":
		return CodeExecution
	case code == "":
		return msg
	case msg == "":
		return code
	default:
		return fmt.Sprintf("%s: %s", code, msg)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *CallError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newCallError(code, message string, cause error) *CallError {
	cleanCode := strings.TrimSpace(code)
	if cleanCode == "" {
		cleanCode = CodeExecution
	}
	cleanMsg := strings.TrimSpace(message)
	if cleanMsg == "" && cause != nil {
		cleanMsg = cause.Error()
	}
	return &CallError{
		Code:    cleanCode,
		Message: cleanMsg,
		Cause:   cause,
	}
}
