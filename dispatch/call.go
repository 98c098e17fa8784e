package dispatch

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FunctionCall names a function and binds argument values to it.
type FunctionCall struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

// UnmarshalJSON accepts arguments either as a JSON object or as an
// OpenAI-style string containing JSON. Non-string argument values are
// stringified, since execution templates bind plain text.
func (c *FunctionCall) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Name = raw.Name
	c.Arguments = nil

	if len(raw.Arguments) == 0 {
		return nil
	}

	payload := raw.Arguments
	var encoded string
	if err := json.Unmarshal(payload, &encoded); err == nil {
		if encoded == "" {
			return nil
		}
		payload = []byte(encoded)
	}

	var values map[string]any
	if err := json.Unmarshal(payload, &values); err != nil {
		return fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	c.Arguments = stringifyArguments(values)
	return nil
}

func stringifyArguments(values map[string]any) map[string]string {
	if values == nil {
		return nil
	}
	out := make(map[string]string, len(values))
	for name, value := range values {
		switch v := value.(type) {
		case string:
			out[name] = v
		case float64:
			out[name] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[name] = strconv.FormatBool(v)
		case nil:
			out[name] = ""
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				out[name] = fmt.Sprintf("%v", v)
				continue
			}
			out[name] = string(encoded)
		}
	}
	return out
}

// Call is one entry of an ordered batch: a function call plus an optional
// correlation identifier.
type Call struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

// Status classifies a Result.
type Status string

const (
	// StatusOK marks a call whose process ran to completion, whatever its
	// exit code.
	StatusOK Status = "ok"
	// StatusSkipped marks a call declined at the interactive gate.
	StatusSkipped Status = "skipped"
	// StatusError marks a call that failed before or during execution; the
	// error code says where.
	StatusError Status = "error"
)

// NotExecuted is the content of a Result whose call was declined.
const NotExecuted = "<not executed>"

// Result correlates to one input Call, at the same batch position.
type Result struct {
	CallID    string `json:"id,omitempty"`
	Function  string `json:"function,omitempty"`
	Content   string `json:"content"`
	Status    Status `json:"status"`
	Code      string `json:"error_code,omitempty"`
	ExitCode  int    `json:"exit_code,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms,omitempty"`
}

// Failed reports whether the result carries an error status.
func (r Result) Failed() bool {
	return r.Status == StatusError
}

func errorResult(err *CallError) Result {
	return Result{
		Content: err.Error(),
		Status:  StatusError,
		Code:    err.Code,
	}
}
