// Package dialect renders a loaded book into external tool-description
// schemas for agent frameworks.
package dialect

import (
	"fmt"

	"github.com/robopages/robopages"
)

// Flavor names a supported schema dialect.
type Flavor string

const (
	// OpenAI is the OpenAI function-calling tool format.
	OpenAI Flavor = "openai"
	// Ollama is accepted as an alias: Ollama consumes the OpenAI format.
	Ollama Flavor = "ollama"
	// Generic groups functions under their owning page and categories.
	Generic Flavor = "generic"
)

// Flavors lists the dialects Render accepts.
func Flavors() []Flavor {
	return []Flavor{OpenAI, Ollama, Generic}
}

// Render translates the book into the given dialect. The returned value is
// a JSON-marshalable slice of tool descriptions.
func Render(book *robopages.Book, flavor Flavor) (any, error) {
	switch flavor {
	case OpenAI, Ollama:
		return OpenAITools(book), nil
	case Generic:
		return GenericPages(book), nil
	default:
		return nil, fmt.Errorf("unknown flavor %q, supported: %v", flavor, Flavors())
	}
}
