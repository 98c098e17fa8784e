package dialect

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/robopages/robopages"
)

// Tool is one entry of the OpenAI function-calling tool array.
// https://platform.openai.com/docs/guides/function-calling
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a callable function and its parameter schema.
type ToolFunction struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters is the JSON-schema object describing a function's arguments.
// Properties keep the declaration order of the underlying parameters.
type Parameters struct {
	Type       string                                   `json:"type"`
	Properties *orderedmap.OrderedMap[string, Property] `json:"properties"`
	Required   []string                                 `json:"required"`
}

// Property describes one argument.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// OpenAITools renders every function in the book as an OpenAI tool, in the
// book's stable iteration order.
func OpenAITools(book *robopages.Book) []Tool {
	entries := book.Functions()
	tools := make([]Tool, 0, len(entries))
	for _, entry := range entries {
		tools = append(tools, openAITool(entry.Function))
	}
	return tools
}

func openAITool(fn *robopages.Function) Tool {
	properties := orderedmap.New[string, Property]()
	required := []string{}
	for _, param := range fn.Parameters {
		properties.Set(param.Name, Property{
			Type:        schemaType(param.Type),
			Description: propertyDescription(param),
		})
		if param.Required {
			required = append(required, param.Name)
		}
	}

	return Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        fn.Name,
			Description: fn.Description,
			Parameters: Parameters{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		},
	}
}

// schemaType maps a declared parameter type onto the JSON-schema
// primitives the dialect understands. Unrecognized types degrade to
// string rather than failing the emission.
func schemaType(declared string) string {
	switch strings.ToLower(strings.TrimSpace(declared)) {
	case robopages.TypeString:
		return robopages.TypeString
	case robopages.TypeInteger:
		return robopages.TypeInteger
	case robopages.TypeNumber:
		return robopages.TypeNumber
	case robopages.TypeBoolean:
		return robopages.TypeBoolean
	default:
		return robopages.TypeString
	}
}

func propertyDescription(param robopages.Parameter) string {
	if len(param.Examples) == 0 {
		return param.Description
	}
	return param.Description + " (e.g. " + strings.Join(param.Examples, ", ") + ")"
}
