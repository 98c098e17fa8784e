package dialect

import "github.com/robopages/robopages"

// PageSchema is the generic dialect: functions grouped under their owning
// page for human or alternate-framework consumption.
type PageSchema struct {
	Page        string           `json:"page"`
	Description string           `json:"description"`
	Categories  []string         `json:"categories,omitempty"`
	Functions   []FunctionSchema `json:"functions"`
}

// FunctionSchema describes one function of a page.
type FunctionSchema struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  []ParameterSchema `json:"parameters"`
	Cmdline     []string          `json:"cmdline,omitempty"`
}

// ParameterSchema describes one declared parameter.
type ParameterSchema struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Default     string   `json:"default,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// GenericPages renders the book page by page, in insertion order.
func GenericPages(book *robopages.Book) []PageSchema {
	pages := book.Pages()
	out := make([]PageSchema, 0, len(pages))
	for _, page := range pages {
		schema := PageSchema{
			Page:        page.Name,
			Description: page.Description,
			Categories:  page.Categories,
			Functions:   make([]FunctionSchema, 0, len(page.Functions)),
		}
		for i := range page.Functions {
			schema.Functions = append(schema.Functions, genericFunction(&page.Functions[i]))
		}
		out = append(out, schema)
	}
	return out
}

func genericFunction(fn *robopages.Function) FunctionSchema {
	params := make([]ParameterSchema, 0, len(fn.Parameters))
	for _, param := range fn.Parameters {
		params = append(params, ParameterSchema{
			Name:        param.Name,
			Type:        schemaType(param.Type),
			Description: param.Description,
			Required:    param.Required,
			Default:     param.Default,
			Examples:    param.Examples,
		})
	}

	cmdline, err := fn.Template()
	if err != nil {
		cmdline = fn.Cmdline
	}
	return FunctionSchema{
		Name:        fn.Name,
		Description: fn.Description,
		Parameters:  params,
		Cmdline:     cmdline,
	}
}
