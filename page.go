package robopages

import (
	"fmt"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parameter type names recognized by schema translation. Anything outside
// this set degrades to a string type when a dialect is emitted.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// Parameter describes one named argument of a Function.
type Parameter struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	Required    bool     `yaml:"required"`
	Default     string   `yaml:"default,omitempty"`
	Examples    []string `yaml:"examples,omitempty"`
}

// UnmarshalYAML decodes a parameter with required defaulting to true when
// the manifest omits it.
func (p *Parameter) UnmarshalYAML(value *yaml.Node) error {
	type plain Parameter
	out := plain{Required: true}
	if err := value.Decode(&out); err != nil {
		return err
	}
	*p = Parameter(out)
	return nil
}

// Container declares how to run a function's command line through docker
// when its binary is not installed on the host.
type Container struct {
	Image   string   `yaml:"image,omitempty"`
	Name    string   `yaml:"name,omitempty"`
	Build   string   `yaml:"build,omitempty"`
	Args    []string `yaml:"args,omitempty"`
	Volumes []string `yaml:"volumes,omitempty"`
}

// Function is a callable capability: typed parameters bound into an
// execution template.
type Function struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	Parameters  []Parameter         `yaml:"parameters,omitempty"`
	Container   *Container          `yaml:"container,omitempty"`
	Cmdline     []string            `yaml:"cmdline,omitempty"`
	Platforms   map[string][]string `yaml:"platforms,omitempty"`
}

// Template returns the command template for the current platform: Cmdline
// when set, otherwise the Platforms entry matching runtime.GOOS.
func (f *Function) Template() ([]string, error) {
	if len(f.Cmdline) > 0 {
		return f.Cmdline, nil
	}
	if tmpl, ok := f.Platforms[runtime.GOOS]; ok && len(tmpl) > 0 {
		return tmpl, nil
	}
	return nil, fmt.Errorf("function %q has no command line for %s", f.Name, runtime.GOOS)
}

// CommandLine binds arguments into the function's template. Missing
// optional parameters fall back to their declared default, then to the
// placeholder's inline fallback, then to an empty string. Arguments that
// match no placeholder are ignored.
func (f *Function) CommandLine(arguments map[string]string) ([]string, error) {
	tmpl, err := f.Template()
	if err != nil {
		return nil, err
	}

	effective := make(map[string]string, len(arguments)+len(f.Parameters))
	for _, p := range f.Parameters {
		if p.Default != "" {
			effective[p.Name] = p.Default
		}
	}
	for name, value := range arguments {
		effective[name] = value
	}

	bound := make([]string, len(tmpl))
	for i, word := range tmpl {
		bound[i] = Expand(word, effective)
	}
	return bound, nil
}

// Signature renders the function as name(param:type, ...) for listings.
func (f *Function) Signature() string {
	args := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		args[i] = p.Name + ":" + p.Type
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(args, ", "))
}

func (f *Function) validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("function with empty name")
	}
	if len(f.Cmdline) == 0 && len(f.Platforms) == 0 {
		return fmt.Errorf("function %q declares no command line", f.Name)
	}
	seen := make(map[string]struct{}, len(f.Parameters))
	for i := range f.Parameters {
		p := &f.Parameters[i]
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("function %q has a parameter with an empty name", f.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("function %q declares parameter %q twice", f.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Type == "" {
			p.Type = TypeString
		}
	}
	return nil
}

// Page is a named, categorized manifest grouping related functions.
type Page struct {
	Name        string     `yaml:"name,omitempty"`
	Description string     `yaml:"description"`
	Categories  []string   `yaml:"categories,omitempty"`
	Functions   []Function `yaml:"functions"`

	functions map[string]*Function
}

// Function returns the named function, or nil when the page does not
// define it.
func (p *Page) Function(name string) *Function {
	return p.functions[name]
}

// Label renders the page's categories and name as a breadcrumb for
// listings, e.g. "web > scanners > nikto".
func (p *Page) Label() string {
	if len(p.Categories) == 0 {
		return p.Name
	}
	return strings.Join(p.Categories, " > ") + " > " + p.Name
}

// ParsePage parses a single manifest document. Name and category fallbacks
// from the source path are applied by the loader, not here.
func ParsePage(data []byte) (*Page, error) {
	var page Page
	if err := yaml.Unmarshal(data, &page); err != nil {
		return nil, err
	}
	if len(page.Functions) == 0 {
		return nil, fmt.Errorf("page declares no functions")
	}
	page.functions = make(map[string]*Function, len(page.Functions))
	for i := range page.Functions {
		fn := &page.Functions[i]
		if err := fn.validate(); err != nil {
			return nil, err
		}
		if _, dup := page.functions[fn.Name]; dup {
			return nil, fmt.Errorf("function %q defined twice", fn.Name)
		}
		page.functions[fn.Name] = fn
	}
	return &page, nil
}
