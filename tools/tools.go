package tools

import (
	"context"
	"fmt"
	"sort"
)

// Tool is a single named capability a workflow node can invoke. Inputs and
// outputs are tool-specific; each tool documents its expected input type and
// fails with a clear error when handed anything else.
type Tool struct {
	Name        string
	Description string
	Execute     func(ctx context.Context, input any) (any, error)
}

// Registry holds tools by name. Registration replaces any existing tool with
// the same name.
type Registry struct {
	tools map[string]*Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
	}
}

func (r *Registry) Register(tool *Tool) {
	r.tools[tool.Name] = tool
}

func (r *Registry) Get(name string) (*Tool, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool, nil
}

// List returns registered tool names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func invalidInput(toolName string, input any) error {
	return fmt.Errorf("invalid input type %T for tool %s", input, toolName)
}
