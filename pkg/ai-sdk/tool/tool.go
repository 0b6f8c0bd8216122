package tool

import (
	"context"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
)

type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	// Execute receives the call arguments as a JSON object and returns the result text.
	Execute(ctx context.Context, args string) (string, error)
}

type ExecuteFunc func(ctx context.Context, args string) (string, error)

type FuncTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          ExecuteFunc
}

func (t *FuncTool) Name() string {
	return t.name
}

func (t *FuncTool) Description() string {
	return t.description
}

func (t *FuncTool) Parameters() map[string]any {
	return t.parameters
}

func (t *FuncTool) Execute(ctx context.Context, args string) (string, error) {
	return t.fn(ctx, args)
}

func Define(name, description string, parameters map[string]any, fn ExecuteFunc) Tool {
	if parameters == nil {
		parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}

	return &FuncTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

func ToTypesTool(t Tool) types.Tool {
	return types.Tool{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}
