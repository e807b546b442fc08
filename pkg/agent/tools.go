package agent

import (
	"context"
	"encoding/json"
	"reflect"
)

// ToolHandler executes one tool call against its raw JSON arguments and
// returns the result text handed back to the model.
type ToolHandler func(ctx context.Context, input json.RawMessage) (string, error)

// Tool is a function the dialogue model may call during a turn.
type Tool struct {
	Name        string
	Description string
	InputSchema *Schema
	Handler     ToolHandler
}

// MakeTool builds a Tool from a typed handler, deriving the input schema
// from the input struct's fields. Struct tags:
//   - json:"name"        - field name in the call arguments
//   - desc:"description" - field description shown to the model
//   - enum:"a,b,c"       - allowed values
func MakeTool[T any](name, description string, fn func(ctx context.Context, input T) (string, error)) Tool {
	var zero T
	schema := schemaOf(reflect.TypeOf(zero))

	return Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
		Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var input T
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &input); err != nil {
					return "", err
				}
			}
			return fn(ctx, input)
		},
	}
}
