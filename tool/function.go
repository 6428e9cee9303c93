package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// Definer is a tool that publishes a JSON schema for its arguments. Tools
// without one are described as taking a single "input" string.
type Definer interface {
	tools.Tool
	Parameters() map[string]any
}

// Definition describes t in the function-calling format models expect.
func Definition(t tools.Tool) llms.Tool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input": map[string]any{
				"type":        "string",
				"description": "The input for the tool",
			},
		},
		"required": []string{"input"},
	}
	if d, ok := t.(Definer); ok {
		params = d.Parameters()
	}
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  params,
		},
	}
}

// Definitions describes every tool.
func Definitions(ts ...tools.Tool) []llms.Tool {
	out := make([]llms.Tool, 0, len(ts))
	for _, t := range ts {
		out = append(out, Definition(t))
	}
	return out
}

// BinaryIntTool exposes a function of two integers a and b as a tool whose
// input is the JSON object {"a": <int>, "b": <int>}.
type BinaryIntTool struct {
	name        string
	description string
	fn          func(a, b int) (string, error)
}

var _ Definer = (*BinaryIntTool)(nil)

// NewBinaryIntTool creates a two-integer tool.
func NewBinaryIntTool(name, description string, fn func(a, b int) (string, error)) *BinaryIntTool {
	return &BinaryIntTool{name: name, description: description, fn: fn}
}

// Name returns the tool name.
func (t *BinaryIntTool) Name() string { return t.name }

// Description returns the tool description.
func (t *BinaryIntTool) Description() string { return t.description }

// Parameters returns the JSON schema of the arguments.
func (t *BinaryIntTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "integer", "description": "first int"},
			"b": map[string]any{"type": "integer", "description": "second int"},
		},
		"required":             []string{"a", "b"},
		"additionalProperties": false,
	}
}

// Call parses the arguments and applies the function.
func (t *BinaryIntTool) Call(_ context.Context, input string) (string, error) {
	var args struct {
		A *json.Number `json:"a"`
		B *json.Number `json:"b"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(input)))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		return "", fmt.Errorf("%s: invalid arguments %q: %w", t.name, input, err)
	}
	if args.A == nil || args.B == nil {
		return "", fmt.Errorf("%s: arguments a and b are required", t.name)
	}

	a, err := toInt(*args.A)
	if err != nil {
		return "", fmt.Errorf("%s: a: %w", t.name, err)
	}
	b, err := toInt(*args.B)
	if err != nil {
		return "", fmt.Errorf("%s: b: %w", t.name, err)
	}
	return t.fn(a, b)
}

// toInt accepts integral numbers written as floats, e.g. 7.0.
func toInt(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%s is not an integer", n.String())
	}
	return int(f), nil
}

// MultiplyTool multiplies a and b.
func MultiplyTool() *BinaryIntTool {
	return NewBinaryIntTool("multiply", "Multiplies a and b.", func(a, b int) (string, error) {
		return strconv.Itoa(Multiply(a, b)), nil
	})
}

// AddTool adds a and b.
func AddTool() *BinaryIntTool {
	return NewBinaryIntTool("add", "Adds a and b.", func(a, b int) (string, error) {
		return strconv.Itoa(Add(a, b)), nil
	})
}

// SubtractTool subtracts b from a.
func SubtractTool() *BinaryIntTool {
	return NewBinaryIntTool("subtract", "Subtracts b from a.", func(a, b int) (string, error) {
		return strconv.Itoa(Subtract(a, b)), nil
	})
}

// DivideTool divides a by b.
func DivideTool() *BinaryIntTool {
	return NewBinaryIntTool("divide", "Divides a by b.", func(a, b int) (string, error) {
		q, err := Divide(a, b)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(q, 'f', -1, 64), nil
	})
}

// ArithmeticTools returns the multiply, add, subtract and divide tools.
func ArithmeticTools() []tools.Tool {
	return []tools.Tool{MultiplyTool(), AddTool(), SubtractTool(), DivideTool()}
}
