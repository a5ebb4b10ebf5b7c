package agent

import (
	"context"
	"encoding/json"
)

// FunctionCall is a structured tool invocation returned by the model.
type FunctionCall struct {
	Name      string
	Arguments json.RawMessage
}

// Completion is one model answer: plain text, a function call, or
// neither (which callers treat as "not understood").
type Completion struct {
	Text string
	Call *FunctionCall
}

// ToolSpec describes one function tool exposed to the model.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Prompt is a complete model request.
type Prompt struct {
	Model       string
	Messages    []Message
	Tools       []ToolSpec
	Temperature float64
}

// ModelClient abstracts the remote language model.
type ModelClient interface {
	Complete(ctx context.Context, prompt Prompt) (Completion, error)
}
