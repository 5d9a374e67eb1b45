// Package llm holds the chat-completion contract the assistant depends on
// and its adapters for the supported providers.
package llm

import (
	"context"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/xaenox/wallet-assistant/internal/models"
)

// Finish reasons reported on a Choice.
const (
	FinishStop         = "stop"
	FinishFunctionCall = "function_call"
)

// Sampling parameters sent with every completion request.
type Sampling struct {
	MaxTokens        int
	Temperature      float32
	TopP             float32
	FrequencyPenalty float32
	PresencePenalty  float32
}

// FunctionDefinition describes a function the model may call.
type FunctionDefinition struct {
	Name        string
	Description string
	Parameters  jsonschema.Definition
}

type Request struct {
	Messages  []models.Message
	Sampling  Sampling
	Functions []FunctionDefinition
}

// FunctionCall is a model request to run a named function.
type FunctionCall struct {
	Name      string
	Arguments string
}

// Choice carries either Content or a FunctionCall.
type Choice struct {
	Content      string
	FunctionCall *FunctionCall
	FinishReason string
}

type Response struct {
	Choices []Choice
}

// Completer sends one completion request to a language model.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
