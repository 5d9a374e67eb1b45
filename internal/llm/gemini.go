package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/xaenox/wallet-assistant/internal/models"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	geminiRoleUser  = "user"
	geminiRoleModel = "model"
)

// GeminiClient talks to the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, logger: logger}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	system, contents, err := toGeminiContents(req.Messages)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, geminiConfig(system, req))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	c.logger.Debug("Gemini response received",
		zap.String("model", c.model),
		zap.Int("candidates", len(resp.Candidates)))
	return fromGeminiResponse(resp)
}

func geminiConfig(system *genai.Content, req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: system,
		MaxOutputTokens:   int32(req.Sampling.MaxTokens),
		Temperature:       ptr(req.Sampling.Temperature),
	}
	if req.Sampling.TopP > 0 {
		cfg.TopP = ptr(req.Sampling.TopP)
	}
	if req.Sampling.FrequencyPenalty != 0 {
		cfg.FrequencyPenalty = ptr(req.Sampling.FrequencyPenalty)
	}
	if req.Sampling.PresencePenalty != 0 {
		cfg.PresencePenalty = ptr(req.Sampling.PresencePenalty)
	}
	if len(req.Functions) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Functions))
		for _, f := range req.Functions {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        f.Name,
				Description: f.Description,
				Parameters:  toGeminiParameters(f.Parameters),
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return cfg
}

// toGeminiContents maps the leading system message to the system
// instruction. Later system messages are sent as user text since Gemini has
// no system role inside the contents.
func toGeminiContents(messages []models.Message) (*genai.Content, []*genai.Content, error) {
	var system *genai.Content
	contents := make([]*genai.Content, 0, len(messages))
	for i, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			if i == 0 {
				system = &genai.Content{Parts: []*genai.Part{{Text: m.Content}}}
				continue
			}
			contents = append(contents, textContent(geminiRoleUser, m.Content))
		case models.RoleUser:
			contents = append(contents, textContent(geminiRoleUser, m.Content))
		case models.RoleAssistant:
			contents = append(contents, textContent(geminiRoleModel, m.Content))
		case models.RoleFunction:
			args := map[string]any{}
			if strings.TrimSpace(m.Arguments) != "" {
				if err := json.Unmarshal([]byte(m.Arguments), &args); err != nil {
					// Malformed arguments were already reported back as a failure.
					args = map[string]any{}
				}
			}
			contents = append(contents,
				&genai.Content{Role: geminiRoleModel, Parts: []*genai.Part{{
					FunctionCall: &genai.FunctionCall{Name: m.Name, Args: args},
				}}},
				&genai.Content{Role: geminiRoleUser, Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						Name:     m.Name,
						Response: map[string]any{"output": m.Content},
					},
				}}})
		default:
			return nil, nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	return system, contents, nil
}

func textContent(role, text string) *genai.Content {
	return &genai.Content{Role: role, Parts: []*genai.Part{{Text: text}}}
}

// toGeminiParameters returns nil for functions without parameters; Gemini
// rejects object schemas with no properties.
func toGeminiParameters(def jsonschema.Definition) *genai.Schema {
	if def.Type == jsonschema.Object && len(def.Properties) == 0 {
		return nil
	}
	return toGeminiSchema(def)
}

func toGeminiSchema(def jsonschema.Definition) *genai.Schema {
	s := &genai.Schema{
		Description: def.Description,
		Required:    def.Required,
		Enum:        def.Enum,
	}
	switch def.Type {
	case jsonschema.Object:
		s.Type = genai.TypeObject
	case jsonschema.String:
		s.Type = genai.TypeString
	case jsonschema.Integer:
		s.Type = genai.TypeInteger
	case jsonschema.Number:
		s.Type = genai.TypeNumber
	case jsonschema.Boolean:
		s.Type = genai.TypeBoolean
	case jsonschema.Array:
		s.Type = genai.TypeArray
	}
	if len(def.Properties) > 0 {
		s.Properties = make(map[string]*genai.Schema, len(def.Properties))
		for name, prop := range def.Properties {
			s.Properties[name] = toGeminiSchema(prop)
		}
	}
	if def.Items != nil {
		s.Items = toGeminiSchema(*def.Items)
	}
	return s
}

func fromGeminiResponse(resp *genai.GenerateContentResponse) (*Response, error) {
	out := &Response{Choices: make([]Choice, 0, len(resp.Candidates))}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			out.Choices = append(out.Choices, Choice{FinishReason: string(cand.FinishReason)})
			continue
		}
		var (
			text strings.Builder
			call *FunctionCall
		)
		for _, part := range cand.Content.Parts {
			if part.FunctionCall != nil && call == nil {
				args, err := json.Marshal(part.FunctionCall.Args)
				if err != nil {
					return nil, fmt.Errorf("encode function arguments: %w", err)
				}
				call = &FunctionCall{Name: part.FunctionCall.Name, Arguments: string(args)}
				continue
			}
			if part.Text != "" && !part.Thought {
				text.WriteString(part.Text)
			}
		}
		choice := Choice{Content: text.String(), FinishReason: FinishStop}
		if call != nil {
			choice = Choice{FunctionCall: call, FinishReason: FinishFunctionCall}
		}
		out.Choices = append(out.Choices, choice)
	}
	return out, nil
}

func ptr[T any](v T) *T {
	return &v
}
