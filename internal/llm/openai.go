package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/xaenox/wallet-assistant/internal/models"
	"go.uber.org/zap"
)

type OpenAIConfig struct {
	// Azure selects an Azure OpenAI deployment named after Model.
	Azure    bool
	APIKey   string
	Endpoint string
	OrgID    string
	Model    string
	Timeout  time.Duration
}

// OpenAIClient talks to OpenAI or Azure OpenAI through the legacy
// function-calling API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIClient(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIClient, error) {
	var clientConfig openai.ClientConfig
	if cfg.Azure {
		if cfg.Endpoint == "" {
			return nil, errors.New("azure openai requires an endpoint")
		}
		clientConfig = openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
		clientConfig.AzureModelMapperFunc = func(model string) string { return model }
	} else {
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.Endpoint != "" {
			clientConfig.BaseURL = cfg.Endpoint
		}
	}
	clientConfig.OrgID = cfg.OrgID
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.chatRequest(req))
	if err != nil {
		return nil, fmt.Errorf("create chat completion: %w", err)
	}
	c.logger.Debug("Chat completion received",
		zap.String("model", resp.Model),
		zap.Int("choices", len(resp.Choices)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))
	return fromOpenAIResponse(resp), nil
}

func (c *OpenAIClient) chatRequest(req Request) openai.ChatCompletionRequest {
	functions := make([]openai.FunctionDefinition, 0, len(req.Functions))
	for _, f := range req.Functions {
		functions = append(functions, openai.FunctionDefinition{
			Name:        f.Name,
			Description: f.Description,
			Parameters:  f.Parameters,
		})
	}
	return openai.ChatCompletionRequest{
		Model:            c.model,
		Messages:         toOpenAIMessages(req.Messages),
		MaxTokens:        req.Sampling.MaxTokens,
		Temperature:      req.Sampling.Temperature,
		TopP:             req.Sampling.TopP,
		FrequencyPenalty: req.Sampling.FrequencyPenalty,
		PresencePenalty:  req.Sampling.PresencePenalty,
		Functions:        functions,
	}
}

// toOpenAIMessages replays the assistant call before every function result,
// as the API expects the pair.
func toOpenAIMessages(messages []models.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			result = append(result, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: m.Content})
		case models.RoleUser:
			result = append(result, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Content})
		case models.RoleAssistant:
			result = append(result, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Content})
		case models.RoleFunction:
			arguments := m.Arguments
			if arguments == "" {
				arguments = "{}"
			}
			result = append(result,
				openai.ChatCompletionMessage{
					Role:         openai.ChatMessageRoleAssistant,
					FunctionCall: &openai.FunctionCall{Name: m.Name, Arguments: arguments},
				},
				openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleFunction,
					Name:    m.Name,
					Content: m.Content,
				})
		}
	}
	return result
}

func fromOpenAIResponse(resp openai.ChatCompletionResponse) *Response {
	out := &Response{Choices: make([]Choice, 0, len(resp.Choices))}
	for _, choice := range resp.Choices {
		c := Choice{
			Content:      choice.Message.Content,
			FinishReason: string(choice.FinishReason),
		}
		if choice.Message.FunctionCall != nil {
			c.FunctionCall = &FunctionCall{
				Name:      choice.Message.FunctionCall.Name,
				Arguments: choice.Message.FunctionCall.Arguments,
			}
		}
		out.Choices = append(out.Choices, c)
	}
	return out
}
