package assistant

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/xaenox/wallet-assistant/internal/llm"
	"go.uber.org/zap"
)

// UnknownFunctionResult is fed back to the model when it calls a function
// the catalog does not know.
const UnknownFunctionResult = "Failed to execute unknown function"

// Handler runs a function with the raw JSON arguments sent by the model and
// returns the text fed back as the function result. An error aborts the turn.
type Handler func(ctx context.Context, arguments string) (string, error)

type Function struct {
	Name        string
	Description string
	Parameters  jsonschema.Definition
	Handler     Handler
}

// Catalog is the ordered set of functions offered to the model.
type Catalog struct {
	functions []Function
	index     map[string]int
	logger    *zap.Logger
}

func NewCatalog(logger *zap.Logger, functions ...Function) *Catalog {
	c := &Catalog{
		functions: functions,
		index:     make(map[string]int, len(functions)),
		logger:    logger,
	}
	for i, f := range functions {
		c.index[f.Name] = i
	}
	return c
}

// Definitions returns the descriptors sent with every completion request.
func (c *Catalog) Definitions() []llm.FunctionDefinition {
	defs := make([]llm.FunctionDefinition, 0, len(c.functions))
	for _, f := range c.functions {
		defs = append(defs, llm.FunctionDefinition{
			Name:        f.Name,
			Description: f.Description,
			Parameters:  f.Parameters,
		})
	}
	return defs
}

func (c *Catalog) Functions() []Function {
	return append([]Function(nil), c.functions...)
}

func (c *Catalog) Lookup(name string) (Function, bool) {
	i, ok := c.index[name]
	if !ok {
		return Function{}, false
	}
	return c.functions[i], true
}

// Invoke runs the named function. Unknown names yield UnknownFunctionResult.
func (c *Catalog) Invoke(ctx context.Context, name, arguments string) (string, error) {
	f, ok := c.Lookup(name)
	if !ok {
		c.logger.Warn("Model called an unknown function", zap.String("function", name))
		return UnknownFunctionResult, nil
	}
	c.logger.Debug("Invoking function",
		zap.String("function", name),
		zap.String("arguments", arguments))
	return f.Handler(ctx, arguments)
}

// newFunction derives the parameter schema from the fields of T, so the
// declared properties are exactly the ones the handler reads. Arguments that
// fail to decode or validate produce the failure text instead of running fn.
func newFunction[T any](name, description, failure string, logger *zap.Logger, fn func(ctx context.Context, args T) (string, error)) Function {
	var zero T
	schema, err := jsonschema.GenerateSchemaForType(zero)
	if err != nil {
		panic(fmt.Sprintf("schema for %s: %v", name, err))
	}
	// extra keys are tolerated outside strict mode
	schema.AdditionalProperties = nil
	required := schema.Required

	return Function{
		Name:        name,
		Description: description,
		Parameters:  *schema,
		Handler: func(ctx context.Context, arguments string) (string, error) {
			var args T
			if err := decodeArgs(arguments, required, &args); err != nil {
				logger.Info("Rejected function arguments",
					zap.String("function", name),
					zap.String("arguments", arguments),
					zap.Error(err))
				return failure, nil
			}
			return fn(ctx, args)
		},
	}
}
