package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/xaenox/wallet-assistant/internal/llm"
	"go.uber.org/zap"
)

// ApologyMessage ends a turn the model gave no usable answer for.
const ApologyMessage = "I'm sorry, I don't know how to respond to that."

// ErrTooManyRounds is returned when a turn exceeds the round limit.
var ErrTooManyRounds = errors.New("too many function calls in one turn")

// Outcome tells how a turn ended.
type Outcome int

const (
	// OutcomeReply means the model answered with content.
	OutcomeReply Outcome = iota
	// OutcomeApology means the model returned nothing usable.
	OutcomeApology
	// OutcomeSuppressed means a function answered a priming instruction and
	// no follow-up completion was requested.
	OutcomeSuppressed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReply:
		return "reply"
	case OutcomeApology:
		return "apology"
	case OutcomeSuppressed:
		return "suppressed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

type Result struct {
	Outcome Outcome
	Content string
	// Calls counts the functions resolved during the turn.
	Calls int
}

// Dispatcher drives one turn: it alternates between waiting for the model
// and resolving the function it asked for until the model answers.
type Dispatcher struct {
	completer llm.Completer
	catalog   *Catalog
	sampling  llm.Sampling
	maxRounds int
	logger    *zap.Logger
}

// NewDispatcher creates a Dispatcher. maxRounds caps the completions of one
// turn; zero means no cap.
func NewDispatcher(completer llm.Completer, catalog *Catalog, sampling llm.Sampling, maxRounds int, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		completer: completer,
		catalog:   catalog,
		sampling:  sampling,
		maxRounds: maxRounds,
		logger:    logger,
	}
}

// Run resolves the session until the model produces content, a priming call
// is answered, or an error aborts the turn.
func (d *Dispatcher) Run(ctx context.Context, s *Session) (Result, error) {
	var calls int
	for round := 1; ; round++ {
		if d.maxRounds > 0 && round > d.maxRounds {
			return Result{Calls: calls}, fmt.Errorf("%w: limit is %d", ErrTooManyRounds, d.maxRounds)
		}

		resp, err := d.completer.Complete(ctx, llm.Request{
			Messages:  s.Messages(),
			Sampling:  d.sampling,
			Functions: d.catalog.Definitions(),
		})
		if err != nil {
			return Result{Calls: calls}, err
		}
		if resp == nil || len(resp.Choices) == 0 {
			d.logger.Warn("Model returned no choices", zap.Int("round", round))
			return Result{Outcome: OutcomeApology, Content: ApologyMessage, Calls: calls}, nil
		}

		// one function per response; extra choices are ignored
		choice := resp.Choices[0]
		switch {
		case choice.Content != "":
			s.AddAssistant(choice.Content)
			return Result{Outcome: OutcomeReply, Content: choice.Content, Calls: calls}, nil

		case choice.FunctionCall != nil:
			call := choice.FunctionCall
			content, err := d.catalog.Invoke(ctx, call.Name, call.Arguments)
			if err != nil {
				return Result{Calls: calls}, fmt.Errorf("%s: %w", call.Name, err)
			}
			calls++
			s.AddFunctionResult(call.Name, call.Arguments, content)
			d.logger.Debug("Function resolved",
				zap.String("function", call.Name),
				zap.Int("round", round),
				zap.String("result", content))

			if s.FollowsSystem() {
				return Result{Outcome: OutcomeSuppressed, Calls: calls}, nil
			}

		default:
			d.logger.Warn("Model returned neither content nor a function call",
				zap.String("finish_reason", choice.FinishReason))
			return Result{Outcome: OutcomeApology, Content: ApologyMessage, Calls: calls}, nil
		}
	}
}
