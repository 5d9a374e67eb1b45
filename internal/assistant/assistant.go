// Package assistant turns user utterances into completions and ledger
// function calls.
package assistant

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Priming selects when the category pre-load instruction is sent.
type Priming string

const (
	// PrimeAtStartup runs one priming exchange before the first input.
	PrimeAtStartup Priming = "startup"
	// PrimeEveryTurn primes every turn before the user message.
	PrimeEveryTurn Priming = "turn"
	PrimeOff       Priming = "off"
)

func ParsePriming(s string) (Priming, error) {
	switch p := Priming(s); p {
	case PrimeAtStartup, PrimeEveryTurn, PrimeOff:
		return p, nil
	}
	return "", fmt.Errorf("unknown priming mode %q", s)
}

// Assistant owns the per-turn sessions. History is not kept across turns.
type Assistant struct {
	dispatcher   *Dispatcher
	systemPrompt string
	priming      Priming
	now          func() time.Time
	logger       *zap.Logger
}

func New(dispatcher *Dispatcher, systemPrompt string, priming Priming, logger *zap.Logger) *Assistant {
	return &Assistant{
		dispatcher:   dispatcher,
		systemPrompt: systemPrompt,
		priming:      priming,
		now:          time.Now,
		logger:       logger,
	}
}

// Start runs the startup priming exchange when that mode is selected. The
// result carries the model's text when it answered the priming with content
// instead of a call; otherwise it is suppressed.
func (a *Assistant) Start(ctx context.Context) (Result, error) {
	if a.priming != PrimeAtStartup {
		return Result{Outcome: OutcomeSuppressed}, nil
	}
	s := a.newSession()
	defer s.Clear()
	result, err := a.prime(ctx, s)
	if err != nil {
		return result, fmt.Errorf("pre-load categories: %w", err)
	}
	return result, nil
}

// Respond resolves one user input. The session is discarded when the turn
// ends, whether it succeeded or not.
func (a *Assistant) Respond(ctx context.Context, input string) (Result, error) {
	s := a.newSession()
	defer s.Clear()

	if a.priming == PrimeEveryTurn {
		if _, err := a.prime(ctx, s); err != nil {
			return Result{}, err
		}
	}

	s.AddUser(input)
	result, err := a.dispatcher.Run(ctx, s)
	if err != nil {
		a.logger.Error("Turn aborted", zap.Error(err), zap.Int("calls", result.Calls))
		return result, err
	}
	a.logger.Info("Turn completed",
		zap.Stringer("outcome", result.Outcome),
		zap.Int("calls", result.Calls))
	return result, nil
}

func (a *Assistant) newSession() *Session {
	return NewSession(a.systemPrompt, a.now())
}

func (a *Assistant) prime(ctx context.Context, s *Session) (Result, error) {
	s.Prime()
	result, err := a.dispatcher.Run(ctx, s)
	if err != nil {
		return result, err
	}
	if result.Outcome != OutcomeSuppressed {
		a.logger.Debug("Priming did not end with a function result", zap.Stringer("outcome", result.Outcome))
	}
	return result, nil
}
