// Package console is the line-oriented chat surface of the assistant.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/xaenox/wallet-assistant/internal/assistant"
	"go.uber.org/zap"
)

const (
	Prompt   = "You > "
	Greeting = "I am your personal financial assistant."

	// ExitWord ends the session, compared case-insensitively.
	ExitWord = "goodbye"

	errorPrefix = "system error, try again. "
)

// Responder is the assistant behind the console. Start runs its opening
// exchange; Respond resolves one user input.
type Responder interface {
	Start(ctx context.Context) (assistant.Result, error)
	Respond(ctx context.Context, input string) (assistant.Result, error)
}

type Console struct {
	w         io.Writer
	r         *bufio.Reader
	responder Responder
	prefix    string
	markdown  *glamour.TermRenderer
	logger    *zap.Logger
}

type Option func(*Console) error

// WithMarkdown renders replies as terminal markdown.
func WithMarkdown(wordWrap int) Option {
	return func(c *Console) error {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrap),
		)
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		c.markdown = r
		return nil
	}
}

func New(w io.Writer, r io.Reader, responder Responder, logger *zap.Logger, opts ...Option) (*Console, error) {
	c := &Console{
		w:         w,
		r:         bufio.NewReader(r),
		responder: responder,
		prefix:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("AI > "),
		logger:    logger,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Greet prints the opening line of the assistant.
func (c *Console) Greet() {
	fmt.Fprintln(c.w, c.prefix+Greeting)
}

// Serve runs the opening exchange, greets and then reads inputs until the
// session ends. A failed opening is logged and the session still starts.
func (c *Console) Serve(ctx context.Context) error {
	result, err := c.responder.Start(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
		return ctx.Err()
	case err != nil:
		c.logger.Warn("Failed to pre-load categories", zap.Error(err))
	default:
		c.show(result)
	}
	c.Greet()
	return c.Run(ctx)
}

// Run reads inputs until the exit word, the end of the input or the
// cancellation of ctx. Each input is resolved completely before the next one
// is read. A failed turn is reported and the loop goes on.
func (c *Console) Run(ctx context.Context) error {
	for {
		fmt.Fprint(c.w, Prompt)

		line, err := c.readLine(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			fmt.Fprintln(c.w)
			return ctxErr
		}
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return fmt.Errorf("read input: %w", err)
		}

		input := strings.TrimSpace(line)
		switch {
		case input == "":
			if eof {
				fmt.Fprintln(c.w)
				return nil
			}
			continue
		case strings.EqualFold(input, ExitWord):
			return nil
		}

		c.turn(ctx, input)

		if eof {
			return nil
		}
	}
}

type readResult struct {
	line string
	err  error
}

// readLine returns the next input line, or early when ctx is cancelled. The
// pending read is abandoned in that case.
func (c *Console) readLine(ctx context.Context) (string, error) {
	ch := make(chan readResult, 1)
	go func() {
		line, err := c.r.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

func (c *Console) turn(ctx context.Context, input string) {
	result, err := c.responder.Respond(ctx, input)
	if err != nil && ctx.Err() != nil {
		// interrupted; Run exits at the next read
		return
	}
	if err != nil {
		c.logger.Error("Failed to answer input", zap.Error(err))
		fmt.Fprintln(c.w, errorPrefix+err.Error())
		return
	}
	c.show(result)
}

func (c *Console) show(result assistant.Result) {
	switch result.Outcome {
	case assistant.OutcomeSuppressed:
	case assistant.OutcomeApology:
		fmt.Fprintln(c.w, result.Content)
	default:
		fmt.Fprintln(c.w, c.prefix+c.render(result.Content))
	}
}

func (c *Console) render(content string) string {
	if c.markdown == nil {
		return content
	}
	out, err := c.markdown.Render(content)
	if err != nil {
		c.logger.Warn("Failed to render markdown", zap.Error(err))
		return content
	}
	return strings.TrimSpace(out)
}
