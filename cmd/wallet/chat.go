package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/xaenox/wallet-assistant/internal/assistant"
	"github.com/xaenox/wallet-assistant/internal/console"
	"github.com/xaenox/wallet-assistant/internal/storage"
	"go.uber.org/zap"
)

type chatCmd struct{}

func (*chatCmd) Name() string     { return "chat" }
func (*chatCmd) Synopsis() string { return "talk to the wallet assistant" }
func (*chatCmd) Usage() string {
	return `wallet chat

  Starts an interactive session with the assistant. Type 'goodbye' to exit.
`
}

func (*chatCmd) SetFlags(f *flag.FlagSet) {}

func (c *chatCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.cfg.Validate(); err != nil {
		a.logger.Error("Invalid configuration", zap.Error(err))
		return subcommands.ExitFailure
	}
	if err := c.run(ctx, a); err != nil {
		a.logger.Error("Chat failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *chatCmd) run(ctx context.Context, a *app) error {
	// the memory backend starts empty
	if _, err := storage.Init(ctx, a.store, storage.Categories, storage.Expenses); err != nil {
		return err
	}

	completer, err := newCompleter(ctx, a.cfg.OpenAI, a.logger)
	if err != nil {
		return err
	}
	priming, err := assistant.ParsePriming(a.cfg.Assistant.Priming)
	if err != nil {
		return err
	}

	catalog := assistant.NewLedgerCatalog(a.categories, a.expenses, a.logger)
	dispatcher := assistant.NewDispatcher(completer, catalog, sampling(a.cfg.OpenAI), a.cfg.Assistant.MaxRounds, a.logger)
	wallet := assistant.New(dispatcher, a.cfg.Assistant.SystemPrompt, priming, a.logger)

	var opts []console.Option
	if a.cfg.Console.Markdown {
		opts = append(opts, console.WithMarkdown(100))
	}
	repl, err := console.New(os.Stdout, os.Stdin, wallet, a.logger, opts...)
	if err != nil {
		return err
	}

	err = repl.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		a.logger.Info("Chat interrupted")
		return nil
	}
	return err
}
