package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/xaenox/wallet-assistant/internal/storage"
	"go.uber.org/zap"
)

type initCmd struct{}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create the empty ledger documents" }
func (*initCmd) Usage() string {
	return `wallet init

  Creates empty categories and expenses documents in the configured storage.
  Existing documents are left untouched.
`
}

func (*initCmd) SetFlags(f *flag.FlagSet) {}

func (*initCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	created, err := storage.Init(ctx, a.store, storage.Categories, storage.Expenses)
	if err != nil {
		a.logger.Error("Failed to initialize ledger", zap.Error(err))
		return subcommands.ExitFailure
	}
	if len(created) == 0 {
		fmt.Println("ledger already initialized")
	}
	for _, name := range created {
		fmt.Printf("created %s\n", name)
	}
	return subcommands.ExitSuccess
}
