package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"fjacquet/card-recon/cmd/analyze"
	"fjacquet/card-recon/cmd/batch"
	"fjacquet/card-recon/cmd/normalize"
	"fjacquet/card-recon/cmd/reconcile"
	"fjacquet/card-recon/cmd/root"
	"fjacquet/card-recon/internal/config"
)

func init() {
	// .env must be loaded before the configuration reads RECON_* variables
	_, _ = config.LoadEnv()

	root.Cmd.AddCommand(reconcile.Cmd)
	root.Cmd.AddCommand(normalize.Cmd)
	root.Cmd.AddCommand(analyze.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
