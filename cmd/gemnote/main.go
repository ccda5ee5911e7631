package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := newCLI()
	if err := newRootCmd(c).ExecuteContext(ctx); err != nil {
		// PersistentPostRun is skipped when RunE fails.
		c.rt.Close()
		fmt.Fprintf(os.Stderr, "gemnote: %s\n", describe(err))
		return 1
	}
	return 0
}
