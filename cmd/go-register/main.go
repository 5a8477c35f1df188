package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tartampluch/go-register/internal/cli"
	"github.com/tartampluch/go-register/internal/config"
)

// main delegates to runMain so deferred calls run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain executes the command line and maps its outcome to an exit code.
func runMain() int {
	// Cancel on SIGINT (Ctrl+C) or SIGTERM; serve shuts down gracefully.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx, os.Args[1:]); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}
