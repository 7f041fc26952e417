// Package main provides the twigcs CLI tool for checking Twig templates.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	os.Exit(exitCode(err))
}

// exitCode prints err unless it only signals blocking violations
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if !errors.Is(err, errBlocking) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return 1
}
