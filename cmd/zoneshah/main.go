package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := Execute(ctx)
	// Restore default signal handling so a second interrupt terminates.
	stop()

	switch {
	case err == nil:
		return
	case errors.Is(err, errInterrupted):
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "[!] Exiting ZoneShah...")
		os.Exit(130)
	case errors.Is(err, errUsage):
		os.Exit(1)
	default:
		color.New(color.FgRed).Fprintf(os.Stderr, "[!] Error: %v\n", err)
		os.Exit(1)
	}
}

// Sentinels mapped to exit codes by main
var (
	errInterrupted = errors.New("interrupted")
	errUsage       = errors.New("usage")
)

// interrupted wraps the context cause so main exits with 130
func interrupted(err error) error {
	if err == nil {
		return errInterrupted
	}
	return fmt.Errorf("%w: %w", errInterrupted, err)
}
