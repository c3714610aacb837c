package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"hardsub/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, formatError(err))
		}
		os.Exit(exitCode(err))
	}
}

// formatError prefixes err with its classification when it carries one.
func formatError(err error) string {
	label := services.Classify(err)
	if label == "" || label == "error" {
		return err.Error()
	}
	return fmt.Sprintf("[%s] %v", label, err)
}

func exitCode(err error) int {
	switch services.Classify(err) {
	case "":
		return 0
	case "invalid_parameter", "configuration":
		return 2
	case "media":
		return 3
	case "external_tool":
		return 4
	case "io":
		return 5
	default:
		if errors.Is(err, context.Canceled) {
			return 130
		}
		return 1
	}
}
