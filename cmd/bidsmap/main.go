package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"bidsmap/internal/faults"
)

// Exit codes. Invalid configuration or paths exit before anything is written.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInvalid     = 2
	exitInterrupted = 130
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	cancel()
	os.Exit(reportError(os.Stderr, err))
}

// reportError prints err and returns the process exit code. Recoverable
// conditions were already logged as warnings and do not fail the process.
func reportError(w io.Writer, err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(w, "interrupted")
		return exitInterrupted
	case !faults.IsFatal(err):
		fmt.Fprintln(w, "warning:", err)
		return exitOK
	case errors.Is(err, faults.ErrConfig), errors.Is(err, faults.ErrPath):
		fmt.Fprintln(w, "error:", err)
		return exitInvalid
	default:
		fmt.Fprintln(w, "error:", err)
		return exitFailure
	}
}
