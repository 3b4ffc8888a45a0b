// Command stackgen composes deployable projects out of catalog generators.
//
// Usage:
//
//	stackgen apply --project DIR --name APP [--folder SUB] GEN [--key=value ...] [GEN ...]
//	stackgen list generators [--capabilities]
//	stackgen list runtimes
//	stackgen analyze REPO [BRANCH]
//	stackgen history [--limit N]
//	stackgen serve
//	stackgen version
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/artpar/stackgen/internal/engine"
	"github.com/artpar/stackgen/internal/shell/store"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess  = 0
	ExitFailed   = 1
	ExitUsage    = 2
	ExitRejected = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		printError(stderr, err.Error())
		return exitCode(err)
	}
	return ExitSuccess
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	var uerr *usageError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &uerr):
		return ExitUsage
	case engine.Status(err) == store.StatusRejected:
		return ExitRejected
	default:
		return ExitFailed
	}
}

// usageError marks errors caused by invalid command-line input.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}
