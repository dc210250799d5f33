// Command clamav-scan scans files against a ClamAV API server over REST or
// gRPC and prints one JSON line per file.
//
// Configuration is read from an optional yaml file (--config) and CLAMAV_*
// environment variables. The exit status is 0 when every file is clean, 1
// when any file is infected or could not be scanned, and 2 on other errors.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const (
	exitFindings = 1
	exitFailure  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCommand(newScanner).ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintln(os.Stderr, "clamav-scan:", err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFindings):
		return exitFindings
	default:
		return exitFailure
	}
}
