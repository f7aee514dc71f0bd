package main

import (
	"fmt"
	"os"

	"invoice-reconciliation-service/cmd/reconciler/cmd"
	pkgerrors "invoice-reconciliation-service/pkg/errors"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Set version information
	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if rerr, ok := pkgerrors.AsReconcilerError(err); ok {
			os.Exit(rerr.GetExitCode())
		}
		os.Exit(1)
	}
}
