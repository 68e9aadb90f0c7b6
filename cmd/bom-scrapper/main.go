// Command bom-scrapper bootstraps the Python environment for the BOM
// rainfall scraper and runs it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Byrix/bom-scrapper/internal/adapters/driving/cli"
	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

// Set by the linker: -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetServiceFactory(buildServices)

	// Ctrl-C cancels the current step; child processes are killed with it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(domain.ExitCode(err))
	}
}
