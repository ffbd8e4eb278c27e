package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	app "github.com/valter-silva-au/adorep/internal"
	"github.com/valter-silva-au/adorep/internal/cli"
	"github.com/valter-silva-au/adorep/internal/core"
)

// Set with -ldflags "-X main.version=..." at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A closed pipe (adorep health | head) surfaces as EPIPE from Write.
	signal.Ignore(syscall.SIGPIPE)

	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	a, err := app.NewApp(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing adorep: %v\n", err)
		return 1
	}
	defer a.Close()

	return exitCode(cli.Execute())
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, syscall.EPIPE):
		return 0
	case errors.Is(err, core.ErrMissingCredential):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}
