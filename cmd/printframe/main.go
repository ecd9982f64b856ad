// Command printframe composes photos into print-ready frames.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/printframe/internal/cli"
	"github.com/matzehuels/printframe/pkg/errors"
)

// exitInterrupted follows the shell convention of 128+SIGINT.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := exitCode(ctx, run(ctx, os.Args[1:]), os.Stderr)
	stop()
	os.Exit(code)
}

func exitCode(ctx context.Context, err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case ctx.Err() != nil:
		return exitInterrupted
	default:
		fmt.Fprintln(stderr, errors.UserMessage(err))
		return 1
	}
}

func run(ctx context.Context, args []string) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.SetArgs(args)

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Flags are parsed before the pre-run hook, so the level is set there.
	attach := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return attach(cmd, args)
	}

	return root.ExecuteContext(ctx)
}
