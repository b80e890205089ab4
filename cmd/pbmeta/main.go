// Command pbmeta extracts structured metadata from a playbook command corpus
// and validates previously written artifacts.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-playbook-meta/cmd/pbmeta/internal/bootstrap"
	"github.com/goliatone/go-playbook-meta/internal/runtimeconfig"
)

// Version is stamped at build time.
var Version = "dev"

const (
	exitOK      = 0
	exitFailure = 1
	exitFatal   = 2
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv)
	stop()
	os.Exit(code)
}

// exitError carries the process exit code of a finished command. A nil err
// means the failure was already reported on stdout.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fatal(err error) error {
	return &exitError{code: exitFatal, err: err}
}

// app holds the layered configuration and the writers shared by subcommands.
type app struct {
	cfg    runtimeconfig.Config
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, lookup runtimeconfig.LookupFunc) int {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		fmt.Fprintln(stderr, "pbmeta:", err)
		return exitFatal
	}

	a := &app{cfg: cfg, stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintln(stderr, "pbmeta:", exit.err)
		}
		return exit.code
	}
	// Flag and argument errors from cobra.
	fmt.Fprintln(stderr, "pbmeta:", err)
	return exitFatal
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pbmeta",
		Short:         "Extract and validate playbook command metadata",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Logging.Provider, "log-provider", a.cfg.Logging.Provider, "Logging provider (console writes to stderr, gologger writes to stdout)")
	flags.StringVar(&a.cfg.Logging.Level, "log-level", a.cfg.Logging.Level, "Minimum log level")
	flags.StringVar(&a.cfg.Logging.Format, "log-format", a.cfg.Logging.Format, "go-logger output format (json, console, pretty)")

	root.AddCommand(a.extractCommand())
	root.AddCommand(a.validateCommand())
	return root
}

func (a *app) buildModule() (*bootstrap.Module, error) {
	module, err := moduleBuilder(bootstrap.Options{
		Logging:   a.cfg.Logging,
		LogWriter: a.stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return module, nil
}
