package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/target/marketplace-gateway/config"
	"github.com/target/marketplace-gateway/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	In     io.Reader
	Out    io.Writer
}

func main() {
	cfg, cfgErr := bootstrap.LoadConfig()
	logger := bootstrap.InitLogger(cfgErr == nil && cfg.IsDev)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	if cfgErr != nil {
		logger.ErrorContext(context.Background(), "load config", "error", cfgErr)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"normalize": {
			name:        "normalize",
			description: "Print the canonical form of request paths",
			run:         runNormalize,
		},
		"classify": {
			name:        "classify",
			description: "Show the route class and bypass status of request paths under the configured table",
			run:         runClassify,
		},
		"check-query": {
			name:        "check-query",
			description: "Run a query body through the restricted-field guard",
			run:         runCheckQuery,
		},
		"migrate": {
			name:        "migrate",
			description: "Run database migrations (or list pending ones with --status)",
			run:         runMigrations,
		},
		"verification-set": {
			name:        "verification-set",
			description: "Set a buyer's verification status and lock flag",
			run:         runVerificationSet,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: gateway-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-20s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
