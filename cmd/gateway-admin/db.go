package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/target/marketplace-gateway/internal/bootstrap"
	"github.com/target/marketplace-gateway/internal/data"
	"github.com/target/marketplace-gateway/internal/migrate"
	"github.com/target/marketplace-gateway/internal/service"
)

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 30 * time.Second
)

type migrateOptions struct {
	Timeout time.Duration
	Status  bool
}

func parseMigrateFlags(args []string, stderr io.Writer) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")
	fs.BoolVar(&opts.Status, "status", false, "List pending migrations without applying them")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args, cmdCtx.Out)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	if opts.Status {
		pending, pendingErr := migrate.Pending(ctx, db)
		if pendingErr != nil {
			return fmt.Errorf("list pending migrations: %w", pendingErr)
		}
		if len(pending) == 0 {
			return writeln(cmdCtx.Out, "no pending migrations")
		}
		return writef(cmdCtx.Out, "pending migrations: %s\n", strings.Join(pending, ", "))
	}

	cmdCtx.Logger.Info("running database migrations")
	if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
		return fmt.Errorf("run migrations: %w", migrateErr)
	}
	cmdCtx.Logger.Info("migrations completed successfully")
	return nil
}

type verificationSetOptions struct {
	UserID  string
	Status  string
	Locked  bool
	Timeout time.Duration
}

func parseVerificationSetFlags(args []string, stderr io.Writer) (verificationSetOptions, error) {
	fs := flag.NewFlagSet("verification-set", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := verificationSetOptions{Timeout: defaultCommandTimeout}
	fs.StringVar(&opts.UserID, "user", "", "User ID whose verification state to set")
	fs.StringVar(&opts.Status, "status", "", "Verification status: pending, verified or rejected")
	fs.BoolVar(&opts.Locked, "locked", false, "Lock the account")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the update")

	if err := fs.Parse(args); err != nil {
		return verificationSetOptions{}, err
	}
	if strings.TrimSpace(opts.UserID) == "" {
		return verificationSetOptions{}, errors.New("--user is required")
	}
	if strings.TrimSpace(opts.Status) == "" {
		return verificationSetOptions{}, errors.New("--status is required")
	}
	if opts.Timeout <= 0 {
		return verificationSetOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runVerificationSet(cmdCtx *commandContext, args []string) error {
	opts, err := parseVerificationSetFlags(args, cmdCtx.Out)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	svc := service.NewVerificationService(service.VerificationServiceOptions{
		Repo:   data.NewVerificationRepo(db),
		Logger: cmdCtx.Logger,
	})
	v, err := svc.Set(ctx, opts.UserID, opts.Status, opts.Locked)
	if err != nil {
		return err
	}
	return writef(cmdCtx.Out, "%s: status=%s locked=%t\n", opts.UserID, v.Status, v.AccountLocked)
}
