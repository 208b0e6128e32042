package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/target/marketplace-gateway/internal/domain/access"
	"github.com/target/marketplace-gateway/internal/domain/queryguard"
)

func runNormalize(cmdCtx *commandContext, args []string) error {
	if len(args) == 0 {
		return errors.New("normalize: at least one path is required")
	}
	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
	if err := writef(tw, "PATH\tCANONICAL\tREDIRECT\n"); err != nil {
		return err
	}
	for _, p := range args {
		canonical, redirect := access.NeedsRedirect(p)
		if err := writef(tw, "%s\t%s\t%t\n", p, canonical, redirect); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runClassify(cmdCtx *commandContext, args []string) error {
	if len(args) == 0 {
		return errors.New("classify: at least one path is required")
	}
	table := cmdCtx.Config.Gateway.RouteTable()

	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
	if err := writef(tw, "PATH\tCANONICAL\tCLASS\tBYPASS\n"); err != nil {
		return err
	}
	for _, p := range args {
		canonical := access.Normalize(p)
		if err := writef(tw, "%s\t%s\t%s\t%t\n", p, canonical, table.Classify(canonical), table.Bypass(canonical)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

type checkQueryOptions struct {
	Model string
	Body  string
}

func parseCheckQueryFlags(args []string, stderr io.Writer) (checkQueryOptions, error) {
	fs := flag.NewFlagSet("check-query", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts checkQueryOptions
	fs.StringVar(&opts.Model, "model", "", "Model (table) the query targets")
	fs.StringVar(&opts.Body, "body", "", "JSON query body; read from stdin when empty")

	if err := fs.Parse(args); err != nil {
		return checkQueryOptions{}, err
	}
	if strings.TrimSpace(opts.Model) == "" {
		return checkQueryOptions{}, errors.New("--model is required")
	}
	return opts, nil
}

func runCheckQuery(cmdCtx *commandContext, args []string) error {
	opts, err := parseCheckQueryFlags(args, cmdCtx.Out)
	if err != nil {
		return err
	}

	raw := []byte(opts.Body)
	if opts.Body == "" {
		if raw, err = io.ReadAll(io.LimitReader(cmdCtx.In, 1<<20)); err != nil {
			return fmt.Errorf("read query body: %w", err)
		}
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return fmt.Errorf("decode query body: %w", err)
	}

	op, _ := body["operation"].(string)
	if op == "" {
		op = "findMany"
	}
	guard := queryguard.New(queryguard.Options{
		Restricted:  cmdCtx.Config.Query.RestrictedFields,
		ReadMarkers: cmdCtx.Config.Query.ReadMarkers,
	})

	verdict := "allowed"
	if guard.Blocked(opts.Model, op, queryguard.FromAny(body)) {
		verdict = "blocked"
	}
	return writef(cmdCtx.Out, "%s %s: %s\n", opts.Model, op, verdict)
}
