package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/shirt-orders/api/internal/config"
	"github.com/shirt-orders/api/internal/storage"
)

type sweepOptions struct {
	grace  time.Duration
	dryRun bool
}

func parseSweepFlags(args []string) (sweepOptions, error) {
	var opts sweepOptions
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	fs.DurationVar(&opts.grace, "grace", 24*time.Hour, "only remove proofs older than this")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "list orphans without removing them")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.grace < time.Hour {
		return opts, fmt.Errorf("grace %s is too short, uploads may still be in flight", opts.grace)
	}
	return opts, nil
}

func runSweep(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	opts, err := parseSweepFlags(args)
	if err != nil {
		return err
	}

	store, err := storage.NewMinioStore(cfg.Storage)
	if err != nil {
		return err
	}
	pool, queries, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	res, err := storage.NewSweeper(store, queries).Sweep(ctx, opts.grace, opts.dryRun)
	if err != nil {
		return err
	}
	return printSweep(stdout, res, opts.dryRun, time.Now())
}

func printSweep(w io.Writer, res storage.SweepResult, dryRun bool, now time.Time) error {
	if len(res.Orphans) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header("Key", "Size", "Uploaded")
		var total int64
		for _, obj := range res.Orphans {
			total += obj.Size
			if err := table.Append(obj.Key, humanize.IBytes(uint64(obj.Size)), humanize.RelTime(obj.LastModified, now, "ago", "from now")); err != nil {
				return err
			}
		}
		table.Footer(fmt.Sprintf("%d orphans", len(res.Orphans)), humanize.IBytes(uint64(total)), "")
		if err := table.Render(); err != nil {
			return err
		}
	}

	verb := "removed"
	count := res.Removed
	if dryRun {
		verb = "would remove"
		count = len(res.Orphans)
	}
	_, err := fmt.Fprintf(w, "scanned %d proofs, %s %d, %d failed\n", res.Scanned, verb, count, res.Failed)
	return err
}
