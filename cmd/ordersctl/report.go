package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shirt-orders/api/internal/config"
	"github.com/shirt-orders/api/internal/order"
	"github.com/shirt-orders/api/internal/report"
)

// RecordLister is satisfied by *database.Queries.
type RecordLister interface {
	ListShirts(ctx context.Context, f order.Filter) ([]order.Record, error)
}

type reportOptions struct {
	format string
	out    string
	filter order.Filter
}

func parseReportFlags(args []string) (reportOptions, error) {
	var opts reportOptions
	var paid optionalBool

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.StringVar(&opts.format, "format", "table", "output format: table, pdf or csv")
	fs.StringVar(&opts.out, "out", "", "output file (default stdout)")
	fs.Var(&paid, "paid", "only paid (true) or unpaid (false) orders")
	fs.StringVar(&opts.filter.Search, "q", "", "customer name contains")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch opts.format {
	case "table", "pdf", "csv":
	default:
		return opts, fmt.Errorf("unknown format %q", opts.format)
	}
	opts.filter.Paid = paid.v
	opts.filter.Search = strings.TrimSpace(opts.filter.Search)
	return opts, nil
}

func runReport(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	opts, err := parseReportFlags(args)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	pool, queries, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	w, closeOut, err := output(opts.out, stdout)
	if err != nil {
		return err
	}

	if err := writeReport(ctx, queries, report.NewCompiler(cat, "Relatório de Pedidos"), opts, w); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}
	if opts.out != "" {
		log.Info().Str("file", opts.out).Str("format", opts.format).Msg("report written")
	}
	return nil
}

func writeReport(ctx context.Context, src RecordLister, compiler *report.Compiler, opts reportOptions, w io.Writer) error {
	records, err := src.ListShirts(ctx, opts.filter)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	rep := compiler.Compile(records)

	switch opts.format {
	case "pdf":
		return report.WritePDF(w, rep)
	case "csv":
		return report.WriteCSV(w, rep)
	default:
		return report.WriteTable(w, rep)
	}
}
