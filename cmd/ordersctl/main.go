// Command ordersctl is the operator CLI: it prints or exports the order
// report and removes payment proofs that no record references.
//
//	ordersctl report [-format table|pdf|csv] [-out FILE] [-paid true|false] [-q NAME]
//	ordersctl sweep [-grace 24h] [-dry-run]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shirt-orders/api/internal/catalog"
	"github.com/shirt-orders/api/internal/config"
	"github.com/shirt-orders/api/internal/database"
	"github.com/shirt-orders/api/internal/logger"
)

const usage = `usage:
  ordersctl report [-format table|pdf|csv] [-out FILE] [-paid true|false] [-q NAME]
  ordersctl sweep [-grace 24h] [-dry-run]
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	logger.New(cfg.LogLevel, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "report":
		err = runReport(ctx, cfg, os.Args[2:], os.Stdout)
	case "sweep":
		err = runSweep(ctx, cfg, os.Args[2:], os.Stdout)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("ordersctl failed")
	}
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, *database.Queries, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, database.New(pool), nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.CatalogPath)
}

// optionalBool is a flag that distinguishes "not given" from false.
type optionalBool struct {
	v *bool
}

func (o *optionalBool) String() string {
	if o.v == nil {
		return ""
	}
	return strconv.FormatBool(*o.v)
}

func (o *optionalBool) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	o.v = &b
	return nil
}

func output(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
