// Command coupon-ingest bulk-loads catalog coupons from gzip-compressed CSV
// files of "code,type,value,description" rows.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/brosmart/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		opts        options
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&opts.BatchSize, "batch-size", 1000, "coupons per database round trip")
	flag.UintVar(&opts.Expected, "expected", 1_000_000, "expected number of distinct codes")
	flag.Float64Var(&opts.FPR, "fpr", 0.001, "duplicate filter false positive rate")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	files := flag.Args()
	if len(files) == 0 {
		slog.Error("usage: coupon-ingest [flags] FILE.csv.gz...")
		os.Exit(2)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files, opts); err != nil {
		slog.Error("coupon ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon ingest completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string, opts options) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	st, err := ingest(ctx, slog.Default(), postgres.NewCouponRepository(pool), files, opts)
	slog.Info("ingest finished",
		slog.Int("rows", st.Rows),
		slog.Int("written", st.Written),
		slog.Int("duplicates", st.Duplicates),
		slog.Int("invalid", st.Invalid),
	)
	return err
}
