package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/brosmart/db"
	"github.com/xenking/brosmart/internal/domain/product"
	"github.com/xenking/brosmart/internal/seed"
	"github.com/xenking/brosmart/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		productsFile string
		refresh      bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to a products JSON file; the embedded catalog when empty")
	flag.BoolVar(&refresh, "refresh-products", false, "overwrite existing catalog rows with the file contents")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, refresh); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string, refresh bool) error {
	products, err := loadProducts(productsFile)
	if err != nil {
		return err
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	productRepo := postgres.NewProductRepository(pool)
	if refresh {
		if err := refreshProducts(ctx, productRepo, products); err != nil {
			return err
		}
	}

	report, err := seed.Apply(ctx, seed.Stores{
		Products: productRepo,
		Coupons:  postgres.NewCouponRepository(pool),
		Content:  postgres.NewContentRepository(pool),
	}, products)
	if err != nil {
		return err
	}

	slog.Info("seeded",
		slog.Int("products", report.Products),
		slog.Int("coupons", report.Coupons),
		slog.Int("slides", report.Slides),
		slog.Int("features", report.Features),
		slog.Bool("content", report.Content),
	)
	return nil
}

func loadProducts(path string) ([]product.Product, error) {
	data := db.SeedProducts
	if path != "" {
		slog.Info("reading products file", slog.String("path", path))

		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, errors.Wrap(err, "read products file")
		}
	}
	return seed.ParseProducts(data)
}

// refreshProducts upserts every product, so stock and prices in the file
// replace what is stored.
func refreshProducts(ctx context.Context, repo product.Repository, products []product.Product) error {
	for i := range products {
		p := &products[i]
		err := repo.Update(ctx, p)
		switch {
		case errors.Is(err, product.ErrNotFound):
			if err := repo.Create(ctx, p); err != nil {
				return errors.Wrapf(err, "create product %s", p.ID)
			}
		case err != nil:
			return errors.Wrapf(err, "update product %s", p.ID)
		}
		slog.Info("refreshed product", slog.String("id", p.ID), slog.String("title", p.Title))
	}
	return nil
}
