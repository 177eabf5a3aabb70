package main

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/ident"
	"github.com/xenking/brosmart/internal/domain/pricing"
)

const progressEvery = 100_000

// batchWriter persists one batch of coupons. *postgres.CouponRepository
// implements it.
type batchWriter interface {
	UpsertBatch(ctx context.Context, coupons []coupon.Coupon) error
}

type options struct {
	BatchSize int
	// Expected sizes the duplicate filter.
	Expected uint
	FPR      float64
}

// stats summarizes one ingest run.
type stats struct {
	Rows       int
	Written    int
	Duplicates int
	Invalid    int
}

// parseRecord converts a CSV record "code,type,value[,description]" into a
// coupon. Percent values are whole percents; fixed values are major-unit
// amounts such as "2.50".
func parseRecord(rec []string) (coupon.Coupon, error) {
	if len(rec) < 3 {
		return coupon.Coupon{}, errors.Errorf("want at least 3 fields, got %d", len(rec))
	}
	c := coupon.Coupon{
		Code: coupon.NormalizeCode(rec[0]),
		Type: pricing.Kind(strings.ToLower(strings.TrimSpace(rec[1]))),
	}
	if len(rec) > 3 {
		c.Description = strings.TrimSpace(rec[3])
	}

	raw := strings.TrimSpace(rec[2])
	switch c.Type {
	case pricing.KindPercent:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return coupon.Coupon{}, errors.Wrapf(err, "percent value %q", raw)
		}
		c.Value = v
	case pricing.KindFixed:
		v, err := pricing.ParseMajor(raw)
		if err != nil {
			return coupon.Coupon{}, errors.Wrapf(err, "fixed value %q", raw)
		}
		c.Value = v
	}
	if err := c.Validate(); err != nil {
		return coupon.Coupon{}, err
	}
	c.ID = ident.New("C")
	return c, nil
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "code")
}

// dedupe tracks codes already accepted in this run. The bloom filter answers
// most lookups; the exact set settles its false positives.
type dedupe struct {
	filter *bloom.BloomFilter
	seen   map[string]struct{}
}

func newDedupe(expected uint, fpr float64) *dedupe {
	return &dedupe{
		filter: bloom.NewWithEstimates(expected, fpr),
		seen:   make(map[string]struct{}),
	}
}

// add reports whether code is new and records it.
func (d *dedupe) add(code string) bool {
	if d.filter.TestString(code) {
		if _, ok := d.seen[code]; ok {
			return false
		}
	}
	d.filter.AddString(code)
	d.seen[code] = struct{}{}
	return true
}

// ingest streams every file in order, keeps the first definition of each
// code, and writes the coupons in batches while parsing continues.
func ingest(ctx context.Context, lg *slog.Logger, w batchWriter, files []string, opts options) (stats, error) {
	var st stats
	batches := make(chan []coupon.Coupon, 2)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(batches)

		seen := newDedupe(opts.Expected, opts.FPR)
		batch := make([]coupon.Coupon, 0, opts.BatchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
			batch = make([]coupon.Coupon, 0, opts.BatchSize)
			return nil
		}

		for _, path := range files {
			err := streamFile(ctx, path, func(line int, rec []string) error {
				if line == 1 && isHeader(rec) {
					return nil
				}
				st.Rows++
				if st.Rows%progressEvery == 0 {
					lg.Info("ingest progress", slog.Int("rows", st.Rows))
				}

				c, err := parseRecord(rec)
				if err != nil {
					st.Invalid++
					lg.Warn("skipping invalid row",
						slog.String("file", path),
						slog.Int("line", line),
						slog.String("error", err.Error()),
					)
					return nil
				}
				if !seen.add(c.Code) {
					st.Duplicates++
					return nil
				}

				batch = append(batch, c)
				if len(batch) >= opts.BatchSize {
					return flush()
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return flush()
	})
	g.Go(func() error {
		for batch := range batches {
			if err := w.UpsertBatch(ctx, batch); err != nil {
				return errors.Wrap(err, "write batch")
			}
			st.Written += len(batch)
		}
		return nil
	})

	err := g.Wait()
	return st, err
}

// streamFile opens a gzip-compressed CSV file and calls fn for each record
// with its 1-based line number.
func streamFile(ctx context.Context, path string, fn func(line int, rec []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	r := csv.NewReader(gz)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		line, _ := r.FieldPos(0)
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}
