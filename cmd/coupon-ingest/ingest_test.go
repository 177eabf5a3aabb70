package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/pricing"
)

type recordingWriter struct {
	mu      sync.Mutex
	batches [][]coupon.Coupon
	err     error
}

func (w *recordingWriter) UpsertBatch(_ context.Context, coupons []coupon.Coupon) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, coupons)
	return nil
}

func (w *recordingWriter) codes() []string {
	var out []string
	for _, b := range w.batches {
		for _, c := range b {
			out = append(out, c.Code)
		}
	}
	return out
}

func writeGz(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)

	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return path
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name    string
		rec     []string
		want    coupon.Coupon
		wantErr bool
	}{
		{
			name: "percent",
			rec:  []string{" welcome10 ", "percent", "10", "10% off"},
			want: coupon.Coupon{Code: "WELCOME10", Type: pricing.KindPercent, Value: 10, Description: "10% off"},
		},
		{
			name: "fixed major units",
			rec:  []string{"FLAT200", "FIXED", "2.00"},
			want: coupon.Coupon{Code: "FLAT200", Type: pricing.KindFixed, Value: 200},
		},
		{name: "too few fields", rec: []string{"X", "percent"}, wantErr: true},
		{name: "percent over 100", rec: []string{"X", "percent", "101"}, wantErr: true},
		{name: "fractional percent", rec: []string{"X", "percent", "10.5"}, wantErr: true},
		{name: "sub-minor fixed", rec: []string{"X", "fixed", "1.005"}, wantErr: true},
		{name: "unknown type", rec: []string{"X", "bogo", "1"}, wantErr: true},
		{name: "empty code", rec: []string{" ", "percent", "5"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRecord(tt.rec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Regexp(t, `^C[0-9A-Z]{7}$`, got.ID)
			got.ID = ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDedupe(t *testing.T) {
	d := newDedupe(100, 0.01)
	assert.True(t, d.add("A"))
	assert.True(t, d.add("B"))
	assert.False(t, d.add("A"))
	assert.False(t, d.add("B"))
	assert.True(t, d.add("C"))
}

func TestIngest(t *testing.T) {
	first := writeGz(t, "a.csv.gz", "code,type,value,description\n"+
		"WELCOME10,percent,10,10% off\n"+
		"FLAT200,fixed,2.00,Flat\n"+
		"BROKEN,percent,abc,bad\n"+
		"SPRING,percent,15,Spring\n")
	second := writeGz(t, "b.csv.gz", "welcome10,percent,50,later duplicate\n"+
		"SUMMER,fixed,5,Summer\n")

	w := &recordingWriter{}
	st, err := ingest(context.Background(), discard(), w, []string{first, second}, options{
		BatchSize: 2,
		Expected:  100,
		FPR:       0.01,
	})
	require.NoError(t, err)

	assert.Equal(t, stats{Rows: 6, Written: 4, Duplicates: 1, Invalid: 1}, st)
	assert.Equal(t, []string{"WELCOME10", "FLAT200", "SPRING", "SUMMER"}, w.codes())
	require.Len(t, w.batches, 2)
	assert.Equal(t, int64(10), w.batches[0][0].Value)
	assert.Equal(t, int64(500), w.batches[1][1].Value)
}

func TestIngest_WriterError(t *testing.T) {
	path := writeGz(t, "a.csv.gz", "A1,percent,1\nA2,percent,2\nA3,percent,3\n")

	w := &recordingWriter{err: errors.New("db down")}
	_, err := ingest(context.Background(), discard(), w, []string{path}, options{
		BatchSize: 1,
		Expected:  10,
		FPR:       0.01,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestIngest_MissingFile(t *testing.T) {
	_, err := ingest(context.Background(), discard(), &recordingWriter{}, []string{"/nonexistent.csv.gz"}, options{
		BatchSize: 10,
		Expected:  10,
		FPR:       0.01,
	})
	assert.Error(t, err)
}
