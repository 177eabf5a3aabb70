package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/brosmart/pkg/health"
	"github.com/xenking/brosmart/pkg/httpmiddleware"
)

type noopTelemetry struct{}

func (noopTelemetry) TracerProvider() trace.TracerProvider { return tracenoop.NewTracerProvider() }
func (noopTelemetry) MeterProvider() metric.MeterProvider  { return metricnoop.NewMeterProvider() }

type server struct {
	h       http.Handler
	checker *health.Checker
}

func newServer(t *testing.T, rateMax int) *server {
	t.Helper()
	ctx := context.Background()
	lg := zaptest.NewLogger(t)

	cfg := &Config{
		Storage:   StorageMemory,
		Admin:     AdminConfig{Password: "admin123"},
		Session:   SessionConfig{TTL: time.Hour},
		RateLimit: RateLimitConfig{Max: rateMax, Window: time.Minute},
		CORS:      CORSConfig{Origins: []string{"https://shop.example"}, MaxAge: time.Hour},
	}
	checker := health.New(health.Options{})

	stores, cleanup, err := openStores(ctx, lg, cfg, checker)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	require.NoError(t, seedStores(ctx, lg, stores))

	limiter := httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
		Max:    cfg.RateLimit.Max,
		Window: cfg.RateLimit.Window,
	})
	h, err := NewHandler(lg, noopTelemetry{}, cfg, stores, checker, limiter)
	require.NoError(t, err)
	return &server{h: h, checker: checker}
}

func (s *server) do(method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	s.h.ServeHTTP(w, req)
	return w
}

func TestHandler_SeededCatalog(t *testing.T) {
	s := newServer(t, 100)

	w := s.do(http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(httpmiddleware.HeaderRequestID), 36)
	assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))

	var ids []string
	require.NoError(t, jx.DecodeBytes(w.Body.Bytes()).Arr(func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "id" {
				return d.Skip()
			}
			id, err := d.Str()
			ids = append(ids, id)
			return err
		})
	}))
	assert.Equal(t, []string{"P1", "P2", "P3", "P4"}, ids)

	w = s.do(http.MethodPost, "/api/coupons/validate", `{"code":"welcome10","items":[{"productId":"P1","qty":1}]}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_Health(t *testing.T) {
	s := newServer(t, 100)

	w := s.do(http.MethodGet, "/livez", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s.checker.SetReady(true)
	w = s.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHandler_RateLimitSkipsProbes(t *testing.T) {
	s := newServer(t, 2)

	for range 2 {
		w := s.do(http.MethodGet, "/api/slides", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := s.do(http.MethodGet, "/api/slides", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	for range 5 {
		w = s.do(http.MethodGet, "/livez", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestHandler_CORSPreflight(t *testing.T) {
	s := newServer(t, 100)

	w := s.do(http.MethodOptions, "/api/orders", "", http.Header{
		"Origin":                        {"https://shop.example"},
		"Access-Control-Request-Method": {"POST"},
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Admin-Password")
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
}

func TestHandler_AdminRoutes(t *testing.T) {
	s := newServer(t, 100)

	w := s.do(http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/admin/stats", "", http.Header{
		"X-Admin-Password": {"admin123"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"products":4`)
}

func TestHandler_NotFound(t *testing.T) {
	s := newServer(t, 100)

	w := s.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeedStores_Idempotent(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{Storage: StorageMemory}
	checker := health.New(health.Options{})

	stores, cleanup, err := openStores(ctx, zap.NewNop(), cfg, checker)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, seedStores(ctx, zap.NewNop(), stores))
	require.NoError(t, seedStores(ctx, zap.NewNop(), stores))

	products, err := stores.Products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 4)
}
