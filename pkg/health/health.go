// Package health serves the /livez and /readyz probes.
//
// Registered checks are polled in the background. A check flips to failing
// only after FailureThreshold consecutive errors and back to passing after
// SuccessThreshold consecutive successes, so a single slow ping does not
// pull the instance out of rotation.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CheckFunc returns nil when the dependency is healthy.
type CheckFunc func(ctx context.Context) error

// Probe selects the endpoint a check contributes to.
type Probe int

const (
	Liveness Probe = iota
	Readiness
)

func (p Probe) String() string {
	if p == Liveness {
		return "liveness"
	}
	return "readiness"
}

// Options tunes polling. Zero values take the defaults.
type Options struct {
	Interval         time.Duration // default 10s
	Timeout          time.Duration // per check, default 2s
	FailureThreshold int           // default 3
	SuccessThreshold int           // default 1
}

func (o *Options) setDefaults() {
	if o.Interval <= 0 {
		o.Interval = 10 * time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Second
	}
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = 3
	}
	if o.SuccessThreshold <= 0 {
		o.SuccessThreshold = 1
	}
}

type check struct {
	name  string
	probe Probe
	fn    CheckFunc

	passing atomic.Bool
	lastErr atomic.Pointer[string]

	// Owned by the polling goroutine.
	fails, oks int
}

func (c *check) failure() string {
	if msg := c.lastErr.Load(); msg != nil {
		return *msg
	}
	return "check is failing"
}

// Checker aggregates probe checks.
type Checker struct {
	opts  Options
	ready atomic.Bool

	mu     sync.RWMutex
	checks []*check
}

// New returns a Checker that reports not ready until SetReady(true).
func New(opts Options) *Checker {
	opts.setDefaults()
	return &Checker{opts: opts}
}

// Add registers a check. Checks start out passing.
func (h *Checker) Add(probe Probe, name string, fn CheckFunc) {
	c := &check{name: name, probe: probe, fn: fn}
	c.passing.Store(true)

	h.mu.Lock()
	h.checks = append(h.checks, c)
	h.mu.Unlock()
}

// SetReady marks whether the service accepts traffic. It is cleared on
// shutdown before the listener closes.
func (h *Checker) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Checker) snapshot() []*check {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.checks)
}

// poll runs c once and applies the thresholds.
func (h *Checker) poll(ctx context.Context, c *check) {
	checkCtx, cancel := context.WithTimeout(ctx, h.opts.Timeout)
	err := c.fn(checkCtx)
	cancel()

	if err == nil {
		c.fails = 0
		c.oks++
		if c.oks >= h.opts.SuccessThreshold && !c.passing.Swap(true) {
			zctx.From(ctx).Info("Health check recovered",
				zap.String("check", c.name),
				zap.Stringer("probe", c.probe),
			)
		}
		return
	}

	msg := err.Error()
	c.lastErr.Store(&msg)
	c.oks = 0
	c.fails++
	if c.fails >= h.opts.FailureThreshold && c.passing.Swap(false) {
		zctx.From(ctx).Warn("Health check failing",
			zap.String("check", c.name),
			zap.Stringer("probe", c.probe),
			zap.Error(err),
		)
	}
}

// Run polls every check until ctx is done.
func (h *Checker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range h.snapshot() {
		g.Go(func() error {
			ticker := time.NewTicker(h.opts.Interval)
			defer ticker.Stop()

			h.poll(ctx, c)
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					h.poll(ctx, c)
				}
			}
		})
	}
	return g.Wait()
}

// failures returns failing check names mapped to their last error.
func (h *Checker) failures(probe Probe) map[string]string {
	out := make(map[string]string)
	for _, c := range h.snapshot() {
		if c.probe == probe && !c.passing.Load() {
			out[c.name] = c.failure()
		}
	}
	return out
}

// Ready reports whether the service is marked ready and every readiness
// check passes.
func (h *Checker) Ready() bool {
	return h.ready.Load() && len(h.failures(Readiness)) == 0
}

// LiveHandler serves /livez.
func (h *Checker) LiveHandler(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, h.failures(Liveness))
}

// ReadyHandler serves /readyz.
func (h *Checker) ReadyHandler(w http.ResponseWriter, _ *http.Request) {
	failed := h.failures(Readiness)
	if !h.ready.Load() {
		failed["service"] = "not ready"
	}
	writeStatus(w, failed)
}

// writeStatus writes {"status":"ok"} or 503 with
// {"status":"unhealthy","checks":{name: error}}.
func writeStatus(w http.ResponseWriter, failed map[string]string) {
	status := http.StatusOK
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	if len(failed) == 0 {
		e.Str("ok")
	} else {
		status = http.StatusServiceUnavailable
		e.Str("unhealthy")
		e.FieldStart("checks")
		e.ObjStart()
		names := make([]string, 0, len(failed))
		for name := range failed {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			e.FieldStart(name)
			e.Str(failed[name])
		}
		e.ObjEnd()
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
