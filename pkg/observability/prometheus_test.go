package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg)
	ctx := context.Background()

	h.OnLayoutStart(ctx, "root", 12)
	if got := testutil.ToFloat64(h.inFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	h.OnPhaseComplete(ctx, "layering", time.Millisecond, nil)
	h.OnPhaseComplete(ctx, "nodePlacement", time.Millisecond, errors.New("boom"))
	h.OnLayoutComplete(ctx, "root", time.Second, nil)
	h.OnLayoutComplete(ctx, "other", time.Second, errors.New("boom"))

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"ok layouts", h.layouts.WithLabelValues("ok"), 1},
		{"failed layouts", h.layouts.WithLabelValues("error"), 1},
		{"phase errors", h.phaseErrors.WithLabelValues("nodePlacement"), 1},
		{"clean phase errors", h.phaseErrors.WithLabelValues("layering"), 0},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
	if n := testutil.CollectAndCount(h.phaseDuration); n != 2 {
		t.Errorf("phase histograms = %d, want 2", n)
	}
}

func TestPrometheusHooks_Cache(t *testing.T) {
	h := NewPrometheusHooks(prometheus.NewRegistry())
	ctx := context.Background()
	h.OnCacheMiss(ctx, "layout")
	h.OnCacheSet(ctx, "layout", 512)
	h.OnCacheHit(ctx, "layout")
	h.OnCacheHit(ctx, "layout")

	if got := testutil.ToFloat64(h.cacheHits.WithLabelValues("layout")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.cacheMisses.WithLabelValues("layout")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.cacheBytes.WithLabelValues("layout")); got != 512 {
		t.Errorf("bytes = %v, want 512", got)
	}
}

func TestPrometheusHooks_HTTP(t *testing.T) {
	h := NewPrometheusHooks(prometheus.NewRegistry())
	ctx := context.Background()
	h.OnResponse(ctx, "POST", "/v1/layout", 200, time.Millisecond)
	h.OnResponse(ctx, "POST", "/v1/layout", 400, time.Millisecond)
	h.OnError(ctx, "GET", "/v1/options", errors.New("reset"))

	if got := testutil.ToFloat64(h.requests.WithLabelValues("POST", "/v1/layout", "400")); got != 1 {
		t.Errorf("400 responses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.requestErrors.WithLabelValues("GET", "/v1/options")); got != 1 {
		t.Errorf("request errors = %v, want 1", got)
	}
}

func TestNewPrometheusHooks_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusHooks(reg)
	defer func() {
		if recover() == nil {
			t.Error("registering the collectors twice should panic")
		}
	}()
	NewPrometheusHooks(reg)
}
