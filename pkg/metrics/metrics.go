// Package metrics exposes opt-in Prometheus metrics for the auth
// dispatch layer.
//
// Metrics are disabled until Init is called; every observation helper
// is a no-op while disabled, so instrumented code pays nothing when
// metrics are off.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	enabled atomic.Bool

	dispatchTotal *prometheus.CounterVec
)

// Init registers all collectors with the default registry. Calling
// Init more than once is a no-op.
func Init() {
	if !enabled.CompareAndSwap(false, true) {
		return
	}

	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canopy_auth_dispatch_total",
			Help: "Auth dispatch operations by operation and outcome",
		},
		[]string{"op", "status"}, // op: create, verify, pack, unpack
	)
}

// IsEnabled reports whether Init has been called.
func IsEnabled() bool {
	return enabled.Load()
}

// ObserveDispatch records the outcome of one dispatch operation.
func ObserveDispatch(op string, err error) {
	if !IsEnabled() {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	dispatchTotal.WithLabelValues(op, status).Inc()
}
