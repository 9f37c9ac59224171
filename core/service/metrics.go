package service

import "github.com/GopherJ/xactor/core/metrics"

// Scope names a registry kind in metrics.
type Scope string

const (
	ScopeShared   Scope = "shared"
	ScopeConfined Scope = "confined"
)

// Metrics defines the metrics interface of the registries.
// All methods are thread-safe.
type Metrics interface {
	// ResolveDuration times a resolution, including lock wait and startup.
	ResolveDuration(scope Scope) metrics.Timer
	// Resolved counts successful resolutions; created is true for the
	// resolution that started the instance.
	Resolved(scope Scope, service string, created bool)
	// StartFailed counts instances whose startup failed.
	StartFailed(scope Scope, service string)
	// Entries reports the number of entries held by a registry.
	Entries(scope Scope, n int)
}

type nopMetrics struct{}

func (nopMetrics) ResolveDuration(Scope) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) Resolved(Scope, string, bool)        {}
func (nopMetrics) StartFailed(Scope, string)           {}
func (nopMetrics) Entries(Scope, int)                  {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
