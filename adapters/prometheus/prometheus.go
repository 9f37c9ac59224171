// Package prometheus provides Prometheus implementations of the metrics
// interfaces of the actor runtime and the service registries.
package prometheus

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/GopherJ/xactor/core/metrics"
)

const namespace = "xactor"

func newTimer(o prometheus.Observer) metrics.Timer {
	return metrics.StartTimer(o.Observe)
}

// Default histogram buckets for latency metrics (in seconds).
var defaultBuckets = []float64{
	.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5,
}

func boolToStr(b bool) string { return strconv.FormatBool(b) }

// AllMetrics bundles every Prometheus implementation the module offers.
type AllMetrics struct {
	Actor   *actorMetrics
	Service *serviceMetrics
}

// NewAllMetrics creates and registers actor and service metrics at once.
func NewAllMetrics(reg prometheus.Registerer) *AllMetrics {
	return &AllMetrics{
		Actor:   NewActorMetrics(reg).(*actorMetrics),
		Service: NewServiceMetrics(reg).(*serviceMetrics),
	}
}
