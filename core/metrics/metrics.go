// Package metrics holds the backend-neutral pieces shared by the metrics
// interfaces of the core packages. Backends live under adapters/.
package metrics

import "time"

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes to record the elapsed time:
//
//	defer m.ResolveDuration(scope).ObserveDuration()
type Timer interface {
	ObserveDuration()
}

// ObserverFunc records a duration given in seconds.
type ObserverFunc func(seconds float64)

type timer struct {
	observe ObserverFunc
	start   time.Time
}

func (t *timer) ObserveDuration() { t.observe(time.Since(t.start).Seconds()) }

// StartTimer returns a Timer that reports the time elapsed since the call
// to observe.
func StartTimer(observe ObserverFunc) Timer {
	if observe == nil {
		return NopTimer()
	}
	return &timer{observe: observe, start: time.Now()}
}

type nopTimer struct{}

func (nopTimer) ObserveDuration() {}

// NopTimer returns a no-op Timer.
func NopTimer() Timer { return nopTimer{} }
