package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GopherJ/xactor/core/actor"
	"github.com/GopherJ/xactor/core/service"
)

func metricNames(t *testing.T, reg *prometheus.Registry) map[string]bool {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	return names
}

func TestNewActorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewActorMetrics(reg)

	require.NotNil(t, m)

	timer := m.MessageDuration("MyMessage")
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.MessageProcessed("MyMessage", true)
	m.MessageProcessed("MyMessage", false)
	m.MessagePanic("MyMessage")
	m.MailboxDepth("actor-123", 10)
	m.SchedulerInflight("actor-123", 5)

	timer = m.SchedulerTaskDuration()
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.SchedulerTaskCompleted(true)
	m.SchedulerTaskCompleted(false)

	names := metricNames(t, reg)
	assert.True(t, names["xactor_actor_message_duration_seconds"])
	assert.True(t, names["xactor_actor_messages_total"])
	assert.True(t, names["xactor_actor_mailbox_depth"])
	assert.True(t, names["xactor_actor_panics_total"])
}

func TestNewServiceMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServiceMetrics(reg)

	m.ResolveDuration(service.ScopeShared).ObserveDuration()
	m.Resolved(service.ScopeShared, "Counter", true)
	m.Resolved(service.ScopeShared, "Counter", false)
	m.Resolved(service.ScopeShared, "Counter", false)
	m.StartFailed(service.ScopeConfined, "Cache")
	m.Entries(service.ScopeShared, 3)

	sm := m.(*serviceMetrics)
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.resolvedTotal.WithLabelValues("shared", "Counter", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sm.resolvedTotal.WithLabelValues("shared", "Counter", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.startFailed.WithLabelValues("confined", "Cache")))
	assert.Equal(t, 3.0, testutil.ToFloat64(sm.entries.WithLabelValues("shared")))

	names := metricNames(t, reg)
	assert.True(t, names["xactor_service_resolve_duration_seconds"])
	assert.True(t, names["xactor_service_resolved_total"])
}

type (
	bump  struct{}
	count struct{ N int }
)

type bumper struct{ n int }

func (b *bumper) Handlers() []actor.HandlerRegistration {
	return []actor.HandlerRegistration{
		actor.HandleRequest[bump, count](func(hc actor.HandlerCtx, _ bump) (*count, error) {
			b.n++
			return &count{N: b.n}, nil
		}),
	}
}

func TestMetrics_wired_into_registry(t *testing.T) {
	reg := prometheus.NewRegistry()
	all := NewAllMetrics(reg)
	require.NotNil(t, all.Actor)
	require.NotNil(t, all.Service)

	r := service.NewSharedRegistry(service.Options{
		Actor:   actor.Options{Context: t.Context(), Metrics: all.Actor},
		Metrics: all.Service,
	})

	for range 3 {
		addr, err := service.Resolve[bumper](t.Context(), r)
		require.NoError(t, err)
		_, err = actor.Request[bump, count](t.Context(), addr, bump{})
		require.NoError(t, err)
	}

	name := service.ServiceName[bumper]()
	assert.Equal(t, 1.0, testutil.ToFloat64(all.Service.resolvedTotal.WithLabelValues("shared", name, "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(all.Service.resolvedTotal.WithLabelValues("shared", name, "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(all.Service.entries.WithLabelValues("shared")))

	names := metricNames(t, reg)
	assert.True(t, names["xactor_actor_messages_total"])
}

func TestBoolToStr(t *testing.T) {
	assert.Equal(t, "true", boolToStr(true))
	assert.Equal(t, "false", boolToStr(false))
}
