package realtime_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/snaketips/internal/realtime"
	"github.com/dmitrymomot/snaketips/pkg/stream"
)

// metricValue returns the value of the sample of family name carrying label=value.
func metricValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == label && l.GetValue() == value {
					if g := m.GetGauge(); g != nil {
						return g.GetValue()
					}
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s{%s=%q} not found", name, label, value)
	return 0
}

func newChannel(t *testing.T, cfg realtime.Config) (*realtime.Channel[string], *prometheus.Registry, *realtime.Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := realtime.NewMetrics(reg)
	require.NoError(t, err)
	ch, err := realtime.NewChannel[string](cfg, m, nil)
	require.NoError(t, err)
	return ch, reg, m
}

func TestChannel_Publish(t *testing.T) {
	t.Parallel()

	t.Run("nothing is recorded without subscribers", func(t *testing.T) {
		t.Parallel()
		ch, _, _ := newChannel(t, realtime.Config{Name: "test", Capacity: 4, History: 4})

		assert.False(t, ch.Publish("lost"))
		assert.Equal(t, 0, ch.History().Len())
		assert.Equal(t, int64(-1), ch.History().CurrentID())
	})

	t.Run("records and broadcasts with subscribers", func(t *testing.T) {
		t.Parallel()
		ch, _, _ := newChannel(t, realtime.Config{Name: "test", Capacity: 4, History: 4})
		_, mailbox := ch.Registry().Subscribe()

		assert.True(t, ch.Publish("a"))
		assert.Equal(t, "a", <-mailbox)
		assert.Equal(t, int64(0), ch.History().CurrentID())
	})
}

func TestChannel_Metrics(t *testing.T) {
	t.Parallel()

	ch, reg, m := newChannel(t, realtime.Config{Name: "tips", Capacity: 1, History: 4})

	id, _ := ch.Registry().Subscribe()
	ch.Registry().Subscribe()
	assert.Equal(t, float64(2), metricValue(t, reg, "snaketips_active_subscribers", "stream", "tips"))

	ch.Publish("a")
	ch.Publish("b")
	assert.Equal(t, float64(2), metricValue(t, reg, "snaketips_mailbox_dropped_total", "stream", "tips"))

	ch.Registry().Unsubscribe(id)
	assert.Equal(t, float64(1), metricValue(t, reg, "snaketips_active_subscribers", "stream", "tips"))

	m.TipBroadcast("Movement")
	m.TipBroadcast("Movement")
	assert.Equal(t, float64(2), metricValue(t, reg, "snaketips_tips_broadcast_total", "category", "Movement"))

	_, err := realtime.NewChannel[string](realtime.Config{Name: "tips"}, m, nil)
	assert.Error(t, err, "duplicate stream gauge must not register twice")
}

func TestChannel_Open(t *testing.T) {
	t.Parallel()

	ch, _, _ := newChannel(t, realtime.Config{Name: "test", Capacity: 4, History: 4})
	s := ch.Open("", nil)
	defer s.Close()

	assert.True(t, ch.Publish("x"))

	ctx := context.Background()
	rec, err := s.Next(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Control)

	rec, err = s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", rec.Data)
	// Publish stamped id 0, the session stamps its own copy.
	assert.Equal(t, "1", rec.ID)

	ch.Close()
	_, err = s.Next(ctx)
	assert.Error(t, err)
}

func TestChannel_ReplayRepeatsPerSession(t *testing.T) {
	t.Parallel()

	ch, _, _ := newChannel(t, realtime.Config{Name: "test", Capacity: 4, History: 8})
	ch.History().Add("seed") // 0

	ctx := context.Background()
	first, second := ch.Open("", nil), ch.Open("", nil)
	defer first.Close()
	defer second.Close()

	require.True(t, ch.Publish("x")) // 1
	for _, s := range []*stream.Session[string]{first, second} {
		_, err := s.Next(ctx) // control
		require.NoError(t, err)
		_, err = s.Next(ctx)
		require.NoError(t, err)
	}

	again := ch.Open("0", nil)
	defer again.Close()
	_, err := again.Next(ctx)
	require.NoError(t, err)

	var ids []string
	for range 3 {
		rec, err := again.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "x", rec.Data)
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *realtime.Metrics
	m.TipBroadcast("Scoring")

	ch, err := realtime.NewChannel[int](realtime.Config{Name: "plain"}, nil, nil)
	require.NoError(t, err)
	_, mailbox := ch.Registry().Subscribe()
	assert.True(t, ch.Publish(1))
	assert.Equal(t, 1, <-mailbox)
}
