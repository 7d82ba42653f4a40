package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universal-model/universal-model/config"
)

func TestCollector(t *testing.T) {
	t.Run("nil collector is a no-op", func(t *testing.T) {
		var c *Collector
		assert.NotPanics(t, func() {
			c.Recorded("s")
			c.Flushed("s", 3)
			c.Dropped("s")
			c.ConsumerAdded("s")
			c.ConsumerRemoved("s")
			c.SubscriptionsChanged("s", 2)
		})
	})

	t.Run("counts", func(t *testing.T) {
		c := New("")
		reg := prometheus.NewRegistry()
		require.NoError(t, c.Register(reg))
		require.NoError(t, c.Register(reg))

		c.Recorded("todos")
		c.Recorded("todos")
		c.Flushed("todos", 2)
		c.Dropped("todos")
		c.ConsumerAdded("todos")
		c.ConsumerAdded("todos")
		c.ConsumerRemoved("todos")
		c.SubscriptionsChanged("todos", 3)
		c.SubscriptionsChanged("todos", -1)

		assert.Equal(t, 2.0, testutil.ToFloat64(c.records.WithLabelValues("todos")))
		assert.Equal(t, 1.0, testutil.ToFloat64(c.flushes.WithLabelValues("todos")))
		assert.Equal(t, 1.0, testutil.ToFloat64(c.dropped.WithLabelValues("todos")))
		assert.Equal(t, 1.0, testutil.ToFloat64(c.consumers.WithLabelValues("todos")))
		assert.Equal(t, 2.0, testutil.ToFloat64(c.subscriptions.WithLabelValues("todos")))
	})
}

func TestFromConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		c, err := FromConfig(config.Default(), prometheus.NewRegistry())
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("enabled", func(t *testing.T) {
		cfg, err := config.LoadFromBytes([]byte("metrics:\n  enabled: true\n  namespace: ui\n"), config.FormatYAML)
		require.NoError(t, err)

		reg := prometheus.NewRegistry()
		c, err := FromConfig(cfg, reg)
		require.NoError(t, err)
		require.NotNil(t, c)

		c.Flushed("s", 1)
		families, err := reg.Gather()
		require.NoError(t, err)
		var names []string
		for _, f := range families {
			names = append(names, f.GetName())
		}
		assert.Contains(t, names, "ui_flushes_total")
	})
}
