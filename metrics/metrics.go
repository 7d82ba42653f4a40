// Package metrics exposes the store's batching behavior as Prometheus
// collectors. A nil *Collector is valid and records nothing.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/universal-model/universal-model/config"
)

const DefaultNamespace = "universal_model"

// Config is the "metrics" extension section.
type Config struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

type Collector struct {
	records       *prometheus.CounterVec
	flushes       *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	batchSize     *prometheus.HistogramVec
	consumers     *prometheus.GaugeVec
	subscriptions *prometheus.GaugeVec
}

func New(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	labels := []string{"store"}
	return &Collector{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_recorded_total",
			Help:      "Watched slice changes recorded into a pending update set.",
		}, labels),
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_total",
			Help:      "Batched deliveries made to consumers.",
		}, labels),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_dropped_total",
			Help:      "Scheduled flushes skipped because the consumer was torn down first.",
		}, labels),
		batchSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_batch_size",
			Help:      "Number of distinct slices delivered per flush.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32},
		}, labels),
		consumers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consumers",
			Help:      "Registered consumers.",
		}, labels),
		subscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscriptions",
			Help:      "Active watch subscriptions.",
		}, labels),
	}
}

// FromConfig builds a collector from the metrics section of cfg and registers
// it on reg. It returns nil when metrics are disabled.
func FromConfig(cfg *config.Config, reg prometheus.Registerer) (*Collector, error) {
	var mc Config
	if err := cfg.UnmarshalExtension("metrics", &mc); err != nil {
		return nil, err
	}
	if !mc.Enabled {
		return nil, nil
	}
	c := New(mc.Namespace)
	if err := c.Register(reg); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{c.records, c.flushes, c.dropped, c.batchSize, c.consumers, c.subscriptions}
}

// Register registers every collector on reg. Collectors that are already
// registered are not an error.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range c.collectors() {
		if err := reg.Register(col); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func (c *Collector) Recorded(store string) {
	if c == nil {
		return
	}
	c.records.WithLabelValues(store).Inc()
}

func (c *Collector) Flushed(store string, size int) {
	if c == nil {
		return
	}
	c.flushes.WithLabelValues(store).Inc()
	c.batchSize.WithLabelValues(store).Observe(float64(size))
}

func (c *Collector) Dropped(store string) {
	if c == nil {
		return
	}
	c.dropped.WithLabelValues(store).Inc()
}

func (c *Collector) ConsumerAdded(store string) {
	if c == nil {
		return
	}
	c.consumers.WithLabelValues(store).Inc()
}

func (c *Collector) ConsumerRemoved(store string) {
	if c == nil {
		return
	}
	c.consumers.WithLabelValues(store).Dec()
}

func (c *Collector) SubscriptionsChanged(store string, delta int) {
	if c == nil {
		return
	}
	c.subscriptions.WithLabelValues(store).Add(float64(delta))
}
