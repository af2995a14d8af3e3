package metrics

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// NoopProvider is used whenever metrics are disabled.
type NoopProvider struct{}

func (n *NoopProvider) Count(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Gauge(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Histogram(name string, value float64, tags []string) error { return nil }

// DatadogProvider adapts the official Datadog client to the Provider
// interface.
type DatadogProvider struct {
	client *statsd.Client
}

func (d *DatadogProvider) Count(name string, value float64, tags []string) error {
	return d.client.Count(name, int64(value), tags, 1)
}

func (d *DatadogProvider) Gauge(name string, value float64, tags []string) error {
	return d.client.Gauge(name, value, tags, 1)
}

func (d *DatadogProvider) Histogram(name string, value float64, tags []string) error {
	return d.client.Histogram(name, value, tags, 1)
}

// Setup builds the provider selected by the environment: a StatsD client
// pointed at METRICS_ADDR when enabled, a no-op otherwise.
func Setup(enabled bool, addr, namespace string) (Provider, error) {
	if !enabled {
		return &NoopProvider{}, nil
	}

	client, err := statsd.New(addr, statsd.WithNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("metrics: statsd connect failed: %w", err)
	}
	return &DatadogProvider{client: client}, nil
}
