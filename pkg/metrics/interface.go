package metrics

// Provider abstracts the metrics backend so handlers never depend on the
// Datadog client directly.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}
