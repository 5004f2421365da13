package metrics

import (
	"maps"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// minRefreshInterval is the shortest gauge refresh period accepted.
const minRefreshInterval = time.Second

// Option configures a Manager before its collectors are registered.
type Option func(*Manager)

// WithNamespace replaces the "eventmatch" namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem replaces the "ml" subsystem.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets the millisecond buckets of the parse, recommend,
// HTTP and GC pause histograms. Unsorted or empty layouts are ignored.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 && slices.IsSorted(buckets) {
			m.latencyBuckets = slices.Clone(buckets)
		}
	}
}

// WithScoreBuckets sets the similarity score buckets. Every bound must lie in (0,1].
func WithScoreBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) == 0 || !slices.IsSorted(buckets) {
			return
		}
		if buckets[0] <= 0 || buckets[len(buckets)-1] > 1 {
			return
		}
		m.scoreBuckets = slices.Clone(buckets)
	}
}

// WithSkillCountBuckets sets the buckets of the skills-per-résumé histogram.
func WithSkillCountBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 && slices.IsSorted(buckets) {
			m.skillBuckets = slices.Clone(buckets)
		}
	}
}

// WithRecording turns parse and recommendation recording on or off.
// HTTP, catalog and runtime collectors always record.
func WithRecording(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets how often the serve loop refreshes gauges.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval >= minRefreshInterval {
			m.refreshInterval = interval
		}
	}
}

// WithConstLabels attaches fixed labels, such as a deployment name, to every collector.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.constLabels = maps.Clone(labels)
		}
	}
}

// WithPrefix prepends prefix and an underscore to every metric name.
func WithPrefix(prefix string) Option {
	return func(m *Manager) {
		if prefix != "" {
			m.prefix = prefix
		}
	}
}

// WithRegisterer registers the collectors on r instead of the default registerer.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registerer = r
		}
	}
}
