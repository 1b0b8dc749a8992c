package phisec

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines the interface for collecting and reporting metrics
type MetricsCollector interface {
	// Counters
	IncrementCounter(name string, tags map[string]string)
	IncrementCounterBy(name string, value int64, tags map[string]string)

	// Gauges
	SetGauge(name string, value float64, tags map[string]string)

	// Histograms/Timing
	RecordTiming(name string, duration time.Duration, tags map[string]string)

	// Flush any buffered metrics
	Flush() error
}

// ObservabilityHook defines hooks around encryption and token operations.
// Implementations must never receive or log plaintext, key material, or
// token strings; callers pass only operation names, versions, and outcome
// metadata.
type ObservabilityHook interface {
	// Called before an operation starts
	OnProcessStart(ctx context.Context, operation string, metadata map[string]interface{})

	// Called after an operation completes (success or failure)
	OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]interface{})

	// Called when errors occur
	OnError(ctx context.Context, operation string, err error, metadata map[string]interface{})

	// Called for key lifecycle operations (derive, rotate, evict)
	OnKeyOperation(ctx context.Context, operation string, keyVersion uint16, metadata map[string]interface{})
}

// NoOpMetricsCollector is a no-op implementation of MetricsCollector
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) IncrementCounter(name string, tags map[string]string)                {}
func (n *NoOpMetricsCollector) IncrementCounterBy(name string, value int64, tags map[string]string) {}
func (n *NoOpMetricsCollector) SetGauge(name string, value float64, tags map[string]string)         {}
func (n *NoOpMetricsCollector) RecordTiming(name string, duration time.Duration, tags map[string]string) {
}
func (n *NoOpMetricsCollector) Flush() error { return nil }

// NoOpObservabilityHook is a no-op implementation of ObservabilityHook
type NoOpObservabilityHook struct{}

func (n *NoOpObservabilityHook) OnProcessStart(ctx context.Context, operation string, metadata map[string]interface{}) {
}
func (n *NoOpObservabilityHook) OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]interface{}) {
}
func (n *NoOpObservabilityHook) OnError(ctx context.Context, operation string, err error, metadata map[string]interface{}) {
}
func (n *NoOpObservabilityHook) OnKeyOperation(ctx context.Context, operation string, keyVersion uint16, metadata map[string]interface{}) {
}

// InMemoryMetricsCollector is a simple in-memory implementation for testing
// and development.
type InMemoryMetricsCollector struct {
	mu       sync.Mutex
	counters map[string]*int64
	gauges   map[string]float64
	timings  []TimingMetric
}

type TimingMetric struct {
	Name     string
	Duration time.Duration
	Tags     map[string]string
	Time     time.Time
}

// NewInMemoryMetricsCollector creates a new in-memory metrics collector
func NewInMemoryMetricsCollector() *InMemoryMetricsCollector {
	return &InMemoryMetricsCollector{
		counters: make(map[string]*int64),
		gauges:   make(map[string]float64),
	}
}

func (m *InMemoryMetricsCollector) IncrementCounter(name string, tags map[string]string) {
	m.IncrementCounterBy(name, 1, tags)
}

func (m *InMemoryMetricsCollector) IncrementCounterBy(name string, value int64, tags map[string]string) {
	key := buildMetricKey(name, tags)
	m.mu.Lock()
	counter, exists := m.counters[key]
	if !exists {
		counter = new(int64)
		m.counters[key] = counter
	}
	m.mu.Unlock()
	atomic.AddInt64(counter, value)
}

func (m *InMemoryMetricsCollector) SetGauge(name string, value float64, tags map[string]string) {
	key := buildMetricKey(name, tags)
	m.mu.Lock()
	m.gauges[key] = value
	m.mu.Unlock()
}

func (m *InMemoryMetricsCollector) RecordTiming(name string, duration time.Duration, tags map[string]string) {
	m.mu.Lock()
	m.timings = append(m.timings, TimingMetric{
		Name:     name,
		Duration: duration,
		Tags:     copyTags(tags),
		Time:     time.Now(),
	})
	m.mu.Unlock()
}

func (m *InMemoryMetricsCollector) Flush() error {
	// Nothing to flush for in-memory implementation
	return nil
}

// GetCounterValue returns the current value of a counter
func (m *InMemoryMetricsCollector) GetCounterValue(name string, tags map[string]string) int64 {
	key := buildMetricKey(name, tags)
	m.mu.Lock()
	defer m.mu.Unlock()
	if counter, exists := m.counters[key]; exists {
		return atomic.LoadInt64(counter)
	}
	return 0
}

// GetGaugeValue returns the current value of a gauge
func (m *InMemoryMetricsCollector) GetGaugeValue(name string, tags map[string]string) float64 {
	key := buildMetricKey(name, tags)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gauges[key]
}

// GetTimings returns all recorded timing metrics
func (m *InMemoryMetricsCollector) GetTimings() []TimingMetric {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TimingMetric(nil), m.timings...)
}

func buildMetricKey(name string, tags map[string]string) string {
	if len(tags) == 0 {
		return name
	}

	// Sort tags to ensure deterministic key generation
	var keys []string
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	key := name
	for _, k := range keys {
		key += "," + k + ":" + tags[k]
	}
	return key
}

func copyTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	copied := make(map[string]string, len(tags))
	for k, v := range tags {
		copied[k] = v
	}
	return copied
}

// StandardObservabilityHook forwards every hook callback to a
// MetricsCollector under the phisec.* metric namespace.
type StandardObservabilityHook struct {
	metrics MetricsCollector
}

// NewStandardObservabilityHook creates a new standard observability hook
func NewStandardObservabilityHook(metrics MetricsCollector) *StandardObservabilityHook {
	if metrics == nil {
		metrics = &NoOpMetricsCollector{}
	}
	return &StandardObservabilityHook{metrics: metrics}
}

func (h *StandardObservabilityHook) OnProcessStart(ctx context.Context, operation string, metadata map[string]interface{}) {
	tags := buildHookTags(metadata)
	tags["operation"] = operation

	h.metrics.IncrementCounter("phisec.process.started", tags)
}

func (h *StandardObservabilityHook) OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]interface{}) {
	tags := buildHookTags(metadata)
	tags["operation"] = operation

	if err != nil {
		tags["status"] = "error"
		h.metrics.IncrementCounter("phisec.process.failed", tags)
	} else {
		tags["status"] = "success"
		h.metrics.IncrementCounter("phisec.process.completed", tags)
	}

	h.metrics.RecordTiming("phisec.process.duration", duration, tags)
}

func (h *StandardObservabilityHook) OnError(ctx context.Context, operation string, err error, metadata map[string]interface{}) {
	tags := buildHookTags(metadata)
	tags["operation"] = operation
	tags["error_type"] = errorType(err)

	h.metrics.IncrementCounter("phisec.errors", tags)
}

func (h *StandardObservabilityHook) OnKeyOperation(ctx context.Context, operation string, keyVersion uint16, metadata map[string]interface{}) {
	tags := buildHookTags(metadata)
	tags["operation"] = operation

	h.metrics.IncrementCounter("phisec.key_operations", tags)
	h.metrics.SetGauge("phisec.key_version", float64(keyVersion), nil)
}

func buildHookTags(metadata map[string]interface{}) map[string]string {
	tags := make(map[string]string)
	for k, v := range metadata {
		if str, ok := v.(string); ok {
			tags[k] = str
		}
	}
	return tags
}

func errorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case IsConfigurationError(err):
		return "configuration"
	case IsIntegrityError(err):
		return "integrity"
	case IsTokenValidationError(err):
		return "token_validation"
	case IsRetryableError(err):
		return "transient"
	default:
		return "general"
	}
}
