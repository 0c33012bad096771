package collector

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/clock"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/dispatch"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/logger"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/provider"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/version"
)

// Batch outcomes
const (
	BatchCompleted = "completed"
	BatchAborted   = "aborted"
)

// DispatchCollector implements prometheus.Collector for dispatch loop metrics
// and dispatch.Observer to receive them.
type DispatchCollector struct {
	logger *logger.Logger
	clock  clock.Clock // Time provider for testing

	// Metrics
	itemsTotal          *prometheus.CounterVec
	batchesTotal        *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	lastBatchTimeMetric *prometheus.Desc
	lastBatchItems      *prometheus.Desc
	buildInfo           *prometheus.GaugeVec // Build version information

	// State
	mu            sync.RWMutex
	lastBatch     time.Time
	lastItemCount int
	lastError     error
	batchCount    int
}

// Verify that DispatchCollector implements dispatch.Observer
var _ dispatch.Observer = (*DispatchCollector)(nil)

// NewDispatchCollector creates a new DispatchCollector
func NewDispatchCollector(log *logger.Logger) *DispatchCollector {
	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aws_cost_connector_build_info",
			Help: "Build version information",
		},
		[]string{"version", "git_commit", "build_date", "go_version"},
	)

	versionInfo := version.Info()
	buildInfo.With(prometheus.Labels{
		"version":    versionInfo["version"],
		"git_commit": versionInfo["git_commit"],
		"build_date": versionInfo["build_date"],
		"go_version": versionInfo["go_version"],
	}).Set(1)

	return &DispatchCollector{
		logger: log,
		clock:  clock.RealClock{},
		itemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aws_cost_connector_items_total",
				Help: "Total number of batch items dispatched, by resource and outcome",
			},
			[]string{"provider", "resource", "outcome"},
		),
		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aws_cost_connector_batches_total",
				Help: "Total number of batches dispatched, by outcome (completed or aborted)",
			},
			[]string{"provider", "outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aws_cost_connector_request_duration_seconds",
				Help:    "Duration of the per-item Cost Explorer request, including parameter resolution",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "resource"},
		),
		lastBatchTimeMetric: prometheus.NewDesc(
			"aws_cost_connector_last_batch_timestamp_seconds",
			"Unix timestamp of the last finished batch",
			[]string{"provider"},
			nil,
		),
		lastBatchItems: prometheus.NewDesc(
			"aws_cost_connector_last_batch_items",
			"Number of items in the last finished batch",
			[]string{"provider"},
			nil,
		),
		buildInfo: buildInfo,
	}
}

// Describe implements prometheus.Collector
func (c *DispatchCollector) Describe(ch chan<- *prometheus.Desc) {
	c.itemsTotal.Describe(ch)
	c.batchesTotal.Describe(ch)
	c.requestDuration.Describe(ch)
	ch <- c.lastBatchTimeMetric
	ch <- c.lastBatchItems
	c.buildInfo.Describe(ch)
}

// Collect implements prometheus.Collector
func (c *DispatchCollector) Collect(ch chan<- prometheus.Metric) {
	c.itemsTotal.Collect(ch)
	c.batchesTotal.Collect(ch)
	c.requestDuration.Collect(ch)

	c.mu.RLock()
	defer c.mu.RUnlock()

	providerName := string(provider.ProviderAWS)

	if !c.lastBatch.IsZero() {
		ch <- prometheus.MustNewConstMetric(
			c.lastBatchTimeMetric,
			prometheus.GaugeValue,
			float64(c.lastBatch.Unix()),
			providerName,
		)
		ch <- prometheus.MustNewConstMetric(
			c.lastBatchItems,
			prometheus.GaugeValue,
			float64(c.lastItemCount),
			providerName,
		)
	}

	c.buildInfo.Collect(ch)
}

// ObserveItem implements dispatch.Observer
func (c *DispatchCollector) ObserveItem(resource string, outcome string, elapsed time.Duration) {
	providerName := string(provider.ProviderAWS)
	c.itemsTotal.WithLabelValues(providerName, resource, outcome).Inc()
	c.requestDuration.WithLabelValues(providerName, resource).Observe(elapsed.Seconds())
}

// ObserveBatch implements dispatch.Observer
func (c *DispatchCollector) ObserveBatch(items int, err error) {
	outcome := BatchCompleted
	if err != nil {
		outcome = BatchAborted
	}
	c.batchesTotal.WithLabelValues(string(provider.ProviderAWS), outcome).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastBatch = c.clock.Now()
	c.lastItemCount = items
	c.lastError = err
	c.batchCount++

	if err != nil {
		c.logger.Debug("Recorded aborted batch", "items", items, "error", err)
	}
}

// LastBatchTime returns when the last batch finished, zero if none has run
func (c *DispatchCollector) LastBatchTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastBatch
}

// LastError returns the error that aborted the last batch, nil if it completed
func (c *DispatchCollector) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// LastItemCount returns the number of items in the last batch
func (c *DispatchCollector) LastItemCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastItemCount
}

// BatchCount returns the number of batches observed since startup
func (c *DispatchCollector) BatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.batchCount
}
