package collector

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/clock"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/logger"
)

// testLogger creates a logger for testing that drops all output
func testLogger() *logger.Logger {
	return logger.Discard()
}

func newTestCollector(now time.Time) *DispatchCollector {
	c := NewDispatchCollector(testLogger())
	c.clock = clock.Fixed(now)
	return c
}

// TestNewDispatchCollector tests collector creation
func TestNewDispatchCollector(t *testing.T) {
	c := NewDispatchCollector(testLogger())

	if c == nil {
		t.Fatal("NewDispatchCollector returned nil")
	}
	if c.itemsTotal == nil {
		t.Error("itemsTotal should not be nil")
	}
	if c.batchesTotal == nil {
		t.Error("batchesTotal should not be nil")
	}
	if !c.LastBatchTime().IsZero() {
		t.Error("LastBatchTime should be zero before any batch")
	}
}

// TestDescribe tests the Describe method
func TestDescribe(t *testing.T) {
	c := NewDispatchCollector(testLogger())

	ch := make(chan *prometheus.Desc, 10)
	go func() {
		c.Describe(ch)
		close(ch)
	}()

	var descs []*prometheus.Desc
	for desc := range ch {
		descs = append(descs, desc)
	}

	// itemsTotal, batchesTotal, requestDuration, lastBatchTime, lastBatchItems, buildInfo
	if len(descs) != 6 {
		t.Errorf("Expected 6 descriptors, got %d", len(descs))
	}
}

// TestCollect_NoBatches tests collection before any batch has run
func TestCollect_NoBatches(t *testing.T) {
	c := NewDispatchCollector(testLogger())

	// Only build info is present; vectors without children and the last-batch gauges emit nothing
	if got := testutil.CollectAndCount(c); got != 1 {
		t.Errorf("Expected 1 metric before any batch, got %d", got)
	}
}

func TestObserveItem_CountsByResourceAndOutcome(t *testing.T) {
	c := newTestCollector(time.Unix(1700000000, 0))

	c.ObserveItem("costAndUsage", "success", 20*time.Millisecond)
	c.ObserveItem("costAndUsage", "success", 30*time.Millisecond)
	c.ObserveItem("costAndUsage", "error", 5*time.Millisecond)
	c.ObserveItem("dimensionValues", "success", 10*time.Millisecond)

	tests := []struct {
		resource, outcome string
		want              float64
	}{
		{"costAndUsage", "success", 2},
		{"costAndUsage", "error", 1},
		{"dimensionValues", "success", 1},
		{"dimensionValues", "error", 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(c.itemsTotal.WithLabelValues("aws", tt.resource, tt.outcome))
		if got != tt.want {
			t.Errorf("items_total{resource=%q,outcome=%q} = %v, want %v", tt.resource, tt.outcome, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(c, "aws_cost_connector_request_duration_seconds"); n != 2 {
		t.Errorf("Expected 2 duration series, got %d", n)
	}
}

func TestObserveBatch_TracksLastBatch(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := newTestCollector(now)

	c.ObserveBatch(3, nil)

	if !c.LastBatchTime().Equal(now) {
		t.Errorf("LastBatchTime = %v, want %v", c.LastBatchTime(), now)
	}
	if c.LastItemCount() != 3 {
		t.Errorf("LastItemCount = %d, want 3", c.LastItemCount())
	}
	if c.LastError() != nil {
		t.Errorf("LastError = %v, want nil", c.LastError())
	}

	abort := errors.New("node failed")
	c.ObserveBatch(5, abort)

	if c.LastError() != abort {
		t.Errorf("LastError = %v, want %v", c.LastError(), abort)
	}
	if c.BatchCount() != 2 {
		t.Errorf("BatchCount = %d, want 2", c.BatchCount())
	}

	expected := `
# HELP aws_cost_connector_batches_total Total number of batches dispatched, by outcome (completed or aborted)
# TYPE aws_cost_connector_batches_total counter
aws_cost_connector_batches_total{outcome="aborted",provider="aws"} 1
aws_cost_connector_batches_total{outcome="completed",provider="aws"} 1
# HELP aws_cost_connector_last_batch_items Number of items in the last finished batch
# TYPE aws_cost_connector_last_batch_items gauge
aws_cost_connector_last_batch_items{provider="aws"} 5
# HELP aws_cost_connector_last_batch_timestamp_seconds Unix timestamp of the last finished batch
# TYPE aws_cost_connector_last_batch_timestamp_seconds gauge
aws_cost_connector_last_batch_timestamp_seconds{provider="aws"} 1.7e+09
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"aws_cost_connector_batches_total",
		"aws_cost_connector_last_batch_items",
		"aws_cost_connector_last_batch_timestamp_seconds",
	); err != nil {
		t.Errorf("unexpected metrics:\n%v", err)
	}
}

func TestRegister_NoDuplicateDescriptors(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(NewDispatchCollector(testLogger())); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
}
