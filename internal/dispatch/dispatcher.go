package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/logger"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/provider"
)

// Item outcomes reported to the Observer
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Observer receives per-item and per-batch dispatch events
type Observer interface {
	ObserveItem(resource string, outcome string, elapsed time.Duration)
	ObserveBatch(items int, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveItem(string, string, time.Duration) {}
func (nopObserver) ObserveBatch(int, error)                   {}

// Invocation is one batch to dispatch
type Invocation struct {
	// ItemCount is the number of batch items; item i is resolved through Params at index i
	ItemCount int
	Params    ParameterResolver

	// ContinueOnFail records per-item errors instead of aborting the batch
	ContinueOnFail bool
}

// Dispatcher issues one Cost Explorer request per batch item, in item order
type Dispatcher struct {
	client   provider.CostExplorerAPI
	logger   *logger.Logger
	nodeName string
	observer Observer
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithNodeName sets the node name reported in errors and logs
func WithNodeName(name string) Option {
	return func(d *Dispatcher) {
		d.nodeName = name
	}
}

// WithObserver installs an observer for dispatch metrics
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observer = o
		}
	}
}

// New creates a Dispatcher around an authenticated client. The client is
// shared read-only by every item of every batch.
func New(client provider.CostExplorerAPI, log *logger.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:   client,
		logger:   log,
		nodeName: "AWS Cost Explorer",
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NodeName returns the node name reported in errors
func (d *Dispatcher) NodeName() string {
	return d.nodeName
}

// itemResult is the outcome of one per-item step
type itemResult struct {
	resource string
	response any
	err      error
	elapsed  time.Duration
}

// Execute dispatches every item of the invocation sequentially and returns the
// output buffer wrapped as a single output stream. In strict mode the first
// failure aborts the batch with a *NodeError and no partial output.
func (d *Dispatcher) Execute(ctx context.Context, inv Invocation) ([][]Record, error) {
	if inv.ItemCount > 0 && inv.Params == nil {
		return nil, errors.New("dispatch: invocation has items but no parameter resolver")
	}

	executionID := uuid.NewString()
	log := d.logger.WithFields("execution_id", executionID, "node", d.nodeName)
	log.Info("Dispatching batch",
		"items", inv.ItemCount,
		"continue_on_fail", inv.ContinueOnFail)

	start := time.Now()
	out := make([]Record, 0, inv.ItemCount)
	failed := 0

	for i := 0; i < inv.ItemCount; i++ {
		res := d.processItem(ctx, inv.Params, i, log)

		if res.err != nil {
			d.observer.ObserveItem(res.resource, OutcomeError, res.elapsed)

			if !inv.ContinueOnFail {
				nodeErr := &NodeError{
					Node:        d.nodeName,
					ExecutionID: executionID,
					ItemIndex:   i,
					Cause:       res.err,
				}
				log.Error("Item failed, aborting batch",
					"item_index", i,
					"resource", res.resource,
					"error", res.err)
				d.observer.ObserveBatch(inv.ItemCount, nodeErr)
				return nil, nodeErr
			}

			failed++
			log.Warn("Item failed, recording error and continuing",
				"item_index", i,
				"resource", res.resource,
				"error", res.err)
			out = append(out, Failure(errorMessage(res.err)))
			continue
		}

		d.observer.ObserveItem(res.resource, OutcomeSuccess, res.elapsed)
		out = append(out, Record{Response: res.response})
	}

	d.observer.ObserveBatch(inv.ItemCount, nil)
	log.Info("Batch complete",
		"items", inv.ItemCount,
		"failed", failed,
		"duration_seconds", time.Since(start).Seconds())

	return [][]Record{out}, nil
}

// processItem builds and sends the request for one item
func (d *Dispatcher) processItem(ctx context.Context, p ParameterResolver, index int, log *logger.Logger) itemResult {
	start := time.Now()

	req, err := BuildRequest(p, index)
	if err != nil {
		return itemResult{resource: "unknown", err: err, elapsed: time.Since(start)}
	}

	log.Debug("Sending Cost Explorer request",
		"item_index", index,
		"resource", req.Resource().String(),
		"request", fmt.Sprintf("%+v", req))

	resp, err := d.send(ctx, req)
	return itemResult{
		resource: req.Resource().String(),
		response: resp,
		err:      err,
		elapsed:  time.Since(start),
	}
}

// send issues the request matching the variant
func (d *Dispatcher) send(ctx context.Context, req Request) (any, error) {
	switch req := req.(type) {
	case CostAndUsageRequest:
		return d.client.GetCostAndUsage(ctx, req.Input())
	case DimensionValuesRequest:
		return d.client.GetDimensionValues(ctx, req.Input())
	default:
		return nil, fmt.Errorf("dispatch: unhandled request type %T", req)
	}
}
