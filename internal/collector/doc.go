// Package collector implements a Prometheus collector for dispatch loop metrics.
//
// DispatchCollector is both a prometheus.Collector and a dispatch.Observer:
// the dispatcher reports every item and every batch to it, and Prometheus
// scrapes the aggregated values.
//
// The collector exposes the following metrics:
//   - aws_cost_connector_items_total: Items dispatched, by resource and outcome (success, error)
//   - aws_cost_connector_batches_total: Batches dispatched, by outcome (completed, aborted)
//   - aws_cost_connector_request_duration_seconds: Per-item request duration histogram
//   - aws_cost_connector_last_batch_timestamp_seconds: Unix timestamp of the last finished batch
//   - aws_cost_connector_last_batch_items: Item count of the last finished batch
//   - aws_cost_connector_build_info: Build version information
//
// Example usage:
//
//	c := collector.NewDispatchCollector(log)
//	prometheus.MustRegister(c)
//	d := dispatch.New(client, log, dispatch.WithObserver(c))
package collector
