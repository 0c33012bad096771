// Package provider defines the cost service abstraction the dispatch loop talks to.
//
// CostExplorerAPI mirrors the two AWS Cost Explorer operations the connector
// issues, using the SDK's own request and response types so that a real
// *costexplorer.Client can be passed in directly:
//
//	type CostExplorerAPI interface {
//		GetCostAndUsage(ctx, *costexplorer.GetCostAndUsageInput, ...) (*costexplorer.GetCostAndUsageOutput, error)
//		GetDimensionValues(ctx, *costexplorer.GetDimensionValuesInput, ...) (*costexplorer.GetDimensionValuesOutput, error)
//	}
//
// Transport concerns (request signing, retries, HTTP timeouts) belong to the
// implementation behind this interface, not to its callers.
package provider
