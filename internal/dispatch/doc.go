// Package dispatch implements the request dispatch loop of the connector.
//
// For each item of a batch the Dispatcher resolves the resource and operation
// selectors, builds exactly one Request (CostAndUsageRequest or
// DimensionValuesRequest), sends it through the shared Cost Explorer client
// and appends either the raw response or a captured error to the output
// buffer. Items are processed strictly in order, one at a time.
//
// Error policy is chosen per invocation:
//   - strict (default): the first failure aborts the batch with a *NodeError
//     naming the node and the failing item; no partial output is returned
//   - continue on failure: the failing item becomes {"error": "<message>"} at
//     its position and the loop moves on
//
// An unrecognized resource or operation is an item failure like any other.
//
// Example usage:
//
//	d := dispatch.New(client, log, dispatch.WithNodeName(cfg.Node.Name))
//	out, err := d.Execute(ctx, dispatch.Invocation{
//		ItemCount:      resolver.Len(),
//		Params:         resolver,
//		ContinueOnFail: cfg.Node.ContinueOnFail,
//	})
package dispatch
