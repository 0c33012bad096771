// Package server exposes the dispatch loop over HTTP.
//
// Available endpoints:
//   - POST /execute : dispatch a batch and return its output streams
//   - /             : Web UI showing connector status and the last batch
//   - /metrics      : Prometheus metrics endpoint
//   - /health       : Liveness probe (always returns 200)
//   - /ready        : Readiness probe (returns 200 once the client's AWS credentials resolve)
//
// POST /execute accepts:
//
//	{
//	  "items": [{"start": "2023-01-01", "end": "2023-02-01"}],
//	  "parameters": {"granularity": "DAILY"},
//	  "continue_on_fail": true
//	}
//
// Request parameters are layered over the node parameters from the
// configuration file, and continue_on_fail overrides the configured policy
// for this batch only. A successful batch returns 200 with a single-element
// array holding the output buffer:
//
//	[[{"ResultsByTime": [...]}, {"error": "Rate exceeded"}]]
//
// A batch aborted in strict mode returns 502 with the node, item index and
// execution id of the failure. Malformed bodies and undeclared parameters
// return 400.
package server
