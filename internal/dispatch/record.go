package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Record is one entry of the output buffer: either the raw service response
// or an error captured under continue-on-failure. Build failed records with
// Failure so an empty error message still marks the item as failed.
type Record struct {
	Response any
	Error    string

	failed bool
}

// Failure returns the record for an item that failed with message msg
func Failure(msg string) Record {
	return Record{Error: msg, failed: true}
}

// Failed reports whether the record carries a captured error
func (r Record) Failed() bool {
	return r.failed
}

// MarshalJSON renders the response verbatim, or {"error": msg} for a failed item
func (r Record) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(map[string]string{"error": r.Error})
	}
	return json.Marshal(r.Response)
}

// NodeError aborts a batch in strict mode. It names the node and the item
// that failed and wraps the original failure.
type NodeError struct {
	Node        string
	ExecutionID string
	ItemIndex   int
	Cause       error
}

// Error implements the error interface
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q failed on item %d: %s", e.Node, e.ItemIndex, errorMessage(e.Cause))
}

// Unwrap returns the underlying cause for errors.Is/As support
func (e *NodeError) Unwrap() error {
	return e.Cause
}

// errorMessage prefers the service's own message over the SDK's operation-wrapped text
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}
	return err.Error()
}
