// Package params resolves node parameters for each item of a batch.
//
// A Schema declares the parameters a node accepts, their defaults and, for
// option parameters, the closed list of accepted values. A Resolver binds the
// operator's configured values to a batch of items:
//
//   - a parameter that is not configured resolves to its schema default
//   - a string value starting with "=" is an expression, evaluated per item
//     with the item exposed as `json` and its position as `index`
//   - option parameters are checked against their option list
//
// Example:
//
//	r, err := params.NewResolver(params.CostExplorerSchema, map[string]any{
//		"resource":  "costAndUsage",
//		"startDate": "={{ json.start }}",
//		"endDate":   "={{ json.end }}",
//	}, items)
//	start, err := r.String(0, params.ParamStartDate)
package params
