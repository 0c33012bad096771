package dispatch

import (
	"errors"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/params"
)

// Default dimension value period, used when a dimensionValues item leaves the dates empty
const (
	DefaultDimensionStart = "2023-01-01"
	DefaultDimensionEnd   = "2023-12-31"
)

// Selector errors
var (
	ErrUnknownResource      = errors.New("unknown resource")
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Resource selects which Cost Explorer API an item calls
type Resource int

// Known resources
const (
	ResourceCostAndUsage Resource = iota + 1
	ResourceDimensionValues
)

// ParseResource maps a resource selector to a Resource
func ParseResource(s string) (Resource, error) {
	switch s {
	case "costAndUsage":
		return ResourceCostAndUsage, nil
	case "dimensionValues":
		return ResourceDimensionValues, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownResource, s)
	}
}

// String returns the selector value of the resource
func (r Resource) String() string {
	switch r {
	case ResourceCostAndUsage:
		return "costAndUsage"
	case ResourceDimensionValues:
		return "dimensionValues"
	default:
		return "unknown"
	}
}

// Operation selects what to do with a resource
type Operation int

// Known operations
const (
	OperationGet Operation = iota + 1
)

// ParseOperation maps an operation selector to an Operation
func ParseOperation(s string) (Operation, error) {
	if s == "get" {
		return OperationGet, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnsupportedOperation, s)
}

// String returns the selector value of the operation
func (o Operation) String() string {
	if o == OperationGet {
		return "get"
	}
	return "unknown"
}

// TimePeriod is an inclusive-start, exclusive-end date range in YYYY-MM-DD form
type TimePeriod struct {
	Start string
	End   string
}

func (p TimePeriod) dateInterval() *types.DateInterval {
	return &types.DateInterval{
		Start: sdkaws.String(p.Start),
		End:   sdkaws.String(p.End),
	}
}

// Request is an outbound Cost Explorer request. Its only implementations are
// CostAndUsageRequest and DimensionValuesRequest.
type Request interface {
	Resource() Resource
	sealed()
}

// CostAndUsageRequest queries a cost and usage time series
type CostAndUsageRequest struct {
	TimePeriod  TimePeriod
	Granularity string
	Metrics     []string
}

// Resource implements Request
func (CostAndUsageRequest) Resource() Resource { return ResourceCostAndUsage }

func (CostAndUsageRequest) sealed() {}

// Input converts the request to the SDK input
func (r CostAndUsageRequest) Input() *costexplorer.GetCostAndUsageInput {
	return &costexplorer.GetCostAndUsageInput{
		TimePeriod:  r.TimePeriod.dateInterval(),
		Granularity: types.Granularity(r.Granularity),
		Metrics:     r.Metrics,
	}
}

// DimensionValuesRequest enumerates the values of one cost dimension
type DimensionValuesRequest struct {
	TimePeriod TimePeriod
	Dimension  string
}

// Resource implements Request
func (DimensionValuesRequest) Resource() Resource { return ResourceDimensionValues }

func (DimensionValuesRequest) sealed() {}

// Input converts the request to the SDK input
func (r DimensionValuesRequest) Input() *costexplorer.GetDimensionValuesInput {
	return &costexplorer.GetDimensionValuesInput{
		TimePeriod: r.TimePeriod.dateInterval(),
		Dimension:  types.Dimension(r.Dimension),
	}
}

// ParameterResolver returns operator-configured values for a batch item.
// Option parameters are expected to be validated by the resolver.
type ParameterResolver interface {
	String(index int, name string) (string, error)
	Strings(index int, name string) ([]string, error)
}

// BuildRequest resolves the selectors of item index and builds its request
func BuildRequest(p ParameterResolver, index int) (Request, error) {
	resourceName, err := p.String(index, params.ParamResource)
	if err != nil {
		return nil, err
	}
	operationName, err := p.String(index, params.ParamOperation)
	if err != nil {
		return nil, err
	}

	resource, err := ParseResource(resourceName)
	if err != nil {
		return nil, err
	}
	op, err := ParseOperation(operationName)
	if err != nil {
		return nil, err
	}

	switch resource {
	case ResourceCostAndUsage:
		if op == OperationGet {
			return buildCostAndUsage(p, index)
		}
	case ResourceDimensionValues:
		if op == OperationGet {
			return buildDimensionValues(p, index)
		}
	}
	return nil, fmt.Errorf("%w %q for resource %s", ErrUnsupportedOperation, operationName, resource)
}

// buildCostAndUsage passes dates through verbatim; empty dates are rejected by the service
func buildCostAndUsage(p ParameterResolver, index int) (Request, error) {
	start, err := p.String(index, params.ParamStartDate)
	if err != nil {
		return nil, err
	}
	end, err := p.String(index, params.ParamEndDate)
	if err != nil {
		return nil, err
	}
	granularity, err := p.String(index, params.ParamGranularity)
	if err != nil {
		return nil, err
	}
	metrics, err := p.Strings(index, params.ParamMetrics)
	if err != nil {
		return nil, err
	}

	return CostAndUsageRequest{
		TimePeriod:  TimePeriod{Start: start, End: end},
		Granularity: granularity,
		Metrics:     metrics,
	}, nil
}

func buildDimensionValues(p ParameterResolver, index int) (Request, error) {
	dimension, err := p.String(index, params.ParamDimension)
	if err != nil {
		return nil, err
	}
	start, err := p.String(index, params.ParamStartDate)
	if err != nil {
		return nil, err
	}
	end, err := p.String(index, params.ParamEndDate)
	if err != nil {
		return nil, err
	}

	if start == "" {
		start = DefaultDimensionStart
	}
	if end == "" {
		end = DefaultDimensionEnd
	}

	return DimensionValuesRequest{
		TimePeriod: TimePeriod{Start: start, End: end},
		Dimension:  dimension,
	}, nil
}
