package provider

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
)

// ProviderType represents a cloud cost provider
type ProviderType string

// Supported cost providers
const (
	ProviderAWS ProviderType = "aws"
)

// CostExplorerAPI is the subset of the AWS Cost Explorer client the connector calls.
// *costexplorer.Client satisfies it; tests inject fakes.
type CostExplorerAPI interface {
	// GetCostAndUsage retrieves a cost and usage time series
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)

	// GetDimensionValues enumerates the values of a cost dimension within a time period
	GetDimensionValues(ctx context.Context, params *costexplorer.GetDimensionValuesInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetDimensionValuesOutput, error)
}

// Verify that the SDK client implements CostExplorerAPI
var _ CostExplorerAPI = (*costexplorer.Client)(nil)
