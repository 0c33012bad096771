package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/config"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/logger"
)

// DefaultLoadTimeout bounds credential and region resolution while building the client
const DefaultLoadTimeout = 10 * time.Second

// NewClient creates an authenticated Cost Explorer client from the configured credentials.
// The client is built once per invocation and shared read-only by every batch item.
func NewClient(ctx context.Context, cfg *config.Config, log *logger.Logger) (*costexplorer.Client, error) {
	loadCtx, cancel := context.WithTimeout(ctx, DefaultLoadTimeout)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(loadCtx, loadOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	credentialSource := "default chain"
	if cfg.Credentials.HasStaticKeys() {
		credentialSource = "static keys"
	}
	log.Debug("Building Cost Explorer client",
		"region", awsCfg.Region,
		"credentials", credentialSource,
		"endpoint", cfg.Endpoint,
		"api_timeout_seconds", cfg.APITimeout)

	client := costexplorer.NewFromConfig(awsCfg, func(o *costexplorer.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = sdkaws.String(cfg.Endpoint)
		}
	})

	return client, nil
}

// loadOptions translates connector configuration into SDK config load options
func loadOptions(cfg *config.Config) []func(*awsconfig.LoadOptions) error {
	httpClient := awshttp.NewBuildableClient().
		WithTimeout(time.Duration(cfg.APITimeout) * time.Second)

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Credentials.Region),
		awsconfig.WithHTTPClient(httpClient),
	}

	if cfg.Credentials.HasStaticKeys() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Credentials.AccessKeyID,
				cfg.Credentials.SecretAccessKey,
				"",
			),
		))
	}

	return opts
}

// ErrNoCredentials is returned by a credentials check when the client has no credentials provider
var ErrNoCredentials = errors.New("no AWS credentials provider configured")

// CredentialsCheck returns a readiness check that resolves the client's credentials.
// The SDK caches retrieved credentials, so repeated checks only reach the provider
// once the cached set expires.
func CredentialsCheck(client *costexplorer.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		provider := client.Options().Credentials
		if provider == nil {
			return ErrNoCredentials
		}

		creds, err := provider.Retrieve(ctx)
		if err != nil {
			return fmt.Errorf("failed to retrieve AWS credentials: %w", err)
		}
		if creds.Expired() {
			return fmt.Errorf("AWS credentials from %s have expired", creds.Source)
		}
		return nil
	}
}
