// Package aws builds the authenticated AWS Cost Explorer client.
//
// The client is constructed from the connector's credential bundle:
//   - access key ID and secret access key, when both are configured
//   - the default AWS credential chain otherwise (environment, shared config, IMDS)
//   - region, defaulting to us-east-1
//
// Request signing, retries and HTTP timeouts are left to the SDK. The
// api_timeout setting is applied to the SDK's HTTP client.
//
// Example usage:
//
//	client, err := aws.NewClient(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	d := dispatch.New(client, log)
package aws
