// Package config provides configuration management for the AWS Cost Explorer connector.
//
// This package handles loading configuration from YAML files, applying
// environment variable overrides, setting defaults, and validating the
// configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// Supported environment variables:
//   - AWS_COST_ACCESS_KEY_ID: AWS access key ID
//   - AWS_COST_SECRET_ACCESS_KEY: AWS secret access key
//   - AWS_COST_REGION: AWS region (default: us-east-1)
//   - AWS_COST_ENDPOINT: Cost Explorer endpoint override
//   - AWS_COST_CONTINUE_ON_FAIL: Record per-item errors instead of aborting the batch
//   - AWS_COST_HTTP_PORT: HTTP server port (1-65535)
//   - AWS_COST_LOG_LEVEL: Log level (debug, info, warn, error)
//   - AWS_COST_API_TIMEOUT: Cost Explorer HTTP timeout in seconds (1-300)
//
// Example configuration file (config.yaml):
//
//	credentials:
//	  access_key_id: "AKIA..."
//	  secret_access_key: "..."
//	  region: "us-east-1"
//
//	node:
//	  name: "Monthly spend"
//	  continue_on_fail: true
//	  parameters:
//	    resource: costAndUsage
//	    operation: get
//	    startDate: "={{ json.start }}"
//	    endDate: "={{ json.end }}"
//	    granularity: DAILY
//	    metrics: [BlendedCost, UnblendedCost]
//
//	http_port: 8080
//	log_level: "info"
//	api_timeout: 30
package config
