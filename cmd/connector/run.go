package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/aws"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/config"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/dispatch"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/logger"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/params"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/provider"
)

func newRunCommand(configPath *string) *cobra.Command {
	var (
		inputFile      string
		outputFile     string
		continueOnFail bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Dispatch one batch and print its output streams as JSON",
		Long: `Run reads a batch of items, issues one Cost Explorer request per item
using the configured node parameters, and writes the output streams as JSON.

Items are a JSON array of objects (a single object is one item). Without
--input the batch holds one empty item, as a manual trigger would.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("continue-on-fail") {
				cfg.Node.ContinueOnFail = continueOnFail
			}

			items, err := readItems(inputFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			log := logger.New(cfg.LogLevel)
			client, err := aws.NewClient(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			out, err := executeBatch(cmd.Context(), cfg, client, log, items)
			if err != nil {
				return err
			}

			return writeOutput(out, outputFile, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "JSON file with batch items (use '-' for stdin)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write output to file instead of stdout")
	cmd.Flags().BoolVar(&continueOnFail, "continue-on-fail", false, "Record per-item errors instead of aborting the batch")

	return cmd
}

// executeBatch resolves the configured parameters against items and runs the dispatch loop
func executeBatch(ctx context.Context, cfg *config.Config, client provider.CostExplorerAPI, log *logger.Logger, items []params.Item) ([][]dispatch.Record, error) {
	resolver, err := params.NewResolver(params.CostExplorerSchema, cfg.Node.Parameters, items)
	if err != nil {
		return nil, fmt.Errorf("invalid node parameters: %w", err)
	}

	d := dispatch.New(client, log, dispatch.WithNodeName(cfg.Node.Name))
	return d.Execute(ctx, dispatch.Invocation{
		ItemCount:      resolver.Len(),
		Params:         resolver,
		ContinueOnFail: cfg.Node.ContinueOnFail,
	})
}

// readItems loads batch items from a file, from stdin ("-"), or returns one empty item
func readItems(path string, stdin io.Reader) ([]params.Item, error) {
	var (
		data []byte
		err  error
	)

	switch path {
	case "":
		return []params.Item{{}}, nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		// #nosec G304 -- Input path is provided by the operator via CLI flag
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse items: %w", err)
	}

	var items []params.Item
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var single params.Item
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("items must be a JSON array of objects or a single object: %w", err)
	}
	return []params.Item{single}, nil
}

// writeOutput writes the output streams as indented JSON
func writeOutput(out [][]dispatch.Record, path string, stdout io.Writer) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
