package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/config"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/dispatch"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/logger"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/params"
)

type mockCostExplorer struct {
	starts []string
	failOn string
}

func (m *mockCostExplorer) GetCostAndUsage(_ context.Context, in *costexplorer.GetCostAndUsageInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	start := sdkaws.ToString(in.TimePeriod.Start)
	m.starts = append(m.starts, start)
	if start == m.failOn {
		return nil, errors.New("Rate exceeded")
	}
	return &costexplorer.GetCostAndUsageOutput{
		ResultsByTime: []types.ResultByTime{{TimePeriod: in.TimePeriod}},
	}, nil
}

func (m *mockCostExplorer) GetDimensionValues(_ context.Context, in *costexplorer.GetDimensionValuesInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetDimensionValuesOutput, error) {
	return &costexplorer.GetDimensionValuesOutput{
		DimensionValues: []types.DimensionValuesWithAttributes{{Value: sdkaws.String("us-east-1")}},
	}, nil
}

func batchConfig(continueOnFail bool) *config.Config {
	return &config.Config{
		Node: config.Node{
			Name:           "Monthly costs",
			ContinueOnFail: continueOnFail,
			Parameters: map[string]any{
				"resource":  "costAndUsage",
				"startDate": "={{ json.start }}",
				"endDate":   "={{ json.end }}",
			},
		},
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "serve")
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestRootCommand_Version(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "aws-cost-connector version")
}

func TestReadItems(t *testing.T) {
	dir := t.TempDir()
	arrayFile := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(arrayFile, []byte(`[{"start":"2023-01-01"},{"start":"2023-02-01"}]`), 0o600))
	badFile := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badFile, []byte(`"just a string"`), 0o600))

	tests := []struct {
		name    string
		path    string
		stdin   string
		want    []params.Item
		wantErr bool
	}{
		{name: "no input is one empty item", path: "", want: []params.Item{{}}},
		{name: "array file", path: arrayFile, want: []params.Item{{"start": "2023-01-01"}, {"start": "2023-02-01"}}},
		{name: "single object from stdin", path: "-", stdin: `{"start":"2023-03-01"}`, want: []params.Item{{"start": "2023-03-01"}}},
		{name: "empty array from stdin", path: "-", stdin: `[]`, want: []params.Item{}},
		{name: "not an object", path: badFile, wantErr: true},
		{name: "malformed stdin", path: "-", stdin: `[{`, wantErr: true},
		{name: "missing file", path: filepath.Join(dir, "missing.json"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := readItems(tt.path, strings.NewReader(tt.stdin))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, items)
		})
	}
}

func TestExecuteBatch_ContinueOnFail(t *testing.T) {
	client := &mockCostExplorer{failOn: "2023-02-01"}
	items := []params.Item{
		{"start": "2023-01-01", "end": "2023-02-01"},
		{"start": "2023-02-01", "end": "2023-03-01"},
	}

	out, err := executeBatch(context.Background(), batchConfig(true), client, logger.Discard(), items)
	require.NoError(t, err)

	require.Len(t, out, 1)
	require.Len(t, out[0], 2)
	assert.False(t, out[0][0].Failed())
	assert.Equal(t, "Rate exceeded", out[0][1].Error)
	assert.Equal(t, []string{"2023-01-01", "2023-02-01"}, client.starts)
}

func TestExecuteBatch_StrictAborts(t *testing.T) {
	client := &mockCostExplorer{failOn: "2023-01-01"}
	items := []params.Item{
		{"start": "2023-01-01", "end": "2023-02-01"},
		{"start": "2023-02-01", "end": "2023-03-01"},
	}

	out, err := executeBatch(context.Background(), batchConfig(false), client, logger.Discard(), items)
	assert.Nil(t, out)

	var nodeErr *dispatch.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "Monthly costs", nodeErr.Node)
	assert.Equal(t, 0, nodeErr.ItemIndex)
	assert.Len(t, client.starts, 1)
}

func TestExecuteBatch_InvalidParameters(t *testing.T) {
	cfg := batchConfig(false)
	cfg.Node.Parameters["groupBy"] = "SERVICE"

	_, err := executeBatch(context.Background(), cfg, &mockCostExplorer{}, logger.Discard(), []params.Item{{}})
	assert.ErrorContains(t, err, "invalid node parameters")
}

func TestWriteOutput(t *testing.T) {
	out := [][]dispatch.Record{{
		{Response: map[string]any{"TotalSize": 1}},
		dispatch.Failure("Rate exceeded"),
	}}
	want := `[[{"TotalSize":1},{"error":"Rate exceeded"}]]`

	t.Run("stdout", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutput(out, "", &buf))
		assert.JSONEq(t, want, buf.String())
		assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		require.NoError(t, writeOutput(out, path, nil))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, want, string(data))
	})
}
