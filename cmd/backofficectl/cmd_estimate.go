package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/backoffice/internal/core"
	"github.com/JonMunkholm/backoffice/internal/textio"
	"github.com/spf13/cobra"
)

// estimateCmd projects an export offline
var estimateCmd = &cobra.Command{
	Use:   "estimate <plan.json|->",
	Short: "Estimate the size of an export plan",
	Long: `Estimate rows, file size and processing time for an export plan
without a database. The plan names a dataset and the builder actions to
apply to its starting configuration:

  {
    "dataset": "orders",
    "actions": [
      {"type": "set_granularity", "granularity": "raw"},
      {"type": "add_filter", "field": "channel", "operator": "in", "value": ["dine_in"]}
    ]
  }

Use "-" to read the plan from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func runEstimate(cmd *cobra.Command, args []string) error {
	req, err := readPlan(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	summary, err := newService(nil, nil).EstimateConfig(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintf(out, "Dataset:         %s\n", summary.DatasetName)
	if !summary.Computable {
		fmt.Fprintln(out, "Estimate:        not available for this dataset")
		return nil
	}
	fmt.Fprintf(out, "Estimated rows:  %s\n", summary.RowCountLabel)
	fmt.Fprintf(out, "File size:       %s\n", summary.FileSizeLabel)
	fmt.Fprintf(out, "Processing time: %s\n", summary.ProcessingTimeLabel)
	fmt.Fprintf(out, "Columns:         %s\n", strings.Join(summary.Columns, ", "))
	for _, f := range summary.Filters {
		fmt.Fprintf(out, "Filter:          %s %s %v\n", f.FieldLabel, f.OperatorLabel, f.Value)
	}
	if summary.PIIColumnCount > 0 {
		fmt.Fprintf(out, "Personal data:   %s\n", strings.Join(summary.PIIFields, ", "))
	}
	return nil
}

func readPlan(stdin io.Reader, path string) (core.EstimateRequest, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return core.EstimateRequest{}, fmt.Errorf("open plan: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req core.EstimateRequest
	dec := json.NewDecoder(textio.SkipBOM(r))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return core.EstimateRequest{}, fmt.Errorf("decode plan: %w", err)
	}
	return req, nil
}
