package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/backoffice/internal/export"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// catalogCmd inspects the export catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog [dataset]",
	Short: "List export datasets or show one dataset's fields",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cat := export.Default()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		if jsonOut {
			return json.NewEncoder(out).Encode(cat.Datasets())
		}
		return printDatasets(out, cat.Datasets())
	}

	ds, ok := cat.Lookup(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", export.ErrUnknownDataset, args[0])
	}
	if jsonOut {
		return json.NewEncoder(out).Encode(ds)
	}
	return printFields(out, ds)
}

func printDatasets(out io.Writer, datasets []*export.Dataset) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tENABLED\tROWS\tROWS/DAY\tFIELDS\tLAST EXPORTED")
	for _, ds := range datasets {
		last := "never"
		if !ds.LastExported.IsZero() {
			last = ds.LastExported.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\t%d\t%s\n",
			ds.ID, ds.Name, ds.Enabled, ds.RowCountLabel,
			humanize.Comma(ds.RowsPerDay), len(ds.Fields), last)
	}
	return tw.Flush()
}

func printFields(out io.Writer, ds *export.Dataset) error {
	fmt.Fprintf(out, "%s (%s)\n", ds.Name, ds.ID)
	if ds.Description != "" {
		fmt.Fprintln(out, ds.Description)
	}
	if !ds.Enabled {
		fmt.Fprintln(out, "Disabled: drafts cannot be created for this dataset.")
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tTYPE\tDEFAULT\tPII\tOPERATORS")
	for _, f := range ds.Fields {
		ops := export.Operators(f.Type)
		labels := make([]string, len(ops))
		for i, op := range ops {
			labels[i] = string(op)
		}
		typ := string(f.Type)
		if len(f.Values) > 0 {
			typ += " [" + strings.Join(f.Values, "|") + "]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Key, f.Label, typ, yesNo(f.Default), yesNo(f.PII), strings.Join(labels, ","))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
