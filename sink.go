package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Default output file names, without extension.
const (
	tablePresenceFile     = "table_presence_across_databases"
	columnDifferencesFile = "column_differences_across_databases"
)

// Sink persists a report. Existing files are overwritten.
type Sink interface {
	Write(report *Report, path string) error
	Ext() string
}

// NewSink returns the sink for an output format (csv or yaml).
func NewSink(format string) (Sink, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return CSVSink{}, nil
	case "yaml", "yml":
		return YAMLSink{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// reportPaths returns the table-presence and column-differences file paths in dir.
func reportPaths(dir string, sink Sink) (string, string) {
	return filepath.Join(dir, tablePresenceFile+sink.Ext()),
		filepath.Join(dir, columnDifferencesFile+sink.Ext())
}

// CSVSink writes a header row followed by one record per report row.
type CSVSink struct{}

func (CSVSink) Ext() string { return ".csv" }

func (CSVSink) Write(report *Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(report.Headers); err != nil {
			return err
		}
		return cw.WriteAll(report.Rows)
	})
}

// YAMLSink writes a list of header to cell mappings, keeping header order.
type YAMLSink struct{}

func (YAMLSink) Ext() string { return ".yaml" }

func (YAMLSink) Write(report *Report, path string) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range report.Rows {
		entry := &yaml.Node{Kind: yaml.MappingNode}
		for i, header := range report.Headers {
			var value string
			if i < len(row) {
				value = row[i]
			}
			entry.Content = append(entry.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: header},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
			)
		}
		doc.Content = append(doc.Content, entry)
	}

	return writeFile(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	})
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// printPreview renders the first rows of a report as an aligned table.
func printPreview(w io.Writer, title string, report *Report, rows int) error {
	head := report.Head(rows)

	fmt.Fprintf(w, "\n=== %s (%d of %d rows) ===\n", title, len(head.Rows), len(report.Rows))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(head.Headers, "\t"))
	for _, row := range head.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
