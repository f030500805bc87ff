// Copyright (c) 2026, vmic authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/4erdenko/vmic/pkg/report"
)

// Format selects the output rendering.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// IsUnknown reports whether the format is outside the supported set.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	default:
		return true
	}
}

// SupportedFormats lists the accepted --format values.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatTable)}
}

// Writer renders values in one format to one destination. Close must be
// called when the Writer owns a file handle.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// NewWriter creates a Writer over an explicit destination. A nil output
// means stdout; an unknown format falls back to JSON.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		format = FormatJSON
	}
	return &Writer{format: format, output: output}
}

// NewFileWriterOrStdout writes to the given path, falling back to stdout
// when the path is empty or cannot be created.
func NewFileWriterOrStdout(format Format, path string) *Writer {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return NewWriter(format, os.Stdout)
	}
	file, err := os.Create(trimmed)
	if err != nil {
		slog.Error("failed to create output file, writing to stdout", "error", err, "path", trimmed)
		return NewWriter(format, os.Stdout)
	}
	w := NewWriter(format, file)
	w.closer = file
	return w
}

// Close releases the underlying file handle, if any. Safe to call twice.
func (w *Writer) Close() error {
	if w.closer != nil {
		c := w.closer
		w.closer = nil
		return c.Close()
	}
	return nil
}

// Serialize renders one value. Reports get the dedicated table view; any
// other value falls back to its JSON encoding in table mode.
func (w *Writer) Serialize(_ context.Context, v any) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.output)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to serialize to JSON: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w.output)
		enc.SetIndent(2)
		defer enc.Close()
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to serialize to YAML: %w", err)
		}
		return nil
	case FormatTable:
		if rep, ok := v.(*report.Report); ok {
			return w.writeReportTable(rep)
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render table fallback: %w", err)
		}
		_, err = fmt.Fprintln(w.output, string(data))
		return err
	default:
		return fmt.Errorf("unsupported format: %s", w.format)
	}
}

// writeReportTable renders the section overview and the digest, one row per
// section and one row per finding.
func (w *Writer) writeReportTable(rep *report.Report) error {
	fmt.Fprintf(w.output, "generated %s, %d section(s), overall %s\n\n",
		rep.Metadata.GeneratedAt, rep.Metadata.Sections, rep.HealthDigest.Overall)

	tw := tabwriter.NewWriter(w.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tSTATUS\tSUMMARY\tNOTES")
	for _, s := range rep.Sections {
		summary := s.Summary
		if summary == "" {
			summary = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.Key, s.Status, summary, len(s.Notes))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush section table: %w", err)
	}

	if len(rep.HealthDigest.Findings) == 0 {
		fmt.Fprintln(w.output, "\nno findings")
		return nil
	}
	fmt.Fprintln(w.output)
	tw = tabwriter.NewWriter(w.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tSOURCE\tFINDING")
	for _, f := range rep.HealthDigest.Findings {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Severity, f.SourceTitle, f.Message)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush findings table: %w", err)
	}
	return nil
}
