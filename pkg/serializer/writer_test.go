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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/4erdenko/vmic/pkg/report"
)

func sampleReport() *report.Report {
	sections := []report.Section{
		*report.Ok("os", "Operating System", report.Body{"hostname": "node-1"}),
		*report.Error("docker", "Docker Daemon", "daemon unreachable"),
	}
	d := report.Digest{
		Overall: report.SeverityCritical,
		Findings: []report.Finding{
			{Severity: report.SeverityCritical, SourceKey: "docker", SourceTitle: "Docker Daemon", Message: "daemon unreachable"},
		},
	}
	return report.New(sections, d, time.Date(2025, 8, 23, 10, 0, 0, 0, time.UTC), "run-1")
}

func TestSerializeJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatJSON, &buf)
	require.NoError(t, w.Serialize(context.Background(), sampleReport()))

	decoded, err := report.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, sampleReport().Metadata, decoded.Metadata)
	assert.Equal(t, sampleReport().HealthDigest, decoded.HealthDigest)
}

func TestSerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatYAML, &buf)
	require.NoError(t, w.Serialize(context.Background(), sampleReport()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "metadata")
	assert.Contains(t, decoded, "health_digest")
	assert.Contains(t, decoded, "sections")
}

func TestSerializeTable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)
	require.NoError(t, w.Serialize(context.Background(), sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "overall critical")
	assert.Contains(t, out, "SECTION")
	assert.Contains(t, out, "docker")
	assert.Contains(t, out, "daemon unreachable")
	assert.Contains(t, out, "SEVERITY")
}

func TestSerializeTableWithoutFindings(t *testing.T) {
	rep := report.New(
		[]report.Section{*report.Ok("os", "Operating System", report.Body{})},
		report.Digest{Overall: report.SeverityInfo, Findings: []report.Finding{}},
		time.Now(), "")

	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), rep))
	assert.Contains(t, buf.String(), "no findings")
}

func TestUnknownFormatFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)
	require.NoError(t, w.Serialize(context.Background(), map[string]string{"a": "b"}))
	assert.JSONEq(t, `{"a":"b"}`, buf.String())
}

func TestNewFileWriterOrStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	w := NewFileWriterOrStdout(FormatJSON, path)
	require.NoError(t, w.Serialize(context.Background(), sampleReport()))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "double close is safe")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := report.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.Metadata.Sections)
}

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("flush failed") }

// A file handle that fails to close may have lost the report's tail, so the
// error must reach the caller instead of vanishing.
func TestCloseReturnsCloserError(t *testing.T) {
	w := NewWriter(FormatJSON, &bytes.Buffer{})
	w.closer = failingCloser{}

	require.EqualError(t, w.Close(), "flush failed")
	assert.NoError(t, w.Close(), "second close is a no-op")
}

func TestSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "yaml", "table"}, SupportedFormats())
	assert.False(t, FormatJSON.IsUnknown())
	assert.True(t, Format("csv").IsUnknown())
}
