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

package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4erdenko/vmic/pkg/report"
)

func healthySections() []report.Section {
	return []report.Section{
		*report.Ok("os", "Operating System", report.Body{"hostname": "node-1"}),
		*report.Ok("proc", "Processes and Memory", report.Body{
			"memory": report.Body{"total_kb": 16000000, "available_kb": 8000000, "used_ratio": 0.5},
		}),
		*report.Ok("storage", "Storage Overview", report.Body{
			"mounts": []any{
				report.Body{"mount_point": "/", "usage_ratio": 0.42},
				report.Body{"mount_point": "/var", "usage_ratio": 0.61},
			},
		}),
	}
}

func TestEvaluateHealthyHostIsInfo(t *testing.T) {
	d := NewEngine(DefaultThresholds()).Evaluate(healthySections())
	assert.Equal(t, report.SeverityInfo, d.Overall)
	assert.Empty(t, d.Findings)
}

// A mount between the warning and critical thresholds yields a warning
// overall when everything else is healthy.
func TestEvaluateDiskWarning(t *testing.T) {
	sections := healthySections()
	sections[2] = *report.Ok("storage", "Storage Overview", report.Body{
		"mounts": []any{report.Body{"mount_point": "/", "usage_ratio": 0.92}},
	})

	d := NewEngine(DefaultThresholds()).Evaluate(sections)
	assert.Equal(t, report.SeverityWarning, d.Overall)
	require.Len(t, d.Findings, 1)
	assert.Equal(t, "storage", d.Findings[0].SourceKey)
	assert.Contains(t, d.Findings[0].Message, "mount /")
	assert.Contains(t, d.Findings[0].Message, "92%")
}

func TestEvaluateDiskCriticalBeatsWarning(t *testing.T) {
	sections := healthySections()
	sections[2] = *report.Ok("storage", "Storage Overview", report.Body{
		"mounts": []any{
			report.Body{"mount_point": "/", "usage_ratio": 0.92},
			report.Body{"mount_point": "/data", "usage_ratio": 0.97},
		},
	})

	d := NewEngine(DefaultThresholds()).Evaluate(sections)
	assert.Equal(t, report.SeverityCritical, d.Overall)
	require.Len(t, d.Findings, 2)
	assert.Equal(t, report.SeverityWarning, d.Findings[0].Severity)
	assert.Equal(t, report.SeverityCritical, d.Findings[1].Severity)
}

// 3% available memory crosses the 5% headroom threshold and must report
// critical, not warning.
func TestEvaluateMemoryCriticalFromHeadroom(t *testing.T) {
	sections := healthySections()
	sections[1] = *report.Ok("proc", "Processes and Memory", report.Body{
		"memory": report.Body{"total_kb": 16000000, "available_kb": 480000, "used_ratio": 0.97},
	})

	d := NewEngine(DefaultThresholds()).Evaluate(sections)
	assert.Equal(t, report.SeverityCritical, d.Overall)
	require.Len(t, d.Findings, 1)
	assert.Contains(t, d.Findings[0].Message, "5% available")
}

func TestEvaluateMemoryRatioDerivedWhenAbsent(t *testing.T) {
	sections := healthySections()
	sections[1] = *report.Ok("proc", "Processes and Memory", report.Body{
		"memory": report.Body{"total_kb": float64(1000), "available_kb": float64(80)},
	})

	d := NewEngine(DefaultThresholds()).Evaluate(sections)
	assert.Equal(t, report.SeverityWarning, d.Overall)
}

// An error section always promotes to a critical finding, independent of any
// numeric rule.
func TestEvaluateErrorSectionPromotesToCritical(t *testing.T) {
	sections := append(healthySections(),
		*report.Error("docker", "Docker Containers", "collection exceeded timeout"))

	d := NewEngine(DefaultThresholds()).Evaluate(sections)
	assert.Equal(t, report.SeverityCritical, d.Overall)

	var promoted *report.Finding
	for i := range d.Findings {
		if d.Findings[i].SourceKey == "docker" {
			promoted = &d.Findings[i]
		}
	}
	require.NotNil(t, promoted)
	assert.Equal(t, report.SeverityCritical, promoted.Severity)
	assert.Equal(t, "collection exceeded timeout", promoted.Message)
}

func TestEvaluateDegradedSectionPromotesToWarning(t *testing.T) {
	sections := append(healthySections(),
		*report.Degraded("network", "Network Listeners", "udp6 table unreadable", report.Body{}))

	d := NewEngine(DefaultThresholds()).Evaluate(sections)
	assert.Equal(t, report.SeverityWarning, d.Overall)
	require.Len(t, d.Findings, 1)
	assert.Equal(t, report.SeverityWarning, d.Findings[0].Severity)
}

func TestEvaluateCgroupMemoryPressure(t *testing.T) {
	sections := append(healthySections(),
		*report.Ok("containers", "Container Cgroups", report.Body{
			"containers": []any{
				report.Body{"name": "api", "memory_usage_bytes": 980, "memory_limit_bytes": 1000},
				report.Body{"name": "unbounded", "memory_usage_bytes": 5000, "memory_limit_bytes": 0},
			},
		}))

	d := NewEngine(DefaultThresholds()).Evaluate(sections)
	assert.Equal(t, report.SeverityCritical, d.Overall)
	require.Len(t, d.Findings, 1)
	assert.Contains(t, d.Findings[0].Message, "container api")
}

// Evaluation is deterministic: identical inputs produce identical digests.
func TestEvaluateIsPure(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	sections := healthySections()
	first := e.Evaluate(sections)
	second := e.Evaluate(sections)
	assert.Equal(t, first, second)
}

// Decoded JSON bodies carry float64 numbers and []any slices; the engine must
// treat them the same as collector-built bodies.
func TestEvaluateDecodedBodyShapes(t *testing.T) {
	sections := []report.Section{{
		Key: "storage", Title: "Storage Overview", Status: report.StatusOk,
		Body: map[string]any{
			"mounts": []any{map[string]any{"mount_point": "/", "usage_ratio": float64(0.99)}},
		},
		Notes: []string{},
	}}

	d := NewEngine(DefaultThresholds()).Evaluate(sections)
	assert.Equal(t, report.SeverityCritical, d.Overall)
}
