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

package sar

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/report"
)

const (
	Key   = "sar"
	Title = "Historical Utilization"
)

// Descriptor registers the collector. It needs the sysstat sar binary.
func Descriptor() collector.Descriptor {
	return collector.Descriptor{
		Key:   Key,
		Title: Title,
		Supported: func(rt *collector.Runtime) bool {
			_, err := rt.Sources.Runner.LookPath("sar")
			return err == nil
		},
		New: func(rt *collector.Runtime) collector.Collector { return &Collector{rt: rt} },
	}
}

// Collector reads today's sysstat history: CPU utilization from sar -u and
// memory from sar -r.
type Collector struct {
	rt *collector.Runtime
}

func (c *Collector) Collect(ctx context.Context) *report.Section {
	slog.Debug("collecting sysstat history")
	runner := c.rt.Sources.Runner

	s := report.Ok(Key, Title, report.Body{})
	failures := 0

	cpuOut, err := runner.Run(ctx, "sar", "-u")
	if err != nil {
		failures++
		s.Note("sar -u: %v", err)
	} else if cpu := parseAverage(string(cpuOut)); cpu != nil {
		s.Body["cpu_average"] = cpu
		if idle, ok := cpu["%idle"].(float64); ok {
			s.Body["cpu_busy_ratio"] = (100 - idle) / 100
		}
	} else {
		failures++
		s.Note("sar -u produced no average row")
	}

	memOut, err := runner.Run(ctx, "sar", "-r")
	if err != nil {
		failures++
		s.Note("sar -r: %v", err)
	} else if mem := parseAverage(string(memOut)); mem != nil {
		s.Body["memory_average"] = mem
	} else {
		failures++
		s.Note("sar -r produced no average row")
	}

	switch failures {
	case 0:
		return s
	case 1:
		s.Status = report.StatusDegraded
		s.Summary = "one sysstat query failed"
		return s
	default:
		return report.Error(Key, Title, "sysstat history is unavailable")
	}
}

// parseAverage joins sar's header row with its Average: row into one map.
// sar output looks like:
//
//	12:00:01     CPU  %user  %nice  %system  %iowait  %steal  %idle
//	Average:     all   4.52   0.00     1.21     0.15    0.00  94.12
func parseAverage(out string) report.Body {
	lines := strings.Split(out, "\n")
	var header []string
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if strings.HasPrefix(fields[1], "%") || fields[1] == "CPU" || strings.HasPrefix(fields[1], "kb") {
			header = fields[1:]
			continue
		}
		if fields[0] != "Average:" || header == nil {
			continue
		}
		values := fields[1:]
		if len(values) != len(header) {
			continue
		}
		row := report.Body{}
		for i, name := range header {
			if v, err := strconv.ParseFloat(values[i], 64); err == nil {
				row[name] = v
			} else {
				row[name] = values[i]
			}
		}
		return row
	}
	return nil
}
