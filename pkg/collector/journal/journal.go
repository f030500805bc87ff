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

package journal

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/report"
)

const (
	Key   = "journal"
	Title = "Journal Errors"
)

const (
	// DefaultSince bounds the journal window when no override is given.
	DefaultSince = "-24h"
	// maxEntries caps the tail so a noisy host cannot balloon the report.
	maxEntries = 200
)

// priorityNames are the syslog levels journalctl emits in the PRIORITY field.
var priorityNames = map[string]string{
	"0": "emerg",
	"1": "alert",
	"2": "crit",
	"3": "err",
	"4": "warning",
}

// Descriptor registers the collector. Hosts without journalctl skip the
// section.
func Descriptor() collector.Descriptor {
	return collector.Descriptor{
		Key:   Key,
		Title: Title,
		Supported: func(rt *collector.Runtime) bool {
			_, err := rt.Sources.Runner.LookPath("journalctl")
			return err == nil
		},
		New: func(rt *collector.Runtime) collector.Collector { return &Collector{rt: rt} },
	}
}

// Collector tails warning-and-worse journal entries for the report window.
type Collector struct {
	rt *collector.Runtime
}

// journalEntry is the subset of journalctl's JSON output the report keeps.
type journalEntry struct {
	Priority  string `json:"PRIORITY"`
	Message   string `json:"MESSAGE"`
	Unit      string `json:"_SYSTEMD_UNIT"`
	Ident     string `json:"SYSLOG_IDENTIFIER"`
	Timestamp string `json:"__REALTIME_TIMESTAMP"`
}

func (c *Collector) Collect(ctx context.Context) *report.Section {
	slog.Debug("collecting journal errors")

	since := c.rt.Since
	if since == "" {
		since = DefaultSince
	}
	out, err := c.rt.Sources.Runner.Run(ctx, "journalctl",
		"--priority", "warning",
		"--since", since,
		"--lines", strconv.Itoa(maxEntries),
		"--output", "json",
		"--no-pager", "--quiet")
	if err != nil {
		return report.Error(Key, Title, "journalctl failed: "+err.Error())
	}

	entries := []any{}
	byPriority := map[string]int{}
	malformed := 0
	truncated := false
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e journalEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			malformed++
			continue
		}
		if len(entries) >= maxEntries {
			truncated = true
			break
		}
		level := priorityNames[e.Priority]
		if level == "" {
			level = "unknown"
		}
		byPriority[level]++
		entries = append(entries, entryRow(e, level))
	}

	s := report.Ok(Key, Title, report.Body{
		"since":       since,
		"entries":     entries,
		"entry_count": len(entries),
		"by_priority": toAnyMap(byPriority),
	})
	if truncated {
		s.Note("output truncated at %d entries", maxEntries)
	}
	if malformed > 0 {
		s.Status = report.StatusDegraded
		s.Summary = "journal output partially unreadable"
		s.Note("%d journal line(s) were not valid JSON", malformed)
	}
	return s
}

func entryRow(e journalEntry, level string) report.Body {
	row := report.Body{
		"priority": level,
		"message":  e.Message,
	}
	source := e.Unit
	if source == "" {
		source = e.Ident
	}
	if source != "" {
		row["source"] = source
	}
	// __REALTIME_TIMESTAMP is microseconds since the epoch.
	if usec, err := strconv.ParseInt(e.Timestamp, 10, 64); err == nil {
		row["time"] = time.UnixMicro(usec).UTC().Format(time.RFC3339)
	}
	return row
}

func toAnyMap(in map[string]int) report.Body {
	out := report.Body{}
	for k, v := range in {
		out[k] = v
	}
	return out
}
