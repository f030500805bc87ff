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

package cron

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/report"
)

const (
	Key   = "cron"
	Title = "Scheduled Jobs"
)

var (
	systemCrontab = "/etc/crontab"
	cronDropInDir = "/etc/cron.d"
	userSpoolDirs = []string{
		"/var/spool/cron/crontabs",
		"/var/spool/cron",
	}
)

// Descriptor registers the collector.
func Descriptor() collector.Descriptor {
	return collector.Descriptor{
		Key:   Key,
		Title: Title,
		New:   func(rt *collector.Runtime) collector.Collector { return &Collector{rt: rt} },
	}
}

// Collector gathers cron entries from the system crontab, drop-in files, and
// per-user spools.
type Collector struct {
	rt *collector.Runtime
}

func (c *Collector) Collect(ctx context.Context) *report.Section {
	slog.Debug("collecting scheduled jobs")
	fs := c.rt.Sources.FS

	entries := []any{}
	sourcesRead := []any{}
	s := report.Ok(Key, Title, report.Body{})
	degradedCount := 0

	// System crontab carries a user column, spool files do not.
	if data, err := fs.ReadFile(ctx, systemCrontab); err == nil {
		entries = append(entries, parseCrontab(string(data), systemCrontab, true)...)
		sourcesRead = append(sourcesRead, systemCrontab)
	} else {
		s.Note("%s: %v", systemCrontab, err)
	}

	if names, err := fs.ReadDir(ctx, cronDropInDir); err == nil {
		for _, name := range names {
			path := cronDropInDir + "/" + name
			data, err := fs.ReadFile(ctx, path)
			if err != nil {
				degradedCount++
				s.Note("%s: %v", path, err)
				continue
			}
			entries = append(entries, parseCrontab(string(data), path, true)...)
			sourcesRead = append(sourcesRead, path)
		}
	}

	spoolRead := false
	for _, dir := range userSpoolDirs {
		names, err := fs.ReadDir(ctx, dir)
		if err != nil {
			continue
		}
		spoolRead = true
		for _, user := range names {
			path := dir + "/" + user
			data, err := fs.ReadFile(ctx, path)
			if err != nil {
				degradedCount++
				s.Note("%s: %v", path, err)
				continue
			}
			for _, e := range parseCrontab(string(data), path, false) {
				e.(report.Body)["user"] = user
				entries = append(entries, e)
			}
			sourcesRead = append(sourcesRead, path)
		}
		break
	}
	if !spoolRead {
		s.Note("no user crontab spool readable")
	}

	s.Body["entries"] = entries
	s.Body["entry_count"] = len(entries)
	s.Body["sources"] = sourcesRead

	if degradedCount > 0 {
		s.Status = report.StatusDegraded
		s.Summary = fmt.Sprintf("%d crontab file(s) unreadable", degradedCount)
	}
	if len(sourcesRead) == 0 && len(s.Notes) > 0 {
		return report.Error(Key, Title, "no crontab source is readable")
	}
	return s
}

// parseCrontab extracts schedule lines, skipping comments and environment
// assignments. withUser marks the sixth column as the run-as user.
func parseCrontab(content, source string, withUser bool) []any {
	var entries []any
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// KEY=value environment lines.
		if eq := strings.Index(line, "="); eq > 0 && !strings.ContainsAny(line[:eq], " \t*") {
			continue
		}

		entry := report.Body{"source": source}
		if strings.HasPrefix(line, "@") {
			fields := strings.Fields(line)
			min := 2
			if withUser {
				min = 3
			}
			if len(fields) < min {
				continue
			}
			entry["schedule"] = fields[0]
			rest := fields[1:]
			if withUser {
				entry["user"] = rest[0]
				rest = rest[1:]
			}
			entry["command"] = strings.Join(rest, " ")
		} else {
			fields := strings.Fields(line)
			min := 6
			if withUser {
				min = 7
			}
			if len(fields) < min {
				continue
			}
			entry["schedule"] = strings.Join(fields[:5], " ")
			rest := fields[5:]
			if withUser {
				entry["user"] = rest[0]
				rest = rest[1:]
			}
			entry["command"] = strings.Join(rest, " ")
		}
		entries = append(entries, entry)
	}
	return entries
}
