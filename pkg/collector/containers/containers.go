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

package containers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/distribution/reference"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/report"
)

const (
	Key   = "containers"
	Title = "Containers and Cgroups"
)

var cgroupRoots = []string{
	"/sys/fs/cgroup/system.slice/docker-%s.scope",
	"/sys/fs/cgroup/docker/%s",
}

// Descriptor registers the collector. Like the daemon section it needs the
// docker socket.
func Descriptor() collector.Descriptor {
	return collector.Descriptor{
		Key:   Key,
		Title: Title,
		Supported: func(rt *collector.Runtime) bool {
			return rt.Sources.Docker != nil && rt.Sources.Docker.Available()
		},
		New: func(rt *collector.Runtime) collector.Collector { return &Collector{rt: rt} },
	}
}

// containerSummary is the subset of GET /containers/json the section uses.
type containerSummary struct {
	ID     string   `json:"Id"`
	Names  []string `json:"Names"`
	Image  string   `json:"Image"`
	State  string   `json:"State"`
	Status string   `json:"Status"`
}

// Collector lists containers from the engine API, joins them with the
// process index, and reads memory pressure from their cgroups.
type Collector struct {
	rt *collector.Runtime
}

func (c *Collector) Collect(ctx context.Context) *report.Section {
	slog.Debug("collecting containers and cgroups")

	raw, err := c.rt.Sources.Docker.Get(ctx, "/containers/json?all=true")
	if err != nil {
		return report.Error(Key, Title, "cannot list containers: "+err.Error())
	}
	var summaries []containerSummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return report.Error(Key, Title, "container list response is malformed: "+err.Error())
	}

	s := report.Ok(Key, Title, report.Body{})

	// Process counts per container come from the shared index; a failed scan
	// degrades the join but keeps the container list.
	processCounts := map[string]int{}
	idx, idxErr := c.rt.ProcessIndex(ctx)
	if idxErr != nil {
		s.Status = report.StatusDegraded
		s.Summary = "process join unavailable"
		s.Note("process scan: %v", idxErr)
	} else {
		for _, p := range idx.Containerized() {
			processCounts[p.Container.ShortID()]++
		}
	}

	rows := []any{}
	running := 0
	for _, cs := range summaries {
		if cs.State == "running" {
			running++
		}
		row := report.Body{
			"id":     shortID(cs.ID),
			"name":   primaryName(cs.Names),
			"image":  normalizeImage(cs.Image),
			"state":  cs.State,
			"status": cs.Status,
		}
		if idxErr == nil {
			row["processes"] = processCounts[shortID(cs.ID)]
		}
		c.addMemory(ctx, cs, row)
		rows = append(rows, row)
	}
	s.Body["containers"] = rows
	s.Body["container_count"] = len(rows)
	s.Body["running"] = running
	s.Body["runtimes"] = c.detectRuntimes(ctx)
	return s
}

// runtimeProbes are version commands for container runtimes beyond dockerd.
var runtimeProbes = []struct {
	name string
	args []string
}{
	{"podman", []string{"--version"}},
	{"nerdctl", []string{"--version"}},
	{"ctr", []string{"version"}},
}

// detectRuntimes probes for alternative container runtimes on the PATH. A
// runtime that is absent or fails its version command is simply not listed.
func (c *Collector) detectRuntimes(ctx context.Context) []any {
	runtimes := []any{}
	runner := c.rt.Sources.Runner
	if runner == nil {
		return runtimes
	}
	for _, probe := range runtimeProbes {
		if _, err := runner.LookPath(probe.name); err != nil {
			continue
		}
		out, err := runner.Run(ctx, probe.name, probe.args...)
		if err != nil {
			continue
		}
		version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
		runtimes = append(runtimes, report.Body{
			"name":    probe.name,
			"version": strings.TrimSpace(version),
		})
	}
	return runtimes
}

// addMemory reads memory.current and memory.max from the container's cgroup.
// Missing files are normal for stopped containers or cgroup v1 hosts.
func (c *Collector) addMemory(ctx context.Context, cs containerSummary, row report.Body) {
	if cs.State != "running" {
		return
	}
	fs := c.rt.Sources.FS
	for _, pattern := range cgroupRoots {
		root := strings.Replace(pattern, "%s", cs.ID, 1)
		usageRaw, err := fs.ReadFile(ctx, root+"/memory.current")
		if err != nil {
			continue
		}
		usage, err := strconv.ParseUint(strings.TrimSpace(string(usageRaw)), 10, 64)
		if err != nil {
			continue
		}
		row["memory_usage_bytes"] = usage

		limitRaw, err := fs.ReadFile(ctx, root+"/memory.max")
		if err == nil {
			limit := strings.TrimSpace(string(limitRaw))
			if limit != "max" {
				if v, err := strconv.ParseUint(limit, 10, 64); err == nil {
					row["memory_limit_bytes"] = v
				}
			}
		}
		return
	}
}

// normalizeImage renders the image reference in its familiar form, resolving
// implicit registry and tag. Unparseable references pass through untouched.
func normalizeImage(image string) string {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return image
	}
	return reference.FamiliarString(reference.TagNameOnly(named))
}

func primaryName(names []string) string {
	if len(names) == 0 {
		return "unknown"
	}
	return strings.TrimPrefix(names[0], "/")
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
