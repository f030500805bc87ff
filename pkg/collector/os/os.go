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

package os

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/report"
)

const (
	Key   = "os"
	Title = "Operating System"
)

var (
	releasePrimary  = "/etc/os-release"
	releaseFallback = "/usr/lib/os-release"

	kernelFiles = map[string]string{
		"ostype":   "/proc/sys/kernel/ostype",
		"release":  "/proc/sys/kernel/osrelease",
		"version":  "/proc/sys/kernel/version",
		"hostname": "/proc/sys/kernel/hostname",
		"machine":  "/proc/sys/kernel/arch",
	}
)

// Descriptor registers the collector. The kernel identity files exist on any
// Linux host, so there is no precondition.
func Descriptor() collector.Descriptor {
	return collector.Descriptor{
		Key:   Key,
		Title: Title,
		New:   func(rt *collector.Runtime) collector.Collector { return &Collector{rt: rt} },
	}
}

// Collector gathers host identity: kernel identity from /proc/sys/kernel,
// distribution fields from os-release, boot cmdline, and uptime.
type Collector struct {
	rt *collector.Runtime
}

func (c *Collector) Collect(ctx context.Context) *report.Section {
	slog.Debug("collecting operating system identity")
	fs := c.rt.Sources.FS

	kernel := report.Body{}
	missing := 0
	for field, path := range kernelFiles {
		data, err := fs.ReadFile(ctx, path)
		if err != nil {
			// arch appeared in 6.1; its absence is not a failure.
			if field == "machine" {
				continue
			}
			missing++
			continue
		}
		kernel[field] = strings.TrimSpace(string(data))
	}
	if missing == len(kernelFiles)-1 {
		return report.Error(Key, Title, "/proc/sys/kernel is unreadable")
	}

	body := report.Body{"kernel": kernel}
	s := report.Ok(Key, Title, body)

	release, err := c.readRelease(ctx)
	if err != nil {
		s.Status = report.StatusDegraded
		s.Summary = "os-release unavailable"
		s.Note("os-release: %v", err)
		body["release"] = report.Body{}
	} else {
		body["release"] = release
	}

	if data, err := fs.ReadFile(ctx, "/proc/cmdline"); err == nil {
		body["boot_cmdline"] = strings.TrimSpace(string(data))
	} else {
		body["boot_cmdline"] = "unknown"
	}

	if data, err := fs.ReadFile(ctx, "/proc/uptime"); err == nil {
		fields := strings.Fields(string(data))
		if len(fields) > 0 {
			if up, perr := strconv.ParseFloat(fields[0], 64); perr == nil {
				body["uptime_seconds"] = up
			}
		}
	}

	if data, err := fs.ReadFile(ctx, "/etc/machine-id"); err == nil {
		body["machine_id"] = strings.TrimSpace(string(data))
	}

	return s
}

// readRelease parses os-release key=value pairs, trying the primary location
// first per the freedesktop.org spec.
func (c *Collector) readRelease(ctx context.Context) (report.Body, error) {
	fs := c.rt.Sources.FS
	data, err := fs.ReadFile(ctx, releasePrimary)
	if err != nil {
		data, err = fs.ReadFile(ctx, releaseFallback)
		if err != nil {
			return nil, err
		}
	}

	fields := report.Body{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found || key == "" {
			continue
		}
		fields[key] = strings.Trim(value, `"'`)
	}
	return fields, nil
}
