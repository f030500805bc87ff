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

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/report"
)

const (
	Key   = "storage"
	Title = "Storage Overview"
)

var mountsPath = "/proc/self/mounts"

// pseudoFilesystems never hold user data; their mounts are skipped.
var pseudoFilesystems = map[string]bool{
	"proc":        true,
	"sysfs":       true,
	"devtmpfs":    true,
	"devpts":      true,
	"tmpfs":       true,
	"cgroup":      true,
	"cgroup2":     true,
	"securityfs":  true,
	"pstore":      true,
	"bpf":         true,
	"debugfs":     true,
	"tracefs":     true,
	"fusectl":     true,
	"configfs":    true,
	"mqueue":      true,
	"hugetlbfs":   true,
	"binfmt_misc": true,
	"autofs":      true,
	"rpc_pipefs":  true,
	"nsfs":        true,
	"overlay":     true,
	"squashfs":    true,
}

// Descriptor registers the collector.
func Descriptor() collector.Descriptor {
	return collector.Descriptor{
		Key:   Key,
		Title: Title,
		New:   func(rt *collector.Runtime) collector.Collector { return &Collector{rt: rt} },
	}
}

// Collector reads the mount table and measures usage per real filesystem.
type Collector struct {
	rt *collector.Runtime
}

type mount struct {
	device string
	point  string
	fsType string
}

func (c *Collector) Collect(ctx context.Context) *report.Section {
	slog.Debug("collecting storage usage")

	data, err := c.rt.Sources.FS.ReadFile(ctx, mountsPath)
	if err != nil {
		return report.Error(Key, Title, "cannot read "+mountsPath+": "+err.Error())
	}
	mounts := parseMounts(string(data))

	rows := []any{}
	s := report.Ok(Key, Title, report.Body{})
	unreadable := 0
	for _, m := range mounts {
		usage, err := c.rt.Sources.Usage.Usage(ctx, m.point)
		if err != nil {
			unreadable++
			s.Note("statfs %s: %v", m.point, err)
			continue
		}
		rows = append(rows, report.Body{
			"device":            m.device,
			"mount_point":       m.point,
			"fs_type":           m.fsType,
			"total_bytes":       usage.TotalBytes,
			"used_bytes":        usage.UsedBytes,
			"available_bytes":   usage.AvailableBytes,
			"usage_ratio":       usage.UsageRatio(),
			"inode_usage_ratio": usage.InodeUsageRatio(),
		})
	}
	s.Body["mounts"] = rows
	s.Body["mount_count"] = len(rows)

	if unreadable > 0 {
		s.Status = report.StatusDegraded
		s.Summary = fmt.Sprintf("%d mount(s) unreadable", unreadable)
	}
	if len(rows) == 0 && unreadable > 0 {
		return report.Error(Key, Title, "no mount could be measured")
	}
	return s
}

// parseMounts keeps the first real-filesystem mount per mount point. The
// kernel lists mounts in order, so the first entry is the visible one for
// our purposes.
func parseMounts(content string) []mount {
	var mounts []mount
	seen := map[string]bool{}
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		m := mount{device: fields[0], point: unescapeMountPath(fields[1]), fsType: fields[2]}
		if pseudoFilesystems[m.fsType] || seen[m.point] {
			continue
		}
		seen[m.point] = true
		mounts = append(mounts, m)
	}
	return mounts
}

// unescapeMountPath reverses the kernel's octal escaping of whitespace in
// mount paths (a path like "/mnt/disk one" appears as /mnt/disk\040one).
func unescapeMountPath(path string) string {
	replacer := strings.NewReplacer(
		`\040`, " ",
		`\011`, "\t",
		`\012`, "\n",
		`\134`, `\`,
	)
	return replacer.Replace(path)
}
