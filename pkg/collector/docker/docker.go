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

package docker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/report"
)

const (
	Key   = "docker"
	Title = "Docker Daemon"
)

// Descriptor registers the collector. Hosts without the daemon socket skip
// the section.
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

// versionResponse is the subset of GET /version the section reports.
type versionResponse struct {
	Version       string `json:"Version"`
	APIVersion    string `json:"ApiVersion"`
	MinAPIVersion string `json:"MinAPIVersion"`
	GoVersion     string `json:"GoVersion"`
	Os            string `json:"Os"`
	Arch          string `json:"Arch"`
	KernelVersion string `json:"KernelVersion"`
}

// infoResponse is the subset of GET /info the section reports.
type infoResponse struct {
	Containers        int    `json:"Containers"`
	ContainersRunning int    `json:"ContainersRunning"`
	ContainersPaused  int    `json:"ContainersPaused"`
	ContainersStopped int    `json:"ContainersStopped"`
	Images            int    `json:"Images"`
	Driver            string `json:"Driver"`
	LoggingDriver     string `json:"LoggingDriver"`
	CgroupDriver      string `json:"CgroupDriver"`
	CgroupVersion     string `json:"CgroupVersion"`
	ServerVersion     string `json:"ServerVersion"`
	LiveRestore       bool   `json:"LiveRestoreEnabled"`
}

// Collector reports daemon identity and container population from the
// engine API.
type Collector struct {
	rt *collector.Runtime
}

func (c *Collector) Collect(ctx context.Context) *report.Section {
	slog.Debug("collecting docker daemon state")
	daemon := c.rt.Sources.Docker

	raw, err := daemon.Get(ctx, "/version")
	if err != nil {
		return report.Error(Key, Title, "docker daemon unreachable: "+err.Error())
	}
	var version versionResponse
	if err := json.Unmarshal(raw, &version); err != nil {
		return report.Error(Key, Title, "docker /version response is malformed: "+err.Error())
	}

	body := report.Body{
		"version":        version.Version,
		"api_version":    version.APIVersion,
		"go_version":     version.GoVersion,
		"os":             version.Os,
		"arch":           version.Arch,
		"kernel_version": version.KernelVersion,
	}
	s := report.Ok(Key, Title, body)

	raw, err = daemon.Get(ctx, "/info")
	if err != nil {
		s.Status = report.StatusDegraded
		s.Summary = "daemon info unavailable"
		s.Note("docker /info: %v", err)
		return s
	}
	var info infoResponse
	if err := json.Unmarshal(raw, &info); err != nil {
		s.Status = report.StatusDegraded
		s.Summary = "daemon info unavailable"
		s.Note("docker /info response is malformed: %v", err)
		return s
	}

	body["containers"] = report.Body{
		"total":   info.Containers,
		"running": info.ContainersRunning,
		"paused":  info.ContainersPaused,
		"stopped": info.ContainersStopped,
	}
	body["images"] = info.Images
	body["storage_driver"] = info.Driver
	body["logging_driver"] = info.LoggingDriver
	body["cgroup_driver"] = info.CgroupDriver
	body["cgroup_version"] = info.CgroupVersion
	body["live_restore"] = info.LiveRestore

	if !info.LiveRestore {
		s.Note("live-restore is disabled, daemon restarts stop containers")
	}
	return s
}
