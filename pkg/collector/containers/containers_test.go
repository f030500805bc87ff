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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4erdenko/vmic/pkg/adapter"
	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/report"
)

const apiID = "3b6f1c0de9a4b5c6d7e8f90112233445566778899aabbccddeeff00112233445"

var listJSON = fmt.Sprintf(`[
  {"Id":%q,"Names":["/web"],"Image":"nginx","State":"running","Status":"Up 3 hours"},
  {"Id":"aaaabbbbccccdddd","Names":["/batch"],"Image":"registry.example.com/jobs/batch:v2","State":"exited","Status":"Exited (0) 2 days ago"}
]`, apiID)

func fixture() (*adapter.FakeFS, *adapter.FakeDaemon) {
	ffs := adapter.NewFakeFS()
	ffs.Files["/proc/42/comm"] = "nginx\n"
	ffs.Files["/proc/42/cgroup"] = "0::/system.slice/docker-" + apiID + ".scope\n"
	ffs.Links["/proc/42/fd/3"] = "socket:[555]"
	ffs.Files["/proc/43/comm"] = "nginx\n"
	ffs.Files["/proc/43/cgroup"] = "0::/system.slice/docker-" + apiID + ".scope\n"
	ffs.Links["/proc/43/fd/3"] = "socket:[556]"
	ffs.Files["/sys/fs/cgroup/system.slice/docker-"+apiID+".scope/memory.current"] = "98000000\n"
	ffs.Files["/sys/fs/cgroup/system.slice/docker-"+apiID+".scope/memory.max"] = "100000000\n"
	daemon := &adapter.FakeDaemon{Responses: map[string]string{"/containers/json?all=true": listJSON}}
	return ffs, daemon
}

func collect(t *testing.T, ffs *adapter.FakeFS, daemon *adapter.FakeDaemon) *report.Section {
	t.Helper()
	rt := collector.NewRuntime(&adapter.Sources{FS: ffs, Docker: daemon})
	return Descriptor().New(rt).Collect(context.Background())
}

func TestCollectJoinsContainers(t *testing.T) {
	ffs, daemon := fixture()
	s := collect(t, ffs, daemon)
	require.Equal(t, report.StatusOk, s.Status)

	rows := s.Body["containers"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, s.Body["container_count"])
	assert.Equal(t, 1, s.Body["running"])

	web := rows[0].(report.Body)
	assert.Equal(t, apiID[:12], web["id"])
	assert.Equal(t, "web", web["name"])
	assert.Equal(t, "nginx:latest", web["image"], "implicit tag is made explicit")
	assert.Equal(t, 2, web["processes"])
	assert.Equal(t, uint64(98000000), web["memory_usage_bytes"])
	assert.Equal(t, uint64(100000000), web["memory_limit_bytes"])

	batch := rows[1].(report.Body)
	assert.Equal(t, "batch", batch["name"])
	assert.Equal(t, "registry.example.com/jobs/batch:v2", batch["image"])
	assert.Equal(t, 0, batch["processes"])
	assert.NotContains(t, batch, "memory_usage_bytes", "stopped containers have no cgroup")
}

func TestCollectUnlimitedMemoryOmitsLimit(t *testing.T) {
	ffs, daemon := fixture()
	ffs.Files["/sys/fs/cgroup/system.slice/docker-"+apiID+".scope/memory.max"] = "max\n"

	s := collect(t, ffs, daemon)
	web := s.Body["containers"].([]any)[0].(report.Body)
	assert.Contains(t, web, "memory_usage_bytes")
	assert.NotContains(t, web, "memory_limit_bytes")
}

func TestCollectDetectsAlternativeRuntimes(t *testing.T) {
	ffs, daemon := fixture()
	runner := &adapter.FakeRunner{
		Paths: map[string]string{
			"podman": "/usr/bin/podman",
			"ctr":    "/usr/bin/ctr",
		},
		Outputs: map[string]string{
			"podman --version": "podman version 4.9.3\n",
			"ctr version":      "Client:\n  Version: v1.7.13\n",
		},
	}
	rt := collector.NewRuntime(&adapter.Sources{FS: ffs, Docker: daemon, Runner: runner})
	s := Descriptor().New(rt).Collect(context.Background())

	runtimes := s.Body["runtimes"].([]any)
	require.Len(t, runtimes, 2, "nerdctl is not on the PATH")
	podman := runtimes[0].(report.Body)
	assert.Equal(t, "podman", podman["name"])
	assert.Equal(t, "podman version 4.9.3", podman["version"])
	ctr := runtimes[1].(report.Body)
	assert.Equal(t, "ctr", ctr["name"])
	assert.Equal(t, "Client:", ctr["version"], "only the first line is kept")
}

func TestCollectNoRunnerListsNoRuntimes(t *testing.T) {
	ffs, daemon := fixture()
	s := collect(t, ffs, daemon)
	assert.Empty(t, s.Body["runtimes"])
}

func TestCollectErrorsWhenListFails(t *testing.T) {
	ffs, _ := fixture()
	s := collect(t, ffs, &adapter.FakeDaemon{Down: true})
	assert.Equal(t, report.StatusError, s.Status)
}

func TestCollectErrorsOnMalformedList(t *testing.T) {
	ffs, _ := fixture()
	daemon := &adapter.FakeDaemon{Responses: map[string]string{"/containers/json?all=true": "{"}}
	s := collect(t, ffs, daemon)
	assert.Equal(t, report.StatusError, s.Status)
}
