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

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4erdenko/vmic/pkg/adapter"
	"github.com/4erdenko/vmic/pkg/config"
	"github.com/4erdenko/vmic/pkg/errors"
	"github.com/4erdenko/vmic/pkg/report"
)

// fakeSources stages enough of a host that the always-on collectors succeed.
func fakeSources() *adapter.Sources {
	ffs := adapter.NewFakeFS()
	ffs.Files["/proc/sys/kernel/ostype"] = "Linux\n"
	ffs.Files["/proc/sys/kernel/osrelease"] = "6.1.0-13-amd64\n"
	ffs.Files["/proc/sys/kernel/version"] = "#1 SMP\n"
	ffs.Files["/proc/sys/kernel/hostname"] = "node-1\n"
	ffs.Files["/etc/os-release"] = "ID=debian\n"
	ffs.Files["/proc/meminfo"] = "MemTotal: 1000 kB\nMemAvailable: 500 kB\n"
	ffs.Files["/proc/loadavg"] = "0.1 0.2 0.3 1/100 200\n"
	ffs.Files["/proc/self/mounts"] = "/dev/sda1 / ext4 rw 0 0\n"
	ffs.Files["/proc/net/tcp"] = "  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode\n"
	ffs.Files["/proc/net/tcp6"] = "  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode\n"
	ffs.Files["/proc/net/udp"] = "  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode\n"
	ffs.Files["/proc/net/udp6"] = "  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode\n"
	ffs.Files["/etc/passwd"] = "root:x:0:0:root:/root:/bin/bash\n"
	ffs.Files["/etc/crontab"] = "0 3 * * * root /usr/sbin/logrotate\n"
	ffs.Files["/etc/sudoers"] = "root ALL=(ALL:ALL) ALL\n"
	usage := &adapter.FakeUsage{Mounts: map[string]adapter.FilesystemUsage{
		"/": {TotalBytes: 1000, UsedBytes: 100, AvailableBytes: 900, TotalInodes: 10, FreeInodes: 9},
	}}
	return &adapter.Sources{
		FS:      ffs,
		Usage:   usage,
		Runner:  &adapter.FakeRunner{},
		Docker:  &adapter.FakeDaemon{Down: true},
		Systemd: &adapter.FakeUnits{Units: []adapter.UnitStatus{{Name: "sshd.service", ActiveState: "active", SubState: "running"}}},
	}
}

func TestRunReportWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	cfg, err := config.Resolve(config.Inputs{Output: path})
	require.NoError(t, err)

	require.NoError(t, runReport(context.Background(), cfg, fakeSources()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rep, err := report.Decode(data)
	require.NoError(t, err)

	// docker, containers, journal, and sar are unsupported on the fake host.
	keys := []string{}
	for _, s := range rep.Sections {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{"os", "proc", "storage", "network", "services", "users", "cron", "security"}, keys)
	assert.Equal(t, len(rep.Sections), rep.Metadata.Sections)
}

func TestRunReportSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	cfg, err := config.Resolve(config.Inputs{Output: path, Enable: []string{"os", "storage"}})
	require.NoError(t, err)

	require.NoError(t, runReport(context.Background(), cfg, fakeSources()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rep, err := report.Decode(data)
	require.NoError(t, err)
	require.Len(t, rep.Sections, 2)
	assert.Equal(t, "os", rep.Sections[0].Key)
	assert.Equal(t, "storage", rep.Sections[1].Key)
}

func TestRunReportUnknownCollectorIsFatal(t *testing.T) {
	cfg, err := config.Resolve(config.Inputs{Enable: []string{"bogus"}})
	require.NoError(t, err)

	err = runReport(context.Background(), cfg, fakeSources())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := rootCmd()
	cmd.Writer = &buf

	require.NoError(t, cmd.Run(context.Background(), []string{"vmic", "version"}))
	assert.Contains(t, buf.String(), "vmic")
	assert.Contains(t, buf.String(), version)
}

func TestReportCommandRejectsBadFormat(t *testing.T) {
	cmd := rootCmd()
	cmd.Writer = &bytes.Buffer{}
	err := cmd.Run(context.Background(), []string{"vmic", "report", "--format", "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
