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

package adapter

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4erdenko/vmic/pkg/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.ErrorCode
	}{
		{"not exist", fs.ErrNotExist, errors.ErrCodeNotFound},
		{"permission", fs.ErrPermission, errors.ErrCodePermissionDenied},
		{"deadline", context.DeadlineExceeded, errors.ErrCodeTimeout},
		{"canceled", context.Canceled, errors.ErrCodeTimeout},
		{"other", assert.AnError, errors.ErrCodeUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, "/proc/meminfo")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Code)
			assert.Contains(t, got.Message, "/proc/meminfo")
		})
	}
	assert.Nil(t, Classify(nil, "x"))
}

func TestRootedFileSource(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "proc/42"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "proc/42/comm"), []byte("nginx\n"), 0o644))
	require.NoError(t, os.Symlink("/usr/sbin/nginx", filepath.Join(root, "proc/42/exe")))

	src := NewRootedFileSource(root)
	ctx := context.Background()

	data, err := src.ReadFile(ctx, "/proc/42/comm")
	require.NoError(t, err)
	assert.Equal(t, "nginx\n", string(data))

	names, err := src.ReadDir(ctx, "/proc/42")
	require.NoError(t, err)
	assert.Equal(t, []string{"comm", "exe"}, names)

	target, err := src.Readlink(ctx, "/proc/42/exe")
	require.NoError(t, err)
	assert.Equal(t, "/usr/sbin/nginx", target)

	assert.True(t, src.Exists("/proc/42"))
	assert.False(t, src.Exists("/proc/43"))

	_, err = src.ReadFile(ctx, "/proc/43/comm")
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestFileSourceHonorsCanceledContext(t *testing.T) {
	src := NewRootedFileSource(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.ReadFile(ctx, "/etc/passwd")
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
}

func TestFakeFSReadDir(t *testing.T) {
	ffs := NewFakeFS()
	ffs.Files["/proc/1/comm"] = "systemd"
	ffs.Files["/proc/207/comm"] = "sshd"
	ffs.Files["/proc/meminfo"] = "MemTotal: 1 kB"
	ffs.Links["/proc/1/fd/3"] = "socket:[111]"

	names, err := ffs.ReadDir(context.Background(), "/proc")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "207", "meminfo"}, names)

	fds, err := ffs.ReadDir(context.Background(), "/proc/1/fd")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, fds)

	_, err = ffs.ReadDir(context.Background(), "/sys")
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestFakeRunnerBlocksUntilDeadline(t *testing.T) {
	r := &FakeRunner{Block: true}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Run(ctx, "sar", "-u")
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	assert.Equal(t, []string{"sar -u"}, r.Calls)
}

func TestFilesystemUsageRatios(t *testing.T) {
	u := FilesystemUsage{TotalBytes: 1000, UsedBytes: 420, AvailableBytes: 580, TotalInodes: 100, FreeInodes: 75}
	assert.InDelta(t, 0.42, u.UsageRatio(), 1e-9)
	assert.InDelta(t, 0.25, u.InodeUsageRatio(), 1e-9)

	var empty FilesystemUsage
	assert.Zero(t, empty.UsageRatio())
	assert.Zero(t, empty.InodeUsageRatio())
}

func TestFakeDaemon(t *testing.T) {
	d := &FakeDaemon{Responses: map[string]string{"/version": `{"Version":"24.0.7"}`}}
	body, err := d.Get(context.Background(), "/version")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Version":"24.0.7"}`, string(body))
	assert.True(t, d.Available())

	d.Down = true
	_, err = d.Get(context.Background(), "/version")
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable))
	assert.False(t, d.Available())
}
