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
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"
)

// osFileSource reads the live host filesystem, optionally re-rooted.
type osFileSource struct {
	root string
}

// NewFileSource creates a FileSource over the host root.
func NewFileSource() FileSource {
	return &osFileSource{root: "/"}
}

// NewRootedFileSource creates a FileSource that resolves absolute paths under
// root. Used by tests that stage a fake /proc and /etc tree.
func NewRootedFileSource(root string) FileSource {
	return &osFileSource{root: root}
}

func (s *osFileSource) resolve(path string) string {
	if s.root == "/" || s.root == "" {
		return path
	}
	return filepath.Join(s.root, path)
}

func (s *osFileSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, Classify(err, path)
	}
	data, err := os.ReadFile(s.resolve(path))
	if err != nil {
		return nil, Classify(err, path)
	}
	return data, nil
}

func (s *osFileSource) ReadDir(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, Classify(err, path)
	}
	entries, err := os.ReadDir(s.resolve(path))
	if err != nil {
		return nil, Classify(err, path)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *osFileSource) Readlink(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", Classify(err, path)
	}
	target, err := os.Readlink(s.resolve(path))
	if err != nil {
		return "", Classify(err, path)
	}
	return target, nil
}

func (s *osFileSource) Exists(path string) bool {
	_, err := os.Lstat(s.resolve(path))
	return err == nil
}

// statfsSource measures filesystem usage via statfs(2).
type statfsSource struct{}

// NewStatfsSource creates the production UsageSource.
func NewStatfsSource() UsageSource {
	return statfsSource{}
}

func (statfsSource) Usage(ctx context.Context, mountPoint string) (FilesystemUsage, error) {
	if err := ctx.Err(); err != nil {
		return FilesystemUsage{}, Classify(err, mountPoint)
	}
	var st unix.Statfs_t
	if err := unix.Statfs(mountPoint, &st); err != nil {
		return FilesystemUsage{}, Classify(err, mountPoint)
	}
	bsize := uint64(st.Bsize)
	total := st.Blocks * bsize
	// Bavail is the unprivileged view; Bfree includes reserved blocks. Usage
	// follows df and counts reserved blocks as used.
	avail := st.Bavail * bsize
	free := st.Bfree * bsize
	used := uint64(0)
	if total > free {
		used = total - free
	}
	return FilesystemUsage{
		TotalBytes:     total,
		UsedBytes:      used,
		AvailableBytes: avail,
		TotalInodes:    st.Files,
		FreeInodes:     st.Ffree,
	}, nil
}
