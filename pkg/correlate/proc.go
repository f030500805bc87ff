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

package correlate

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/4erdenko/vmic/pkg/adapter"
)

// ProcessInfo is the per-process slice of the index.
type ProcessInfo struct {
	PID        int
	Comm       string
	CgroupPath string
	Container  *ContainerRef
}

// ProcessIndex joins socket inodes to processes and processes to containers.
// Build it once per run and share it across collectors; it is immutable after
// construction.
type ProcessIndex struct {
	byPID   map[int]*ProcessInfo
	byInode map[uint64]int
	// SkippedPIDs counts processes whose fd table was unreadable, typically
	// an unprivileged run. The owning section reports it as a note.
	SkippedPIDs int
}

// BuildProcessIndex scans /proc once. Per-process failures (races with
// process exit, permission denials) skip that process and never fail the
// scan; only an unreadable /proc itself is an error.
func BuildProcessIndex(ctx context.Context, fs adapter.FileSource, matchers []ContainerMatcher) (*ProcessIndex, error) {
	entries, err := fs.ReadDir(ctx, "/proc")
	if err != nil {
		return nil, err
	}

	idx := &ProcessIndex{
		byPID:   map[int]*ProcessInfo{},
		byInode: map[uint64]int{},
	}

	pids := make([]int, 0, len(entries))
	for _, name := range entries {
		pid, err := strconv.Atoi(name)
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	// Ascending scan order makes the lowest-PID tie-break fall out of the
	// first-writer-wins inode map below.
	sort.Ints(pids)

	for _, pid := range pids {
		info := &ProcessInfo{PID: pid, Comm: "unknown"}
		base := fmt.Sprintf("/proc/%d", pid)

		if data, err := fs.ReadFile(ctx, base+"/comm"); err == nil {
			if comm := strings.TrimSpace(string(data)); comm != "" {
				info.Comm = comm
			}
		}
		if data, err := fs.ReadFile(ctx, base+"/cgroup"); err == nil {
			info.CgroupPath = ParseCgroupPath(string(data))
			if ref, ok := ResolveContainer(info.CgroupPath, matchers); ok {
				info.Container = &ref
			}
		}

		fds, err := fs.ReadDir(ctx, base+"/fd")
		if err != nil {
			idx.SkippedPIDs++
			idx.byPID[pid] = info
			continue
		}
		for _, fd := range fds {
			target, err := fs.Readlink(ctx, base+"/fd/"+fd)
			if err != nil {
				continue
			}
			inode, ok := socketInode(target)
			if !ok {
				continue
			}
			if _, claimed := idx.byInode[inode]; !claimed {
				idx.byInode[inode] = pid
			}
		}
		idx.byPID[pid] = info
	}
	return idx, nil
}

// socketInode extracts N from a "socket:[N]" fd link target.
func socketInode(target string) (uint64, bool) {
	rest, found := strings.CutPrefix(target, "socket:[")
	if !found {
		return 0, false
	}
	rest, found = strings.CutSuffix(rest, "]")
	if !found {
		return 0, false
	}
	inode, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return inode, true
}

// OwnerOf returns the lowest-PID process holding the socket inode, or nil.
func (idx *ProcessIndex) OwnerOf(inode uint64) *ProcessInfo {
	pid, ok := idx.byInode[inode]
	if !ok {
		return nil
	}
	return idx.byPID[pid]
}

// Process returns the indexed info for one PID, or nil.
func (idx *ProcessIndex) Process(pid int) *ProcessInfo {
	return idx.byPID[pid]
}

// Processes returns every indexed process in ascending PID order.
func (idx *ProcessIndex) Processes() []*ProcessInfo {
	pids := make([]int, 0, len(idx.byPID))
	for pid := range idx.byPID {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	out := make([]*ProcessInfo, 0, len(pids))
	for _, pid := range pids {
		out = append(out, idx.byPID[pid])
	}
	return out
}

// Containerized returns the processes that resolved to a container.
func (idx *ProcessIndex) Containerized() []*ProcessInfo {
	var out []*ProcessInfo
	for _, p := range idx.Processes() {
		if p.Container != nil {
			out = append(out, p)
		}
	}
	return out
}
