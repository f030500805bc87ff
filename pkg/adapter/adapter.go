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
	stderrors "errors"
	"io/fs"
	"os"
	"os/exec"

	"github.com/4erdenko/vmic/pkg/errors"
)

// FileSource reads host files and directories. Paths are absolute host paths;
// implementations may re-root them for testing.
type FileSource interface {
	// ReadFile returns the raw content of one file.
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// ReadDir returns the sorted entry names of one directory.
	ReadDir(ctx context.Context, path string) ([]string, error)
	// Readlink resolves one symbolic link.
	Readlink(ctx context.Context, path string) (string, error)
	// Exists is a cheap existence probe used by enablement predicates.
	Exists(path string) bool
}

// FilesystemUsage is the statfs view of one mounted filesystem.
type FilesystemUsage struct {
	TotalBytes     uint64
	UsedBytes      uint64
	AvailableBytes uint64
	TotalInodes    uint64
	FreeInodes     uint64
}

// UsageRatio returns used/total, or 0 for an empty filesystem.
func (u FilesystemUsage) UsageRatio() float64 {
	if u.TotalBytes == 0 {
		return 0
	}
	return float64(u.UsedBytes) / float64(u.TotalBytes)
}

// InodeUsageRatio returns the fraction of inodes in use.
func (u FilesystemUsage) InodeUsageRatio() float64 {
	if u.TotalInodes == 0 {
		return 0
	}
	return float64(u.TotalInodes-u.FreeInodes) / float64(u.TotalInodes)
}

// UsageSource reports filesystem usage for a mount point.
type UsageSource interface {
	Usage(ctx context.Context, mountPoint string) (FilesystemUsage, error)
}

// CommandRunner executes one external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// LookPath reports where a binary resolves, for enablement probes.
	LookPath(name string) (string, error)
}

// DaemonClient queries a local container daemon API over its unix socket.
type DaemonClient interface {
	// Get performs one GET against an API endpoint such as /version.
	Get(ctx context.Context, endpoint string) ([]byte, error)
	// Available is a cheap probe for the daemon socket.
	Available() bool
}

// UnitStatus is one systemd unit as reported by the service manager.
type UnitStatus struct {
	Name        string
	Description string
	LoadState   string
	ActiveState string
	SubState    string
}

// UnitSource lists systemd units via the service manager API.
type UnitSource interface {
	ListUnits(ctx context.Context) ([]UnitStatus, error)
}

// Sources bundles every data-source handle a collector may receive. Handles
// are read-only and safe for concurrent use.
type Sources struct {
	FS      FileSource
	Usage   UsageSource
	Runner  CommandRunner
	Docker  DaemonClient
	Systemd UnitSource
}

// NewHostSources wires the production adapters against the live host.
func NewHostSources() *Sources {
	return &Sources{
		FS:      NewFileSource(),
		Usage:   NewStatfsSource(),
		Runner:  NewExecRunner(),
		Docker:  NewDockerClient(DefaultDockerSocket),
		Systemd: NewSystemdSource(),
	}
}

// Classify maps a raw OS-level failure to the adapter error taxonomy. The
// resource name lands in the message so notes stay self-explanatory.
func Classify(err error, resource string) *errors.StructuredError {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, fs.ErrNotExist) || stderrors.Is(err, exec.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, resource+" not found", err)
	case stderrors.Is(err, fs.ErrPermission) || stderrors.Is(err, os.ErrPermission):
		return errors.Wrap(errors.ErrCodePermissionDenied, "permission denied reading "+resource, err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, resource+" query timed out", err)
	case stderrors.Is(err, context.Canceled):
		return errors.Wrap(errors.ErrCodeTimeout, resource+" query canceled", err)
	default:
		return errors.Wrap(errors.ErrCodeUnavailable, resource+" unavailable", err)
	}
}
