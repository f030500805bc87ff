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
	"sort"
	"strings"

	"github.com/4erdenko/vmic/pkg/errors"
)

// The fake sources below back collector tests. They live in the package
// rather than a _test file so every collector package can share them.

// FakeFS is an in-memory FileSource. Files maps absolute paths to content,
// Links maps symlink paths to targets, Errors injects a failure for a path.
type FakeFS struct {
	Files  map[string]string
	Links  map[string]string
	Errors map[string]error
}

// NewFakeFS creates an empty FakeFS.
func NewFakeFS() *FakeFS {
	return &FakeFS{
		Files:  map[string]string{},
		Links:  map[string]string{},
		Errors: map[string]error{},
	}
}

func (f *FakeFS) ReadFile(_ context.Context, path string) ([]byte, error) {
	if err, ok := f.Errors[path]; ok {
		return nil, err
	}
	if content, ok := f.Files[path]; ok {
		return []byte(content), nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, path+" not found")
}

func (f *FakeFS) ReadDir(_ context.Context, path string) ([]string, error) {
	if err, ok := f.Errors[path]; ok {
		return nil, err
	}
	prefix := strings.TrimSuffix(path, "/") + "/"
	seen := map[string]bool{}
	collect := func(p string) {
		if !strings.HasPrefix(p, prefix) {
			return
		}
		rest := strings.TrimPrefix(p, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			rest = rest[:i]
		}
		if rest != "" {
			seen[rest] = true
		}
	}
	for p := range f.Files {
		collect(p)
	}
	for p := range f.Links {
		collect(p)
	}
	if len(seen) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, path+" not found")
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (f *FakeFS) Readlink(_ context.Context, path string) (string, error) {
	if err, ok := f.Errors[path]; ok {
		return "", err
	}
	if target, ok := f.Links[path]; ok {
		return target, nil
	}
	return "", errors.New(errors.ErrCodeNotFound, path+" not found")
}

func (f *FakeFS) Exists(path string) bool {
	if _, ok := f.Files[path]; ok {
		return true
	}
	if _, ok := f.Links[path]; ok {
		return true
	}
	prefix := strings.TrimSuffix(path, "/") + "/"
	for p := range f.Files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	for p := range f.Links {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// FakeUsage is an in-memory UsageSource keyed by mount point.
type FakeUsage struct {
	Mounts map[string]FilesystemUsage
	Errors map[string]error
}

func (f *FakeUsage) Usage(_ context.Context, mountPoint string) (FilesystemUsage, error) {
	if err, ok := f.Errors[mountPoint]; ok {
		return FilesystemUsage{}, err
	}
	if u, ok := f.Mounts[mountPoint]; ok {
		return u, nil
	}
	return FilesystemUsage{}, errors.New(errors.ErrCodeNotFound, mountPoint+" not mounted")
}

// FakeRunner is an in-memory CommandRunner. Outputs are keyed by the full
// command line joined with spaces. Block, when set, makes Run wait for the
// context to expire, simulating a hung binary.
type FakeRunner struct {
	Outputs map[string]string
	Errors  map[string]error
	Paths   map[string]string
	Block   bool
	Calls   []string
}

func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.Calls = append(f.Calls, line)
	if f.Block {
		<-ctx.Done()
		return nil, Classify(ctx.Err(), line)
	}
	if err, ok := f.Errors[line]; ok {
		return nil, err
	}
	if out, ok := f.Outputs[line]; ok {
		return []byte(out), nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, name+" not found")
}

func (f *FakeRunner) LookPath(name string) (string, error) {
	if path, ok := f.Paths[name]; ok {
		return path, nil
	}
	return "", errors.New(errors.ErrCodeNotFound, name+" not found")
}

// FakeDaemon is an in-memory DaemonClient keyed by endpoint.
type FakeDaemon struct {
	Responses map[string]string
	Errors    map[string]error
	Down      bool
}

func (f *FakeDaemon) Get(_ context.Context, endpoint string) ([]byte, error) {
	if f.Down {
		return nil, errors.New(errors.ErrCodeUnavailable, "docker daemon unavailable")
	}
	if err, ok := f.Errors[endpoint]; ok {
		return nil, err
	}
	if body, ok := f.Responses[endpoint]; ok {
		return []byte(body), nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no handler for "+endpoint)
}

func (f *FakeDaemon) Available() bool {
	return !f.Down
}

// FakeUnits is an in-memory UnitSource.
type FakeUnits struct {
	Units []UnitStatus
	Err   error
}

func (f *FakeUnits) ListUnits(_ context.Context) ([]UnitStatus, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Units, nil
}
