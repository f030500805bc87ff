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
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"strings"

	"github.com/4erdenko/vmic/pkg/defaults"
	"github.com/4erdenko/vmic/pkg/errors"
)

// execRunner shells out to host binaries with a per-command timeout.
type execRunner struct{}

// NewExecRunner creates the production CommandRunner. Each Run is bounded by
// defaults.CommandTimeout in addition to the caller's context.
func NewExecRunner() CommandRunner {
	return &execRunner{}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	label := name
	if len(args) > 0 {
		label = name + " " + strings.Join(args, " ")
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, Classify(ctxErr, label)
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = exitErr.String()
		}
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, label+" failed", err,
			map[string]any{"exit_code": exitErr.ExitCode(), "stderr": msg})
	}
	return nil, Classify(err, label)
}

func (r *execRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", Classify(err, name)
	}
	return path, nil
}
