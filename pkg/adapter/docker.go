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
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/4erdenko/vmic/pkg/defaults"
	"github.com/4erdenko/vmic/pkg/errors"
)

// DefaultDockerSocket is where dockerd listens on a stock install.
const DefaultDockerSocket = "/var/run/docker.sock"

// dockerClient talks to the daemon REST API over its unix socket. The stdlib
// transport is enough here: the surface is a handful of local GETs, and the
// official SDK would drag the full engine dependency tree into the module.
type dockerClient struct {
	socketPath string
	client     *http.Client
}

// NewDockerClient creates a DaemonClient against the given unix socket.
func NewDockerClient(socketPath string) DaemonClient {
	dialer := &net.Dialer{Timeout: defaults.DaemonDialTimeout}
	return &dockerClient{
		socketPath: socketPath,
		client: &http.Client{
			Timeout: defaults.DaemonRequestTimeout,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					return dialer.DialContext(ctx, "unix", socketPath)
				},
			},
		},
	}
}

func (c *dockerClient) Get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://docker"+endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformed, "invalid daemon endpoint "+endpoint, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, Classify(err, "docker daemon at "+c.socketPath)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(err, "docker daemon response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewWithContext(errors.ErrCodeUnavailable,
			fmt.Sprintf("docker daemon returned %d for %s", resp.StatusCode, endpoint),
			map[string]any{"status": resp.StatusCode, "endpoint": endpoint})
	}
	return body, nil
}

func (c *dockerClient) Available() bool {
	_, err := os.Stat(c.socketPath)
	return err == nil
}
