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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4erdenko/vmic/pkg/defaults"
	"github.com/4erdenko/vmic/pkg/digest"
	"github.com/4erdenko/vmic/pkg/errors"
	"github.com/4erdenko/vmic/pkg/serializer"
)

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(Inputs{})
	require.NoError(t, err)

	assert.Equal(t, serializer.FormatJSON, cfg.Format)
	assert.Empty(t, cfg.Output)
	assert.Equal(t, defaults.ReportTimeout, cfg.Timeout)
	assert.Equal(t, defaults.CollectorTimeout, cfg.CollectorTimeout)
	assert.Equal(t, digest.DefaultThresholds(), cfg.Thresholds)
	assert.Empty(t, cfg.Selection.Enable)
}

func TestResolveExplicitValues(t *testing.T) {
	cfg, err := Resolve(Inputs{
		Format:           "yaml",
		Output:           "/tmp/report.yaml",
		Since:            "-2h",
		DiskWarning:      "80",
		DiskCritical:     "90",
		Enable:           []string{"os", "storage"},
		Timeout:          time.Minute,
		CollectorTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, serializer.FormatYAML, cfg.Format)
	assert.InDelta(t, 0.80, cfg.Thresholds.DiskWarning, 1e-9)
	assert.InDelta(t, 0.90, cfg.Thresholds.DiskCritical, 1e-9)
	assert.Equal(t, []string{"os", "storage"}, cfg.Selection.Enable)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestResolveRejectsUnknownFormat(t *testing.T) {
	_, err := Resolve(Inputs{Format: "xml"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
	assert.True(t, errors.IsFatal(err))
}

func TestResolveRejectsBadThresholds(t *testing.T) {
	_, err := Resolve(Inputs{DiskWarning: "96", DiskCritical: "90"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}

func TestResolveRejectsInvertedTimeouts(t *testing.T) {
	_, err := Resolve(Inputs{Timeout: time.Second, CollectorTimeout: time.Minute})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}
