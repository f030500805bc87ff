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

package reporter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	collectorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vmic",
		Name:      "collector_duration_seconds",
		Help:      "Wall time of one collector run.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"collector", "status"})

	collectorTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vmic",
		Name:      "collector_timeouts_total",
		Help:      "Collectors abandoned at their deadline.",
	}, []string{"collector"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vmic",
		Name:      "run_duration_seconds",
		Help:      "Wall time of one full report run.",
		Buckets:   prometheus.DefBuckets,
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vmic",
		Name:      "runs_total",
		Help:      "Completed report runs by overall severity.",
	}, []string{"severity"})
)
