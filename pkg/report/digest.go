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

package report

// Severity ranks one digest finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// severityRank orders severities for max-aggregation.
var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityWarning:  1,
	SeverityCritical: 2,
}

// String returns the string representation of the Severity.
func (s Severity) String() string {
	return string(s)
}

// IsValid checks if the Severity is one of the recognized values.
func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// Rank returns the numeric rank of the severity, higher is worse.
func (s Severity) Rank() int {
	return severityRank[s]
}

// Max returns the worse of two severities.
func (s Severity) Max(other Severity) Severity {
	if other.Rank() > s.Rank() {
		return other
	}
	return s
}

// Finding is one digest entry: severity, message, originating section.
type Finding struct {
	Severity    Severity `json:"severity" yaml:"severity"`
	SourceKey   string   `json:"source_key,omitempty" yaml:"source_key,omitempty"`
	SourceTitle string   `json:"source_title" yaml:"source_title"`
	Message     string   `json:"message" yaml:"message"`
}

// Digest is the cross-section synthesized overall severity and its supporting
// findings, in literal evaluation order.
type Digest struct {
	Overall  Severity  `json:"overall" yaml:"overall"`
	Findings []Finding `json:"findings" yaml:"findings"`
}
