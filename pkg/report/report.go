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

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status describes how completely a collector obtained its data.
type Status string

const (
	// StatusOk means all expected data was obtained.
	StatusOk Status = "ok"
	// StatusDegraded means an optional sub-query failed but the section
	// remains materially useful.
	StatusDegraded Status = "degraded"
	// StatusError means the primary data source was entirely inaccessible.
	StatusError Status = "error"
)

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the Status is one of the recognized values.
func (s Status) IsValid() bool {
	switch s {
	case StatusOk, StatusDegraded, StatusError:
		return true
	default:
		return false
	}
}

// Body is one section's structured value tree. Values must stay within the
// JSON-native types (maps, slices, strings, numbers, bools, nil) so the
// documented schema round-trips without loss.
type Body = map[string]any

// Section is one collector's structured output plus its status. A Section is
// created exactly once by its collector and never mutated after the
// orchestrator takes ownership.
type Section struct {
	Key     string   `json:"key" yaml:"key"`
	Title   string   `json:"title" yaml:"title"`
	Status  Status   `json:"status" yaml:"status"`
	Summary string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Body    Body     `json:"body" yaml:"body"`
	Notes   []string `json:"notes" yaml:"notes"`
}

// Ok creates a fully successful Section.
func Ok(key, title string, body Body) *Section {
	return &Section{
		Key:    key,
		Title:  title,
		Status: StatusOk,
		Body:   body,
		Notes:  []string{},
	}
}

// Degraded creates a Section whose optional parts failed. The summary states
// what is unreliable.
func Degraded(key, title, summary string, body Body) *Section {
	return &Section{
		Key:     key,
		Title:   title,
		Status:  StatusDegraded,
		Summary: summary,
		Body:    body,
		Notes:   []string{},
	}
}

// Error creates a Section for a collector whose primary source was
// inaccessible. The message lands in the summary, the body, and the notes so
// no rendering path loses it.
func Error(key, title, message string) *Section {
	return &Section{
		Key:     key,
		Title:   title,
		Status:  StatusError,
		Summary: message,
		Body:    Body{"error": message},
		Notes:   []string{message},
	}
}

// Note appends a formatted explanatory note. Notes keep insertion order.
func (s *Section) Note(format string, args ...any) {
	s.Notes = append(s.Notes, fmt.Sprintf(format, args...))
}

// Metadata describes one report run.
type Metadata struct {
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Sections    int    `json:"sections" yaml:"sections"`
	RunID       string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// GeneratedAtTime parses the generation timestamp back into a time.Time.
func (m Metadata) GeneratedAtTime() (time.Time, error) {
	return time.Parse(time.RFC3339, m.GeneratedAt)
}

// Report is the complete ordered set of Sections for a single run. Section
// order equals registry order restricted to enabled collectors, regardless of
// which collectors failed.
type Report struct {
	Metadata     Metadata  `json:"metadata" yaml:"metadata"`
	HealthDigest Digest    `json:"health_digest" yaml:"health_digest"`
	Sections     []Section `json:"sections" yaml:"sections"`
}

// New assembles a Report from finished sections. The digest is computed by
// the caller after all sections exist; New only freezes metadata.
func New(sections []Section, digest Digest, generatedAt time.Time, runID string) *Report {
	return &Report{
		Metadata: Metadata{
			GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
			Sections:    len(sections),
			RunID:       runID,
		},
		HealthDigest: digest,
		Sections:     sections,
	}
}

// SectionByKey returns the section with the given key, or nil.
func (r *Report) SectionByKey(key string) *Section {
	for i := range r.Sections {
		if r.Sections[i].Key == key {
			return &r.Sections[i]
		}
	}
	return nil
}

// MarshalIndent renders the report in the documented JSON schema.
func (r *Report) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Decode reconstructs a Report from its JSON schema representation.
func Decode(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
