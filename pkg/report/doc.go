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

// Package report defines the data model for a diagnostic run: Section (one
// collector's output plus its partial-failure status), Report (the ordered
// set of sections with run metadata), and the health digest types (Severity,
// Finding, Digest).
//
// The JSON representation of Report is the stable, additive-only schema
// consumed by renderers and validators:
//
//	{
//	  "metadata":      { "generated_at": RFC3339, "sections": int },
//	  "health_digest": { "overall": severity, "findings": [...] },
//	  "sections":      [ { "title", "status", "summary"?, "body", "notes" } ]
//	}
package report
