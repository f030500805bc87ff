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

// Package cli implements the vmic command-line interface.
//
// # Commands
//
// report - capture one diagnostic report:
//
//	vmic report [--format json|yaml|table] [--output FILE] [--since WINDOW]
//	            [--enable k1,k2] [--disable k1,k2]
//	            [--disk-warning N] [--disk-critical N]
//	            [--memory-warning N] [--memory-critical N]
//	            [--timeout D] [--collector-timeout D]
//
// version - print build information.
//
// Every flag has a VMIC_* environment variable source; explicit flags win
// over the environment, the environment wins over defaults.
package cli
