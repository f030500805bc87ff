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

// Package adapter is the boundary between collectors and the host. Every
// external read (files, commands, the docker daemon socket, the systemd bus)
// goes through one of the narrow interfaces defined here, so collectors stay
// deterministic under the in-memory fakes and every failure carries a
// structured error code.
package adapter
