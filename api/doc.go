// Copyright 2025 Poiesic Systems
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


// Package api exposes the song catalog and similarity search over HTTP.
//
// The server is a Gin engine wrapped in an http.Server with sane
// timeouts. Routes live under /api/v1; liveness is served at /health.
// Search requests are rate limited per client IP. All error responses
// share one envelope:
//
//	{"error": {"code": "invalid_query", "message": "..."}}
//
// with the request id echoed in the X-Request-ID header.
package api
