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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested song was not found.
	ErrNotFound = errors.New("song not found")

	// ErrUnavailable indicates the store could not serve the operation:
	// connectivity loss, a failed statement, or corrupted data.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvalidVector indicates a vector argument or stored blob with the
	// wrong shape for the configured dimensions.
	ErrInvalidVector = errors.New("invalid vector")
)
