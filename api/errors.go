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


package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/lyricseeker/core"
	"github.com/poiesic/lyricseeker/storage"
)

var (
	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrRepositoryRequired is returned when a song repository is not provided.
	ErrRepositoryRequired = errors.New("song repository required")
)

// errorBody is the envelope every error response uses.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newErrorBody(code, message string) errorBody {
	return errorBody{Error: errorDetail{Code: code, Message: message}}
}

// respondError maps a failure to its HTTP status and machine code.
// Validation messages are safe to echo; infrastructure failures get a
// fixed message so internals never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidQuery), errors.Is(err, core.ErrInvalidSong):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, newErrorBody("invalid_query", err.Error()))
	case errors.Is(err, core.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, newErrorBody("not_found", "song not found"))
	case errors.Is(err, core.ErrEmbeddingUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, newErrorBody("embedding_unavailable", "embedding provider unavailable"))
	case errors.Is(err, core.ErrStoreUnavailable), errors.Is(err, storage.ErrUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, newErrorBody("store_unavailable", "song store unavailable"))
	case errors.Is(err, core.ErrRateLimited):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, newErrorBody("rate_limited", "rate limit exceeded, retry shortly"))
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, newErrorBody("internal_error", "internal server error"))
	}
}
