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

package fusion

import "errors"

var (
	// ErrDenseIndexRequired is returned when no dense index is provided.
	ErrDenseIndexRequired = errors.New("dense index required")

	// ErrRerankerRequired is returned when neither a reranker nor a factory is provided.
	ErrRerankerRequired = errors.New("reranker required")

	// ErrInvalidOverFetch is returned for an over-fetch factor below 1.
	ErrInvalidOverFetch = errors.New("over-fetch factor must be at least 1")

	// ErrInvalidDedupPrefix is returned for a non-positive dedup prefix length.
	ErrInvalidDedupPrefix = errors.New("dedup prefix length must be positive")
)
