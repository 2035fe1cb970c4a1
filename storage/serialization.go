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

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/poiesic/concierge/core"
)

// MarshalSession serializes a Session to bytes.
func MarshalSession(s *core.Session) ([]byte, error) {
	data, err := sonic.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: session %s: %w", ErrSerializationFailed, s.ID, err)
	}
	return data, nil
}

// UnmarshalSession deserializes a Session from bytes and normalizes empty collections.
func UnmarshalSession(data []byte) (*core.Session, error) {
	var s core.Session
	if err := sonic.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	s.Normalize()
	return &s, nil
}

// MarshalFeedback serializes a FeedbackEvent to bytes.
func MarshalFeedback(ev *core.FeedbackEvent) ([]byte, error) {
	return marshal(ev)
}

// UnmarshalFeedback deserializes a FeedbackEvent from bytes.
func UnmarshalFeedback(data []byte) (*core.FeedbackEvent, error) {
	return unmarshal[core.FeedbackEvent](data)
}

// MarshalEvaluation serializes an EvaluationEvent to bytes.
func MarshalEvaluation(ev *core.EvaluationEvent) ([]byte, error) {
	return marshal(ev)
}

// UnmarshalEvaluation deserializes an EvaluationEvent from bytes.
func UnmarshalEvaluation(data []byte) (*core.EvaluationEvent, error) {
	return unmarshal[core.EvaluationEvent](data)
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(c *core.Chunk) ([]byte, error) {
	return marshal(c)
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	return unmarshal[core.Chunk](data)
}

func marshal(v any) ([]byte, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

func unmarshal[T any](data []byte) (*T, error) {
	var v T
	if err := sonic.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &v, nil
}
