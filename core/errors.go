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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidSession indicates a Session failed validation.
	ErrInvalidSession = errors.New("invalid session")

	// ErrInvalidFeedback indicates a FeedbackEvent failed validation.
	ErrInvalidFeedback = errors.New("invalid feedback")

	// ErrEmptySessionID indicates the session ID is empty.
	ErrEmptySessionID = errors.New("session id cannot be empty")

	// ErrEmptyAnswerID indicates the feedback does not reference an answer.
	ErrEmptyAnswerID = errors.New("answer id cannot be empty")

	// ErrInvalidFeedbackStatus indicates a feedback status outside the accepted set.
	ErrInvalidFeedbackStatus = errors.New("invalid feedback status")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")
)
