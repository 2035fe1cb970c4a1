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

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Feedback statuses accepted from users.
const (
	FeedbackUseful  = "utile"
	FeedbackUseless = "inutile"
)

// FeedbackStatuses is the accepted feedback status set.
var FeedbackStatuses = []string{FeedbackUseful, FeedbackUseless}

// ValidateSession validates a Session according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - UpdatedAt must not be in the future
func ValidateSession(s *Session) error {
	if s == nil {
		return fmt.Errorf("%w: session is nil", ErrInvalidSession)
	}
	if s.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSession, ErrEmptySessionID)
	}
	if !IsValidTimestamp(s.UpdatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidSession, ErrInvalidTimestamp)
	}
	return nil
}

// ValidateFeedback validates a FeedbackEvent.
//
// Validation rules:
//   - AnswerID must not be empty
//   - Status must be one of FeedbackStatuses (case-insensitive)
func ValidateFeedback(ev *FeedbackEvent) error {
	if ev == nil {
		return fmt.Errorf("%w: feedback is nil", ErrInvalidFeedback)
	}
	if strings.TrimSpace(ev.AnswerID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFeedback, ErrEmptyAnswerID)
	}
	if err := ValidateFeedbackStatus(ev.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFeedback, err)
	}
	return nil
}

// ValidateFeedbackStatus checks a status against FeedbackStatuses.
func ValidateFeedbackStatus(status string) error {
	if !slices.Contains(FeedbackStatuses, strings.ToLower(strings.TrimSpace(status))) {
		return fmt.Errorf("%w: value %q", ErrInvalidFeedbackStatus, status)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now().Add(time.Second))
}
