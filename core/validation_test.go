package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateSession(t *testing.T) {
	valid := NewSession("s1")
	future := NewSession("s2")
	future.UpdatedAt = time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		session *Session
		wantErr error
	}{
		{name: "valid session", session: valid, wantErr: nil},
		{name: "nil session", session: nil, wantErr: ErrInvalidSession},
		{name: "empty id", session: &Session{}, wantErr: ErrEmptySessionID},
		{name: "future timestamp", session: future, wantErr: ErrInvalidTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSession(tt.session)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSession() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSession() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFeedback(t *testing.T) {
	tests := []struct {
		name    string
		event   *FeedbackEvent
		wantErr error
	}{
		{name: "useful", event: &FeedbackEvent{AnswerID: "abc", Status: "utile"}},
		{name: "useless uppercase", event: &FeedbackEvent{AnswerID: "abc", Status: "INUTILE"}},
		{name: "nil", event: nil, wantErr: ErrInvalidFeedback},
		{name: "missing answer id", event: &FeedbackEvent{Status: "utile"}, wantErr: ErrEmptyAnswerID},
		{name: "unknown status", event: &FeedbackEvent{AnswerID: "abc", Status: "super"}, wantErr: ErrInvalidFeedbackStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFeedback(tt.event)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateFeedback() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFeedback() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
