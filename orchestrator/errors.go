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

package orchestrator

import "errors"

var (
	// ErrSessionManagerRequired is returned when no session manager is provided.
	ErrSessionManagerRequired = errors.New("session manager required")

	// ErrResponderRequired is returned when registering a nil responder.
	ErrResponderRequired = errors.New("responder required")

	// ErrDuplicateResponder is returned when a kind is registered twice.
	ErrDuplicateResponder = errors.New("responder kind already registered")

	// ErrResponderPanic wraps a panic recovered from a responder.
	ErrResponderPanic = errors.New("responder panicked")
)
