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

// Package extraction pulls structured entities out of free text.
//
// A Cascade layers extractors from cheap and deterministic to expensive and
// unreliable. Every stage after the first only fills categories that earlier
// stages left empty, and a failing stage contributes nothing without
// discarding what was already found:
//
//  1. regular expressions for amounts and dates, always run
//  2. statistical NER for the detected language, when a model is registered
//  3. a caller supplied generator asked for a JSON object of every category
//  4. a credentialed chat model asked for person names only
package extraction
