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

// Package fusion merges dense and lexical retrieval into one reranked
// evidence list.
//
// HybridSearch over-fetches candidates from both indexes, concatenates them
// dense first, drops candidates whose normalized text prefix was already
// seen, scores every surviving (query, passage) pair with a reranker and
// returns the best topK items in descending score order.
package fusion
