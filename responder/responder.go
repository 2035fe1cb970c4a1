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

// Package responder implements the units the dispatch core chooses between.
//
// Each responder declares a kind, a cheap capability check and a Run method.
// Run may mutate the working context it is given; the dispatch core decides
// what of it reaches the session.
package responder

import (
	"context"
	"errors"
	"strings"

	"github.com/poiesic/concierge/core"
)

var (
	// ErrSearcherRequired is returned when a responder needing retrieval has none.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrGeneratorRequired is returned when the synthesis responder has no generator.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrExtractorRequired is returned when the extraction responder has no extractor.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrAuditSinkRequired is returned when a responder needing the audit sink has none.
	ErrAuditSinkRequired = errors.New("audit sink required")

	// ErrEvaluatorRequired is returned when the verifier has no evaluator.
	ErrEvaluatorRequired = errors.New("evaluator required")
)

// Responder answers the questions it claims.
type Responder interface {
	Kind() core.ResponderKind
	CanHandle(question string, wctx *core.WorkingContext) bool
	Run(ctx context.Context, question string, wctx *core.WorkingContext) (*Output, error)
}

// Output is what a responder produced. An empty Answer means the responder
// declined after all.
type Output struct {
	Answer   string
	Evidence []core.EvidenceItem
	Entities core.EntityBundle
	Webhook  *core.WebhookEcho
}

// Searcher retrieves ranked evidence for a query.
type Searcher interface {
	HybridSearch(ctx context.Context, query string, topK int) ([]core.EvidenceItem, error)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
