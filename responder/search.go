package responder

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/concierge/core"
)

const (
	// DefaultConfidenceThreshold is the minimum top rerank score accepted as evidence.
	DefaultConfidenceThreshold = 1.2
	// DefaultSearchTopK is used when the working context sets no top-k.
	DefaultSearchTopK = 7
)

var searchKeywords = []string{"trouve", "cherche", "mot-clé", "passage", "extrait", "article", "page"}

// Search answers retrieval questions with reranked passages, refusing to
// answer when the best passage is not relevant enough.
type Search struct {
	searcher  Searcher
	threshold float64
	topK      int
	logger    *slog.Logger
}

var _ Responder = (*Search)(nil)

// SearchOption configures a Search responder.
type SearchOption func(*Search) error

// WithConfidenceThreshold sets the minimum top rerank score.
// Default is 1.2.
func WithConfidenceThreshold(threshold float64) SearchOption {
	return func(s *Search) error {
		s.threshold = threshold
		return nil
	}
}

// WithSearchTopK sets the default number of passages.
// Default is 7.
func WithSearchTopK(k int) SearchOption {
	return func(s *Search) error {
		if k > 0 {
			s.topK = k
		}
		return nil
	}
}

// WithSearchLogger sets a custom logger.
func WithSearchLogger(logger *slog.Logger) SearchOption {
	return func(s *Search) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearch creates a search responder over searcher.
func NewSearch(searcher Searcher, opts ...SearchOption) (*Search, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	s := &Search{
		searcher:  searcher,
		threshold: DefaultConfidenceThreshold,
		topK:      DefaultSearchTopK,
		logger:    slog.Default().With("component", "search-responder"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Search) Kind() core.ResponderKind { return core.KindSearch }

// CanHandle claims questions with retrieval keywords, or any question once
// search has been forced.
func (s *Search) CanHandle(question string, wctx *core.WorkingContext) bool {
	return containsAny(strings.ToLower(question), searchKeywords) || (wctx != nil && wctx.ForceSearch)
}

// Run searches and stores the accepted passages in wctx.Sources. When nothing
// clears the confidence threshold the sources are cleared instead.
func (s *Search) Run(ctx context.Context, question string, wctx *core.WorkingContext) (*Output, error) {
	topK := s.topK
	if wctx.TopK > 0 {
		topK = wctx.TopK
	}
	results, err := s.searcher.HybridSearch(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 || results[0].RerankScore < s.threshold {
		top := 0.0
		if len(results) > 0 {
			top = results[0].RerankScore
		}
		s.logger.Debug("no confident passage", "candidates", len(results), "top", top, "threshold", s.threshold)
		wctx.Sources = []core.EvidenceItem{}
		return &Output{Answer: MsgNoRelevantPassage, Evidence: []core.EvidenceItem{}}, nil
	}

	wctx.Sources = results
	return &Output{Answer: MsgSearchResults, Evidence: results}, nil
}
