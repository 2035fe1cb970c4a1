package responder

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/extraction"
)

var extractionKeywords = []string{
	"montant", "date", "personne", "personnes citées", "entreprise", "entreprises citées",
	"extrait les entités", "extraction", "qui sont",
}

// Extractor finds entities in text.
type Extractor interface {
	Extract(ctx context.Context, text string, opts extraction.Options) core.EntityBundle
}

// Extraction lists the persons, organizations, amounts and dates found in the
// document under discussion or in the current evidence.
type Extraction struct {
	extractor   Extractor
	search      Responder
	credentials *ai.Credentials
	fallback    ai.Generator
	filter      bool
	logger      *slog.Logger
}

var _ Responder = (*Extraction)(nil)

// ExtractionOption configures an Extraction responder.
type ExtractionOption func(*Extraction) error

// WithAutoSearch sets the responder run when no evidence is available.
func WithAutoSearch(search Responder) ExtractionOption {
	return func(e *Extraction) error {
		e.search = search
		return nil
	}
}

// WithExtractionCredentials enables the person-only model stage.
func WithExtractionCredentials(creds *ai.Credentials) ExtractionOption {
	return func(e *Extraction) error {
		e.credentials = creds
		return nil
	}
}

// WithExtractionFallback enables the generic model stage.
func WithExtractionFallback(gen ai.Generator) ExtractionOption {
	return func(e *Extraction) error {
		e.fallback = gen
		return nil
	}
}

// WithExtractionFilter restricts answers to the canonical categories.
// Default is true.
func WithExtractionFilter(filter bool) ExtractionOption {
	return func(e *Extraction) error {
		e.filter = filter
		return nil
	}
}

// NewExtraction creates an extraction responder.
func NewExtraction(extractor Extractor, opts ...ExtractionOption) (*Extraction, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	e := &Extraction{
		extractor: extractor,
		filter:    true,
		logger:    slog.Default().With("component", "extraction-responder"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Extraction) Kind() core.ResponderKind { return core.KindExtraction }

// CanHandle claims questions asking for entities.
func (e *Extraction) CanHandle(question string, _ *core.WorkingContext) bool {
	return containsAny(strings.ToLower(question), extractionKeywords)
}

// Run extracts from the full document when requested and attached, otherwise
// from the current sources, searching first when there are none.
func (e *Extraction) Run(ctx context.Context, question string, wctx *core.WorkingContext) (*Output, error) {
	sources := wctx.Sources
	var text string
	if wctx.ExtractOnFullDoc && wctx.FullDocumentText != "" {
		text = wctx.FullDocumentText
	} else {
		if len(sources) == 0 && e.search != nil {
			out, err := e.search.Run(ctx, question, wctx)
			if err != nil {
				return nil, err
			}
			sources = out.Evidence
			wctx.Sources = sources
		}
		text = strings.Join(core.Texts(sources), "\n")
	}

	entities := e.extractor.Extract(ctx, text, extraction.Options{
		Credentials: e.credentials,
		Fallback:    e.fallback,
		Filter:      e.filter,
	})
	e.logger.Debug("entities extracted", "categories", len(entities), "sources", len(sources))

	return &Output{
		Answer:   describeEntities(entities),
		Evidence: sources,
		Entities: entities,
	}, nil
}

func describeEntities(b core.EntityBundle) string {
	var parts []string
	if b.Has(core.CategoryPerson) {
		parts = append(parts, "Personnes citées : "+strings.Join(b[core.CategoryPerson], ", "))
	}
	if b.Has(core.CategoryOrganization) {
		parts = append(parts, "Organisations citées : "+strings.Join(b[core.CategoryOrganization], ", "))
	}
	if b.Has(core.CategoryAmounts) {
		parts = append(parts, "Montants trouvés : "+strings.Join(b[core.CategoryAmounts], ", "))
	}
	if b.Has(core.CategoryDates) {
		parts = append(parts, "Dates trouvées : "+strings.Join(b[core.CategoryDates], ", "))
	}
	if len(parts) == 0 {
		return MsgNoEntities
	}
	return strings.Join(parts, ". ") + "."
}
