package extraction

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
	"github.com/poiesic/concierge/core"
)

// Entity is a named entity found by a recognizer.
type Entity struct {
	Text  string
	Label string
}

// Recognizer is a statistical named-entity recognizer for one language.
// Implementations must be safe for concurrent use.
type Recognizer interface {
	Recognize(text string) ([]Entity, error)
}

// Loader builds a recognizer. It runs at most once per registration.
type Loader func() (Recognizer, error)

// Registry holds one lazily loaded recognizer per language.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]func() (Recognizer, error)
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[string]func() (Recognizer, error)),
		logger:  slog.Default().With("component", "ner-registry"),
	}
}

// DefaultRegistry returns a registry serving the prose model for English.
// prose ships no French model, so French text gets no recognizer and the
// NER stage yields nothing, leaving PER and ORG to the LLM stages.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("en", func() (Recognizer, error) { return &ProseRecognizer{}, nil })
	return r
}

// Register installs the loader for lang, replacing any previous one.
func (r *Registry) Register(lang string, load Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[lang] = sync.OnceValues(load)
}

// Get returns the recognizer for lang. It returns nil when no loader is
// registered or when loading failed; a failed load is not retried.
func (r *Registry) Get(lang string) Recognizer {
	r.mu.RLock()
	load, ok := r.loaders[lang]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	rec, err := load()
	if err != nil {
		r.logger.Warn("ner model unavailable", "lang", lang, "err", err)
		return nil
	}
	return rec
}

// ProseRecognizer recognizes entities with the prose averaged perceptron model.
type ProseRecognizer struct{}

var _ Recognizer = (*ProseRecognizer)(nil)

// Recognize runs tokenization, tagging and entity extraction over text.
func (p *ProseRecognizer) Recognize(text string) ([]Entity, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}
	ents := doc.Entities()
	out := make([]Entity, len(ents))
	for i, e := range ents {
		out[i] = Entity{Text: e.Text, Label: e.Label}
	}
	return out, nil
}

// categoryFor maps recognizer labels from several tag sets onto entity categories.
func categoryFor(label string) string {
	switch strings.ToUpper(label) {
	case "PER", "PERSON":
		return core.CategoryPerson
	case "ORG", "ORGANIZATION":
		return core.CategoryOrganization
	case "LOC", "LOCATION", "GPE":
		return core.CategoryLocation
	default:
		return core.CategoryMisc
	}
}

func bundleFromEntities(ents []Entity) core.EntityBundle {
	b := core.EntityBundle{}
	for _, e := range ents {
		b.Add(categoryFor(e.Label), strings.TrimSpace(e.Text))
	}
	return b
}
