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

package extraction

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/ai/openai"
	"github.com/poiesic/concierge/core"
)

// Options selects the optional stages of one extraction.
type Options struct {
	// Credentials enable the person-only stage when valid.
	Credentials *ai.Credentials
	// Fallback enables the generic LLM stage when set.
	Fallback ai.Generator
	// Filter restricts the result to core.CanonicalCategories.
	Filter bool
	// Language skips detection when set.
	Language string
}

// GeneratorFactory builds a generator from credentials.
type GeneratorFactory func(creds ai.Credentials) (ai.Generator, error)

// Cascade runs the extraction stages in order.
// A Cascade is safe for concurrent use.
type Cascade struct {
	registry        *Registry
	detect          Detector
	defaultLanguage string
	newGenerator    GeneratorFactory
	logger          *slog.Logger
}

// Option configures a Cascade.
type Option func(*Cascade) error

// WithRegistry replaces the recognizer registry.
// Default is DefaultRegistry().
func WithRegistry(r *Registry) Option {
	return func(c *Cascade) error {
		if r == nil {
			return ErrRegistryRequired
		}
		c.registry = r
		return nil
	}
}

// WithRecognizer registers an already loaded recognizer for lang.
func WithRecognizer(lang string, rec Recognizer) Option {
	return func(c *Cascade) error {
		c.registry.Register(lang, func() (Recognizer, error) { return rec, nil })
		return nil
	}
}

// WithDetector replaces language detection.
// Default is DetectLanguage.
func WithDetector(d Detector) Option {
	return func(c *Cascade) error {
		if d == nil {
			return ErrDetectorRequired
		}
		c.detect = d
		return nil
	}
}

// WithDefaultLanguage sets the language used when detection is unsure.
// Default is "fr".
func WithDefaultLanguage(lang string) Option {
	return func(c *Cascade) error {
		if lang != "" {
			c.defaultLanguage = lang
		}
		return nil
	}
}

// WithGeneratorFactory replaces how the person-only stage reaches its model.
// Default is openai.NewGeneratorFromCredentials.
func WithGeneratorFactory(f GeneratorFactory) Option {
	return func(c *Cascade) error {
		if f == nil {
			return ErrGeneratorFactoryRequired
		}
		c.newGenerator = f
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cascade) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "extraction")
		return nil
	}
}

// NewCascade creates an extraction cascade.
func NewCascade(opts ...Option) (*Cascade, error) {
	c := &Cascade{
		registry:        DefaultRegistry(),
		detect:          DetectLanguage,
		defaultLanguage: DefaultLanguage,
		newGenerator:    openai.NewGeneratorFromCredentials,
		logger:          slog.Default().With("component", "extraction"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Extract returns the entities found in text. It never fails: a stage that
// errors is logged and contributes nothing. Blank text yields an empty bundle
// without consulting any model.
func (c *Cascade) Extract(ctx context.Context, text string, opts Options) core.EntityBundle {
	entities := core.EntityBundle{}
	if strings.TrimSpace(text) == "" {
		return entities
	}

	entities.Add(core.CategoryAmounts, ExtractAmounts(text)...)
	entities.Add(core.CategoryDates, ExtractDates(text)...)

	lang := opts.Language
	if lang == "" {
		lang = c.Language(text)
	}
	for cat, values := range c.recognize(lang, text) {
		entities.Add(cat, values...)
	}

	if opts.Fallback != nil && (!entities.Has(core.CategoryPerson) ||
		!entities.Has(core.CategoryOrganization) || !entities.Has(core.CategoryAmounts)) {
		found, err := askAll(ctx, opts.Fallback, text)
		if err != nil {
			c.logger.Warn("generic llm extraction failed", "err", err)
		} else {
			entities.FillMissing(found)
		}
	}

	if opts.Credentials.Valid() && !entities.Has(core.CategoryPerson) {
		entities.Add(core.CategoryPerson, c.persons(ctx, *opts.Credentials, text)...)
	}

	if opts.Filter {
		entities = entities.Filter(core.CanonicalCategories...)
	}
	return entities
}

// Language returns the detected language of text or the default language.
func (c *Cascade) Language(text string) string {
	if lang := c.detect(text); lang != "" {
		return lang
	}
	return c.defaultLanguage
}

func (c *Cascade) recognize(lang, text string) core.EntityBundle {
	rec := c.registry.Get(lang)
	if rec == nil {
		c.logger.Debug("no ner model", "lang", lang)
		return nil
	}
	ents, err := rec.Recognize(text)
	if err != nil {
		c.logger.Warn("ner failed", "lang", lang, "err", err)
		return nil
	}
	return bundleFromEntities(ents)
}

func (c *Cascade) persons(ctx context.Context, creds ai.Credentials, text string) []string {
	gen, err := c.newGenerator(creds)
	if err != nil {
		c.logger.Warn("person extraction model unavailable", "err", err)
		return nil
	}
	persons, err := askPersons(ctx, gen, text)
	if err != nil {
		c.logger.Warn("person llm extraction failed", "err", err)
		return nil
	}
	return persons
}
