// Package mock provides test double implementations of AI service interfaces.
//
// Each mock accepts an optional function field that replaces its default
// behavior and counts its calls. Counters are atomic so mocks can be shared
// by concurrent workers.
//
//	gen := mock.NewMockGenerator()
//	gen.GenerateFunc = func(ctx context.Context, req ai.Request) (string, error) {
//	    return "Le contrat s'élève à 100 €.", nil
//	}
//
// Defaults:
//
//   - MockEmbedder: deterministic unit vectors derived from a text hash
//   - MockGenerator: echoes the prompt
//   - MockReranker: 0-10 word-overlap score
//   - MockEvaluator: fixed 8/8 grades
package mock
