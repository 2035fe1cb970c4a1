package extraction

import (
	"context"
	"fmt"
	"regexp"

	"github.com/bytedance/sonic"
	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
)

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

func genericPrompt(text string) string {
	return "Extrait tous les montants (€, euros, $), dates, personnes, et entreprises du texte suivant. " +
		"Réponds uniquement au format JSON avec les clés 'montants', 'dates', 'PER', 'ORG'.\n\n" +
		fmt.Sprintf("TEXTE:\n%s\n", text)
}

func personsPrompt(text string) string {
	return "Tu es un expert du traitement documentaire. " +
		"Extrais la liste des personnes physiques citées dans ce texte :\n" +
		text + "\n" +
		`Donne uniquement la liste, sans commentaire, sous forme JSON : { "persons": [ ... ] }`
}

// askAll asks gen for every canonical category.
func askAll(ctx context.Context, gen ai.Generator, text string) (core.EntityBundle, error) {
	reply, err := gen.Generate(ctx, ai.Request{Prompt: genericPrompt(text), JSON: true})
	if err != nil {
		return nil, err
	}
	return parseBundle(reply)
}

func parseBundle(reply string) (core.EntityBundle, error) {
	var raw map[string]any
	if err := sonic.UnmarshalString(ai.CleanJSON(reply), &raw); err != nil {
		return nil, err
	}
	b := core.EntityBundle{}
	for _, cat := range core.CanonicalCategories {
		b.Add(cat, ai.StringList(raw[cat])...)
	}
	return b, nil
}

// askPersons asks gen for person names only.
func askPersons(ctx context.Context, gen ai.Generator, text string) ([]string, error) {
	reply, err := gen.Generate(ctx, ai.Request{Prompt: personsPrompt(text)})
	if err != nil {
		return nil, err
	}
	return parsePersons(reply)
}

func parsePersons(reply string) ([]string, error) {
	m := jsonObject.FindString(reply)
	if m == "" {
		return nil, nil
	}
	var out struct {
		Persons any `json:"persons"`
	}
	if err := sonic.UnmarshalString(m, &out); err != nil {
		return nil, err
	}
	return ai.StringList(out.Persons), nil
}
