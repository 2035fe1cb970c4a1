// Package intent tags a question with a coarse intention label.
package intent

import "strings"

// Intention labels.
const (
	Copy    = "copie"
	Summary = "synthese"
	HowMuch = "combien"
	When    = "quand"
	Passage = "passage"
	Keyword = "keyword"
	Search  = "recherche"
	Default = "par_defaut"
)

type rule struct {
	label    string
	keywords []string
}

// rules are tried in order; the first rule with a matching keyword wins.
var rules = []rule{
	{Copy, []string{"tout le texte", "texte complet", "copie intégrale"}},
	{Summary, []string{"résum", "synthèse"}},
	{HowMuch, []string{"montant", "combien"}},
	{When, []string{"quand", "date"}},
	{Passage, []string{"passage"}},
	{Keyword, []string{"mot-clé", "mot clé"}},
	{Search, []string{"recherche", "cherche"}},
}

// Detect returns the intention of question.
func Detect(question string) string {
	q := strings.ToLower(question)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.label
			}
		}
	}
	return Default
}
