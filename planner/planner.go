// Package planner proposes the order in which responders are consulted.
package planner

import (
	"strings"

	"github.com/poiesic/concierge/core"
)

// Reasoning lines, one per rule that fired.
const (
	ReasonExtraction = "Orientation extraction d'entités."
	ReasonFeedback   = "Demande de feedback détectée."
	ReasonWebhook    = "Webhook n8n requis."
	ReasonSearch     = "Recherche nécessaire pour trouver des sources."
	ReasonSynthesis  = "Synthèse finale pour répondre."
)

// EntityKeywords identify questions about entities, matched against both the
// intention and the lowercased question.
var EntityKeywords = []string{"entit", "montant", "date", "personne", "extrait", "extraire", "noms", "entreprise"}

var webhookKeywords = []string{"n8n", "webhook"}

// Planner maps a question to a plan. It holds no state and is safe for
// concurrent use.
type Planner struct{}

// New returns a planner.
func New() *Planner {
	return &Planner{}
}

// Plan returns the responder order for question. Every plan ends with the
// search and synthesis responders.
func (p *Planner) Plan(question string, wctx *core.WorkingContext) core.Plan {
	q := strings.ToLower(question)
	intention := ""
	if wctx != nil {
		intention = wctx.Intention
	}

	var plan core.Plan
	add := func(kind core.ResponderKind, reason string) {
		plan.Responders = append(plan.Responders, kind)
		plan.Reasoning = append(plan.Reasoning, reason)
	}

	if MatchesEntity(intention, q) {
		add(core.KindExtraction, ReasonExtraction)
	}
	if strings.Contains(q, "feedback:") {
		add(core.KindFeedback, ReasonFeedback)
	}
	if containsAny(q, webhookKeywords) {
		add(core.KindWebhook, ReasonWebhook)
	}
	if !plan.Contains(core.KindSearch) {
		add(core.KindSearch, ReasonSearch)
	}
	if !plan.Contains(core.KindSynthesis) {
		add(core.KindSynthesis, ReasonSynthesis)
	}
	return plan
}

// MatchesEntity reports whether the intention or the lowercased question
// contains an entity keyword.
func MatchesEntity(intention, lowerQuestion string) bool {
	return containsAny(intention, EntityKeywords) || containsAny(lowerQuestion, EntityKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
