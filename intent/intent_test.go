package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"Donne-moi le texte complet du contrat", Copy},
		{"Fais un résumé du rapport", Summary},
		{"Quelle SYNTHÈSE ?", Summary},
		{"Quels montants sont cités ?", HowMuch},
		{"Combien coûte la prestation ?", HowMuch},
		{"Quand le contrat a-t-il été signé ?", When},
		{"Quelle est la date d'échéance ?", When},
		{"Montre le passage sur la résiliation", Passage},
		{"Recherche par mot-clé : pénalité", Keyword},
		{"Cherche les clauses de garantie", Search},
		{"Qui est le bailleur ?", Default},
		{"", Default},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.question))
		})
	}
}

func TestDetect_FirstRuleWins(t *testing.T) {
	// "résumé" wins over "montant" because summaries are checked first.
	assert.Equal(t, Summary, Detect("résumé des montants"))
}
