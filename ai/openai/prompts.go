package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/concierge/core"
)

const rerankPromptTemplate = `Tu évalues la pertinence d'un passage pour une question.
Réponds uniquement par un nombre entre 0 et 10, sans aucun autre texte.
0 signifie que le passage ne répond pas du tout, 10 qu'il répond exactement.

Question : %s

Passage :
%s

Note :`

const evaluationPromptTemplate = `Tu es un évaluateur professionnel pour un assistant IA.
Question :
%s

Réponse générée :
%s

Sources utilisées :
%s

Donne une note sur 10 à la pertinence, une note sur 10 à la clarté, et un commentaire (bref) en JSON strict :
{
  "pertinence": int,
  "clarte": int,
  "commentaire": str
}
Réponds uniquement en JSON.`

func buildRerankPrompt(query, passage string) string {
	return fmt.Sprintf(rerankPromptTemplate, query, passage)
}

func buildEvaluationPrompt(question, answer string, evidence []core.EvidenceItem) string {
	var sources strings.Builder
	for i, item := range evidence {
		fmt.Fprintf(&sources, "[%d] %s\n", i+1, item.Text)
	}
	if sources.Len() == 0 {
		sources.WriteString("(aucune)")
	}
	return fmt.Sprintf(evaluationPromptTemplate, question, answer, sources.String())
}
