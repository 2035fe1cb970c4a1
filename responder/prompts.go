package responder

import (
	"strings"

	"github.com/poiesic/concierge/intent"
)

const documentsBlock = "<DOCUMENTS>\n{context}\n</DOCUMENTS>\n"

var synthesisTemplates = map[string]string{
	intent.Copy: "Tu dois simplement recopier le texte du document entre <DOCUMENTS> et </DOCUMENTS> ci-dessous, sans rien omettre. " +
		"Ne reformule rien, ne change pas l'ordre, ne saute rien. Si le texte est trop long, copie tout ce qui est affiché.\n" +
		documentsBlock +
		"Recopie intégrale :\n",
	intent.Summary: "Tu es un expert en analyse documentaire.\n" +
		documentsBlock +
		"Question : {question}\nRéponse :\n",
	intent.HowMuch: "Tu es un assistant financier.\n" +
		documentsBlock +
		"Question : {question}\nRéponse :\n",
	intent.When: "Tu es un assistant temporel.\n" +
		documentsBlock +
		"Question : {question}\nRéponse :\n",
	intent.Default: "Tu es un assistant juridique. Tu dois toujours répondre, même si l'information n'est pas complète.\n" +
		"Si tu ne trouves pas la réponse exacte, produis la meilleure synthèse possible à partir du contexte ci-dessous. " +
		"Ne réponds jamais \"je ne sais pas\" ni \"désolé\".\n\n" +
		documentsBlock +
		"Question : {question}\nRéponse :\n",
}

// synthesisPrompt fills the template for intention with the passages and
// the question. Unknown intentions use the default template.
func synthesisPrompt(intention, question string, passages []string) string {
	tpl, ok := synthesisTemplates[intention]
	if !ok {
		tpl = synthesisTemplates[intent.Default]
	}
	return strings.NewReplacer(
		"{context}", strings.Join(passages, "\n"),
		"{question}", question,
	).Replace(tpl)
}
