package responder

// User-facing answers.
const (
	MsgNoRelevantPassage = "Aucun passage réellement pertinent n'a été trouvé dans vos documents."
	MsgSearchResults     = "Résultats rerankés et pertinents (mode SearchAgent)"
	MsgNoEntities        = "Aucune entité significative n'a été détectée dans les documents."
	MsgFeedbackFormat    = "Format de feedback incorrect. Utilise : feedback:<answer_id>:<utile|inutile>:<commentaire>"
	MsgFeedbackStatus    = "Statut de feedback non reconnu (utile|inutile autorisés)"
	MsgWebhookForwarded  = "Données transmises à n8n."
)

// EvaluationFailedPrefix starts the comment of an evaluation that could not run.
const EvaluationFailedPrefix = "Auto-éval KO: "
