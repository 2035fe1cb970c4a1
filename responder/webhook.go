package responder

import (
	"context"
	"log/slog"

	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/core"
)

// DefaultWebhookMarker is the question sent by the automation webhook.
const DefaultWebhookMarker = "__n8n_webhook__"

var webhookFields = map[string]bool{"entities": true, "sources": true, "actions": true, "answer": true}

// Webhook acknowledges payloads pushed by the n8n automation and echoes
// their content back in a structured form.
type Webhook struct {
	marker string
	logger *slog.Logger
}

var _ Responder = (*Webhook)(nil)

// NewWebhook creates a webhook responder. An empty marker uses
// DefaultWebhookMarker.
func NewWebhook(marker string) *Webhook {
	if marker == "" {
		marker = DefaultWebhookMarker
	}
	return &Webhook{
		marker: marker,
		logger: slog.Default().With("component", "webhook-responder"),
	}
}

func (w *Webhook) Kind() core.ResponderKind { return core.KindWebhook }

// Marker returns the question that triggers this responder.
func (w *Webhook) Marker() string { return w.marker }

// CanHandle claims the marker question or any request flagged as webhook.
func (w *Webhook) CanHandle(question string, wctx *core.WorkingContext) bool {
	return question == w.marker || (wctx != nil && wctx.Webhook)
}

// Run reads entities, sources, actions and answer from the payload; every
// other key is returned as extra.
func (w *Webhook) Run(_ context.Context, _ string, wctx *core.WorkingContext) (*Output, error) {
	payload := wctx.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	entities := core.EntityBundle{}
	if m, ok := payload["entities"].(map[string]any); ok {
		for cat, v := range m {
			entities.Add(cat, ai.StringList(v)...)
		}
	}
	actions, _ := payload["actions"].([]any)
	if actions == nil {
		actions = []any{}
	}
	answer, _ := payload["answer"].(string)
	extra := make(map[string]any)
	for k, v := range payload {
		if !webhookFields[k] {
			extra[k] = v
		}
	}
	sources := evidenceFromPayload(payload["sources"])

	w.logger.Info("webhook payload received", "entities", len(entities), "actions", len(actions), "extra", len(extra))
	return &Output{
		Answer:   MsgWebhookForwarded,
		Evidence: sources,
		Entities: entities,
		Webhook: &core.WebhookEcho{
			Status:  "ok",
			Actions: actions,
			Result:  answer,
			Extra:   extra,
			Raw:     payload,
		},
	}, nil
}

func evidenceFromPayload(v any) []core.EvidenceItem {
	list, _ := v.([]any)
	out := make([]core.EvidenceItem, 0, len(list))
	for _, item := range list {
		switch s := item.(type) {
		case string:
			out = append(out, core.EvidenceItem{Text: s})
		case map[string]any:
			ev := core.EvidenceItem{}
			ev.Text, _ = s["text"].(string)
			ev.Metadata, _ = s["metadata"].(map[string]any)
			if score, ok := s["score"].(float64); ok {
				ev.Score = score
			}
			out = append(out, ev)
		}
	}
	return out
}
