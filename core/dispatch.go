package core

import (
	"maps"
	"slices"
	"time"
)

// ResponderKind identifies a responder in the dispatch registry and in plans.
type ResponderKind string

const (
	KindExtraction ResponderKind = "extraction"
	KindSearch     ResponderKind = "search"
	KindSynthesis  ResponderKind = "synthesis"
	KindFeedback   ResponderKind = "feedback"
	KindWebhook    ResponderKind = "webhook"
	KindVerifier   ResponderKind = "verifier"
	// KindFallback marks the canned answer produced when no responder answered.
	KindFallback ResponderKind = "fallback"
)

// Priority returns the fixed dispatch priority of the kind. Lower runs first.
func (k ResponderKind) Priority() int {
	switch k {
	case KindExtraction:
		return 0
	case KindSearch:
		return 1
	case KindSynthesis:
		return 2
	case KindFeedback:
		return 3
	case KindWebhook:
		return 4
	default:
		return 5
	}
}

// Plan is the ordered list of responders the planner suggests for a question.
type Plan struct {
	Responders []ResponderKind `json:"responders"`
	Reasoning  []string        `json:"reasoning"`
}

// Contains reports whether the plan names kind.
func (p Plan) Contains(kind ResponderKind) bool {
	return slices.Contains(p.Responders, kind)
}

// WorkingContext is the ephemeral per-request state handed to responders.
type WorkingContext struct {
	SessionID        string
	Intention        string
	ForceSearch      bool
	Webhook          bool
	Payload          map[string]any
	User             string
	TopK             int
	ExtractOnFullDoc bool
	FullDocumentText string
	Sources          []EvidenceItem
	Entities         map[string]EntityValue
	LastAnswer       string
	Plan             *Plan
	Reasoning        []string
}

// NewWorkingContext derives a working context from a session.
func NewWorkingContext(s *Session) *WorkingContext {
	w := &WorkingContext{
		SessionID:        s.ID,
		FullDocumentText: s.FullDocumentText,
		Sources:          CloneEvidence(s.Sources),
		Entities:         maps.Clone(s.Entities),
		LastAnswer:       s.LastAnswer,
		Webhook:          s.BoolVar("n8n_webhook"),
		ExtractOnFullDoc: s.BoolVar("extract_on_full_doc"),
		User:             s.StringVar("user"),
	}
	if k, ok := s.IntVar("top_k"); ok && k > 0 {
		w.TopK = k
	}
	if p, ok := s.Vars["payload"].(map[string]any); ok {
		w.Payload = p
	}
	return w
}

// Clone returns a copy that can be mutated without affecting the receiver.
func (w *WorkingContext) Clone() *WorkingContext {
	c := *w
	c.Sources = CloneEvidence(w.Sources)
	c.Payload = maps.Clone(w.Payload)
	c.Entities = maps.Clone(w.Entities)
	c.Reasoning = slices.Clone(w.Reasoning)
	if w.Plan != nil {
		p := *w.Plan
		c.Plan = &p
	}
	return &c
}

// Note appends a reasoning line.
func (w *WorkingContext) Note(line string) {
	w.Reasoning = append(w.Reasoning, line)
}

// AutoEval is the automatic evaluation attached to an answer.
type AutoEval struct {
	Pertinence int    `json:"pertinence"`
	Clarity    int    `json:"clarte"`
	Comment    string `json:"commentaire"`
}

// WebhookEcho carries the payload fields a webhook-triggered request returns.
type WebhookEcho struct {
	Status  string         `json:"status"`
	Actions []any          `json:"actions"`
	Result  string         `json:"result,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
	Raw     map[string]any `json:"raw,omitempty"`
}

// Result is the answer object returned for every request.
type Result struct {
	AnswerID  string         `json:"answer_id"`
	Answer    string         `json:"answer"`
	Evidence  []EvidenceItem `json:"evidence"`
	Entities  EntityBundle   `json:"entities,omitempty"`
	AutoEval  *AutoEval      `json:"auto_eval,omitempty"`
	Responder ResponderKind  `json:"responder"`
	Webhook   *WebhookEcho   `json:"webhook,omitempty"`
}

// FeedbackEvent is a user judgement about a previous answer.
type FeedbackEvent struct {
	AnswerID  string    `json:"answer_id"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}

// EvaluationEvent records an automatic evaluation of an answer.
type EvaluationEvent struct {
	AnswerID  string    `json:"answer_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Eval      AutoEval  `json:"eval"`
	Timestamp time.Time `json:"timestamp"`
}
