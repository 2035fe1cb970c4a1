// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package orchestrator implements the dispatch core: it routes every question
// to exactly one winning responder and always returns an answer.
package orchestrator

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/intent"
	"github.com/poiesic/concierge/metrics"
	"github.com/poiesic/concierge/planner"
	"github.com/poiesic/concierge/responder"
	"github.com/poiesic/concierge/session"
)

// FallbackAnswer is returned when no responder answered.
const FallbackAnswer = "Désolé, je ne sais pas répondre."

// DefaultSessionID is used for requests without a session id.
const DefaultSessionID = "default"

// DefaultForcedSearchIntents are the intentions that make search applicable
// without surface keywords.
var DefaultForcedSearchIntents = []string{intent.Search, intent.Keyword, intent.Passage}

// Reasoning notes appended by the dispatch core.
const (
	noteNoResponder = "Aucun agent n'a pu répondre."
	noteAnsweredBy  = "Réponse fournie par %s."
)

// Planner proposes a responder order for a question.
type Planner interface {
	Plan(question string, wctx *core.WorkingContext) core.Plan
}

// Verifier grades an accepted answer.
type Verifier interface {
	Verify(ctx context.Context, answerID, question, answer string, evidence []core.EvidenceItem) *core.AutoEval
}

// Orchestrator owns the registered responders and the per-request state
// machine. It is safe for concurrent use; requests on the same session are
// serialized within the process.
type Orchestrator struct {
	sessions      *session.Manager
	planner       Planner
	detect        func(question string) string
	verifier      Verifier
	metrics       metrics.Sink
	webhookMarker string
	forced        []string
	locks         *keyedMutex
	logger        *slog.Logger

	mu         sync.RWMutex
	responders map[core.ResponderKind]responder.Responder
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPlanner replaces the planner.
// Default is planner.New().
func WithPlanner(p Planner) Option {
	return func(o *Orchestrator) error {
		if p != nil {
			o.planner = p
		}
		return nil
	}
}

// WithIntentDetector replaces the intention classifier.
// Default is intent.Detect.
func WithIntentDetector(detect func(string) string) Option {
	return func(o *Orchestrator) error {
		if detect != nil {
			o.detect = detect
		}
		return nil
	}
}

// WithVerifier sets the answer grader. Without one, answers carry no evaluation.
func WithVerifier(v Verifier) Option {
	return func(o *Orchestrator) error {
		o.verifier = v
		return nil
	}
}

// WithMetrics sets the metrics sink.
// Default is metrics.Noop.
func WithMetrics(sink metrics.Sink) Option {
	return func(o *Orchestrator) error {
		if sink == nil {
			sink = metrics.Noop{}
		}
		o.metrics = sink
		return nil
	}
}

// WithWebhookMarker sets the question that routes to the webhook responder.
// Default is responder.DefaultWebhookMarker.
func WithWebhookMarker(marker string) Option {
	return func(o *Orchestrator) error {
		if marker != "" {
			o.webhookMarker = marker
		}
		return nil
	}
}

// WithForcedSearchIntents sets the intentions that force search.
func WithForcedSearchIntents(intents ...string) Option {
	return func(o *Orchestrator) error {
		o.forced = slices.Clone(intents)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "orchestrator")
		return nil
	}
}

// New creates an orchestrator with no responders.
func New(sessions *session.Manager, opts ...Option) (*Orchestrator, error) {
	if sessions == nil {
		return nil, ErrSessionManagerRequired
	}
	o := &Orchestrator{
		sessions:      sessions,
		planner:       planner.New(),
		detect:        intent.Detect,
		metrics:       metrics.Noop{},
		webhookMarker: responder.DefaultWebhookMarker,
		forced:        slices.Clone(DefaultForcedSearchIntents),
		locks:         newKeyedMutex(),
		logger:        slog.Default().With("component", "orchestrator"),
		responders:    make(map[core.ResponderKind]responder.Responder),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Register adds a responder. Each kind may be registered once.
func (o *Orchestrator) Register(r responder.Responder) error {
	if r == nil {
		return ErrResponderRequired
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.responders[r.Kind()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateResponder, r.Kind())
	}
	o.responders[r.Kind()] = r
	return nil
}

// Handle answers question within the session. A non-nil override is used as
// the working context verbatim; the session is then neither loaded nor saved.
// Handle never fails: when nothing answers it returns FallbackAnswer.
func (o *Orchestrator) Handle(ctx context.Context, question, sessionID string, override *core.WorkingContext) *core.Result {
	start := time.Now()
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	var sess *core.Session
	var wctx *core.WorkingContext
	if override != nil {
		wctx = override.Clone()
		if wctx.SessionID == "" {
			wctx.SessionID = sessionID
		}
	} else {
		unlock := o.locks.Lock(sessionID)
		defer unlock()
		s, err := o.sessions.Get(ctx, sessionID, question)
		if err != nil {
			o.logger.Error("session unavailable, answering without it", "session", sessionID, "err", err)
			s = core.NewSession(sessionID)
		} else {
			sess = s
		}
		wctx = core.NewWorkingContext(s)
	}

	wctx.Intention = o.detect(question)
	plan := o.planner.Plan(question, wctx)
	wctx.Plan = &plan
	wctx.Reasoning = append(wctx.Reasoning, plan.Reasoning...)

	res := o.dispatch(ctx, question, wctx)
	o.persist(ctx, sess, wctx)

	elapsed := time.Since(start)
	o.metrics.RequestCompleted(ctx, res.Responder, elapsed)
	o.logger.Info("question handled",
		"session", sessionID, "intention", wctx.Intention, "responder", res.Responder, "elapsed", elapsed)
	return res
}

func (o *Orchestrator) dispatch(ctx context.Context, question string, wctx *core.WorkingContext) *core.Result {
	// Feedback and webhook interception: their answer, or the fallback.
	if responder.IsFeedback(question) {
		if res, fired := o.intercept(ctx, core.KindFeedback, question, wctx); fired {
			return res
		}
	}
	if question == o.webhookMarker || wctx.Webhook {
		if res, fired := o.intercept(ctx, core.KindWebhook, question, wctx); fired {
			return res
		}
	}

	// Entity questions try extraction first and fall through on failure.
	if planner.MatchesEntity(wctx.Intention, strings.ToLower(question)) {
		if r := o.responder(core.KindExtraction); r != nil && o.canHandle(ctx, r, question, wctx) {
			if out, attempt, ok := o.attempt(ctx, r, question, wctx); ok {
				*wctx = *attempt
				return o.accept(ctx, r.Kind(), question, wctx, out, false)
			}
		}
	}

	if slices.Contains(o.forced, wctx.Intention) {
		wctx.ForceSearch = true
	}

	for _, r := range o.ordered(wctx.Plan) {
		if !o.canHandle(ctx, r, question, wctx) {
			continue
		}
		out, attempt, ok := o.attempt(ctx, r, question, wctx)
		if !ok {
			continue
		}
		*wctx = *attempt
		verify := r.Kind() != core.KindFeedback && r.Kind() != core.KindWebhook
		return o.accept(ctx, r.Kind(), question, wctx, out, verify)
	}

	wctx.Note(noteNoResponder)
	return fallback()
}

// intercept runs the responder of kind when it claims the question. fired is
// false when no such responder claims it.
func (o *Orchestrator) intercept(ctx context.Context, kind core.ResponderKind, question string, wctx *core.WorkingContext) (*core.Result, bool) {
	r := o.responder(kind)
	if r == nil || !o.canHandle(ctx, r, question, wctx) {
		return nil, false
	}
	out, err := o.run(ctx, r, question, wctx)
	if err != nil || out == nil || out.Answer == "" {
		wctx.Note(noteNoResponder)
		return fallback(), true
	}
	wctx.Note(fmt.Sprintf(noteAnsweredBy, kind))
	return newResult(kind, out), true
}

// attempt runs r on a copy of wctx so a failed attempt leaves no trace.
func (o *Orchestrator) attempt(ctx context.Context, r responder.Responder, question string, wctx *core.WorkingContext) (*responder.Output, *core.WorkingContext, bool) {
	attempt := wctx.Clone()
	out, err := o.run(ctx, r, question, attempt)
	if err != nil || out == nil || out.Answer == "" {
		return nil, nil, false
	}
	return out, attempt, true
}

func (o *Orchestrator) accept(ctx context.Context, kind core.ResponderKind, question string, wctx *core.WorkingContext, out *responder.Output, verify bool) *core.Result {
	res := newResult(kind, out)
	wctx.LastAnswer = out.Answer
	wctx.Sources = core.CloneEvidence(res.Evidence)
	if len(out.Entities) > 0 {
		incoming := make(map[string]core.EntityValue, len(out.Entities))
		for cat, values := range out.Entities {
			incoming[cat] = core.ListValue(values...)
		}
		wctx.Entities = core.MergeEntities(wctx.Entities, incoming)
	}
	wctx.Note(fmt.Sprintf(noteAnsweredBy, kind))

	if verify && o.verifier != nil {
		res.AutoEval = o.verifier.Verify(ctx, res.AnswerID, question, res.Answer, res.Evidence)
	}
	return res
}

func (o *Orchestrator) persist(ctx context.Context, sess *core.Session, wctx *core.WorkingContext) {
	if sess == nil {
		return
	}
	sess.LastAnswer = wctx.LastAnswer
	sess.Sources = core.CloneEvidence(wctx.Sources)
	if sess.Sources == nil {
		sess.Sources = []core.EvidenceItem{}
	}
	if wctx.Entities != nil {
		sess.Entities = wctx.Entities
	}
	sess.Reasoning = append(sess.Reasoning, wctx.Reasoning...)
	sess.Touch()
	if err := o.sessions.Save(ctx, sess); err != nil {
		o.logger.Error("failed to save session", "session", sess.ID, "err", err)
	}
}

func (o *Orchestrator) responder(kind core.ResponderKind) responder.Responder {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.responders[kind]
}

// ordered lists the plan's responders first, then every other registered
// responder by priority.
func (o *Orchestrator) ordered(plan *core.Plan) []responder.Responder {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]responder.Responder, 0, len(o.responders))
	seen := make(map[core.ResponderKind]bool, len(o.responders))
	if plan != nil {
		for _, kind := range plan.Responders {
			if r, ok := o.responders[kind]; ok && !seen[kind] {
				seen[kind] = true
				out = append(out, r)
			}
		}
	}
	rest := make([]responder.Responder, 0, len(o.responders))
	for kind, r := range o.responders {
		if !seen[kind] {
			rest = append(rest, r)
		}
	}
	slices.SortFunc(rest, func(a, b responder.Responder) int {
		return cmp.Or(
			cmp.Compare(a.Kind().Priority(), b.Kind().Priority()),
			cmp.Compare(a.Kind(), b.Kind()),
		)
	})
	return append(out, rest...)
}

func (o *Orchestrator) canHandle(ctx context.Context, r responder.Responder, question string, wctx *core.WorkingContext) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%w: %v", ErrResponderPanic, p)
			o.logger.Error("capability check panicked", "responder", r.Kind(), "err", err)
			o.metrics.ResponderFailed(ctx, r.Kind(), err)
			ok = false
		}
	}()
	return r.CanHandle(question, wctx)
}

func (o *Orchestrator) run(ctx context.Context, r responder.Responder, question string, wctx *core.WorkingContext) (out *responder.Output, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrResponderPanic, p)
		}
		if err != nil {
			o.logger.Warn("responder failed", "responder", r.Kind(), "err", err)
			o.metrics.ResponderFailed(ctx, r.Kind(), err)
		}
	}()
	return r.Run(ctx, question, wctx)
}

func newResult(kind core.ResponderKind, out *responder.Output) *core.Result {
	evidence := out.Evidence
	if evidence == nil {
		evidence = []core.EvidenceItem{}
	}
	entities := out.Entities
	if entities == nil {
		entities = core.EntityBundle{}
	}
	return &core.Result{
		AnswerID:  uuid.NewString(),
		Answer:    out.Answer,
		Evidence:  evidence,
		Entities:  entities,
		Responder: kind,
		Webhook:   out.Webhook,
	}
}

func fallback() *core.Result {
	return &core.Result{
		AnswerID:  uuid.NewString(),
		Answer:    FallbackAnswer,
		Evidence:  []core.EvidenceItem{},
		Entities:  core.EntityBundle{},
		Responder: core.KindFallback,
	}
}
