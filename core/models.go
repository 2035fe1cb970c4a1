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

package core

import (
	"encoding/binary"
	"maps"
	"slices"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier for indexed chunks and dedup keys.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Origin records which index produced an evidence item.
type Origin string

const (
	// OriginDense marks hits from the vector index.
	OriginDense Origin = "dense"
	// OriginLexical marks hits from the keyword index.
	OriginLexical Origin = "lexical"
)

// EvidenceItem is a retrieved passage supporting an answer.
type EvidenceItem struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	// IndexScore is the raw score reported by the index that produced the item.
	IndexScore float64 `json:"index_score,omitempty"`
	Origin     Origin  `json:"origin,omitempty"`
	// RerankScore is the pair score assigned by the reranker.
	RerankScore float64 `json:"rerank_score,omitempty"`
	// Score is RerankScore rounded to four decimals, for display.
	Score float64 `json:"score"`
}

// CloneEvidence returns a deep copy of items.
func CloneEvidence(items []EvidenceItem) []EvidenceItem {
	if items == nil {
		return nil
	}
	out := make([]EvidenceItem, len(items))
	for i, it := range items {
		out[i] = it
		out[i].Metadata = maps.Clone(it.Metadata)
	}
	return out
}

// Texts returns the passage text of every item, in order.
func Texts(items []EvidenceItem) []string {
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}
	return texts
}

// Session is the durable per-conversation state.
type Session struct {
	ID string `json:"id"`
	// History holds every non-empty question asked in the session, oldest first.
	History          []string               `json:"history"`
	Entities         map[string]EntityValue `json:"entities"`
	ContextSummaries []string               `json:"context_summaries"`
	Vars             map[string]any         `json:"vars"`
	Sources          []EvidenceItem         `json:"sources"`
	// FullDocumentText is empty when no full document is attached.
	FullDocumentText string    `json:"full_document_text,omitempty"`
	LastAnswer       string    `json:"last_answer,omitempty"`
	Reasoning        []string  `json:"reasoning,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewSession returns a session with empty defaults.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:               id,
		History:          []string{},
		Entities:         map[string]EntityValue{},
		ContextSummaries: []string{},
		Vars:             map[string]any{},
		Sources:          []EvidenceItem{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Normalize replaces nil collections with empty ones. Decoded sessions may
// omit fields written by older versions.
func (s *Session) Normalize() {
	if s.History == nil {
		s.History = []string{}
	}
	if s.Entities == nil {
		s.Entities = map[string]EntityValue{}
	}
	if s.ContextSummaries == nil {
		s.ContextSummaries = []string{}
	}
	if s.Vars == nil {
		s.Vars = map[string]any{}
	}
	if s.Sources == nil {
		s.Sources = []EvidenceItem{}
	}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.History = slices.Clone(s.History)
	c.ContextSummaries = slices.Clone(s.ContextSummaries)
	c.Reasoning = slices.Clone(s.Reasoning)
	c.Vars = maps.Clone(s.Vars)
	c.Sources = CloneEvidence(s.Sources)
	c.Entities = make(map[string]EntityValue, len(s.Entities))
	for k, v := range s.Entities {
		c.Entities[k] = v.clone()
	}
	c.Normalize()
	return &c
}

// Touch updates the modification timestamp.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// AddEntities merges a bundle of list-valued categories into the session.
func (s *Session) AddEntities(bundle EntityBundle) {
	incoming := make(map[string]EntityValue, len(bundle))
	for cat, values := range bundle {
		incoming[cat] = ListValue(values...)
	}
	s.Entities = MergeEntities(s.Entities, incoming)
}

// IntVar returns a numeric session variable as an int.
func (s *Session) IntVar(name string) (int, bool) {
	switch v := s.Vars[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	}
	return 0, false
}

// BoolVar returns a boolean session variable.
func (s *Session) BoolVar(name string) bool {
	b, _ := s.Vars[name].(bool)
	return b
}

// StringVar returns a string session variable.
func (s *Session) StringVar(name string) string {
	str, _ := s.Vars[name].(string)
	return str
}
