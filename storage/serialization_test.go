package storage

import (
	"testing"
	"time"

	"github.com/poiesic/concierge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSerialization(t *testing.T) {
	s := core.NewSession("s1")
	s.History = append(s.History, "Quels montants ?")
	s.Entities["PER"] = core.ListValue("Alice")
	s.Entities["title"] = core.ScalarValue("Contrat")
	s.Vars["top_k"] = 3
	s.Sources = append(s.Sources, core.EvidenceItem{Text: "Contrat de 100 €", Score: 2.5})
	s.FullDocumentText = "texte"

	data, err := MarshalSession(s)
	require.NoError(t, err)

	decoded, err := UnmarshalSession(data)
	require.NoError(t, err)

	assert.Equal(t, s.ID, decoded.ID)
	assert.Equal(t, s.History, decoded.History)
	assert.Equal(t, []string{"Alice"}, decoded.Entities["PER"].List)
	assert.Equal(t, "Contrat", decoded.Entities["title"].Scalar)
	assert.EqualValues(t, 3, decoded.Vars["top_k"])
	assert.Equal(t, "Contrat de 100 €", decoded.Sources[0].Text)
	assert.Equal(t, "texte", decoded.FullDocumentText)
	assert.WithinDuration(t, s.UpdatedAt, decoded.UpdatedAt, time.Millisecond)
}

func TestUnmarshalSession_NormalizesMissingFields(t *testing.T) {
	decoded, err := UnmarshalSession([]byte(`{"id":"old"}`))
	require.NoError(t, err)

	assert.NotNil(t, decoded.History)
	assert.NotNil(t, decoded.Entities)
	assert.NotNil(t, decoded.Vars)
	assert.NotNil(t, decoded.Sources)
	assert.NotNil(t, decoded.ContextSummaries)
}

func TestUnmarshalSession_Invalid(t *testing.T) {
	_, err := UnmarshalSession([]byte("not json"))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestFeedbackSerialization(t *testing.T) {
	ev := &core.FeedbackEvent{AnswerID: "abc", Status: "utile", Comment: "Bonne réponse", User: "anonymous", Timestamp: time.Now().UTC()}

	data, err := MarshalFeedback(ev)
	require.NoError(t, err)
	decoded, err := UnmarshalFeedback(data)
	require.NoError(t, err)

	assert.Equal(t, ev.AnswerID, decoded.AnswerID)
	assert.Equal(t, ev.Comment, decoded.Comment)
	assert.True(t, ev.Timestamp.Equal(decoded.Timestamp))
}

func TestChunkSerialization(t *testing.T) {
	c := core.NewChunk("doc.txt", 2, "passage")
	c.Vector = []float32{0.5, 0.25}

	data, err := MarshalChunk(c)
	require.NoError(t, err)
	decoded, err := UnmarshalChunk(data)
	require.NoError(t, err)

	assert.Equal(t, c.ID, decoded.ID)
	assert.Equal(t, c.Vector, decoded.Vector)
	assert.Equal(t, "doc.txt", decoded.Metadata["source"])
}
