package fusion

import (
	"log/slog"

	"github.com/poiesic/concierge/core"
)

// Monitor provides hooks to observe a hybrid search.
// Implement this interface to track intermediate steps and results.
type Monitor interface {
	Start(query string, topK int)
	AfterDenseSearch(hits int)
	AfterLexicalSearch(hits int)
	AfterFusion(candidates int)
	Finish(results []core.EvidenceItem)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)        {}
func (n *noopMonitor) AfterDenseSearch(_ int)       {}
func (n *noopMonitor) AfterLexicalSearch(_ int)     {}
func (n *noopMonitor) AfterFusion(_ int)            {}
func (n *noopMonitor) Finish(_ []core.EvidenceItem) {}

// LogMonitor reports every search stage at debug level.
type LogMonitor struct {
	Logger *slog.Logger
}

var _ Monitor = (*LogMonitor)(nil)

func (m *LogMonitor) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *LogMonitor) Start(query string, topK int) {
	m.logger().Debug("hybrid search", "query", query, "top_k", topK)
}

func (m *LogMonitor) AfterDenseSearch(hits int) {
	m.logger().Debug("dense candidates", "count", hits)
}

func (m *LogMonitor) AfterLexicalSearch(hits int) {
	m.logger().Debug("lexical candidates", "count", hits)
}

func (m *LogMonitor) AfterFusion(candidates int) {
	m.logger().Debug("fused candidates", "count", candidates)
}

func (m *LogMonitor) Finish(results []core.EvidenceItem) {
	for i, r := range results {
		m.logger().Debug("ranked", "rank", i, "score", r.Score, "origin", r.Origin)
	}
}
