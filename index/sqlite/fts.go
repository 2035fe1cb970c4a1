// Package sqlite provides a lexical index on SQLite FTS5.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/index"
	_ "modernc.org/sqlite"
)

const schema = `CREATE VIRTUAL TABLE IF NOT EXISTS chunks USING fts5(
	content,
	doc_id UNINDEXED,
	position UNINDEXED,
	tokenize = 'unicode61 remove_diacritics 2'
)`

// Index is an FTS5 keyword index. Scores are negated bm25 values, so higher
// is more relevant.
type Index struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ index.LexicalIndex = (*Index)(nil)

// Open opens the index at path for searching. A path with no database
// yields an index that returns no hits, matching an unbuilt index.
func Open(path string) (*Index, error) {
	logger := slog.Default().With("component", "fts-index")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Warn("lexical index not built", "path", path)
		return &Index{path: path, logger: logger}, nil
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &Index{db: db, path: path, logger: logger}, nil
}

// Create opens or creates the index at path for writing.
func Create(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serializes concurrent batch writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create fts schema: %w", err)
	}
	return &Index{db: db, path: path, logger: slog.Default().With("component", "fts-index")}, nil
}

// Close closes the database.
func (x *Index) Close() error {
	if x.db == nil {
		return nil
	}
	return x.db.Close()
}

// AddChunks indexes chunks, replacing earlier rows for the same document position.
func (x *Index) AddChunks(ctx context.Context, chunks ...*core.Chunk) error {
	if x.db == nil {
		return fmt.Errorf("lexical index %s opened read-only before it was built", x.path)
	}
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range chunks {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ? AND position = ?`, c.DocumentID, c.Position); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO chunks (content, doc_id, position) VALUES (?, ?, ?)`, c.Text, c.DocumentID, c.Position); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Search returns up to k chunks matching any query term, best bm25 first.
func (x *Index) Search(ctx context.Context, query string, k int) ([]index.Hit, error) {
	if x.db == nil {
		return nil, nil
	}
	match := MatchExpression(query)
	if match == "" {
		return nil, nil
	}

	rows, err := x.db.QueryContext(ctx,
		`SELECT content, doc_id, position, bm25(chunks) FROM chunks WHERE chunks MATCH ? ORDER BY bm25(chunks) LIMIT ?`,
		match, k)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var hits []index.Hit
	for rows.Next() {
		var (
			content, docID string
			position       int
			rank           float64
		)
		if err := rows.Scan(&content, &docID, &position, &rank); err != nil {
			return nil, err
		}
		hits = append(hits, index.Hit{
			Text:     content,
			Metadata: map[string]any{"source": docID, "position": position},
			Score:    -rank,
		})
	}
	return hits, rows.Err()
}

// MatchExpression turns free text into an FTS5 query: each word becomes a
// quoted term and terms are OR-ed.
func MatchExpression(query string) string {
	words := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, `"`+w+`"`)
	}
	return strings.Join(terms, " OR ")
}
