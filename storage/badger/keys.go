package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/concierge/core"
)

// Key prefixes for different data types
const (
	sessionPrefix    = "sess:"
	feedbackPrefix   = "audfb:"
	evaluationPrefix = "audev:"
	auditSeq         = "audseq"
	chunkPrefix      = "chunk:"
)

// makeSessionKey generates a key for a session by ID.
func makeSessionKey(id string) []byte {
	return []byte(sessionPrefix + id)
}

// makeAuditKey generates an ordered key for an audit record.
// Format: prefix + big-endian sequence, so iteration follows insertion order.
func makeAuditKey(prefix string, seq uint64) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s%d", chunkPrefix, id))
}
