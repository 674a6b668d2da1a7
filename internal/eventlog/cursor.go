package eventlog

import "encoding/binary"

// CommitCursor durably stores the last processed token for a consumer group.
// Commits are idempotent and never regress: a token at or below the stored
// one is ignored.
func (l *Log) CommitCursor(group string, tok Token) error {
	key := KeyCursor(l.stream, group)
	cur, err := l.db.Get(key)
	if err == nil && len(cur) >= 8 {
		prev := binary.BigEndian.Uint64(cur[:8])
		if tok.Seq() <= prev {
			return nil
		}
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], tok.Seq())
	return l.db.Set(key, b[:])
}

// GetCursor loads the stored cursor token for a consumer group.
func (l *Log) GetCursor(group string) (Token, bool) {
	cur, err := l.db.Get(KeyCursor(l.stream, group))
	if err != nil || len(cur) < 8 {
		return Token{}, false
	}
	var t Token
	copy(t[:], cur[:8])
	return t, true
}
