package eventlog

import "encoding/binary"

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - al/{stream}/m
// - al/{stream}/e/{seq_be8}
// - al/{stream}/c/{group}

var (
	logPrefix  = []byte("al/")
	metaSuffix = []byte("/m")
	entrySeg   = []byte("/e/")
	cursorSeg  = []byte("/c/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyLogMeta builds the stream metadata key.
func KeyLogMeta(stream string) []byte {
	k := make([]byte, 0, len(stream)+8)
	k = append(k, logPrefix...)
	k = append(k, stream...)
	k = append(k, metaSuffix...)
	return k
}

// KeyLogEntry builds an entry key with a big-endian sequence for ordering.
func KeyLogEntry(stream string, seq uint64) []byte {
	k := make([]byte, 0, len(stream)+16)
	k = append(k, logPrefix...)
	k = append(k, stream...)
	k = append(k, entrySeg...)
	k = appendBE8(k, seq)
	return k
}

// KeyCursor builds the durable cursor key for a consumer group.
func KeyCursor(stream, group string) []byte {
	k := make([]byte, 0, len(stream)+len(group)+8)
	k = append(k, logPrefix...)
	k = append(k, stream...)
	k = append(k, cursorSeg...)
	k = append(k, group...)
	return k
}
