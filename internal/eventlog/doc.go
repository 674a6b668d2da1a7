// Package eventlog implements Moor's durable append-only record stream.
//
// # Overview
//
// A Log is a single totally-ordered stream persisted in Pebble. Keys are
// lexicographically ordered for efficient range scans:
//   - al/{stream}/m           (stream metadata: lastSeq)
//   - al/{stream}/e/{seq_be8} (entries)
//   - al/{stream}/c/{group}   (durable consumer cursors)
//
// Entries are stored as: varint headerLen | header | payload | crc32c(header|payload).
//
// Append writes all records of an invocation in one Pebble batch, so a
// multi-record submission is committed atomically or not at all, and the
// append mutex gives the stream a single global total order. There is no
// trim, retention, or delete surface: accepted records persist indefinitely.
//
// API surface (internal)
//
//	l, _ := OpenLog(db, "anchors")
//	seqs, _ := l.Append(ctx, []AppendRecord{{Header: h, Payload: p}})
//	items, next := l.Read(ReadOptions{Start: TokenFromSeq(seqs[0]), Limit: 100})
//	woke := l.WaitForAppend(200 * time.Millisecond)
//	_ = l.CommitCursor("indexer", TokenFromSeq(seqs[len(seqs)-1]))
package eventlog
