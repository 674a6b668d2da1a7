package eventlog

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"
)

// Token encodes a stream position as a big-endian sequence.
type Token [8]byte

// TokenFromSeq builds a Token pointing at seq.
func TokenFromSeq(seq uint64) Token {
	var t Token
	binary.BigEndian.PutUint64(t[:], seq)
	return t
}

// Seq returns the sequence the token points at.
func (t Token) Seq() uint64 { return binary.BigEndian.Uint64(t[:]) }

// ReadOptions shape a ranged read.
type ReadOptions struct {
	Start   Token // zero: from the first entry (or last, when Reverse)
	Limit   int   // 0: unbounded
	Reverse bool
}

// Item is one decoded stream entry.
type Item struct {
	Seq     uint64
	Header  []byte
	Payload []byte
}

// Read returns up to Limit items starting at Start (inclusive) plus a resume
// token for the following position. Reverse scans descending, starting below
// Start (exclusive) or from the tail when Start is zero.
func (l *Log) Read(opts ReadOptions) ([]Item, Token) {
	startSeq := opts.Start.Seq()
	startKey := KeyLogEntry(l.stream, startSeq)
	low := KeyLogEntry(l.stream, 0)
	hi := KeyLogEntry(l.stream, ^uint64(0))

	items := make([]Item, 0, maxInt(1, opts.Limit))
	var next Token

	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: append(hi, 0x00)})
	if err != nil {
		return items, next
	}
	defer iter.Close()

	if opts.Reverse {
		if startSeq == 0 {
			if !iter.Last() {
				return items, next
			}
		} else if !iter.SeekLT(startKey) {
			return items, next
		}
		for iter.Valid() && (opts.Limit == 0 || len(items) < opts.Limit) {
			seq := seqFromEntryKey(iter.Key())
			if dec, ok := DecodeEntry(iter.Value()); ok {
				items = append(items, Item{Seq: seq, Header: dec.Header, Payload: dec.Payload})
			}
			if !iter.Prev() {
				return items, next
			}
		}
		if iter.Valid() {
			next = TokenFromSeq(seqFromEntryKey(iter.Key()) + 1)
		}
		return items, next
	}

	if startSeq == 0 {
		if !iter.First() {
			return items, next
		}
	} else if !iter.SeekGE(startKey) {
		return items, next
	}
	for iter.Valid() && (opts.Limit == 0 || len(items) < opts.Limit) {
		seq := seqFromEntryKey(iter.Key())
		if dec, ok := DecodeEntry(iter.Value()); ok {
			items = append(items, Item{Seq: seq, Header: dec.Header, Payload: dec.Payload})
		}
		if !iter.Next() {
			return items, next
		}
	}
	if iter.Valid() {
		next = TokenFromSeq(seqFromEntryKey(iter.Key()))
	}
	return items, next
}

func seqFromEntryKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
