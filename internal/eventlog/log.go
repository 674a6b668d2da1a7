package eventlog

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"

	pebblestore "github.com/moorlog/moor/internal/storage/pebble"
)

// AppendRecord is a single appendable entry.
type AppendRecord struct {
	Header  []byte
	Payload []byte
}

// Log is a durable append-only stream with a single global total order.
// Appends are serialized by a mutex and committed as one Pebble batch, so an
// invocation's records land atomically or not at all.
type Log struct {
	db     *pebblestore.DB
	stream string

	mu       sync.Mutex
	lastSeq  uint64
	notifyCh chan struct{}
}

// OpenLog initializes a Log and restores the last sequence from metadata.
func OpenLog(db *pebblestore.DB, stream string) (*Log, error) {
	if stream == "" {
		return nil, errors.New("eventlog: stream name is required")
	}
	l := &Log{db: db, stream: stream, notifyCh: make(chan struct{})}
	meta, err := db.Get(KeyLogMeta(stream))
	if err == nil && len(meta) >= 8 {
		l.lastSeq = binary.BigEndian.Uint64(meta[:8])
	}
	return l, nil
}

// Stream returns the stream name.
func (l *Log) Stream() string { return l.stream }

// LastSeq returns the sequence of the most recently appended entry (0 if none).
func (l *Log) LastSeq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSeq
}

// Append appends the records as a single atomic batch and returns the
// assigned sequence numbers. Sequences start at 1 and never repeat.
func (l *Log) Append(ctx context.Context, recs []AppendRecord) ([]uint64, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.db.NewBatch()
	defer b.Close()

	seqs := make([]uint64, len(recs))
	next := l.lastSeq
	for i, r := range recs {
		next++
		if err := b.Set(KeyLogEntry(l.stream, next), EncodeEntry(r.Header, r.Payload), nil); err != nil {
			return nil, err
		}
		seqs[i] = next
	}

	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], next)
	if err := b.Set(KeyLogMeta(l.stream), meta[:], nil); err != nil {
		return nil, err
	}

	if err := l.db.CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	l.lastSeq = next

	// wake blocked readers
	close(l.notifyCh)
	l.notifyCh = make(chan struct{})
	return seqs, nil
}

// ErrNotFound reports a sequence with no stored entry.
var ErrNotFound = errors.New("eventlog: entry not found")

// Get loads a single entry by sequence.
func (l *Log) Get(seq uint64) (Item, error) {
	val, err := l.db.Get(KeyLogEntry(l.stream, seq))
	if err != nil {
		return Item{}, ErrNotFound
	}
	dec, ok := DecodeEntry(val)
	if !ok {
		return Item{}, ErrNotFound
	}
	return Item{Seq: seq, Header: dec.Header, Payload: dec.Payload}, nil
}
