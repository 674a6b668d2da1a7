package anchorsvc

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/moorlog/moor/internal/anchor"
	"github.com/moorlog/moor/pkg/id"
)

// Receipt confirms a single accepted submission. BatchIDHash echoes the
// submitted hash back as the confirmation value.
type Receipt struct {
	BatchIDHash common.Hash    `json:"batch_id_hash"`
	Seq         uint64         `json:"seq"`
	ID          id.ID          `json:"-"`
	Submitter   common.Address `json:"submitter"`
	Timestamp   uint64         `json:"timestamp"`
}

// BatchReceipt confirms an accepted batch submission.
type BatchReceipt struct {
	Receipts  []Receipt      `json:"receipts"`
	Submitter common.Address `json:"submitter"`
	Timestamp uint64         `json:"timestamp"`
}

// StoredRecord is an accepted record read back from the stream, together
// with its position and receipt identifier.
type StoredRecord struct {
	Seq    uint64
	ID     id.ID
	Record anchor.Record
}

// Limits are the compiled-in structural bounds, exposed read-only.
type Limits struct {
	MaxBatchSize   int `json:"max_batch_size"`
	MaxChainTagLen int `json:"max_chain_tag_len"`
	MaxNoteLen     int `json:"max_note_len"`
}

// Stats summarizes the record stream.
type Stats struct {
	Stream            string `json:"stream"`
	FirstSeq          uint64 `json:"first_seq"`
	LastSeq           uint64 `json:"last_seq"`
	Count             uint64 `json:"count"`
	LastAcceptMs      int64  `json:"last_accept_ms"`
	ActiveSubscribers int    `json:"active_subscribers"`
}

// SubscribeOptions shape a live subscription.
type SubscribeOptions struct {
	// FromEarliest starts at the first record when no start token or group
	// cursor applies; the default is to start at the tail.
	FromEarliest bool
	// Limit stops delivery after N records (0: unbounded).
	Limit int
	// Filter is an optional CEL expression evaluated per record.
	Filter string
}

// SubscribeItem is one delivered record.
type SubscribeItem struct {
	Record StoredRecord
	Token  string // resume token for the position after this record
}

// SubscribeSink receives delivered records; transports implement it (SSE on
// HTTP, buffered channels in tests).
type SubscribeSink interface {
	Send(it SubscribeItem) error
	Flush() error
}
