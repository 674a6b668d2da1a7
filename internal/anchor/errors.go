package anchor

import "errors"

// Every rejection reason is a distinct sentinel so transports can map each
// one to a stable client-facing code. All of them are pre-effect: a failed
// submission never appends anything.
var (
	ErrInvalidBatchIDHash = errors.New("anchor: batch id hash is zero")
	ErrInvalidMerkleRoot  = errors.New("anchor: merkle root is zero")
	ErrEmptyChainTag      = errors.New("anchor: chain tag is empty")
	ErrChainTagTooLong    = errors.New("anchor: chain tag exceeds 64 bytes")
	ErrNoteTooLong        = errors.New("anchor: note exceeds 256 bytes")
	ErrEmptyBatch         = errors.New("anchor: batch has no items")
	ErrBatchTooLarge      = errors.New("anchor: batch exceeds 100 items")
	ErrLengthMismatch     = errors.New("anchor: batch id hashes and merkle roots differ in length")
)
