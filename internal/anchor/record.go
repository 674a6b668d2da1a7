package anchor

import (
	"github.com/ethereum/go-ethereum/common"
)

// Structural limits for accepted submissions. These are compiled-in and
// immutable; they are exposed to clients through the Limits accessor on the
// anchors service, never through mutable configuration.
const (
	// MaxBatchSize caps the number of records a single batch submission may carry.
	MaxBatchSize = 100
	// MaxChainTagLen is the maximum chain tag length in bytes.
	MaxChainTagLen = 64
	// MaxNoteLen is the maximum note length in bytes.
	MaxNoteLen = 256
)

// Record is one accepted anchoring entry. Once appended to the stream it is
// never mutated or removed.
//
// BatchIDHash and MerkleRoot come from the caller and are never the zero
// value in an accepted record. Submitter and Timestamp are assigned by the
// runtime at acceptance; callers cannot supply them, which is what makes the
// record a trustworthy provenance marker despite permissionless submission.
type Record struct {
	BatchIDHash common.Hash    `json:"batch_id_hash"`
	MerkleRoot  common.Hash    `json:"merkle_root"`
	Submitter   common.Address `json:"submitter"`
	Timestamp   uint64         `json:"timestamp"`
	ChainTag    string         `json:"chain_tag"`
	Note        string         `json:"note"`
}

// zeroHash is the all-zero value rejected for batch id hashes and Merkle roots.
var zeroHash common.Hash
