package anchor

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Seal validates a single submission and returns the record it produces.
// Checks run in a fixed order and the first failure aborts the whole
// operation; on success the record carries the supplied submitter identity
// and acceptance time, truncated to whole seconds.
func Seal(submitter common.Address, at time.Time, batchIDHash, merkleRoot common.Hash, chainTag, note string) (Record, error) {
	if batchIDHash == zeroHash {
		return Record{}, ErrInvalidBatchIDHash
	}
	if merkleRoot == zeroHash {
		return Record{}, ErrInvalidMerkleRoot
	}
	if err := checkStrings(chainTag, note); err != nil {
		return Record{}, err
	}
	return Record{
		BatchIDHash: batchIDHash,
		MerkleRoot:  merkleRoot,
		Submitter:   submitter,
		Timestamp:   uint64(at.Unix()),
		ChainTag:    chainTag,
		Note:        note,
	}, nil
}

// SealBatch validates a batch submission and returns one record per index.
// Shape checks run first (cheap, whole-batch), then every item is checked
// before any record is returned: a batch either seals fully or not at all.
// All records share the submitter, timestamp, chain tag, and note; only the
// batch id hash and Merkle root vary per index.
func SealBatch(submitter common.Address, at time.Time, batchIDHashes, merkleRoots []common.Hash, chainTag, note string) ([]Record, error) {
	if len(batchIDHashes) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(batchIDHashes) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}
	if len(batchIDHashes) != len(merkleRoots) {
		return nil, ErrLengthMismatch
	}
	if err := checkStrings(chainTag, note); err != nil {
		return nil, err
	}
	for i := range batchIDHashes {
		if batchIDHashes[i] == zeroHash {
			return nil, fmt.Errorf("item %d: %w", i, ErrInvalidBatchIDHash)
		}
		if merkleRoots[i] == zeroHash {
			return nil, fmt.Errorf("item %d: %w", i, ErrInvalidMerkleRoot)
		}
	}
	ts := uint64(at.Unix())
	recs := make([]Record, len(batchIDHashes))
	for i := range batchIDHashes {
		recs[i] = Record{
			BatchIDHash: batchIDHashes[i],
			MerkleRoot:  merkleRoots[i],
			Submitter:   submitter,
			Timestamp:   ts,
			ChainTag:    chainTag,
			Note:        note,
		}
	}
	return recs, nil
}

// checkStrings enforces the shared chain tag and note bounds. Lengths are
// byte lengths, so multi-byte UTF-8 counts against the limits.
func checkStrings(chainTag, note string) error {
	if chainTag == "" {
		return ErrEmptyChainTag
	}
	if len(chainTag) > MaxChainTagLen {
		return ErrChainTagTooLong
	}
	if len(note) > MaxNoteLen {
		return ErrNoteTooLong
	}
	return nil
}
