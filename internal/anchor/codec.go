package anchor

import (
	"encoding/binary"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// Wire layout for a record stored as an event log payload:
//
//	batchIDHash(32) | merkleRoot(32) | submitter(20) | timestamp(8 BE) |
//	uvarint tagLen | chainTag | uvarint noteLen | note
//
// Fixed fields first so stream consumers can index by offset; the log's own
// framing adds a crc over the whole payload.

const fixedLen = common.HashLength + common.HashLength + common.AddressLength + 8

var errShortPayload = errors.New("anchor: truncated record payload")

// EncodeRecord serializes r into the stream payload form.
func EncodeRecord(r Record) []byte {
	out := make([]byte, 0, fixedLen+2+len(r.ChainTag)+2+len(r.Note))
	out = append(out, r.BatchIDHash[:]...)
	out = append(out, r.MerkleRoot[:]...)
	out = append(out, r.Submitter[:]...)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], r.Timestamp)
	out = append(out, ts[:]...)
	out = appendString(out, r.ChainTag)
	out = appendString(out, r.Note)
	return out
}

// DecodeRecord parses a stream payload produced by EncodeRecord.
func DecodeRecord(b []byte) (Record, error) {
	if len(b) < fixedLen {
		return Record{}, errShortPayload
	}
	var r Record
	copy(r.BatchIDHash[:], b[:common.HashLength])
	b = b[common.HashLength:]
	copy(r.MerkleRoot[:], b[:common.HashLength])
	b = b[common.HashLength:]
	copy(r.Submitter[:], b[:common.AddressLength])
	b = b[common.AddressLength:]
	r.Timestamp = binary.BigEndian.Uint64(b[:8])
	b = b[8:]
	var err error
	if r.ChainTag, b, err = readString(b); err != nil {
		return Record{}, err
	}
	if r.Note, _, err = readString(b); err != nil {
		return Record{}, err
	}
	return r, nil
}

func appendString(dst []byte, s string) []byte {
	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], uint64(len(s)))
	dst = append(dst, tmp[:n]...)
	return append(dst, s...)
}

func readString(b []byte) (string, []byte, error) {
	l, n := binary.Uvarint(b)
	if n <= 0 || uint64(len(b)-n) < l {
		return "", nil, errShortPayload
	}
	return string(b[n : n+int(l)]), b[n+int(l):], nil
}
