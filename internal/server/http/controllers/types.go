package controllers

import (
	anchorsvc "github.com/moorlog/moor/internal/services/anchors"
	"github.com/moorlog/moor/pkg/id"
)

// Common request/response types for HTTP controllers

// submitReq represents one anchoring submission. Hashes are 32-byte hex
// strings, with or without the 0x prefix.
type submitReq struct {
	BatchIDHash string `json:"batch_id_hash"`
	MerkleRoot  string `json:"merkle_root"`
	ChainTag    string `json:"chain_tag"`
	Note        string `json:"note"`
}

// batchReq represents a batch submission; item i of each array forms one
// record, and all items share the chain tag and note.
type batchReq struct {
	BatchIDHashes []string `json:"batch_id_hashes"`
	MerkleRoots   []string `json:"merkle_roots"`
	ChainTag      string   `json:"chain_tag"`
	Note          string   `json:"note"`
}

// recordJSON represents one accepted record in a response.
type recordJSON struct {
	Seq         uint64 `json:"seq"`
	ReceiptID   string `json:"receipt_id,omitempty"`
	BatchIDHash string `json:"batch_id_hash"`
	MerkleRoot  string `json:"merkle_root"`
	Submitter   string `json:"submitter"`
	Timestamp   uint64 `json:"timestamp"`
	ChainTag    string `json:"chain_tag"`
	Note        string `json:"note,omitempty"`
}

func toRecordJSON(sr anchorsvc.StoredRecord) recordJSON {
	out := recordJSON{
		Seq:         sr.Seq,
		BatchIDHash: sr.Record.BatchIDHash.Hex(),
		MerkleRoot:  sr.Record.MerkleRoot.Hex(),
		Submitter:   sr.Record.Submitter.Hex(),
		Timestamp:   sr.Record.Timestamp,
		ChainTag:    sr.Record.ChainTag,
		Note:        sr.Record.Note,
	}
	if sr.ID != (id.ID{}) {
		out.ReceiptID = sr.ID.String()
	}
	return out
}

// listResp represents a page of accepted records.
type listResp struct {
	Records   []recordJSON `json:"records"`
	NextToken string       `json:"next_token,omitempty"`
}

// subscribeEvent is one SSE-delivered record with its resume token.
type subscribeEvent struct {
	Record recordJSON `json:"record"`
	Token  string     `json:"token"`
}
