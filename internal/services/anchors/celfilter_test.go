package anchorsvc

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/moorlog/moor/internal/anchor"
)

func filterRecord() StoredRecord {
	return StoredRecord{
		Seq: 7,
		Record: anchor.Record{
			BatchIDHash: common.HexToHash("0xaa"),
			MerkleRoot:  common.HexToHash("0xbb"),
			Submitter:   common.HexToAddress("0x00000000000000000000000000000000000a11ce"),
			Timestamp:   1724500000,
			ChainTag:    "mainnet",
			Note:        "nightly",
		},
	}
}

func TestFilterDisabledWhenEmpty(t *testing.T) {
	for _, expr := range []string{"", "   "} {
		f, err := newCELFilter(expr)
		if err != nil {
			t.Fatalf("%q: %v", expr, err)
		}
		if f.enabled {
			t.Fatalf("%q: filter enabled", expr)
		}
		if !f.Eval(filterRecord()) {
			t.Fatalf("%q: disabled filter dropped a record", expr)
		}
	}
}

func TestFilterOnSubmitter(t *testing.T) {
	rec := filterRecord()
	f, err := newCELFilter("submitter == '" + strings.ToLower(rec.Record.Submitter.Hex()) + "'")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Eval(rec) {
		t.Fatalf("matching submitter dropped")
	}
	other := rec
	other.Record.Submitter = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	if f.Eval(other) {
		t.Fatalf("non-matching submitter passed")
	}
}

func TestFilterCombinesFields(t *testing.T) {
	f, err := newCELFilter("chain_tag == 'mainnet' && seq > 5 && note.contains('night')")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	rec := filterRecord()
	if !f.Eval(rec) {
		t.Fatalf("matching record dropped")
	}
	rec.Record.ChainTag = "sepolia"
	if f.Eval(rec) {
		t.Fatalf("wrong chain tag passed")
	}
}

func TestFilterHexValuesAreLowercase(t *testing.T) {
	f, err := newCELFilter("batch_id.startsWith('0x') && batch_id == batch_id.lowerAscii()")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Eval(filterRecord()) {
		t.Fatalf("hex values not lowercase 0x-prefixed")
	}
}

func TestFilterOnNoteSize(t *testing.T) {
	f, err := newCELFilter("note_size > 0 && note_size <= 256")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	rec := filterRecord()
	if !f.Eval(rec) {
		t.Fatalf("noted record dropped")
	}
	rec.Record.Note = ""
	if f.Eval(rec) {
		t.Fatalf("empty note passed")
	}
}

func TestCompileFilter(t *testing.T) {
	for _, expr := range []string{"", "note_size > 0", "submitter == '0xab'"} {
		if err := CompileFilter(expr); err != nil {
			t.Fatalf("%q: %v", expr, err)
		}
	}
	if err := CompileFilter("submitter =="); err == nil {
		t.Fatalf("malformed expression compiled")
	}
}

func TestFilterRejectsBadExpressions(t *testing.T) {
	for _, expr := range []string{"submitter ==", "no_such_var == 'x'"} {
		if _, err := newCELFilter(expr); err == nil {
			t.Fatalf("%q: expected error", expr)
		}
	}
}

func TestFilterNonBoolResultDrops(t *testing.T) {
	// An expression that compiles but yields a non-bool must drop.
	f, err := newCELFilter("seq + 1")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if f.Eval(filterRecord()) {
		t.Fatalf("non-bool result passed")
	}
}
