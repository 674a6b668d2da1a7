package anchorsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/moorlog/moor/internal/anchor"
	cfgpkg "github.com/moorlog/moor/internal/config"
	"github.com/moorlog/moor/internal/runtime"
	pebblestore "github.com/moorlog/moor/internal/storage/pebble"
	logpkg "github.com/moorlog/moor/pkg/log"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	hashA = common.HexToHash("0xaa")
	rootA = common.HexToHash("0xbb")
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error"})
	svc, err := NewWithLogger(rt, logger)
	if err != nil {
		t.Fatalf("svc: %v", err)
	}
	svc.now = func() time.Time { return time.Unix(1724500000, 0) }
	return svc
}

func TestSubmitAppendsOneRecord(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	rcpt, err := svc.Submit(ctx, alice, hashA, rootA, "mainnet", "run 1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rcpt.BatchIDHash != hashA {
		t.Fatalf("receipt does not echo batch id hash")
	}
	if rcpt.Seq != 1 || rcpt.Submitter != alice || rcpt.Timestamp != 1724500000 {
		t.Fatalf("receipt: %+v", rcpt)
	}

	recs, _, err := svc.List(ctx, "", 0, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("want 1 record, got %d", len(recs))
	}
	got := recs[0].Record
	if got.BatchIDHash != hashA || got.MerkleRoot != rootA || got.Submitter != alice || got.ChainTag != "mainnet" || got.Note != "run 1" {
		t.Fatalf("stored record: %+v", got)
	}
}

func TestSubmitRejectionAppendsNothing(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, alice, common.Hash{}, rootA, "mainnet", ""); !errors.Is(err, anchor.ErrInvalidBatchIDHash) {
		t.Fatalf("err: %v", err)
	}
	recs, _, _ := svc.List(ctx, "", 0, false)
	if len(recs) != 0 {
		t.Fatalf("rejected submit appended %d records", len(recs))
	}
}

func TestSubmitDuplicatesProduceDistinctRecords(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a, err := svc.Submit(ctx, alice, hashA, rootA, "mainnet", "")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := svc.Submit(ctx, alice, hashA, rootA, "mainnet", "")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if a.Seq == b.Seq || a.ID == b.ID {
		t.Fatalf("duplicates collapsed: %+v %+v", a, b)
	}
	recs, _, _ := svc.List(ctx, "", 0, false)
	if len(recs) != 2 {
		t.Fatalf("want 2 records, got %d", len(recs))
	}
}

func TestSubmitBatchAtomicAppend(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	hashes := []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02"), common.HexToHash("0x03")}
	roots := []common.Hash{common.HexToHash("0x11"), common.HexToHash("0x12"), common.HexToHash("0x13")}
	rcpt, err := svc.SubmitBatch(ctx, bob, hashes, roots, "sepolia", "bulk")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(rcpt.Receipts) != 3 {
		t.Fatalf("receipts: %d", len(rcpt.Receipts))
	}
	for i, r := range rcpt.Receipts {
		if r.Seq != uint64(i+1) || r.BatchIDHash != hashes[i] {
			t.Fatalf("receipt %d: %+v", i, r)
		}
	}
	recs, _, _ := svc.List(ctx, "", 0, false)
	if len(recs) != 3 {
		t.Fatalf("want 3 records, got %d", len(recs))
	}
	for i, sr := range recs {
		if sr.Record.ChainTag != "sepolia" || sr.Record.Note != "bulk" || sr.Record.Submitter != bob || sr.Record.Timestamp != recs[0].Record.Timestamp {
			t.Fatalf("record %d shared fields: %+v", i, sr.Record)
		}
	}
}

func TestSubmitBatchRejectionLeavesStreamUntouched(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	hashes := []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02"), {}}
	roots := []common.Hash{common.HexToHash("0x11"), common.HexToHash("0x12"), common.HexToHash("0x13")}
	if _, err := svc.SubmitBatch(ctx, bob, hashes, roots, "t", ""); !errors.Is(err, anchor.ErrInvalidBatchIDHash) {
		t.Fatalf("err: %v", err)
	}
	recs, _, _ := svc.List(ctx, "", 0, false)
	if len(recs) != 0 {
		t.Fatalf("partial batch appended %d records", len(recs))
	}
	st, _ := svc.Stats(ctx)
	if st.LastSeq != 0 || st.Count != 0 {
		t.Fatalf("stats after rejected batch: %+v", st)
	}
}

func TestDistinctSubmittersAttributed(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, alice, hashA, rootA, "t", ""); err != nil {
		t.Fatalf("alice: %v", err)
	}
	if _, err := svc.Submit(ctx, bob, hashA, rootA, "t", ""); err != nil {
		t.Fatalf("bob: %v", err)
	}
	recs, _, _ := svc.List(ctx, "", 0, false)
	if recs[0].Record.Submitter != alice || recs[1].Record.Submitter != bob {
		t.Fatalf("identity cross-contamination: %+v", recs)
	}
}

func TestListPagingAndReverse(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := svc.Submit(ctx, alice, common.BytesToHash([]byte{byte(i + 1)}), rootA, "t", ""); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	page, next, err := svc.List(ctx, "", 2, false)
	if err != nil || len(page) != 2 || next != "3" {
		t.Fatalf("page1: n=%d next=%q err=%v", len(page), next, err)
	}
	page, _, err = svc.List(ctx, next, 2, false)
	if err != nil || page[0].Seq != 3 {
		t.Fatalf("page2: %+v err=%v", page, err)
	}
	rev, _, err := svc.List(ctx, "", 2, true)
	if err != nil || rev[0].Seq != 5 || rev[1].Seq != 4 {
		t.Fatalf("reverse: %+v err=%v", rev, err)
	}
	if _, _, err := svc.List(ctx, "not-a-token", 0, false); err == nil {
		t.Fatalf("bad token accepted")
	}
}

func TestGetBySeq(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	rcpt, _ := svc.Submit(ctx, alice, hashA, rootA, "t", "n")
	got, err := svc.Get(ctx, rcpt.Seq)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Record.BatchIDHash != hashA || got.ID != rcpt.ID {
		t.Fatalf("got: %+v", got)
	}
	if _, err := svc.Get(ctx, 42); err == nil {
		t.Fatalf("missing seq returned a record")
	}
}

func TestLimitsMatchCoreConstants(t *testing.T) {
	svc := newTestService(t)
	lim := svc.Limits()
	if lim.MaxBatchSize != anchor.MaxBatchSize || lim.MaxChainTagLen != anchor.MaxChainTagLen || lim.MaxNoteLen != anchor.MaxNoteLen {
		t.Fatalf("limits: %+v", lim)
	}
}

// chanSink collects delivered records for subscription tests.
type chanSink struct {
	ch chan SubscribeItem
}

func (c chanSink) Send(it SubscribeItem) error { c.ch <- it; return nil }
func (c chanSink) Flush() error                { return nil }

func TestSubscribeFromEarliestWithLimit(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(ctx, alice, common.BytesToHash([]byte{byte(i + 1)}), rootA, "t", ""); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	sink := chanSink{ch: make(chan SubscribeItem, 8)}
	if err := svc.Subscribe(ctx, "", "", SubscribeOptions{FromEarliest: true, Limit: 3}, sink); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	close(sink.ch)
	var seqs []uint64
	for it := range sink.ch {
		seqs = append(seqs, it.Record.Seq)
	}
	if len(seqs) != 3 || seqs[0] != 1 || seqs[2] != 3 {
		t.Fatalf("delivered: %v", seqs)
	}
}

func TestSubscribeGroupCursorResumes(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 4; i++ {
		if _, err := svc.Submit(ctx, alice, common.BytesToHash([]byte{byte(i + 1)}), rootA, "t", ""); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	sink := chanSink{ch: make(chan SubscribeItem, 8)}
	if err := svc.Subscribe(ctx, "idx", "", SubscribeOptions{FromEarliest: true, Limit: 2}, sink); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	// Second subscription under the same group resumes past the cursor.
	if err := svc.Subscribe(ctx, "idx", "", SubscribeOptions{Limit: 2}, sink); err != nil {
		t.Fatalf("second subscribe: %v", err)
	}
	close(sink.ch)
	var seqs []uint64
	for it := range sink.ch {
		seqs = append(seqs, it.Record.Seq)
	}
	want := []uint64{1, 2, 3, 4}
	if len(seqs) != len(want) {
		t.Fatalf("delivered: %v", seqs)
	}
	for i := range want {
		if seqs[i] != want[i] {
			t.Fatalf("delivered: %v", seqs)
		}
	}
}

func TestSubscribeSeesLiveAppends(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sink := chanSink{ch: make(chan SubscribeItem, 8)}
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Subscribe(ctx, "", "", SubscribeOptions{Limit: 1}, sink)
	}()
	time.Sleep(50 * time.Millisecond)
	if _, err := svc.Submit(ctx, bob, hashA, rootA, "live", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case it := <-sink.ch:
		if it.Record.Record.ChainTag != "live" {
			t.Fatalf("delivered: %+v", it.Record.Record)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no live delivery")
	}
	if err := <-errCh; err != nil {
		t.Fatalf("subscribe: %v", err)
	}
}

func TestStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	st, err := svc.Stats(ctx)
	if err != nil || st.Count != 0 || st.FirstSeq != 0 {
		t.Fatalf("empty stats: %+v err=%v", st, err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(ctx, alice, hashA, rootA, "t", ""); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	st, err = svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.FirstSeq != 1 || st.LastSeq != 3 || st.Count != 3 || st.Stream != "anchors" {
		t.Fatalf("stats: %+v", st)
	}
	if st.LastAcceptMs == 0 {
		t.Fatalf("missing last accept time")
	}
}
