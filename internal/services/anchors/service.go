package anchorsvc

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/moorlog/moor/internal/anchor"
	"github.com/moorlog/moor/internal/eventlog"
	"github.com/moorlog/moor/internal/runtime"
	"github.com/moorlog/moor/pkg/id"
	logpkg "github.com/moorlog/moor/pkg/log"
)

// readBatchLen caps how many entries a subscription pulls per scan.
const readBatchLen = 256

// pollInterval bounds how long a tailing subscription sleeps between scans
// when no append notification arrives.
const pollInterval = 250 * time.Millisecond

// Service provides the anchoring operations over the durable record stream.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
	ledger *eventlog.Log
	ids    *id.Generator

	// now is swappable in tests; records carry whole-second timestamps.
	now func() time.Time

	subsMu     sync.Mutex
	activeSubs int
}

// New returns a Service using a default logger.
func New(rt *runtime.Runtime) (*Service, error) {
	return NewWithLogger(rt, logpkg.NewLogger().With(logpkg.Component("anchors")))
}

// NewWithLogger returns a Service emitting through the provided logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) (*Service, error) {
	ledger, err := rt.OpenLedger()
	if err != nil {
		return nil, err
	}
	return &Service{
		rt:     rt,
		logger: logger,
		ledger: ledger,
		ids:    id.NewGenerator(),
		now:    time.Now,
	}, nil
}

// Limits exposes the compiled-in structural bounds.
func (s *Service) Limits() Limits {
	return Limits{
		MaxBatchSize:   anchor.MaxBatchSize,
		MaxChainTagLen: anchor.MaxChainTagLen,
		MaxNoteLen:     anchor.MaxNoteLen,
	}
}

// Submit validates one submission and appends its record to the stream.
// The receipt echoes the batch id hash as the confirmation value. On any
// validation failure nothing is appended.
func (s *Service) Submit(ctx context.Context, submitter common.Address, batchIDHash, merkleRoot common.Hash, chainTag, note string) (Receipt, error) {
	rec, err := anchor.Seal(submitter, s.now(), batchIDHash, merkleRoot, chainTag, note)
	if err != nil {
		return Receipt{}, err
	}
	rid := s.ids.Next()
	seqs, err := s.ledger.Append(ctx, []eventlog.AppendRecord{{Header: rid.Bytes(), Payload: anchor.EncodeRecord(rec)}})
	if err != nil {
		return Receipt{}, fmt.Errorf("append record: %w", err)
	}
	s.logger.Debug("record accepted",
		logpkg.Uint64("seq", seqs[0]),
		logpkg.Str("submitter", rec.Submitter.Hex()),
		logpkg.Str("chain_tag", rec.ChainTag),
	)
	return Receipt{
		BatchIDHash: rec.BatchIDHash,
		Seq:         seqs[0],
		ID:          rid,
		Submitter:   rec.Submitter,
		Timestamp:   rec.Timestamp,
	}, nil
}

// SubmitBatch validates a batch submission and appends all of its records in
// one atomic log append: either every record lands or none does. All records
// share the submitter, acceptance timestamp, chain tag, and note.
func (s *Service) SubmitBatch(ctx context.Context, submitter common.Address, batchIDHashes, merkleRoots []common.Hash, chainTag, note string) (BatchReceipt, error) {
	recs, err := anchor.SealBatch(submitter, s.now(), batchIDHashes, merkleRoots, chainTag, note)
	if err != nil {
		return BatchReceipt{}, err
	}
	appends := make([]eventlog.AppendRecord, len(recs))
	rids := make([]id.ID, len(recs))
	for i, rec := range recs {
		rids[i] = s.ids.Next()
		appends[i] = eventlog.AppendRecord{Header: rids[i].Bytes(), Payload: anchor.EncodeRecord(rec)}
	}
	seqs, err := s.ledger.Append(ctx, appends)
	if err != nil {
		return BatchReceipt{}, fmt.Errorf("append batch: %w", err)
	}
	out := BatchReceipt{
		Receipts:  make([]Receipt, len(recs)),
		Submitter: submitter,
		Timestamp: recs[0].Timestamp,
	}
	for i, rec := range recs {
		out.Receipts[i] = Receipt{
			BatchIDHash: rec.BatchIDHash,
			Seq:         seqs[i],
			ID:          rids[i],
			Submitter:   rec.Submitter,
			Timestamp:   rec.Timestamp,
		}
	}
	s.logger.Info("batch accepted",
		logpkg.Int("records", len(recs)),
		logpkg.Uint64("first_seq", seqs[0]),
		logpkg.Uint64("last_seq", seqs[len(seqs)-1]),
		logpkg.Str("submitter", submitter.Hex()),
	)
	return out, nil
}

// List reads accepted records with an optional resume token.
func (s *Service) List(_ context.Context, startToken string, limit int, reverse bool) ([]StoredRecord, string, error) {
	start, err := parseToken(startToken)
	if err != nil {
		return nil, "", err
	}
	items, next := s.ledger.Read(eventlog.ReadOptions{Start: eventlog.TokenFromSeq(start), Limit: limit, Reverse: reverse})
	out := make([]StoredRecord, 0, len(items))
	for _, it := range items {
		rec, derr := decodeItem(it)
		if derr != nil {
			return nil, "", derr
		}
		out = append(out, rec)
	}
	return out, formatToken(next.Seq()), nil
}

// Get loads a single accepted record by sequence.
func (s *Service) Get(_ context.Context, seq uint64) (StoredRecord, error) {
	it, err := s.ledger.Get(seq)
	if err != nil {
		return StoredRecord{}, err
	}
	return decodeItem(it)
}

// Stats summarizes the stream. The stream never trims, so the count equals
// the last sequence.
func (s *Service) Stats(_ context.Context) (Stats, error) {
	last := s.ledger.LastSeq()
	st := Stats{
		Stream:            s.ledger.Stream(),
		LastSeq:           last,
		Count:             last,
		ActiveSubscribers: s.ActiveSubscribersCount(),
	}
	if last > 0 {
		st.FirstSeq = 1
		if it, err := s.ledger.Get(last); err == nil {
			if rid, ok := id.FromBytes(it.Header); ok {
				st.LastAcceptMs = rid.Ms()
			}
		}
	}
	return st, nil
}

// ActiveSubscribersCount reports currently attached subscribers.
func (s *Service) ActiveSubscribersCount() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return s.activeSubs
}

// Subscribe streams records to sink until ctx is done or the limit is hit.
// With a non-empty group, delivery resumes from the group's durable cursor
// and the cursor advances after each sent record (at-least-once). An
// explicit start token overrides the cursor; otherwise delivery starts at
// the tail unless FromEarliest is set.
func (s *Service) Subscribe(ctx context.Context, group, startToken string, opts SubscribeOptions, sink SubscribeSink) error {
	start, err := parseToken(startToken)
	if err != nil {
		return err
	}
	if start == 0 && group != "" {
		if tok, ok := s.ledger.GetCursor(group); ok {
			start = tok.Seq() + 1
		}
	}
	if start == 0 && !opts.FromEarliest {
		start = s.ledger.LastSeq() + 1
	}
	if start == 0 {
		start = 1
	}

	flt, err := newCELFilter(opts.Filter)
	if err != nil {
		return err
	}

	s.subsMu.Lock()
	s.activeSubs++
	s.subsMu.Unlock()
	defer func() {
		s.subsMu.Lock()
		s.activeSubs--
		s.subsMu.Unlock()
	}()

	sent := 0
	for {
		if ctx.Err() != nil {
			return nil
		}
		items, _ := s.ledger.Read(eventlog.ReadOptions{Start: eventlog.TokenFromSeq(start), Limit: readBatchLen})
		for _, it := range items {
			start = it.Seq + 1
			rec, derr := decodeItem(it)
			if derr != nil {
				continue
			}
			if !flt.Eval(rec) {
				continue
			}
			if serr := sink.Send(SubscribeItem{Record: rec, Token: formatToken(it.Seq + 1)}); serr != nil {
				return serr
			}
			if group != "" {
				if cerr := s.ledger.CommitCursor(group, eventlog.TokenFromSeq(it.Seq)); cerr != nil {
					s.logger.Warn("cursor commit failed", logpkg.Str("group", group), logpkg.Err(cerr))
				}
			}
			sent++
			if opts.Limit > 0 && sent >= opts.Limit {
				return sink.Flush()
			}
		}
		if err := sink.Flush(); err != nil {
			return err
		}
		if len(items) == 0 {
			s.ledger.WaitForAppend(pollInterval)
		}
	}
}

// Tail streams records without a durable cursor.
func (s *Service) Tail(ctx context.Context, startToken string, opts SubscribeOptions, sink SubscribeSink) error {
	return s.Subscribe(ctx, "", startToken, opts, sink)
}

func decodeItem(it eventlog.Item) (StoredRecord, error) {
	rec, err := anchor.DecodeRecord(it.Payload)
	if err != nil {
		return StoredRecord{}, fmt.Errorf("seq %d: %w", it.Seq, err)
	}
	out := StoredRecord{Seq: it.Seq, Record: rec}
	if rid, ok := id.FromBytes(it.Header); ok {
		out.ID = rid
	}
	return out, nil
}

func parseToken(tok string) (uint64, error) {
	if tok == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad start token %q", tok)
	}
	return v, nil
}

func formatToken(seq uint64) string {
	if seq == 0 {
		return ""
	}
	return strconv.FormatUint(seq, 10)
}
