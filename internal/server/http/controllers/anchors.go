package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/moorlog/moor/internal/anchor"
	"github.com/moorlog/moor/internal/identity"
	"github.com/moorlog/moor/internal/runtime"
	anchorsvc "github.com/moorlog/moor/internal/services/anchors"
)

// maxFilterLen bounds subscription filter expressions.
const maxFilterLen = 2048

// AnchorsController handles all anchoring HTTP endpoints.
//
// It provides a RESTful interface to the anchors service: submission
// (single and batch), record reads, statistics, and real-time streaming
// via Server-Sent Events.
type AnchorsController struct {
	rt  *runtime.Runtime
	svc *anchorsvc.Service
}

// NewAnchorsController creates a new anchors controller.
func NewAnchorsController(rt *runtime.Runtime, svc *anchorsvc.Service) *AnchorsController {
	return &AnchorsController{
		rt:  rt,
		svc: svc,
	}
}

// RegisterRoutes registers all anchoring routes with the given mux.
//
// This method sets up HTTP endpoints for:
// - Submission (single and batch)
// - Record reads (list, get by sequence)
// - Streaming (subscribe, tail)
// - Statistics
func (c *AnchorsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/anchors", c.handleAnchors)
	mux.HandleFunc("/v1/anchors/batch", c.handleSubmitBatch)
	mux.HandleFunc("/v1/anchors/subscribe", c.handleSubscribeSSE)
	mux.HandleFunc("/v1/anchors/tail", c.handleTailSSE)
	mux.HandleFunc("/v1/anchors/stats", c.handleStats)
	mux.HandleFunc("/v1/anchors/", c.handleGetRecord)
}

// submitterFromRequest derives the submitter identity from the caller key
// carried in X-Moor-Key or Authorization.
func submitterFromRequest(r *http.Request) (common.Address, bool) {
	for _, h := range []string{"X-Moor-Key", "Authorization"} {
		if key, ok := identity.FromHeader(r.Header.Get(h)); ok {
			return identity.DeriveSubmitter(key), true
		}
	}
	return common.Address{}, false
}

// handleAnchors dispatches the collection route: POST submits one record,
// GET lists accepted records.
func (c *AnchorsController) handleAnchors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		c.handleSubmit(w, r)
	case http.MethodGet:
		c.handleList(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSubmit accepts one anchoring submission.
func (c *AnchorsController) handleSubmit(w http.ResponseWriter, r *http.Request) {
	submitter, ok := submitterFromRequest(r)
	if !ok {
		writeReason(w, http.StatusUnauthorized, "missing_submitter_key", "Submitter key required")
		return
	}
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	batchIDHash, err := parseHash(req.BatchIDHash, anchor.ErrInvalidBatchIDHash)
	if err != nil {
		writeSubmitError(w, err)
		return
	}
	merkleRoot, err := parseHash(req.MerkleRoot, anchor.ErrInvalidMerkleRoot)
	if err != nil {
		writeSubmitError(w, err)
		return
	}
	rcpt, err := c.svc.Submit(r.Context(), submitter, batchIDHash, merkleRoot, req.ChainTag, req.Note)
	if err != nil {
		writeSubmitError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(rcpt)
}

// handleSubmitBatch accepts a batch submission; it fully succeeds or the
// stream is untouched.
func (c *AnchorsController) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	submitter, ok := submitterFromRequest(r)
	if !ok {
		writeReason(w, http.StatusUnauthorized, "missing_submitter_key", "Submitter key required")
		return
	}
	var req batchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// Structural bounds come first so a malformed hash inside an oversized
	// or lopsided batch still reports the batch-level rejection.
	if len(req.BatchIDHashes) == 0 {
		writeSubmitError(w, anchor.ErrEmptyBatch)
		return
	}
	if len(req.BatchIDHashes) > anchor.MaxBatchSize {
		writeSubmitError(w, anchor.ErrBatchTooLarge)
		return
	}
	if len(req.BatchIDHashes) != len(req.MerkleRoots) {
		writeSubmitError(w, anchor.ErrLengthMismatch)
		return
	}
	batchIDHashes, err := parseHashList(req.BatchIDHashes, anchor.ErrInvalidBatchIDHash)
	if err != nil {
		writeSubmitError(w, err)
		return
	}
	merkleRoots, err := parseHashList(req.MerkleRoots, anchor.ErrInvalidMerkleRoot)
	if err != nil {
		writeSubmitError(w, err)
		return
	}
	rcpt, err := c.svc.SubmitBatch(r.Context(), submitter, batchIDHashes, merkleRoots, req.ChainTag, req.Note)
	if err != nil {
		writeSubmitError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(rcpt)
}

// handleList lists accepted records.
// Query params: start_token, limit, reverse
func (c *AnchorsController) handleList(w http.ResponseWriter, r *http.Request) {
	startToken := r.URL.Query().Get("start_token")
	limit := parseLimit(r.URL.Query().Get("limit"))
	switch {
	case limit <= 0:
		limit = 100
	case limit > 500:
		limit = 500
	}
	reverse := parseBool(r.URL.Query().Get("reverse"))

	recs, next, err := c.svc.List(r.Context(), startToken, limit, reverse)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := listResp{Records: make([]recordJSON, 0, len(recs))}
	for _, sr := range recs {
		out.Records = append(out.Records, toRecordJSON(sr))
	}
	if len(recs) == limit {
		out.NextToken = next
	}
	writeJSON(w, out)
}

// handleGetRecord gets a specific record by sequence.
// URL path: /v1/anchors/{seq}
func (c *AnchorsController) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/anchors/")
	seq, err := strconv.ParseUint(path, 10, 64)
	if err != nil || seq == 0 {
		writeError(w, http.StatusBadRequest, "Invalid sequence")
		return
	}
	sr, err := c.svc.Get(r.Context(), seq)
	if err != nil {
		writeError(w, http.StatusNotFound, "Record not found")
		return
	}
	writeJSON(w, toRecordJSON(sr))
}

// handleStats returns stream statistics.
func (c *AnchorsController) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	st, err := c.svc.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}
	writeJSON(w, st)
}

// handleSubscribeSSE streams records over SSE with durable group support.
// Query params: group, from=latest|earliest, start_token, filter, limit
func (c *AnchorsController) handleSubscribeSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	group := r.URL.Query().Get("group")
	opts, startToken, ok := subscribeOptsFromQuery(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sink := anchorsvc.NewBufferedSink(sseSink{w: w, r: r}, c.rt.Config().SubscribeBufLen)
	err := c.svc.Subscribe(r.Context(), group, startToken, opts, sink)
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}
}

// handleTailSSE streams records over SSE without a durable cursor.
// Query params: from=latest|earliest, start_token, filter, limit
func (c *AnchorsController) handleTailSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	opts, startToken, ok := subscribeOptsFromQuery(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sink := anchorsvc.NewBufferedSink(sseSink{w: w, r: r}, c.rt.Config().SubscribeBufLen)
	err := c.svc.Tail(r.Context(), startToken, opts, sink)
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to tail")
		return
	}
}

// subscribeOptsFromQuery resolves the shared subscription query params. It
// writes the rejection itself and reports ok=false when the filter is
// oversized.
func subscribeOptsFromQuery(w http.ResponseWriter, r *http.Request) (anchorsvc.SubscribeOptions, string, bool) {
	q := r.URL.Query()
	var opts anchorsvc.SubscribeOptions
	if q.Get("from") == "earliest" {
		opts.FromEarliest = true
	}
	if filter := q.Get("filter"); filter != "" {
		// bound filter length to 2KiB to avoid abuse
		if len(filter) > maxFilterLen {
			writeError(w, http.StatusBadRequest, "Filter too long")
			return opts, "", false
		}
		// compile before the response commits to an event stream so a bad
		// expression can still be rejected with a plain 400
		if err := anchorsvc.CompileFilter(filter); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid filter: "+err.Error())
			return opts, "", false
		}
		opts.Filter = filter
	}
	if limit := parseLimit(q.Get("limit")); limit > 0 {
		opts.Limit = limit
	}
	return opts, q.Get("start_token"), true
}
