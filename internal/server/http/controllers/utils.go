package controllers

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/moorlog/moor/internal/anchor"
)

// Helper functions for common HTTP responses

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeReason writes a rejection with a machine-readable code alongside the
// human-readable message.
func writeReason(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// rejectionCode maps a validation failure to its wire code, or "" when the
// error is not a validation rejection.
func rejectionCode(err error) string {
	switch {
	case errors.Is(err, anchor.ErrInvalidBatchIDHash):
		return "invalid_batch_id_hash"
	case errors.Is(err, anchor.ErrInvalidMerkleRoot):
		return "invalid_merkle_root"
	case errors.Is(err, anchor.ErrEmptyChainTag):
		return "empty_chain_tag"
	case errors.Is(err, anchor.ErrChainTagTooLong):
		return "chain_tag_too_long"
	case errors.Is(err, anchor.ErrNoteTooLong):
		return "note_too_long"
	case errors.Is(err, anchor.ErrEmptyBatch):
		return "empty_batch"
	case errors.Is(err, anchor.ErrBatchTooLarge):
		return "batch_too_large"
	case errors.Is(err, anchor.ErrLengthMismatch):
		return "length_mismatch"
	default:
		return ""
	}
}

// writeSubmitError maps a submit failure onto the HTTP surface: validation
// rejections are 422 with a code, everything else is a 500.
func writeSubmitError(w http.ResponseWriter, err error) {
	if code := rejectionCode(err); code != "" {
		writeReason(w, http.StatusUnprocessableEntity, code, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to append record")
}

// parseHash decodes a 32-byte hex string, accepting an optional 0x prefix.
// Malformed input maps to the sentinel for the named field so the caller
// gets the same rejection code as a zero hash.
func parseHash(s string, sentinel error) (common.Hash, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, sentinel
	}
	return common.BytesToHash(b), nil
}

// parseHashList decodes a batch hash array, tagging failures with the item
// index.
func parseHashList(in []string, sentinel error) ([]common.Hash, error) {
	out := make([]common.Hash, len(in))
	for i, s := range in {
		h, err := parseHash(s, sentinel)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = h
	}
	return out, nil
}

// parseLimit parses a limit string and returns a valid limit value.
//
// Returns 0 for empty strings or invalid values.
func parseLimit(limitStr string) int {
	if limitStr == "" {
		return 0
	}
	if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
		return limit
	}
	return 0
}

// parseBool parses a boolean string and returns the boolean value.
//
// Returns true for "true" or "1", false otherwise.
func parseBool(s string) bool {
	return s == "true" || s == "1"
}
