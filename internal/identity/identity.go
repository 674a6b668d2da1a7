// Package identity derives submitter identities from caller-held keys.
//
// The anchoring log is permissionless: any key is accepted and no identity
// is privileged. The derivation only guarantees that a caller cannot claim
// an identity without holding its key preimage, so downstream consumers can
// trust the Submitter field when filtering the record stream.
package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DeriveSubmitter maps a caller key to its 20-byte submitter identity: the
// last 20 bytes of SHA-256 over the raw key material.
func DeriveSubmitter(key []byte) common.Address {
	sum := sha256.Sum256(key)
	return common.BytesToAddress(sum[12:])
}

// NewKey generates a fresh 32-byte submitter key, hex-encoded.
func NewKey() (string, error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("identity: %w", err)
	}
	return hex.EncodeToString(raw[:]), nil
}

// FromHeader extracts the key from a transport credential value, accepting
// both a bare key and the "Bearer <key>" form.
func FromHeader(v string) ([]byte, bool) {
	v = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "Bearer "))
	if v == "" {
		return nil, false
	}
	return []byte(v), true
}
