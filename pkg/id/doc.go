// Package id provides 128-bit, lexicographically sortable receipt
// identifiers for accepted anchor records.
//
// An ID is 16 bytes big-endian: [8 bytes ms_timestamp][8 bytes sequence],
// so byte-wise comparison preserves acceptance order and IDs minted within
// the same millisecond remain strictly increasing.
//
// The Generator is monotonic per process: a regressing system clock pins to
// the last seen millisecond, and a sequence overflow within one millisecond
// waits for the next millisecond before minting.
package id
