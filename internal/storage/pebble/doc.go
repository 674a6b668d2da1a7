// Package pebblestore wraps the Pebble key-value store with Moor's fsync
// policy and the small helper surface the event log needs: atomic batches,
// point reads/writes, and raw iterators. The anchoring stream never deletes
// entries, so the wrapper exposes no delete or compaction helpers.
package pebblestore
