// Package anchor implements Moor's anchoring core: the rules that decide
// whether a submission is well-formed and the immutable record an accepted
// submission produces.
//
// The package is deliberately pure. Seal and SealBatch are functions from
// (submitter identity, acceptance time, inputs) to (records, error); they
// perform no I/O and hold no state. Durability, ordering, and atomic commit
// are supplied by the surrounding runtime (internal/eventlog), which appends
// the sealed records in a single batch or not at all.
//
// Submissions are permissionless: any submitter identity is accepted, and
// duplicate batch id hashes are allowed. Trust decisions belong to stream
// consumers filtering on the Submitter field, never to this package.
package anchor
