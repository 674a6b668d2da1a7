// Package anchorsvc bridges the pure anchoring core (internal/anchor) and
// the durable record stream (internal/eventlog).
//
// Submit and SubmitBatch seal submissions against the fixed structural
// limits and append the resulting records; a batch lands in one atomic log
// append, so it fully succeeds or leaves the stream untouched. Reads,
// live subscription with optional CEL filters, and stream statistics serve
// the public query surface. The service performs no authorization: trust is
// delegated to consumers filtering on the submitter identity.
package anchorsvc
