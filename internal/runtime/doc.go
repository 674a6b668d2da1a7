// Package runtime wires Moor's storage and configuration into a single-node
// instance and hands out the anchoring record stream.
package runtime
