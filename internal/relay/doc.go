// Package relay republishes accepted anchoring records to a Kafka topic for
// downstream indexers. It tails the record stream under a durable cursor
// group, so delivery is at-least-once across restarts.
package relay
