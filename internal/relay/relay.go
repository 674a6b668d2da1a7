package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	kafka "github.com/segmentio/kafka-go"

	anchorsvc "github.com/moorlog/moor/internal/services/anchors"
	logpkg "github.com/moorlog/moor/pkg/log"
)

// cursorGroup is the durable subscription group the relay commits under, so
// a restarted relay resumes where the previous run left off.
const cursorGroup = "_relay"

// retryDelay paces reconnect attempts after a broker write failure.
var retryDelay = 2 * time.Second

// Event is the JSON payload published per accepted record.
type Event struct {
	Seq         uint64         `json:"seq"`
	BatchIDHash common.Hash    `json:"batch_id_hash"`
	MerkleRoot  common.Hash    `json:"merkle_root"`
	Submitter   common.Address `json:"submitter"`
	Timestamp   uint64         `json:"timestamp"`
	ChainTag    string         `json:"chain_tag"`
	Note        string         `json:"note,omitempty"`
}

// messageWriter is the slice of *kafka.Writer the relay needs; tests swap in
// a capture.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Relay republishes accepted records to a Kafka topic. Delivery is
// at-least-once: the stream cursor advances only after the broker accepted
// the message, so a crash between write and commit replays the record.
type Relay struct {
	svc    *anchorsvc.Service
	writer messageWriter
	logger logpkg.Logger
}

// New builds a relay writing to topic on brokers.
func New(svc *anchorsvc.Service, brokers []string, topic string, logger logpkg.Logger) *Relay {
	return &Relay{
		svc: svc,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: logger,
	}
}

// Run pumps records to the broker until ctx is done. Broker failures are
// retried in place; the record is not skipped.
func (r *Relay) Run(ctx context.Context) error {
	defer func() {
		if err := r.writer.Close(); err != nil {
			r.logger.Warn("writer close failed", logpkg.Err(err))
		}
	}()
	sink := &kafkaSink{ctx: ctx, relay: r}
	return r.svc.Subscribe(ctx, cursorGroup, "", anchorsvc.SubscribeOptions{FromEarliest: true}, sink)
}

// kafkaSink adapts the subscription sink to broker writes.
type kafkaSink struct {
	ctx   context.Context
	relay *Relay
}

func (k *kafkaSink) Send(it anchorsvc.SubscribeItem) error {
	msg, err := encodeMessage(it.Record)
	if err != nil {
		// Undecodable records cannot be published; log and move on rather
		// than wedging the relay.
		k.relay.logger.Error("encode failed", logpkg.Uint64("seq", it.Record.Seq), logpkg.Err(err))
		return nil
	}
	for {
		err := k.relay.writer.WriteMessages(k.ctx, msg)
		if err == nil {
			return nil
		}
		if k.ctx.Err() != nil {
			return k.ctx.Err()
		}
		k.relay.logger.Warn("broker write failed, retrying",
			logpkg.Uint64("seq", it.Record.Seq),
			logpkg.Err(err),
		)
		select {
		case <-k.ctx.Done():
			return k.ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

func (k *kafkaSink) Flush() error { return nil }

// encodeMessage keys by the submitted batch id hash so all republications of
// the same batch land on one partition.
func encodeMessage(rec anchorsvc.StoredRecord) (kafka.Message, error) {
	ev := Event{
		Seq:         rec.Seq,
		BatchIDHash: rec.Record.BatchIDHash,
		MerkleRoot:  rec.Record.MerkleRoot,
		Submitter:   rec.Record.Submitter,
		Timestamp:   rec.Record.Timestamp,
		ChainTag:    rec.Record.ChainTag,
		Note:        rec.Record.Note,
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{Key: rec.Record.BatchIDHash.Bytes(), Value: value}, nil
}
