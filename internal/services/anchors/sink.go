package anchorsvc

import "errors"

// defaultSubscribeBufLen applies when config supplies no capacity.
const defaultSubscribeBufLen = 1024

// BufferedSink decouples record delivery from a slow transport: Send
// enqueues into a bounded channel and a drain goroutine writes through to
// the wrapped sink, flushing whenever the buffer empties. A full buffer
// blocks Send, backpressuring the read loop instead of growing memory.
type BufferedSink struct {
	dst  SubscribeSink
	ch   chan SubscribeItem
	done chan struct{}
	err  error // set by the drain goroutine before done closes
}

// NewBufferedSink wraps dst with a buffer of n records (n <= 0 uses the
// default). Close must be called to drain the buffer and release the sink.
func NewBufferedSink(dst SubscribeSink, n int) *BufferedSink {
	if n <= 0 {
		n = defaultSubscribeBufLen
	}
	b := &BufferedSink{
		dst:  dst,
		ch:   make(chan SubscribeItem, n),
		done: make(chan struct{}),
	}
	go b.drain()
	return b
}

func (b *BufferedSink) drain() {
	defer close(b.done)
	for it := range b.ch {
		if err := b.dst.Send(it); err != nil {
			b.err = err
			return
		}
		if len(b.ch) == 0 {
			if err := b.dst.Flush(); err != nil {
				b.err = err
				return
			}
		}
	}
}

// Send enqueues one record, blocking when the buffer is full. A transport
// failure in the drain goroutine surfaces here on the next call.
func (b *BufferedSink) Send(it SubscribeItem) error {
	select {
	case <-b.done:
		return b.sinkErr()
	default:
	}
	select {
	case <-b.done:
		return b.sinkErr()
	case b.ch <- it:
		return nil
	}
}

// Flush is a no-op; the drain goroutine flushes whenever it catches up.
func (b *BufferedSink) Flush() error { return nil }

// Close drains outstanding records and reports any transport failure.
func (b *BufferedSink) Close() error {
	close(b.ch)
	<-b.done
	return b.err
}

func (b *BufferedSink) sinkErr() error {
	if b.err != nil {
		return b.err
	}
	return errors.New("sink closed")
}
