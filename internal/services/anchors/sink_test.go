package anchorsvc

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type recordingSink struct {
	items   []SubscribeItem
	flushes int
	failAt  int // fail from the Nth Send on (1-based); 0 disables
	sends   int
}

func (s *recordingSink) Send(it SubscribeItem) error {
	s.sends++
	if s.failAt > 0 && s.sends >= s.failAt {
		return errors.New("client gone")
	}
	s.items = append(s.items, it)
	return nil
}

func (s *recordingSink) Flush() error {
	s.flushes++
	return nil
}

func TestBufferedSinkDeliversInOrder(t *testing.T) {
	dst := &recordingSink{}
	b := NewBufferedSink(dst, 4)
	for i := 0; i < 10; i++ {
		if err := b.Send(SubscribeItem{Token: fmt.Sprint(i)}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(dst.items) != 10 {
		t.Fatalf("delivered %d of 10", len(dst.items))
	}
	for i, it := range dst.items {
		if it.Token != fmt.Sprint(i) {
			t.Fatalf("item %d: token %s", i, it.Token)
		}
	}
	if dst.flushes == 0 {
		t.Fatalf("never flushed")
	}
}

func TestBufferedSinkSurfacesTransportError(t *testing.T) {
	dst := &recordingSink{failAt: 1}
	b := NewBufferedSink(dst, 2)
	_ = b.Send(SubscribeItem{Token: "1"})
	if err := b.Close(); err == nil {
		t.Fatalf("transport failure not surfaced")
	}
}

func TestSubscribeThroughBufferedSink(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(ctx, alice, hashA, rootA, "t", ""); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	dst := &recordingSink{}
	b := NewBufferedSink(dst, 2)
	if err := svc.Subscribe(ctx, "", "", SubscribeOptions{FromEarliest: true, Limit: 3}, b); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(dst.items) != 3 {
		t.Fatalf("delivered %d of 3", len(dst.items))
	}
	for i, it := range dst.items {
		if it.Record.Seq != uint64(i+1) {
			t.Fatalf("item %d: seq %d", i, it.Record.Seq)
		}
	}
}
