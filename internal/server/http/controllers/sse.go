package controllers

import (
	"encoding/json"
	"net/http"

	anchorsvc "github.com/moorlog/moor/internal/services/anchors"
)

// sseSink implements the SubscribeSink interface for Server-Sent Events.
//
// It formats accepted records as SSE data events for real-time streaming
// to web clients.
type sseSink struct {
	w http.ResponseWriter
	r *http.Request
}

// Send formats and sends a record as an SSE data event.
//
// The record is JSON-encoded and sent with the "data: " prefix followed by
// two newlines as required by the SSE specification.
func (s sseSink) Send(it anchorsvc.SubscribeItem) error {
	b, _ := json.Marshal(subscribeEvent{Record: toRecordJSON(it.Record), Token: it.Token})
	if _, err := s.w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("\n\n")); err != nil {
		return err
	}
	return nil
}

// Flush flushes the HTTP response writer if it supports flushing.
//
// This ensures that SSE events are immediately sent to the client.
func (s sseSink) Flush() error {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
