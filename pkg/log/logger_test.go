package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTextFormatterFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithLevel(DebugLevel), WithFormatter(&TextFormatter{}), WithOutput(NewWriterOutput(&buf)))
	logger.Info("accepted", Str("stream", "anchors"), Uint64("seq", 7))
	line := buf.String()
	if !strings.Contains(line, "INFO accepted") {
		t.Fatalf("line: %q", line)
	}
	if strings.Index(line, "seq=7") > strings.Index(line, "stream=anchors") {
		t.Fatalf("fields not sorted: %q", line)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithFormatter(&JSONFormatter{}), WithOutput(NewWriterOutput(&buf)))
	logger.Error("append failed", Err(errors.New("disk full")), Str("stream", "anchors"))
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["level"] != "ERROR" || doc["msg"] != "append failed" || doc["error"] != "disk full" || doc["stream"] != "anchors" {
		t.Fatalf("doc: %v", doc)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithLevel(WarnLevel), WithOutput(NewWriterOutput(&buf)))
	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")
	if got := buf.String(); strings.Contains(got, "hidden") || !strings.Contains(got, "shown") {
		t.Fatalf("output: %q", got)
	}
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithOutput(NewWriterOutput(&buf))).With(Component("anchors"))
	logger.Info("hello")
	if !strings.Contains(buf.String(), "component=anchors") {
		t.Fatalf("output: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": DebugLevel, "INFO": InfoLevel, "warning": WarnLevel, "error": ErrorLevel} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestSlogBridge(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithLevel(DebugLevel), WithOutput(NewWriterOutput(&buf)))
	sl := NewSlogLogger(logger)
	sl.Warn("compaction slow", "ms", 120)
	if got := buf.String(); !strings.Contains(got, "WARN compaction slow") || !strings.Contains(got, "ms=120") {
		t.Fatalf("output: %q", got)
	}
}
