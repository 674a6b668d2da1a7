package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/moorlog/moor/internal/identity"
)

func runCommand(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	root := NewRoot(func() string { return baseURL })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnchorSubmitCommand(t *testing.T) {
	t.Setenv("MOOR_KEY", "test-key")
	var gotKey string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/anchors" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("X-Moor-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"seq": 1})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "anchor", "submit",
		"--batch-id-hash", "0xaa", "--merkle-root", "0xbb",
		"--chain-tag", "mainnet", "--note", "n")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotKey != "test-key" {
		t.Fatalf("key header: %q", gotKey)
	}
	if gotBody["batch_id_hash"] != "0xaa" || gotBody["chain_tag"] != "mainnet" {
		t.Fatalf("body: %+v", gotBody)
	}
	if !strings.Contains(out, `"seq": 1`) {
		t.Fatalf("output: %s", out)
	}
}

func TestAnchorSubmitSurfacesRejectionCode(t *testing.T) {
	t.Setenv("MOOR_KEY", "test-key")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "chain tag is empty", "code": "empty_chain_tag"})
	}))
	defer srv.Close()

	_, err := runCommand(t, srv.URL, "anchor", "submit",
		"--batch-id-hash", "0xaa", "--merkle-root", "0xbb")
	if err == nil || !strings.Contains(err.Error(), "empty_chain_tag") {
		t.Fatalf("err: %v", err)
	}
}

func TestAnchorBatchCommandPairsFlags(t *testing.T) {
	t.Setenv("MOOR_KEY", "test-key")
	var gotBody struct {
		BatchIDHashes []string `json:"batch_id_hashes"`
		MerkleRoots   []string `json:"merkle_roots"`
		ChainTag      string   `json:"chain_tag"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/anchors/batch" {
			t.Fatalf("path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"receipts": []any{}})
	}))
	defer srv.Close()

	if _, err := runCommand(t, srv.URL, "anchor", "batch",
		"--batch-id-hash", "0x01", "--merkle-root", "0x11",
		"--batch-id-hash", "0x02", "--merkle-root", "0x12",
		"--chain-tag", "t"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(gotBody.BatchIDHashes) != 2 || gotBody.BatchIDHashes[1] != "0x02" || gotBody.MerkleRoots[0] != "0x11" {
		t.Fatalf("body: %+v", gotBody)
	}
}

func TestAnchorListCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/anchors" {
			t.Fatalf("path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "5" || r.URL.Query().Get("reverse") != "true" {
			t.Fatalf("query: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"records": []any{map[string]any{"seq": 3}}})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "anchor", "list", "--limit", "5", "--reverse")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, `"seq": 3`) {
		t.Fatalf("output: %s", out)
	}
}

func TestAnchorGetCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/anchors/7" {
			t.Fatalf("path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"seq": 7})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "anchor", "get", "7")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, `"seq": 7`) {
		t.Fatalf("output: %s", out)
	}
}

func TestAnchorTailCommandDecodesSSE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/anchors/tail" {
			t.Fatalf("path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("from") != "earliest" {
			t.Fatalf("query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 1; i <= 2; i++ {
			fmt.Fprintf(w, "data: {\"record\":{\"seq\":%d},\"token\":\"%d\"}\n\n", i, i+1)
		}
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "anchor", "tail", "--from", "earliest", "--limit", "2")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, `"seq":1`) || !strings.Contains(out, `"token":"3"`) {
		t.Fatalf("output: %s", out)
	}
}

func TestKeyShowUsesEnvKey(t *testing.T) {
	t.Setenv("MOOR_KEY", "env-key")
	out, err := runCommand(t, "http://unused", "key", "show")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := identity.DeriveSubmitter([]byte("env-key")).Hex()
	if !strings.Contains(out, want) {
		t.Fatalf("output %q missing %s", out, want)
	}
}
