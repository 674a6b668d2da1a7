package client

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/moorlog/moor/internal/identity"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// BaseURLFromEnv returns the HTTP server address from MOOR_HTTP or a default.
func BaseURLFromEnv() string {
	if addr := os.Getenv("MOOR_HTTP"); addr != "" {
		return strings.TrimSuffix(addr, "/")
	}
	return "http://127.0.0.1:8080"
}

// keyFilePath returns the submitter key location under the user config dir.
func keyFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "moor", "key"), nil
}

// loadKey resolves the submitter key: MOOR_KEY wins, then the key file. A
// missing key generates and persists a fresh one so first use just works.
func loadKey() (string, error) {
	if k := strings.TrimSpace(os.Getenv("MOOR_KEY")); k != "" {
		return k, nil
	}
	path, err := keyFilePath()
	if err != nil {
		return "", err
	}
	if b, err := os.ReadFile(path); err == nil {
		if k := strings.TrimSpace(string(b)); k != "" {
			return k, nil
		}
	}
	return rotateKey()
}

// rotateKey generates a new submitter key and persists it to the key file.
func rotateKey() (string, error) {
	key, err := identity.NewKey()
	if err != nil {
		return "", err
	}
	path, err := keyFilePath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return "", err
	}
	return key, nil
}

// postJSON sends an authenticated JSON request and decodes the response into
// out when the server accepts it.
func postJSON(url, key string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Moor-Key", key)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return httpError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// getJSON fetches a JSON endpoint into out.
func getJSON(url string, out any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return httpError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// httpError surfaces the server's rejection code when one is present.
func httpError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
		if body.Code != "" {
			return fmt.Errorf("%s: %s (%s)", resp.Status, body.Error, body.Code)
		}
		return fmt.Errorf("%s: %s", resp.Status, body.Error)
	}
	return fmt.Errorf("http error: %s", resp.Status)
}

// streamSSE consumes an SSE endpoint, invoking fn per data event until the
// stream closes or fn fails.
func streamSSE(url string, fn func(data []byte) error) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return httpError(resp)
	}
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		if err := fn([]byte(strings.TrimPrefix(line, "data: "))); err != nil {
			return err
		}
	}
	return sc.Err()
}
