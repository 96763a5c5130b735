package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agrimitra/agri-assist/internal/attach"
)

func newTestClient(srv *httptest.Server) *HTTPClient {
	c := NewHTTPClient(srv.URL, "test-key", "test-model", 5*time.Second)
	c.Client = srv.Client()
	return c
}

func TestGenerate_Success(t *testing.T) {
	var got generateReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "test-model") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "Check for nitrogen deficiency"}}}},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv)
	reply, err := c.Generate(context.Background(), Request{
		Prompt:   "My wheat leaves are yellow",
		Language: "en",
		Image:    &attach.Inline{MIME: "image/png", Data: []byte{1, 2, 3}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if reply != "Check for nitrogen deficiency" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 2 {
		t.Fatalf("expected one content with text+image parts, got %+v", got.Contents)
	}
	if got.Contents[0].Parts[1].InlineData == nil || got.Contents[0].Parts[1].InlineData.MIMEType != "image/png" {
		t.Fatalf("image part missing or wrong mime: %+v", got.Contents[0].Parts[1])
	}
	if got.SystemInstruction == nil || !strings.Contains(got.SystemInstruction.Parts[0].Text, "Answer in English.") {
		t.Fatalf("language instruction missing: %+v", got.SystemInstruction)
	}
}

func TestGenerate_BackendErrorCollapses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	if _, err := c.Generate(context.Background(), Request{Prompt: "hello", Language: "en"}); err == nil {
		t.Fatalf("expected error on 5xx")
	}
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	c := newTestClient(srv)
	if _, err := c.Generate(context.Background(), Request{Prompt: "hello", Language: "en"}); err == nil {
		t.Fatalf("expected error on empty candidates")
	}
}
