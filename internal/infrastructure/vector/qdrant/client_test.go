package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchByVectorMapsPayloads(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/kb/points/search" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"result": [
			{"score": 0.91, "payload": {"content": "first chunk", "source": "doc-a"}},
			{"score": 0.72, "payload": {"content": "second chunk", "source": "doc-b"}},
			{"score": 0.5, "payload": {"content": "", "source": "empty"}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "kb")
	docs, err := client.SearchByVector(context.Background(), []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("SearchByVector() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents with content, got %d", len(docs))
	}
	if docs[0].Content != "first chunk" || docs[0].Source != "doc-a" {
		t.Fatalf("unexpected first document: %+v", docs[0])
	}
	if captured["with_payload"] != true {
		t.Fatalf("expected with_payload requested")
	}
	if captured["limit"] != 5.0 {
		t.Fatalf("expected limit forwarded, got %v", captured["limit"])
	}
}

func TestSearchByVectorStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "collection not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "missing")
	if _, err := client.SearchByVector(context.Background(), []float32{0.1}, 3); err == nil {
		t.Fatalf("expected error for missing collection")
	}
}
