package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"
)

func TestNfoFetchRetriesTransientFailures(t *testing.T) {
	lookupHits := 0
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/artifact.nfo", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "nfo body")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "nfo" {
			http.NotFound(w, r)
			return
		}
		lookupHits++
		if lookupHits < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"data":{"nfo":"%s/artifact.nfo","nfo_img":""}}`, srv.URL)
	})

	f := NewNfoFetcher(t.TempDir(), "test-agent", zap.NewNop().Sugar())
	f.BaseURL = srv.URL

	nfoPath, imgPath := f.Fetch(context.Background(), "Some.Game-GROUP")
	if nfoPath == "" {
		t.Fatal("expected the lookup to succeed on the third attempt")
	}
	if imgPath != "" {
		t.Errorf("imgPath = %q, want empty when the response has no image", imgPath)
	}
	if lookupHits != 3 {
		t.Errorf("lookup attempts = %d, want 3", lookupHits)
	}

	body, err := os.ReadFile(nfoPath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(body) != "nfo body" {
		t.Errorf("artifact body = %q", body)
	}
}

func TestNfoFetchGivesUpAfterBoundedRetries(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewNfoFetcher(t.TempDir(), "test-agent", zap.NewNop().Sugar())
	f.BaseURL = srv.URL

	nfoPath, imgPath := f.Fetch(context.Background(), "Some.Game-GROUP")
	if nfoPath != "" || imgPath != "" {
		t.Errorf("paths = %q/%q, want empty on persistent failure", nfoPath, imgPath)
	}
	if hits != 3 {
		t.Errorf("attempts = %d, want bounded at 3", hits)
	}
}
