package qbit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"gamearr/config"
)

// fakeQbit implements just enough of the qBittorrent Web API for the
// wrapper's flows.
func fakeQbit(t *testing.T, torrentsJSON string, added *bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "SID", Value: "abc"})
		w.Write([]byte("Ok."))
	})
	mux.HandleFunc("/api/v2/app/webapiVersion", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("2.9.3"))
	})
	mux.HandleFunc("/api/v2/torrents/add", func(w http.ResponseWriter, r *http.Request) {
		if added != nil {
			*added = true
		}
		w.Write([]byte("Ok."))
	})
	mux.HandleFunc("/api/v2/torrents/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(torrentsJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(host string) config.Config {
	return config.Config{
		QbitHost:     host,
		QbitUser:     "admin",
		QbitPass:     "pass",
		QbitCategory: "gamearr",
	}
}

func TestStatusByHash(t *testing.T) {
	srv := fakeQbit(t, `[
		{"hash":"aaa","name":"Hades.II-TENOKE","progress":1.0,"state":"uploading"},
		{"hash":"bbb","name":"Celeste-GOG","progress":0.4,"state":"downloading"}
	]`, nil)

	client := NewClient(testConfig(srv.URL), zap.NewNop().Sugar())
	statuses, err := client.StatusByHash(context.Background(), []string{"aaa", "bbb", "ccc"})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}
	if !statuses["aaa"].Done() {
		t.Error("complete torrent should report Done")
	}
	if !statuses["bbb"].Downloading() {
		t.Error("in-flight torrent should report Downloading")
	}
	if _, ok := statuses["ccc"]; ok {
		t.Error("vanished hash must be absent from the result")
	}
}

func TestSubmitReturnsNewestHash(t *testing.T) {
	settleDelay = 0
	var added bool
	srv := fakeQbit(t, `[
		{"hash":"old","name":"Old.Game","progress":1.0,"state":"uploading","added_on":100},
		{"hash":"new","name":"New.Game","progress":0.0,"state":"metaDL","added_on":200}
	]`, &added)

	client := NewClient(testConfig(srv.URL), zap.NewNop().Sugar())
	hash, err := client.Submit(context.Background(), "magnet:?xt=urn:btih:new")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !added {
		t.Error("add endpoint was never hit")
	}
	if hash != "new" {
		t.Errorf("hash = %q, want newest added torrent", hash)
	}
}
