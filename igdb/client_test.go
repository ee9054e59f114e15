package igdb

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gamearr/config"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.Config{
		TwitchClientID:     "id",
		TwitchClientSecret: "secret",
		UserAgent:          "test-agent",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.BaseURL = srv.URL
	client.AuthURL = srv.URL + "/oauth2/token"
	return client, srv
}

func TestSearchGames(t *testing.T) {
	var authCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		authCalls++
		w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	})
	mux.HandleFunc("/games", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `search "Hades II"`) {
			t.Errorf("unexpected query body: %s", body)
		}
		w.Write([]byte(`[{"id":250616,"name":"Hades II","slug":"hades-ii",
			"first_release_date":1727222400,"cover":{"url":"//images.igdb.com/t_thumb/abc.jpg"}}]`))
	})

	client, _ := testClient(t, mux)

	games, err := client.SearchGames(context.Background(), "Hades II")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	g := games[0]
	if g.Name != "Hades II" || g.Slug != "hades-ii" {
		t.Errorf("unexpected game: %+v", g)
	}
	if g.ReleaseDate() == nil {
		t.Error("expected release date")
	}
	if got := g.CoverURL(); got != "https://images.igdb.com/t_cover_big/abc.jpg" {
		t.Errorf("cover url = %q", got)
	}

	// Second call reuses the cached token.
	if _, err := client.SearchGames(context.Background(), "Hades II"); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if authCalls != 1 {
		t.Errorf("auth calls = %d, want 1 (token cached)", authCalls)
	}
}

func TestGetGameNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	})
	mux.HandleFunc("/games", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	client, _ := testClient(t, mux)
	if _, err := client.GetGame(context.Background(), 99); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(config.Config{UserAgent: "x"}); err == nil {
		t.Fatal("expected error without twitch credentials")
	}
}
