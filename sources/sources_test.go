package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"gamearr/release"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestPreDBNetSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("section"); got != "GAMES" {
			t.Errorf("section = %q, want GAMES", got)
		}
		if got := r.URL.Query().Get("q"); got != "Hades II" {
			t.Errorf("q = %q, want sanitized title", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":[
			{"release":"Hades.II-TENOKE","group":"TENOKE","section":"GAMES","pretime":1727222400},
			{"release":"Hades.II-TENOKE","group":"TENOKE","section":"GAMES","pretime":1727222400},
			{"release":"","group":"","section":"GAMES","pretime":0}
		]}`))
	}))
	defer srv.Close()

	adapter := NewPreDBNet("test-agent", testLogger())
	adapter.BaseURL = srv.URL

	results := adapter.Search(context.Background(), "Hades: II!")
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (deduped, empty dropped): %v", len(results), results)
	}
	r := results[0]
	if r.Name != "Hades.II-TENOKE" || r.Tier != release.TierScene || r.Source != "predb.net" {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.Seen == nil || r.Seen.Unix() != 1727222400 {
		t.Errorf("seen = %v, want pre time", r.Seen)
	}
}

func TestPreDBNetSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	adapter := NewPreDBNet("test-agent", testLogger())
	adapter.BaseURL = srv.URL

	if results := adapter.Search(context.Background(), "Hades II"); len(results) != 0 {
		t.Fatalf("got %d results from failing source, want 0", len(results))
	}
}

func TestPreDBNetSearchGarbageBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer srv.Close()

	adapter := NewPreDBNet("test-agent", testLogger())
	adapter.BaseURL = srv.URL

	if results := adapter.Search(context.Background(), "Hades II"); len(results) != 0 {
		t.Fatalf("got %d results from garbage payload, want 0", len(results))
	}
}

func TestPreDBOvhSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"rowCount":1,"rows":[
			{"name":"Hades.II-RUNE","team":"RUNE","cat":"GAMES","preAt":1727222400}
		]}}`))
	}))
	defer srv.Close()

	adapter := NewPreDBOvh("test-agent", testLogger())
	adapter.BaseURL = srv.URL

	results := adapter.Search(context.Background(), "Hades II")
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Name != "Hades.II-RUNE" || results[0].Tier != release.TierScene {
		t.Errorf("unexpected result: %+v", results[0])
	}
}

func TestXrelSearchSplitsTiers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_count":2,
			"results":[{"dirname":"Hades.II-TENOKE","time":1727222400,"group_name":"TENOKE"}],
			"p2p_results":[{"dirname":"Hades.II.Repack-FitGirl","time":1727308800,"group_name":"FitGirl"}]}`))
	}))
	defer srv.Close()

	adapter := NewXrel("test-agent", testLogger())
	adapter.BaseURL = srv.URL

	results := adapter.Search(context.Background(), "Hades II")
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	tiers := map[string]release.Tier{}
	for _, r := range results {
		tiers[r.Name] = r.Tier
	}
	if tiers["Hades.II-TENOKE"] != release.TierScene {
		t.Errorf("scene hit tier = %q", tiers["Hades.II-TENOKE"])
	}
	if tiers["Hades.II.Repack-FitGirl"] != release.TierP2P {
		t.Errorf("p2p hit tier = %q", tiers["Hades.II.Repack-FitGirl"])
	}
}

func TestFitGirlSearch(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>FitGirl Repacks</title>
<item><title>Hades II v1.0 Repack</title><pubDate>Thu, 26 Sep 2024 12:00:00 +0000</pubDate></item>
<item><title>Completely Different Game</title><pubDate>Thu, 26 Sep 2024 13:00:00 +0000</pubDate></item>
</channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	adapter := NewFitGirl(srv.URL, "test-agent", testLogger())
	results := adapter.Search(context.Background(), "Hades II")
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1: %v", len(results), results)
	}
	r := results[0]
	if r.Name != "Hades II v1.0 Repack" || r.Tier != release.TierRepack {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.Seen == nil {
		t.Error("expected published time to carry through")
	}
}

func TestRedditDisabledWithoutCredentials(t *testing.T) {
	adapter := NewReddit("", "", "", "", testLogger())
	if results := adapter.Search(context.Background(), "Hades II"); results != nil {
		t.Fatalf("disabled adapter returned %v", results)
	}
}

func TestDailyReleaseTableParsing(t *testing.T) {
	body := "| Game | Group | Stores |\n" +
		"|:-|:-|:-|\n" +
		"| [Hades.II-TENOKE](https://example.com/pre) | TENOKE | Steam |\n" +
		"| Another.Game-RAZOR | RAZOR | GOG |\n"

	rows := dailyReleaseRow.FindAllStringSubmatch(body, -1)
	var names []string
	for _, row := range rows {
		name := stripMarkdownLink(row[1])
		if name == "Game" || len(name) > 0 && (name[0] == ':' || name[0] == '-') {
			continue
		}
		names = append(names, name)
	}
	want := []string{"Hades.II-TENOKE", "Another.Game-RAZOR"}
	if len(names) != len(want) {
		t.Fatalf("parsed %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, names[i], want[i])
		}
	}
}
