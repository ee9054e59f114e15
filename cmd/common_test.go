package cmd

import (
	"testing"

	"gamearr/igdb"
)

func TestGameFromCatalog(t *testing.T) {
	hit := &igdb.Game{
		ID:               1234,
		Name:             "Hades II",
		Slug:             "hades--2",
		Summary:          "A rogue-like dungeon crawler.",
		FirstReleaseDate: 1758067200,
		AggregatedRating: 91.4,
		Rating:           88.9,
	}
	hit.Cover.URL = "//images.igdb.com/igdb/image/upload/t_thumb/co1234.jpg"
	hit.Genres = []struct {
		Name string `json:"name"`
	}{{Name: "Adventure"}, {Name: "Indie"}}

	game := gameFromCatalog(hit)

	if game.IGDBID == nil || *game.IGDBID != "1234" {
		t.Fatalf("IGDBID = %v, want 1234", game.IGDBID)
	}
	if game.Title != "Hades II" || game.Slug != "hades--2" {
		t.Errorf("title/slug = %q/%q", game.Title, game.Slug)
	}
	if game.Genres != "Adventure,Indie" {
		t.Errorf("Genres = %q, want Adventure,Indie", game.Genres)
	}
	if game.CriticScore != 91 || game.UserScore != 88 {
		t.Errorf("scores = %d/%d, want 91/88", game.CriticScore, game.UserScore)
	}
	if game.ReleaseDate == nil {
		t.Error("ReleaseDate should be set")
	}
	if game.CoverURL != "https://images.igdb.com/igdb/image/upload/t_cover_big/co1234.jpg" {
		t.Errorf("CoverURL = %q", game.CoverURL)
	}
	if game.Status != "" {
		t.Errorf("Status should be unset until the caller decides, got %q", game.Status)
	}
}
