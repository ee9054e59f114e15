package scheduler

import (
	"testing"
	"time"

	"gamearr/igdb"
)

func TestDueForSweep(t *testing.T) {
	now := time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)
	date := func(s string) *time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatal(err)
		}
		return &d
	}

	tests := []struct {
		name       string
		release    *time.Time
		runBacklog bool
		want       bool
	}{
		{"no release date", nil, true, false},
		{"future release", date("2024-12-01"), true, false},
		{"hot release", date("2024-10-01"), false, true},
		{"backlog skipped off-hour", date("2023-01-01"), false, false},
		{"backlog during backlog hour", date("2023-01-01"), true, true},
		{"hot window boundary", date("2024-09-16"), false, true},
		{"just past hot window", date("2024-09-14"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dueForSweep(tt.release, now, tt.runBacklog); got != tt.want {
				t.Errorf("dueForSweep(%v, backlog=%v) = %v, want %v", tt.release, tt.runBacklog, got, tt.want)
			}
		})
	}
}

func TestEncodeGames(t *testing.T) {
	content, err := encodeGames([]igdb.Game{{ID: 1, Name: "Hades II", Slug: "hades-ii"}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if content == "" || content == "null" {
		t.Fatalf("content = %q", content)
	}
}
