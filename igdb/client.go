package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"

	"gamearr/config"
)

const (
	igdbAPIURL     = "https://api.igdb.com/v4"
	twitchAuthURL  = "https://id.twitch.tv/oauth2/token"
	defaultTimeout = 10 * time.Second

	// pcPlatformID is IGDB's id for "PC (Microsoft Windows)".
	pcPlatformID = 6
)

// Client talks to the IGDB v4 API using Twitch client-credentials auth.
// The bearer token is cached until shortly before expiry.
type Client struct {
	BaseURL      string
	AuthURL      string
	ClientID     string
	ClientSecret string
	UserAgent    string
	HTTPClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates an IGDB client. Missing Twitch credentials are an
// error here: callers gate on config.IGDBConfigured() to treat the
// metadata source as disabled instead.
func NewClient(cfg config.Config) (*Client, error) {
	if !cfg.IGDBConfigured() {
		return nil, fmt.Errorf("TWITCH_CLIENT_ID / TWITCH_CLIENT_SECRET are not configured")
	}
	return &Client{
		BaseURL:      igdbAPIURL,
		AuthURL:      twitchAuthURL,
		ClientID:     cfg.TwitchClientID,
		ClientSecret: cfg.TwitchClientSecret,
		UserAgent:    cfg.UserAgent,
		HTTPClient:   &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Game is the subset of IGDB game fields the rest of the system uses.
type Game struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Slug             string  `json:"slug"`
	Summary          string  `json:"summary"`
	FirstReleaseDate int64   `json:"first_release_date"`
	AggregatedRating float64 `json:"aggregated_rating"`
	Rating           float64 `json:"rating"`
	Cover            struct {
		URL string `json:"url"`
	} `json:"cover"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Screenshots []struct {
		URL string `json:"url"`
	} `json:"screenshots"`
	Videos []struct {
		VideoID string `json:"video_id"`
	} `json:"videos"`
}

// ReleaseDate converts the unix timestamp, nil when IGDB has no date.
func (g *Game) ReleaseDate() *time.Time {
	if g.FirstReleaseDate <= 0 {
		return nil
	}
	t := time.Unix(g.FirstReleaseDate, 0).UTC()
	return &t
}

// GenreNames flattens the genre list.
func (g *Game) GenreNames() []string {
	names := make([]string, 0, len(g.Genres))
	for _, genre := range g.Genres {
		names = append(names, genre.Name)
	}
	return names
}

// CoverURL upgrades IGDB's thumbnail URL to the big cover variant.
func (g *Game) CoverURL() string {
	if g.Cover.URL == "" {
		return ""
	}
	u := g.Cover.URL
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return strings.Replace(u, "t_thumb", "t_cover_big", 1)
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	params := url.Values{}
	params.Set("client_id", c.ClientID)
	params.Set("client_secret", c.ClientSecret)
	params.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AuthURL, strings.NewReader(params.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach twitch auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("twitch auth failed: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("twitch auth returned an empty token")
	}

	c.accessToken = payload.AccessToken
	// Refresh a minute early so an in-flight query never carries a token
	// that expires mid-request.
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

// query posts an APIcalypse query body to an IGDB endpoint.
func (c *Client) query(ctx context.Context, endpoint, body string, target interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+endpoint, strings.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Client-ID", c.ClientID)
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("User-Agent", c.UserAgent)
			req.Header.Set("Accept", "application/json")

			resp, err := c.HTTPClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to execute request: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				return fmt.Errorf("igdb request failed: status %d, body: %s", resp.StatusCode, string(bodyBytes))
			}
			if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
				return fmt.Errorf("failed to decode igdb response: %w", err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
}

// SearchGames returns up to 20 matches for a free-text title search.
func (c *Client) SearchGames(ctx context.Context, term string) ([]Game, error) {
	body := fmt.Sprintf(`search "%s"; fields name, cover.url, first_release_date, slug; limit 20;`,
		strings.ReplaceAll(term, `"`, ``))

	var games []Game
	if err := c.query(ctx, "games", body, &games); err != nil {
		return nil, fmt.Errorf("igdb search for %q: %w", term, err)
	}
	return games, nil
}

// GetGame fetches full details for one game.
func (c *Client) GetGame(ctx context.Context, id int64) (*Game, error) {
	body := fmt.Sprintf(`fields name, slug, summary, cover.url, first_release_date, genres.name, `+
		`aggregated_rating, rating, screenshots.url, videos.video_id; where id = %d;`, id)

	var games []Game
	if err := c.query(ctx, "games", body, &games); err != nil {
		return nil, fmt.Errorf("igdb details for %d: %w", id, err)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("igdb details for %d: not found", id)
	}
	return &games[0], nil
}

// Discover list names. Stored as DiscoverCache keys.
const (
	ListAnticipated = "anticipated"
	ListComingSoon  = "coming_soon"
	ListTopReviewed = "top_reviewed"
)

// DiscoverLists fetches the three front-page lists keyed by name:
// most anticipated (hyped, unreleased), coming soon (next 90 days) and
// top reviewed (last 90 days, critic rating above 70). PC releases only.
func (c *Client) DiscoverLists(ctx context.Context) (map[string][]Game, error) {
	now := time.Now().Unix()
	const ninetyDays = int64(90 * 24 * 60 * 60)

	queries := []struct {
		name string
		body string
	}{
		{
			ListAnticipated,
			fmt.Sprintf(`fields name, cover.url, first_release_date, slug; `+
				`where first_release_date > %d & platforms = %d & hypes > 0; sort hypes desc; limit 12;`,
				now, pcPlatformID),
		},
		{
			ListComingSoon,
			fmt.Sprintf(`fields name, cover.url, first_release_date, slug; `+
				`where first_release_date > %d & first_release_date < %d & platforms = %d; `+
				`sort first_release_date asc; limit 12;`,
				now, now+ninetyDays, pcPlatformID),
		},
		{
			ListTopReviewed,
			fmt.Sprintf(`fields name, cover.url, first_release_date, slug, aggregated_rating, aggregated_rating_count; `+
				`where first_release_date < %d & first_release_date > %d & platforms = %d & aggregated_rating > 70; `+
				`sort aggregated_rating desc; limit 12;`,
				now, now-ninetyDays, pcPlatformID),
		},
	}

	lists := make(map[string][]Game, len(queries))
	for _, q := range queries {
		var games []Game
		if err := c.query(ctx, "games", q.body, &games); err != nil {
			return nil, fmt.Errorf("igdb discover list %s: %w", q.name, err)
		}
		lists[q.name] = games
	}
	return lists, nil
}
